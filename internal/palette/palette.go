package palette

import (
	"image/color"
	"strings"
)

// Swatch is a named color.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// Palette is an ordered list of swatches.
type Palette struct {
	Name     string
	Swatches []Swatch
}

// Default returns the built-in palette used when none is configured.
func Default() *Palette {
	return &Palette{
		Name: "default",
		Swatches: []Swatch{
			{"black", color.RGBA{0, 0, 0, 255}},
			{"white", color.RGBA{255, 255, 255, 255}},
			{"red", color.RGBA{230, 41, 55, 255}},
			{"orange", color.RGBA{255, 161, 0, 255}},
			{"yellow", color.RGBA{253, 249, 0, 255}},
			{"green", color.RGBA{0, 228, 48, 255}},
			{"blue", color.RGBA{0, 121, 241, 255}},
			{"purple", color.RGBA{200, 122, 255, 255}},
			{"brown", color.RGBA{127, 106, 79, 255}},
			{"gray", color.RGBA{130, 130, 130, 255}},
			{"transparent", color.RGBA{}},
		},
	}
}

// Lookup returns the swatch named name, ignoring case.
func (p *Palette) Lookup(name string) (color.RGBA, bool) {
	for _, s := range p.Swatches {
		if strings.EqualFold(s.Name, name) {
			return s.Color, true
		}
	}
	return color.RGBA{}, false
}

// Set adds a swatch or replaces the color of an existing one.
func (p *Palette) Set(name string, c color.RGBA) {
	for i, s := range p.Swatches {
		if strings.EqualFold(s.Name, name) {
			p.Swatches[i].Color = c
			return
		}
	}
	p.Swatches = append(p.Swatches, Swatch{Name: name, Color: c})
}

// At returns the swatch at index i, wrapping around in both directions.
func (p *Palette) At(i int) Swatch {
	if len(p.Swatches) == 0 {
		return Swatch{Name: "black", Color: color.RGBA{A: 255}}
	}
	n := len(p.Swatches)
	return p.Swatches[((i%n)+n)%n]
}

// Resolve turns a color argument into a color. It accepts a swatch name from
// p, a #RRGGBB or #RRGGBBAA hex value, or an SVG color name.
func (p *Palette) Resolve(s string) (color.RGBA, error) {
	if p != nil {
		if c, ok := p.Lookup(s); ok {
			return c, nil
		}
	}
	return ParseColor(s)
}
