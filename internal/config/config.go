package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/pixelmaker/internal/history"
	"github.com/example/pixelmaker/internal/palette"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	Palette         string
	SaveDir         string
	HistoryLimit    int
	CompressHistory bool
	Width           int
	Height          int
	Fill            color.RGBA
	Notify          Notify
	Palettes        map[string]*palette.Palette
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Palette:      "", // Default to empty to allow fallback to Env/Default
		HistoryLimit: history.DefaultCapacity,
		Width:        32,
		Height:       32,
		Fill:         color.RGBA{255, 255, 255, 255},
		Palettes:     make(map[string]*palette.Palette),
	}
}

// LookupPalette returns a palette defined in the configuration file.
func (c *Config) LookupPalette(name string) (*palette.Palette, bool) {
	p, ok := c.Palettes[name]
	return p, ok
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Palette != "" {
		fmt.Fprintf(&sb, "palette = %s\n", c.Palette)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	fmt.Fprintf(&sb, "compress_history = %v\n", c.CompressHistory)
	fmt.Fprintf(&sb, "width = %d\n", c.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Height)
	fmt.Fprintf(&sb, "fill = %s\n", palette.Hex(c.Fill))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var names []string
	for name := range c.Palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&sb, "[palette.%s]\n", name)
		for _, s := range c.Palettes[name].Swatches {
			fmt.Fprintf(&sb, "%s = %s\n", s.Name, palette.Hex(s.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
