package main

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/palette"
)

// editOp is a canvas edit shared by draw and interactive.
type editOp struct {
	name  string
	usage string
	nargs []int
	run   func(eng *canvas.Engine, env opEnv, args []string) error
}

// opEnv carries what edits need besides their arguments.
type opEnv struct {
	palette *palette.Palette
	fill    color.RGBA
}

var editOps = []editOp{
	{name: "pixel", usage: "pixel x y color", nargs: []int{3}, run: runPixel(false)},
	{name: "blend", usage: "blend x y color", nargs: []int{3}, run: runPixel(true)},
	{name: "fill", usage: "fill x y color", nargs: []int{3}, run: runFill},
	{name: "resize", usage: "resize w h [ox oy]", nargs: []int{2, 4}, run: runResize},
	{name: "scale", usage: "scale factor", nargs: []int{1}, run: runScale},
}

func lookupOp(name string) (editOp, bool) {
	name = strings.ToLower(name)
	for _, op := range editOps {
		if op.name == name {
			return op, true
		}
	}
	return editOp{}, false
}

// apply checks the argument count and runs the edit.
func (op editOp) apply(eng *canvas.Engine, env opEnv, args []string) error {
	for _, n := range op.nargs {
		if len(args) == n {
			return op.run(eng, env, args)
		}
	}
	return fmt.Errorf("usage: %s", op.usage)
}

func runPixel(blend bool) func(*canvas.Engine, opEnv, []string) error {
	return func(eng *canvas.Engine, env opEnv, args []string) error {
		p, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		c, err := env.color(args[2])
		if err != nil {
			return err
		}
		if blend {
			return eng.BlendPixel(p, c)
		}
		return eng.SetPixel(p, c)
	}
}

func runFill(eng *canvas.Engine, env opEnv, args []string) error {
	p, err := parsePoint(args[0], args[1])
	if err != nil {
		return err
	}
	c, err := env.color(args[2])
	if err != nil {
		return err
	}
	return eng.FloodFill(p, c)
}

func runResize(eng *canvas.Engine, env opEnv, args []string) error {
	size, err := parsePoint(args[0], args[1])
	if err != nil {
		return err
	}
	var offset image.Point
	if len(args) == 4 {
		if offset, err = parsePoint(args[2], args[3]); err != nil {
			return err
		}
	}
	return eng.Resize(size, offset, env.fill)
}

func runScale(eng *canvas.Engine, _ opEnv, args []string) error {
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid factor %q", args[0])
	}
	return eng.ChangeResolution(f)
}

func (env opEnv) color(s string) (color.RGBA, error) {
	if env.palette == nil {
		return palette.ParseColor(s)
	}
	return env.palette.Resolve(s)
}

func parsePoint(xs, ys string) (image.Point, error) {
	vals, err := expectInts([]string{xs, ys}, 2)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(vals[0], vals[1]), nil
}

func expectInts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integer arguments", n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}
