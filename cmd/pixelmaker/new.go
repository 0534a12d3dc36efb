package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"path/filepath"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/palette"
	"github.com/example/pixelmaker/internal/pixels"
)

// newCmd writes a blank canvas.
type newCmd struct {
	*root
	fs       *flag.FlagSet
	width    int
	height   int
	fillSpec string
	output   string
}

func parseNewCmd(args []string, r *root) (*newCmd, error) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	n := &newCmd{root: r.subcommand("new"), fs: fs}
	cfg := n.cfg()
	fs.Usage = usageFunc(n)
	fs.IntVar(&n.width, "width", cfg.Width, "canvas width in pixels")
	fs.IntVar(&n.height, "height", cfg.Height, "canvas height in pixels")
	fs.StringVar(&n.fillSpec, "fill", palette.Hex(cfg.Fill), "background color")
	fs.StringVar(&n.output, "output", "canvas.png", "output file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: n}
	}
	if n.width < 1 || n.height < 1 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", n.width, n.height)
	}
	return n, nil
}

func (n *newCmd) FlagSet() *flag.FlagSet {
	return n.fs
}

func (n *newCmd) Run() error {
	fill, err := n.palette().Resolve(n.fillSpec)
	if err != nil {
		return err
	}
	out, err := n.outputPath(n.output)
	if err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, n.width, n.height))
	pixels.Fill(img, fill)

	eng, err := canvas.New(img, n.engineOptions()...)
	if err != nil {
		return err
	}
	defer eng.Close()
	if err := eng.SaveAsImage(context.Background(), out); err != nil {
		return err
	}
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	fmt.Fprintf(n.errOut(), "saved %s\n", out)
	n.notifySave(out, eng.Size())
	return nil
}
