package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/example/pixelmaker/internal/appstate"
	"github.com/example/pixelmaker/internal/imageio"
)

// editCmd opens the editor window.
type editCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	output        string
	fromClipboard bool
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image to open")
	fs.StringVar(&e.output, "output", "", "path used when saving (defaults to -file or untitled.png)")
	fs.BoolVar(&e.fromClipboard, "from-clipboard", false, "start from the image on the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: e}
	}
	if e.output == "" {
		e.output = e.file
	}
	if e.output == "" {
		e.output = "untitled.png"
	}
	return e, nil
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

// options builds the editor state without opening a window.
func (e *editCmd) options() ([]appstate.Option, error) {
	out, err := e.outputPath(e.output)
	if err != nil {
		return nil, err
	}
	var img *image.RGBA
	switch {
	case e.fromClipboard:
		if img, err = readClipboard(); err != nil {
			return nil, fmt.Errorf("read clipboard image: %w", err)
		}
	case e.file != "":
		if img, err = imageio.Load(e.file); err != nil {
			return nil, fmt.Errorf("open %s: %w", e.file, err)
		}
	default:
		img = e.blankCanvas()
	}
	pal := e.palette()
	opts := []appstate.Option{
		appstate.WithImage(img),
		appstate.WithOutput(out),
		appstate.WithPalette(pal),
		appstate.WithFill(e.cfg().Fill),
		appstate.WithEngineOptions(e.engineOptions()...),
		appstate.WithOnSave(e.notifySave),
		appstate.WithOnCopy(func(img image.Image) { e.notifyCopy("canvas", img) }),
	}
	if len(pal.Swatches) > 0 {
		opts = append(opts, appstate.WithColor(pal.Swatches[0].Color))
	}
	return opts, nil
}

func (e *editCmd) Run() error {
	opts, err := e.options()
	if err != nil {
		return err
	}
	appstate.New(opts...).Run()
	return nil
}
