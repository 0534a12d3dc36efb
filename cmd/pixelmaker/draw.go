package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"path/filepath"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/clipboard"
	"github.com/example/pixelmaker/internal/imageio"
)

// clipboard access, replaced in tests
var (
	readClipboard  = clipboard.ReadImage
	writeClipboard = clipboard.WriteImage
)

// drawCmd applies a single edit to an image file and saves the result.
type drawCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	op            editOp
	args          []string
	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r.subcommand("draw"), fs: fs}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "input image file")
	fs.StringVar(&d.output, "output", "", "output file path (defaults to input file)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&d.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: d}
	}
	op, ok := lookupOp(fs.Arg(0))
	if !ok {
		return nil, fmt.Errorf("unsupported operation %q", fs.Arg(0))
	}
	d.op = op
	d.args = fs.Args()[1:]

	if d.fromClipboard {
		if d.output == "" {
			if d.file != "" {
				d.output = d.file
			} else {
				return nil, fmt.Errorf("output file is required when reading from the clipboard")
			}
		}
	} else {
		if d.file == "" {
			return nil, fmt.Errorf("input file is required")
		}
		if d.output == "" {
			d.output = d.file
		}
	}
	return d, nil
}

func (d *drawCmd) Run() error {
	out, err := d.outputPath(d.output)
	if err != nil {
		return err
	}
	src, err := d.loadSource()
	if err != nil {
		return err
	}
	eng, err := canvas.New(src, d.engineOptions()...)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := d.op.apply(eng, opEnv{palette: d.palette(), fill: d.cfg().Fill}, d.args); err != nil {
		return fmt.Errorf("%s: %w", d.op.name, err)
	}
	if err := eng.SaveAsImage(context.Background(), out); err != nil {
		return err
	}
	saved := out
	if abs, err := filepath.Abs(out); err == nil {
		saved = abs
	}
	fmt.Fprintf(d.errOut(), "saved %s\n", saved)
	d.notifySave(saved, eng.Size())

	if d.toClipboard {
		img := eng.Content()
		if err := writeClipboard(img); err != nil {
			return fmt.Errorf("copy image to clipboard: %w", err)
		}
		detail := filepath.Base(out)
		fmt.Fprintf(d.errOut(), "copied %s to clipboard\n", detail)
		d.notifyCopy(detail, img)
	}
	return nil
}

func (d *drawCmd) loadSource() (image.Image, error) {
	if d.fromClipboard {
		img, err := readClipboard()
		if err != nil {
			return nil, fmt.Errorf("read clipboard image: %w", err)
		}
		return img, nil
	}
	img, err := imageio.Load(d.file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.file, err)
	}
	return img, nil
}
