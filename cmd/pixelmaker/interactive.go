package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/imageio"
	"github.com/example/pixelmaker/internal/palette"
)

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

// interactiveCmd edits one canvas by reading commands line by line.
type interactiveCmd struct {
	*root
	fs     *flag.FlagSet
	file   string
	output string
	execs  commandList
	in     io.Reader
	eng    *canvas.Engine
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	c := &interactiveCmd{root: r.subcommand("interactive"), fs: fs, in: os.Stdin}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image to open (a blank canvas otherwise)")
	fs.StringVar(&c.output, "output", "", "default path for save (defaults to -file or canvas.png)")
	fs.Var(&c.execs, "e", "execute a command instead of reading stdin (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.output == "" {
		c.output = c.file
	}
	if c.output == "" {
		c.output = "canvas.png"
	}
	return c, nil
}

func (c *interactiveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *interactiveCmd) Run() error {
	var (
		img *image.RGBA
		err error
	)
	if c.file != "" {
		if img, err = imageio.Load(c.file); err != nil {
			return fmt.Errorf("open %s: %w", c.file, err)
		}
	} else {
		img = c.blankCanvas()
	}
	c.eng, err = canvas.New(img, c.engineOptions()...)
	if err != nil {
		return err
	}
	defer c.eng.Close()

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.out(), "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out(), "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.errOut(), err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

var errUnknownCommand = errors.New("unknown command")

// executeLine runs one command and reports whether the session should end.
func (c *interactiveCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}
	name, args := strings.ToLower(args[0]), args[1:]
	if op, ok := lookupOp(name); ok {
		if err := op.apply(c.eng, opEnv{palette: c.palette(), fill: c.cfg().Fill}, args); err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		return false, nil
	}

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		c.printHelp()
	case "stroke":
		fmt.Fprintf(c.out(), "stroke %d\n", c.eng.StartStroke())
	case "undo", "redo":
		retrace := c.eng.Undo
		if name == "redo" {
			retrace = c.eng.Redo
		}
		resized, err := retrace()
		if err != nil {
			return false, err
		}
		if resized {
			sz := c.eng.Size()
			fmt.Fprintf(c.out(), "canvas is now %dx%d\n", sz.X, sz.Y)
		}
	case "get":
		p, err := c.point(name, args)
		if err != nil {
			return false, err
		}
		col, err := c.eng.Pixel(p)
		if err != nil {
			return false, fmt.Errorf("get: %w", err)
		}
		fmt.Fprintln(c.out(), palette.Hex(col))
	case "size":
		sz := c.eng.Size()
		fmt.Fprintf(c.out(), "%dx%d\n", sz.X, sz.Y)
	case "frame":
		n := c.eng.Pending()
		view, err := c.eng.NextFrame()
		if err != nil {
			return false, fmt.Errorf("frame: %w", err)
		}
		sz := view.Size()
		fmt.Fprintf(c.out(), "presented %d changes, surface %dx%d\n", n, sz.X, sz.Y)
	case "history":
		fmt.Fprintf(c.out(), "undo: %t redo: %t pending: %d stroke: %d\n",
			c.eng.CanUndo(), c.eng.CanRedo(), c.eng.Pending(), c.eng.Stroke())
	case "save":
		return false, c.save(args)
	case "copy":
		img := c.eng.Content()
		if err := writeClipboard(img); err != nil {
			return false, fmt.Errorf("copy: %w", err)
		}
		fmt.Fprintln(c.out(), "copied canvas to clipboard")
		c.notifyCopy("canvas", img)
	case "paste":
		img, err := readClipboard()
		if err != nil {
			return false, fmt.Errorf("paste: %w", err)
		}
		if err := c.eng.SetToImage(img); err != nil {
			return false, fmt.Errorf("paste: %w", err)
		}
	default:
		return false, fmt.Errorf("%w %q (type 'help')", errUnknownCommand, name)
	}
	return false, nil
}

func (c *interactiveCmd) point(name string, args []string) (image.Point, error) {
	if len(args) != 2 {
		return image.Point{}, fmt.Errorf("usage: %s x y", name)
	}
	return parsePoint(args[0], args[1])
}

func (c *interactiveCmd) save(args []string) error {
	path := c.output
	switch len(args) {
	case 0:
	case 1:
		path = args[0]
	default:
		return errors.New("usage: save [path]")
	}
	out, err := c.outputPath(path)
	if err != nil {
		return err
	}
	if err := c.eng.SaveAsImage(context.Background(), out); err != nil {
		return err
	}
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	fmt.Fprintf(c.out(), "saved %s\n", out)
	c.notifySave(out, c.eng.Size())
	return nil
}

func (c *interactiveCmd) printHelp() {
	w := c.out()
	for _, op := range editOps {
		fmt.Fprintf(w, "  %s\n", op.usage)
	}
	for _, line := range []string{
		"stroke             group the following pixel edits into one undo step",
		"undo | redo",
		"get x y            print the color of a pixel",
		"size               print the canvas size",
		"frame              present pending changes",
		"history            print undo and redo state",
		"save [path]",
		"copy | paste       exchange the canvas with the clipboard",
		"exit",
	} {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
