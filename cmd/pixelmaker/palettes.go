package main

import (
	"flag"
	"fmt"
	"slices"
	"sort"

	"github.com/example/pixelmaker/internal/palette"
)

// palettesCmd lists the palettes known to the loader and the config file.
type palettesCmd struct {
	*root
	fs   *flag.FlagSet
	name string
}

func parsePalettesCmd(args []string, r *root) (*palettesCmd, error) {
	fs := flag.NewFlagSet("palettes", flag.ExitOnError)
	c := &palettesCmd{root: r.subcommand("palettes"), fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.name = fs.Arg(0)
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *palettesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *palettesCmd) Run() error {
	if c.name != "" {
		p, ok := c.cfg().LookupPalette(c.name)
		if !ok {
			var err error
			if p, err = palette.NewLoader().Load(c.name); err != nil {
				return err
			}
		}
		for i, s := range p.Swatches {
			fmt.Fprintf(c.out(), "%2d %-12s %s\n", i, s.Name, palette.Hex(s.Color))
		}
		return nil
	}

	names := palette.NewLoader().List()
	for n := range c.cfg().Palettes {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	active := c.palette().Name
	for _, n := range names {
		marker := " "
		if n == active {
			marker = "*"
		}
		fmt.Fprintf(c.out(), "%s %s\n", marker, n)
	}
	return nil
}
