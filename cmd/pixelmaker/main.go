package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/config"
	"github.com/example/pixelmaker/internal/imageio"
	"github.com/example/pixelmaker/internal/notify"
	"github.com/example/pixelmaker/internal/palette"
	"github.com/example/pixelmaker/internal/pixels"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	saveAlerts    bool
	copyAlerts    bool
	verbose       bool
	trace         bool
	metricsPath   string
	paletteName   string
	activePalette *palette.Palette
	logger        *slog.Logger
	stdout        io.Writer
	stderr        io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	if r == nil {
		return &root{program: name}
	}
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:       program,
		notifier:      r.notifier,
		config:        r.config,
		saveAlerts:    r.saveAlerts,
		copyAlerts:    r.copyAlerts,
		verbose:       r.verbose,
		paletteName:   r.paletteName,
		activePalette: r.activePalette,
		logger:        r.logger,
		stdout:        r.stdout,
		stderr:        r.stderr,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("pixelmaker", flag.ExitOnError),
		program:  "pixelmaker",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.verbose, "v", false, "log engine and history activity to stderr")
	r.fs.BoolVar(&r.trace, "trace", false, "print trace spans for file writes to stderr")
	r.fs.StringVar(&r.metricsPath, "metrics", "", "write history metrics to this file when done (- for stderr)")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.paletteName, "palette", "", "palette to draw with (default, pico8, gameboy, grayscale or a file)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	if r.verbose {
		r.logger = slog.New(slog.NewTextHandler(r.errOut(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		r.notifier.SetLogger(r.logger)
	}
	r.activePalette = r.resolvePalette()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "new":
		cmd, err = parseNewCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "palettes":
		cmd, err = parsePalettesCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return r.runWithTelemetry(cmd)
}

func (r *root) runWithTelemetry(cmd runnable) (err error) {
	if r.trace {
		stop, terr := startTracing(r.errOut())
		if terr != nil {
			return terr
		}
		defer func() {
			if serr := stop(context.Background()); serr != nil && err == nil {
				err = serr
			}
		}()
	}
	if err = cmd.Run(); err != nil {
		return err
	}
	if r.metricsPath != "" {
		return r.dumpMetrics(r.metricsPath)
	}
	return nil
}

// resolvePalette picks the palette named on the command line, in
// PIXELMAKER_PALETTE or in the config file, in that order.
func (r *root) resolvePalette() *palette.Palette {
	name := r.paletteName
	if name == "" {
		name = os.Getenv("PIXELMAKER_PALETTE")
	}
	if name == "" && r.config != nil {
		name = r.config.Palette
	}
	if r.config != nil {
		if p, ok := r.config.LookupPalette(name); ok {
			return p
		}
	}
	p, err := palette.NewLoader().Load(name)
	if err != nil {
		fmt.Fprintf(r.errOut(), "warning: failed to load palette '%s': %v. using default.\n", name, err)
		return palette.Default()
	}
	return p
}

func (r *root) palette() *palette.Palette {
	if r == nil || r.activePalette == nil {
		return palette.Default()
	}
	return r.activePalette
}

func (r *root) cfg() *config.Config {
	if r == nil || r.config == nil {
		return config.New()
	}
	return r.config
}

func (r *root) out() io.Writer {
	if r == nil || r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r == nil || r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

// engineOptions configures a canvas engine from the loaded configuration.
func (r *root) engineOptions() []canvas.Option {
	cfg := r.cfg()
	opts := []canvas.Option{
		canvas.WithHistoryCapacity(cfg.HistoryLimit),
		canvas.WithHistoryCompression(cfg.CompressHistory),
	}
	if r != nil && r.logger != nil {
		opts = append(opts, canvas.WithLogger(r.logger))
	}
	return opts
}

// outputPath places bare file names in the configured save directory and
// checks that the extension is one we can write.
func (r *root) outputPath(path string) (string, error) {
	if _, err := imageio.FormatFor(path); err != nil {
		return "", fmt.Errorf("%s: %w (supported: %s)", path, err, strings.Join(imageio.Extensions(), " "))
	}
	if dir := r.cfg().SaveDir; dir != "" && filepath.Base(path) == path {
		path = filepath.Join(dir, path)
	}
	return path, nil
}

// blankCanvas returns a canvas of the configured default size and fill.
func (r *root) blankCanvas() *image.RGBA {
	cfg := r.cfg()
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	pixels.Fill(img, cfg.Fill)
	return img
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifySave(path string, size image.Point) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path, size)
}

func (r *root) notifyCopy(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail, img)
}
