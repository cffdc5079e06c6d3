package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/phroun/lsystem"
	"github.com/phroun/lsystem/pkg/lab"
	"github.com/phroun/lsystem/pkg/surface"
)

var version = "dev" // set via -ldflags at build time

// ANSI color codes for terminal output
const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
)

// Flags shared by the subcommands
var (
	debug  bool
	steps  int
	seed   int64
	width  int
	height int
)

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if lsystem.StderrSupportsColor() {
		fmt.Fprintf(os.Stderr, "%s%s%s", colorYellow, message, colorReset)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}

func newLogger() *lsystem.Logger {
	logger := lsystem.NewLogger(debug)
	if debug {
		logger.EnableAllCategories()
	}
	return logger
}

// reportError prints err, with the offending definition line when it has
// a source position.
func reportError(logger *lsystem.Logger, err error) {
	var srcErr *lab.SourceError
	if errors.As(err, &srcErr) {
		logger.ReportError(err, srcErr.Lines)
		return
	}
	logger.ReportError(err, nil)
}

// isConfigFile tells lab configurations apart from bare definitions
func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// loadLab opens a configuration or a bare definition and applies the
// command line overrides.
func loadLab(cmd *cobra.Command, path string, logger *lsystem.Logger) (*lab.Lab, error) {
	var cfg *lab.Config
	if isConfigFile(path) {
		var err error
		if cfg, err = lab.LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		cfg = lab.DefaultConfig()
		cfg.File = path
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Render.Width = width
	}
	if flags.Changed("height") {
		cfg.Render.Height = height
	}
	logger.DebugCat(lsystem.CatConfig, "Loading %s: %d steps, seed %d", path, cfg.Steps, cfg.Seed)
	return lab.New(cfg, logger)
}

// watchedFiles returns the files a lab was loaded from
func watchedFiles(path string, l *lab.Lab) []string {
	files := []string{path}
	if def := l.Config().DefinitionPath(); def != "" && def != path {
		files = append(files, def)
	}
	return files
}

// renderFile draws the current derivation into an SVG or PNG file
func renderFile(l *lab.Lab, out string) error {
	opts := l.Config().SurfaceOptions()
	switch strings.ToLower(filepath.Ext(out)) {
	case ".svg":
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		svg, err := surface.NewSVG(f, opts)
		if err != nil {
			f.Close()
			return err
		}
		if err := l.Render(svg); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".png":
		raster, err := surface.NewRaster(opts)
		if err != nil {
			return err
		}
		if err := l.Render(raster); err != nil {
			return err
		}
		return raster.SavePNG(out)
	default:
		return errors.Errorf("cannot render to %s: use a .svg or .png file", out)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lsys",
		Short:         "Derive and draw Lindenmayer systems",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().IntVarP(&steps, "steps", "n", 0, "number of derivation steps")
	root.PersistentFlags().Int64Var(&seed, "seed", 0, "seed for stochastic productions")
	root.PersistentFlags().IntVar(&width, "width", 0, "image width")
	root.PersistentFlags().IntVar(&height, "height", 0, "image height")

	root.AddCommand(
		newDeriveCmd(),
		newRenderCmd(),
		newLintCmd(),
		newWatchCmd(),
		newReplCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			errorPrintf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}
