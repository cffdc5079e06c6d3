package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phroun/lsystem"
	"github.com/phroun/lsystem/pkg/lab"
)

// errReported marks errors already shown through the logger
var errReported = errors.New("error reported")

// runLab loads the lab named by args[0] and derives the configured steps.
// Failures are reported with their source context.
func runLab(cmd *cobra.Command, args []string, logger *lsystem.Logger) (*lab.Lab, error) {
	l, err := loadLab(cmd, args[0], logger)
	if err != nil {
		reportError(logger, err)
		return nil, errReported
	}
	if _, err := l.Run(-1); err != nil {
		reportError(logger, err)
		return l, errReported
	}
	return l, nil
}

func newDeriveCmd() *cobra.Command {
	var showStats bool
	cmd := &cobra.Command{
		Use:   "derive FILE",
		Short: "Print the derivation of an L-system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := runLab(cmd, args, newLogger())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range wrap(l.Current().String(), terminalWidth(out)) {
				fmt.Fprintln(out, line)
			}
			if showStats {
				printStats(out, l.Stats())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showStats, "stats", "s", false, "print module counts")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Draw the derivation into an SVG or PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			l, err := runLab(cmd, args, logger)
			if err != nil {
				return err
			}
			if err := renderFile(l, output); err != nil {
				return err
			}
			logger.InfoCat(lsystem.CatIO, "Wrote %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "lsystem.svg", "output image, .svg or .png")
	return cmd
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE",
		Short: "Report productions that can never apply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			l, err := loadLab(cmd, args[0], logger)
			if err != nil {
				reportError(logger, err)
				return errReported
			}
			shadowed := l.System().UnreachableProductions()
			out := cmd.OutOrStdout()
			for _, s := range shadowed {
				fmt.Fprintf(out, "%s\n    never applies: %s matches first\n", oneLine(s.Production), oneLine(s.ShadowedBy))
			}
			if len(shadowed) > 0 {
				return errors.Errorf("%d unreachable productions", len(shadowed))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Render again every time the definition changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			path := args[0]

			rebuild := func() *lab.Lab {
				l, err := runLab(cmd, args, logger)
				if err != nil {
					return l
				}
				if err := renderFile(l, output); err != nil {
					reportError(logger, err)
					return l
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rendered generation %d (%d modules) to %s\n",
					l.Stats().Generation, l.Stats().Modules, output)
				return l
			}

			files := []string{path}
			if l := rebuild(); l != nil {
				files = watchedFiles(path, l)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return lab.Watch(ctx, files, logger, func(changed string) {
				logger.DebugCat(lsystem.CatIO, "Changed: %s", changed)
				rebuild()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "lsystem.svg", "output image, .svg or .png")
	return cmd
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl FILE",
		Short: "Step through a derivation interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			l, err := loadLab(cmd, args[0], logger)
			if err != nil {
				reportError(logger, err)
				return errReported
			}
			return runREPL(l, logger, cmd.OutOrStdout())
		},
	}
}

func oneLine(p lsystem.Production) string {
	return strings.Join(strings.Fields(p.String()), " ")
}

func printStats(w io.Writer, s lab.Stats) {
	fmt.Fprintf(w, "generation %d: %d modules, branch depth %d\n", s.Generation, s.Modules, s.Depth)
	for _, key := range s.SortedCounts() {
		fmt.Fprintf(w, "  %-10s %d\n", key, s.Counts[key])
	}
}

// terminalWidth returns the width of w when it is a terminal, or 0
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}

// wrap breaks text at spaces into lines of at most width columns. A width
// of 0 keeps the text on one line.
func wrap(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
