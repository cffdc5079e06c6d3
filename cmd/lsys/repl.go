package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/phroun/lsystem"
	"github.com/phroun/lsystem/pkg/lab"
)

const historyFile = ".lsys_history"

const replHelp = `Commands:
  step [N]        derive N more generations (default 1)
  run [N]         derive N generations from the axiom (default: configured steps)
  reset           go back to the axiom
  show            print the current derivation
  stats           print module counts
  render FILE     draw the current derivation into FILE (.svg or .png)
  lint            list productions that can never apply
  help            show this help
  quit, exit      leave
`

// onSignal calls handle on the first of sigs that arrives. The returned
// stop function unregisters and waits for the watching goroutine to end.
func onSignal(handle func(os.Signal), sigs ...os.Signal) (stop func()) {
	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	signal.Notify(sigc, sigs...)
	go func() {
		defer close(exited)
		select {
		case sig := <-sigc:
			handle(sig)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(done)
		<-exited
	}
}

func runREPL(l *lab.Lab, logger *lsystem.Logger, out io.Writer) error {
	fmt.Fprintf(out, "lsys %s, type 'help' for commands\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	stop := onSignal(func(os.Signal) {
		ln.Close()
		os.Exit(130)
	}, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, c := range []string{"step", "run", "reset", "show", "stats", "render ", "lint", "help", "quit"} {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	})

	for {
		line, err := ln.Prompt(fmt.Sprintf("lsys[%d]> ", l.Stats().Generation))
		if err != nil {
			// io.EOF on Ctrl-D, liner.ErrPromptAborted on Ctrl-C
			fmt.Fprintln(out)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if quit := handleReplCommand(l, logger, out, line); quit {
			return nil
		}
	}
}

// handleReplCommand runs one REPL line and reports whether to leave
func handleReplCommand(l *lab.Lab, logger *lsystem.Logger, out io.Writer, line string) (exit bool) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	count := func(def int) (int, bool) {
		if len(args) == 0 {
			return def, true
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			errorPrintf("Expected a step count, got '%s'\n", args[0])
			return 0, false
		}
		return n, true
	}

	switch name {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprint(out, replHelp)

	case "step":
		n, ok := count(1)
		if !ok {
			break
		}
		if _, err := l.System().Derive(n); err != nil {
			reportError(logger, err)
		}
		printStats(out, l.Stats())

	case "run":
		n, ok := count(-1)
		if !ok {
			break
		}
		if _, err := l.Run(n); err != nil {
			reportError(logger, err)
		}
		printStats(out, l.Stats())

	case "reset":
		l.Reset()
		fmt.Fprintln(out, l.Current())

	case "show":
		fmt.Fprintln(out, l.Current())

	case "stats":
		printStats(out, l.Stats())

	case "render":
		if len(args) != 1 {
			errorPrintf("Usage: render FILE\n")
			break
		}
		if err := renderFile(l, args[0]); err != nil {
			reportError(logger, err)
			break
		}
		fmt.Fprintf(out, "wrote %s\n", args[0])

	case "lint":
		shadowed := l.System().UnreachableProductions()
		for _, s := range shadowed {
			fmt.Fprintf(out, "%s\n    never applies: %s matches first\n", oneLine(s.Production), oneLine(s.ShadowedBy))
		}
		if len(shadowed) == 0 {
			fmt.Fprintln(out, "ok")
		}

	default:
		errorPrintf("Unknown command '%s', type 'help' for commands\n", name)
	}
	return false
}
