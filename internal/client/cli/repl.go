package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// command is one page action.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

// execIface defines the minimal surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Current() (string, session.Gating)
	// Await blocks until the shown location may have changed.
	Await(ctx context.Context)
	Enter(ctx context.Context, location string)
	Leave(location string)
	Commands(path string) []command
	Go(location string)
	Status() string
}

// runREPL starts a read–eval–print loop over the page at the current location.
//
// Each turn it asks 'a' where the viewer is. A location that may not render
// yet prints a single loading line and waits; the page body and its commands
// never show before the routing policy settles. Entering a new location calls
// Enter, leaving one calls Leave.
//
// Commands available everywhere:
//
//	help             show the current page's commands
//	go <location>    navigate, e.g. "go /dashboard/logs"
//	exit | quit      leave the program
//
// A page command typed while the location or its gating changed is dropped
// and the new page is shown. Errors returned by page commands are printed; handlers map provider errors
// to their own messages before that.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	shown := ""
	loading := false
	leave := func() {
		if shown != "" {
			a.Leave(shown)
			shown = ""
		}
	}
	defer leave()

	for {
		if ctx.Err() != nil {
			return
		}

		loc, g := a.Current()
		if g == session.Placeholder {
			leave()
			if !loading {
				printlnFn("Loading...")
				loading = true
			}
			a.Await(ctx)
			continue
		}
		loading = false

		if loc != shown {
			leave()
			shown = loc
			a.Enter(ctx, loc)
		}

		path := session.Path(loc)
		printlnFn(fmt.Sprintf("medtrack %s%s > ", a.Status(), path))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		// Reading may block for long. A page command only runs on the page
		// it was typed at.
		if pageCommand(cmd) {
			if now, g := a.Current(); now != loc || g != session.Render {
				printlnFn("The page changed, command ignored.")
				continue
			}
		}

		switch cmd {
		case "help":
			printHelp(a.Commands(path))

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <location>")
				continue
			}
			a.Go(args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			c, ok := findCommand(a.Commands(path), cmd)
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if err := c.run(ctx, args); err != nil {
				printlnFn("error:", err.Error())
			}
		}
	}
}

func pageCommand(cmd string) bool {
	switch cmd {
	case "go", "exit", "quit":
		return false
	}
	return true
}

func findCommand(cmds []command, name string) (command, bool) {
	for _, c := range cmds {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printHelp(cmds []command) {
	printlnFn("Available commands:")
	for _, c := range cmds {
		printlnFn(fmt.Sprintf("  %-12s %s", c.name, c.usage))
	}
	printlnFn(fmt.Sprintf("  %-12s %s", "go", "navigate to a location"))
	printlnFn(fmt.Sprintf("  %-12s %s", "exit", "leave the program"))
}
