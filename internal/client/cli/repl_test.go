package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/client/session"
	"github.com/stretchr/testify/require"
)

// capture replaces printlnFn for the duration of the test.
type capture struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *capture) println(args ...any) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.WriteString(fmt.Sprintln(args...))
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func captureOutput(t *testing.T) *capture {
	t.Helper()
	c := &capture{}
	orig := printlnFn
	printlnFn = c.println
	t.Cleanup(func() { printlnFn = orig })
	return c
}

type fakeExec struct {
	locations []string
	gating    []session.Gating
	turn      int

	calls   []string
	entered []string
	left    []string
	went    []string
}

func (f *fakeExec) Current() (string, session.Gating) {
	i := min(f.turn, len(f.locations)-1)
	f.turn++
	return f.locations[i], f.gating[i]
}

func (f *fakeExec) Await(context.Context) { f.calls = append(f.calls, "await") }

func (f *fakeExec) Enter(_ context.Context, location string) {
	f.entered = append(f.entered, location)
}

func (f *fakeExec) Leave(location string) { f.left = append(f.left, location) }

func (f *fakeExec) Go(location string) { f.went = append(f.went, location) }

func (f *fakeExec) Status() string { return "" }

func (f *fakeExec) Commands(path string) []command {
	record := func(name string) func(context.Context, []string) error {
		return func(_ context.Context, args []string) error {
			f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
			return nil
		}
	}
	switch path {
	case session.LocationLogin:
		return []command{{"signin", "sign in", record("signin")}}
	case session.LocationLogs:
		return []command{
			{"take", "take", record("take")},
			{"fail", "fail", func(context.Context, []string) error { return fmt.Errorf("boom") }},
		}
	}
	return nil
}

func TestRunREPL_WaitsForPlaceholderThenDispatches(t *testing.T) {
	out := captureOutput(t)

	ex := &fakeExec{
		locations: []string{"/dashboard", "/dashboard", session.LocationLogin},
		gating:    []session.Gating{session.Placeholder, session.Placeholder, session.Render},
	}
	input := strings.Join([]string{"help", "signin", "take m1", "nope", "go /signup", "exit"}, "\n") + "\n"

	runREPL(context.Background(), ex, rdr(input))

	require.Equal(t, []string{"await", "await", "signin"}, ex.calls)
	require.Equal(t, []string{session.LocationLogin}, ex.entered)
	require.Equal(t, []string{session.LocationLogin}, ex.left)
	require.Equal(t, []string{"/signup"}, ex.went)

	s := out.String()
	require.Equal(t, 1, strings.Count(s, "Loading..."), "loading line is printed once per wait")
	require.Contains(t, s, "Unknown command: take")
	require.Contains(t, s, "Unknown command: nope")
	require.Contains(t, s, "signin")
	require.Contains(t, s, "Bye!")
}

func TestRunREPL_PageBodyNeverShownWhilePlaceholder(t *testing.T) {
	captureOutput(t)

	ex := &fakeExec{
		locations: []string{"/dashboard", session.LocationLogs},
		gating:    []session.Gating{session.Placeholder, session.Render},
	}
	runREPL(context.Background(), ex, rdr("take m1 after lunch\nfail\n"))

	require.Equal(t, []string{session.LocationLogs}, ex.entered)
	require.Equal(t, []string{"await", "take m1 after lunch"}, ex.calls)
	require.Equal(t, []string{session.LocationLogs}, ex.left, "EOF leaves the page")
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	out := captureOutput(t)

	ex := &fakeExec{
		locations: []string{session.LocationLogs},
		gating:    []session.Gating{session.Render},
	}
	runREPL(context.Background(), ex, rdr("fail\ngo\n"))

	require.Contains(t, out.String(), "error: boom")
	require.Contains(t, out.String(), "Usage: go <location>")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &fakeExec{locations: []string{session.LocationLogin}, gating: []session.Gating{session.Render}}

	runREPL(ctx, ex, rdr("signin\n"))

	require.Empty(t, ex.calls)
	require.Empty(t, ex.entered)
}

func TestRunREPL_DropsCommandWhenPageChangedWhileReading(t *testing.T) {
	tests := []struct {
		name      string
		locations []string
		gating    []session.Gating
		input     string
		calls     []string
		entered   []string
	}{
		{
			name:      "signed out while typing",
			locations: []string{session.LocationLogs, session.LocationLogin},
			gating:    []session.Gating{session.Render, session.Render},
			input:     "take m1\nsignin\n",
			calls:     []string{"signin"},
			entered:   []string{session.LocationLogs, session.LocationLogin},
		},
		{
			name:      "page went back to loading",
			locations: []string{session.LocationLogs, session.LocationLogs, session.LocationLogs},
			gating:    []session.Gating{session.Render, session.Placeholder, session.Render},
			input:     "take m1\n",
			entered:   []string{session.LocationLogs},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			ex := &fakeExec{locations: tt.locations, gating: tt.gating}

			runREPL(context.Background(), ex, rdr(tt.input))

			require.Equal(t, tt.calls, ex.calls)
			require.Equal(t, tt.entered, ex.entered)
			require.Contains(t, out.String(), "The page changed, command ignored.")
		})
	}
}
