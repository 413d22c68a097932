package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
)

// defaultRetryDelay is how long a failed watch waits before reopening.
const defaultRetryDelay = 2 * time.Second

type Readiness int

const (
	Idle Readiness = iota
	Attaching
	Synced
)

func (r Readiness) String() string {
	switch r {
	case Attaching:
		return "attaching"
	case Synced:
		return "synced"
	default:
		return "idle"
	}
}

// watchers owns the goroutines of one attachment.
type watchers struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// start runs every watch in its own goroutine, reopening each one after
// delay until stop is called.
func startWatchers(logger logging.Logger, delay time.Duration, watches map[string]func(context.Context) error) *watchers {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watchers{cancel: cancel}
	for name, watch := range watches {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			keepWatching(ctx, logger, name, delay, watch)
		}()
	}
	return w
}

// stop cancels the watches and waits for them to return.
func (w *watchers) stop() {
	if w == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
}

func keepWatching(ctx context.Context, logger logging.Logger, name string, delay time.Duration, watch func(context.Context) error) {
	for {
		err := watch(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Warn(ctx, "watch ended, reopening", "collection", name, "error", err)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
