package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/logging"
)

// Reloader refreshes the principal from the identity provider and reports
// the result to the Store.
type Reloader interface {
	Reload(ctx context.Context) (*models.Principal, error)
}

// VerificationPoller reloads the principal every interval until its email
// is verified. It belongs to the verification page: Start on entry, Stop
// on exit.
type VerificationPoller struct {
	reloader Reloader
	interval time.Duration
	logger   logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewVerificationPoller(r Reloader, interval time.Duration, logger logging.Logger) *VerificationPoller {
	return &VerificationPoller{reloader: r, interval: interval, logger: logger.With("module", "verification-poller")}
}

// Start begins polling. A running poller is left alone.
func (p *VerificationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running() {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go func() {
		defer close(done)
		defer cancel()
		p.loop(ctx)
	}()
}

// Stop cancels polling and waits for the current tick to finish.
func (p *VerificationPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *VerificationPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running()
}

func (p *VerificationPoller) running() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *VerificationPoller) loop(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		principal, err := p.reloader.Reload(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn(ctx, "reload failed", "error", err)
			continue
		}
		if principal == nil || principal.Verified() {
			return
		}
	}
}
