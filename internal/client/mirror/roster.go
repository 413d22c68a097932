package mirror

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/client/session"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
)

// Roster mirrors the owner's guardians.
type Roster struct {
	feed       GuardianFeed
	writer     GuardianWriter
	notifier   Notifier
	logger     logging.Logger
	retryDelay time.Duration

	lifecycle sync.Mutex
	watchers  *watchers

	mu        sync.Mutex
	gen       uint64
	uid       string
	synced    bool
	guardians []models.Guardian
}

func NewRoster(feed GuardianFeed, writer GuardianWriter, notifier Notifier, logger logging.Logger) *Roster {
	return &Roster{
		feed:       feed,
		writer:     writer,
		notifier:   notifier,
		logger:     logger.With("module", "roster"),
		retryDelay: defaultRetryDelay,
	}
}

func (r *Roster) Bind(store *session.Store) (unbind func()) {
	return store.Subscribe(func(p *models.Principal) {
		if p == nil {
			r.Detach()
			return
		}
		if p.UID != r.UID() {
			r.Attach(p.UID)
		}
	})
}

func (r *Roster) Attach(uid string) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.detachLocked()

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.uid = uid
	r.mu.Unlock()

	r.watchers = startWatchers(r.logger, r.retryDelay, map[string]func(context.Context) error{
		common.CollectionGuardians: func(ctx context.Context) error {
			return r.feed.WatchGuardians(ctx, func(list []models.Guardian) { r.deliver(gen, list) })
		},
	})
}

func (r *Roster) Detach() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.detachLocked()
}

func (r *Roster) detachLocked() {
	r.mu.Lock()
	r.gen++
	r.uid = ""
	r.synced = false
	r.guardians = nil
	r.mu.Unlock()

	r.watchers.stop()
	r.watchers = nil
}

func (r *Roster) deliver(gen uint64, list []models.Guardian) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	for i := range list {
		list[i].OwnerID = r.uid
	}
	r.guardians = list
	r.synced = true
}

func (r *Roster) UID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uid
}

func (r *Roster) Synced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.synced
}

func (r *Roster) Guardians() []models.Guardian {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.guardians)
}

// AddGuardian invites email as a pending guardian. The server mails the
// invitation link.
func (r *Roster) AddGuardian(ctx context.Context, email string, perms []models.Permission) (*models.Guardian, error) {
	email = strings.TrimSpace(email)
	if r.UID() == "" {
		r.notifier.Notify(MsgAddGuardianFailed)
		return nil, ErrNotAttached
	}
	if email == "" {
		r.notifier.Notify(MsgAddGuardianFailed)
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if len(perms) == 0 {
		perms = []models.Permission{models.PermissionViewLogs}
	}

	g, err := r.writer.AddGuardian(ctx, email, perms)
	if err != nil {
		r.logger.Error(ctx, "add guardian failed", "error", err)
		r.notifier.Notify(MsgAddGuardianFailed)
		return nil, fmt.Errorf("add guardian: %w", err)
	}
	return g, nil
}
