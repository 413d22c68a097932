package mirror

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/client/session"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/netx"
)

// ErrNotAttached is returned by writes made while nobody is signed in.
var ErrNotAttached = errors.New("mirror is not attached")

type Mirror struct {
	feed     Feed
	writer   Writer
	blobs    Blobs
	notifier Notifier
	logger   logging.Logger

	http       netx.HTTPDoer
	now        func() time.Time
	retryDelay time.Duration

	// lifecycle serializes Attach and Detach.
	lifecycle sync.Mutex
	watchers  *watchers

	mu          sync.Mutex
	gen         uint64
	uid         string
	readiness   Readiness
	logsSynced  bool
	medications []models.Medication
	logs        []models.LogEntry
}

func New(feed Feed, writer Writer, blobs Blobs, notifier Notifier, logger logging.Logger) *Mirror {
	return &Mirror{
		feed:       feed,
		writer:     writer,
		blobs:      blobs,
		notifier:   notifier,
		logger:     logger.With("module", "mirror"),
		http:       http.DefaultClient,
		now:        time.Now,
		retryDelay: defaultRetryDelay,
	}
}

// Bind makes m follow store: a new uid re-attaches, sign-out detaches.
func (m *Mirror) Bind(store *session.Store) (unbind func()) {
	return store.Subscribe(func(p *models.Principal) {
		if p == nil {
			m.Detach()
			return
		}
		if p.UID != m.UID() {
			m.Attach(p.UID)
		}
	})
}

// Attach drops any previous owner's state and starts watching uid's
// medications and logs.
func (m *Mirror) Attach(uid string) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.detachLocked()

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.uid = uid
	m.readiness = Attaching
	m.mu.Unlock()

	m.logger.Info(context.Background(), "attaching", "user_id", uid)
	m.watchers = startWatchers(m.logger, m.retryDelay, map[string]func(context.Context) error{
		common.CollectionMedications: func(ctx context.Context) error {
			return m.feed.WatchMedications(ctx, func(list []models.Medication) { m.deliverMedications(gen, list) })
		},
		common.CollectionLogs: func(ctx context.Context) error {
			return m.feed.WatchLogs(ctx, func(list []models.LogEntry) { m.deliverLogs(gen, list) })
		},
	})
}

// Detach stops both watches and clears all state. No update lands after
// it returns.
func (m *Mirror) Detach() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.detachLocked()
}

func (m *Mirror) detachLocked() {
	m.mu.Lock()
	m.gen++
	m.uid = ""
	m.readiness = Idle
	m.logsSynced = false
	m.medications = nil
	m.logs = nil
	m.mu.Unlock()

	m.watchers.stop()
	m.watchers = nil
}

func (m *Mirror) deliverMedications(gen uint64, list []models.Medication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	for i := range list {
		list[i].OwnerID = m.uid
	}
	m.medications = list
	m.readiness = Synced
}

func (m *Mirror) deliverLogs(gen uint64, list []models.LogEntry) {
	slices.SortStableFunc(list, func(a, b models.LogEntry) int {
		return b.TakenAt.Compare(a.TakenAt)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	for i := range list {
		list[i].OwnerID = m.uid
	}
	m.logs = list
	m.logsSynced = true
}

// UID is the attached owner, or "".
func (m *Mirror) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uid
}

// Readiness reaches Synced with the first medications snapshot.
func (m *Mirror) Readiness() Readiness {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readiness
}

func (m *Mirror) LogsSynced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logsSynced
}

func (m *Mirror) Medications() []models.Medication {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.medications)
}

// Logs are ordered most recent first.
func (m *Mirror) Logs() []models.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.logs)
}

func (m *Mirror) Medication(id string) (models.Medication, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, med := range m.medications {
		if med.ID == id {
			return med, true
		}
	}
	return models.Medication{}, false
}

// TodaysMedications is derived from the current list on every call.
func (m *Mirror) TodaysMedications(today time.Time) []models.Medication {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Medication
	for _, med := range m.medications {
		if med.ActiveOn(today) {
			out = append(out, med)
		}
	}
	return out
}
