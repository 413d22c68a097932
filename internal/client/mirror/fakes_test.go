package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/stretchr/testify/require"
)

// fakeFeed keeps the deliver callback of every opened watch. A watch
// blocks until cancelled unless failures are queued for it.
type fakeFeed struct {
	mu        sync.Mutex
	meds      []func([]models.Medication)
	logs      []func([]models.LogEntry)
	guardians []func([]models.Guardian)
	failMeds  int
}

func (f *fakeFeed) WatchMedications(ctx context.Context, deliver func([]models.Medication)) error {
	f.mu.Lock()
	f.meds = append(f.meds, deliver)
	fail := f.failMeds > 0
	if fail {
		f.failMeds--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("stream reset")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) WatchLogs(ctx context.Context, deliver func([]models.LogEntry)) error {
	f.mu.Lock()
	f.logs = append(f.logs, deliver)
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) WatchGuardians(ctx context.Context, deliver func([]models.Guardian)) error {
	f.mu.Lock()
	f.guardians = append(f.guardians, deliver)
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) opens() (meds, logs, guardians int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.meds), len(f.logs), len(f.guardians)
}

// waitOpen blocks until at least n medication and log watches are open.
func (f *fakeFeed) waitOpen(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		m, l, _ := f.opens()
		return m >= n && l >= n
	}, 2*time.Second, time.Millisecond)
}

func (f *fakeFeed) pushMeds(list ...models.Medication) {
	f.mu.Lock()
	deliver := f.meds[len(f.meds)-1]
	f.mu.Unlock()
	deliver(list)
}

func (f *fakeFeed) pushLogs(list ...models.LogEntry) {
	f.mu.Lock()
	deliver := f.logs[len(f.logs)-1]
	f.mu.Unlock()
	deliver(list)
}

// calls records the order of remote side effects across fakes.
type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, s)
}

func (c *calls) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

type fakeWriter struct {
	calls *calls
	err   error

	added   []models.Medication
	updated []models.Medication
	logged  []models.LogEntry
}

func (w *fakeWriter) AddMedication(_ context.Context, m *models.Medication) (*models.Medication, error) {
	w.calls.add("add:" + m.Name)
	if w.err != nil {
		return nil, w.err
	}
	w.added = append(w.added, *m)
	out := *m
	out.ID = "m-new"
	return &out, nil
}

func (w *fakeWriter) UpdateMedication(_ context.Context, m *models.Medication) error {
	w.calls.add("update:" + m.ID)
	if w.err != nil {
		return w.err
	}
	w.updated = append(w.updated, *m)
	return nil
}

func (w *fakeWriter) DeleteMedication(_ context.Context, id string) error {
	w.calls.add("delete:" + id)
	return w.err
}

func (w *fakeWriter) AddLog(_ context.Context, l *models.LogEntry) error {
	w.calls.add("log:" + l.MedicationID)
	if w.err != nil {
		return w.err
	}
	w.logged = append(w.logged, *l)
	return nil
}

type fakeBlobs struct {
	calls     *calls
	uploadURL string
	createErr error
	deleteErr error
}

func (b *fakeBlobs) CreateUploadURL(_ context.Context, key, _ string) (string, string, error) {
	b.calls.add("presign:" + key)
	if b.createErr != nil {
		return "", "", b.createErr
	}
	return b.uploadURL, "https://cdn.example/" + key, nil
}

func (b *fakeBlobs) DeleteObject(_ context.Context, key string) error {
	b.calls.add("delete-object:" + key)
	return b.deleteErr
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}
