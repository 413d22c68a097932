// Package changefeed fans PostgreSQL NOTIFY events out to live watchers.
//
// Triggers on the document tables publish "<owner uuid>:<collection>" on the
// medtrack_changes channel. Subscribers get a coalesced signal per change and
// are expected to re-query the whole collection.
package changefeed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const Channel = "medtrack_changes"

// Change identifies the collection that changed.
type Change struct {
	OwnerID    string
	Collection string
}

func ParsePayload(payload string) (Change, error) {
	owner, coll, ok := strings.Cut(payload, ":")
	if !ok || owner == "" || coll == "" {
		return Change{}, fmt.Errorf("malformed change payload %q", payload)
	}
	return Change{OwnerID: owner, Collection: coll}, nil
}

type notificationConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, dsn string) (notificationConn, error) {
	return pgx.Connect(ctx, dsn)
}

type Hub struct {
	mu     sync.Mutex
	subs   map[Change]map[chan struct{}]struct{}
	logger logging.Logger

	reconnectDelay time.Duration
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		subs:           make(map[Change]map[chan struct{}]struct{}),
		logger:         logger,
		reconnectDelay: 2 * time.Second,
	}
}

// Subscribe returns a channel signalled after every change of the owner's
// collection, and a func that releases it.
func (h *Hub) Subscribe(ownerID, collection string) (<-chan struct{}, func()) {
	key := Change{OwnerID: ownerID, Collection: collection}
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan struct{}]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
		})
	}
}

// Publish signals subscribers of c without blocking. A subscriber that has
// not consumed its previous signal keeps a single pending one.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[c] {
		signal(ch)
	}
}

func (h *Hub) publishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for ch := range set {
			signal(ch)
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Listen holds a dedicated connection LISTENing on Channel until ctx ends.
// A lost connection is re-established; notifications may have been missed
// meanwhile, so every subscriber is signalled after reconnecting.
func (h *Hub) Listen(ctx context.Context, dsn string) error {
	first := true
	for {
		err := h.listenOnce(ctx, dsn, !first)
		if ctx.Err() != nil {
			return nil
		}
		first = false
		h.logger.Warn(ctx, "change feed connection lost", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(h.reconnectDelay):
		}
	}
}

func (h *Hub) listenOnce(ctx context.Context, dsn string, resync bool) error {
	conn, err := connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	h.logger.Info(ctx, "change feed listening", "channel", Channel)
	if resync {
		h.publishAll()
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}
		c, err := ParsePayload(n.Payload)
		if err != nil {
			h.logger.Warn(ctx, "ignoring notification", "error", err)
			continue
		}
		h.Publish(c)
	}
}
