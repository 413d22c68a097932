package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/config"
	"github.com/dmitrijs2005/medtrack/internal/server/federation"
	mailer "github.com/dmitrijs2005/medtrack/internal/server/mail"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memUsers is an in-memory users.Repository.
type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if u.Email != "" && e.Email == u.Email || u.PhoneNumber != "" && e.PhoneNumber == u.PhoneNumber {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	m.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memUsers) find(pred func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if pred(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return email != "" && u.Email == email })
}

func (m *memUsers) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.PhoneNumber == phone })
}

func (m *memUsers) GetByProviderSubject(ctx context.Context, provider, subject string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Provider == provider && u.ProviderSubject == subject })
}

func (m *memUsers) update(id string, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) MarkEmailVerified(ctx context.Context, id string) error {
	return m.update(id, func(u *models.User) { u.EmailVerified = true })
}

func (m *memUsers) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash; u.FailedSignIns = 0; u.LastFailedAt = nil })
}

func (m *memUsers) UpdateProfile(ctx context.Context, id, displayName, photoURL string) error {
	return m.update(id, func(u *models.User) { u.DisplayName = displayName; u.PhotoURL = photoURL })
}

func (m *memUsers) RecordFailedSignIn(ctx context.Context, id string, at time.Time, window time.Duration) (int, error) {
	var n int
	err := m.update(id, func(u *models.User) {
		if u.LastFailedAt == nil || u.LastFailedAt.Before(at.Add(-window)) {
			u.FailedSignIns = 1
		} else {
			u.FailedSignIns++
		}
		u.LastFailedAt = &at
		n = u.FailedSignIns
	})
	return n, err
}

func (m *memUsers) ResetFailedSignIns(ctx context.Context, id string) error {
	return m.update(id, func(u *models.User) { u.FailedSignIns = 0; u.LastFailedAt = nil })
}

type memRefresh struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func (m *memRefresh) Create(ctx context.Context, userID, hash string, signedInAt time.Time, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = models.RefreshToken{UserID: userID, TokenHash: hash, SignedInAt: signedInAt, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memRefresh) Find(ctx context.Context, hash string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (m *memRefresh) Delete(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, hash)
	return nil
}

func (m *memRefresh) DeleteForUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
		}
	}
	return nil
}

type memActions struct {
	mu     sync.Mutex
	tokens map[string]*models.ActionToken
}

func (m *memActions) Create(ctx context.Context, t *models.ActionToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.tokens[t.TokenHash] = &c
	return nil
}

func (m *memActions) Consume(ctx context.Context, hash, purpose string, now time.Time) (*models.ActionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok || t.Purpose != purpose || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	t.UsedAt = &now
	c := *t
	return &c, nil
}

type memChallenges struct {
	mu        sync.Mutex
	phone     map[string]*models.PhoneChallenge
	federated map[string]*models.FederatedState
}

func (m *memChallenges) CreatePhone(ctx context.Context, c *models.PhoneChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.phone[c.ID] = &cp
	return nil
}

func (m *memChallenges) GetPhone(ctx context.Context, id string) (*models.PhoneChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.phone[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memChallenges) IncrementAttempts(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.phone[id]; ok {
		c.Attempts++
	}
	return nil
}

func (m *memChallenges) DeletePhone(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.phone, id)
	return nil
}

func (m *memChallenges) CreateFederated(ctx context.Context, s *models.FederatedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.federated[s.State] = &cp
	return nil
}

func (m *memChallenges) GetFederated(ctx context.Context, state string) (*models.FederatedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.federated[state]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memChallenges) CompleteFederated(ctx context.Context, state, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.federated[state]; ok {
		s.UserID = userID
		s.Completed = true
	}
	return nil
}

func (m *memChallenges) DeleteFederated(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.federated, state)
	return nil
}

func (m *memChallenges) DeleteExpired(ctx context.Context, now time.Time) error { return nil }

// memRepoManager vends the in-memory repositories regardless of DBTX.
type memRepoManager struct {
	repomanager.RepositoryManager
	users      *memUsers
	refresh    *memRefresh
	actions    *memActions
	challenges *memChallenges
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		users:      &memUsers{byID: map[string]*models.User{}},
		refresh:    &memRefresh{tokens: map[string]models.RefreshToken{}},
		actions:    &memActions{tokens: map[string]*models.ActionToken{}},
		challenges: &memChallenges{phone: map[string]*models.PhoneChallenge{}, federated: map[string]*models.FederatedState{}},
	}
}

func (m *memRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *memRepoManager) ActionTokens(dbx.DBTX) actiontokens.Repository   { return m.actions }
func (m *memRepoManager) PhoneChallenges(dbx.DBTX) challenges.PhoneRepository {
	return m.challenges
}
func (m *memRepoManager) FederatedStates(dbx.DBTX) challenges.FederatedRepository {
	return m.challenges
}

type outbox struct {
	mu   sync.Mutex
	mail []mailer.Message
	sms  map[string]string
}

func (o *outbox) Send(ctx context.Context, m mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mail = append(o.mail, m)
	return nil
}

func (o *outbox) SendOTP(ctx context.Context, phone, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sms == nil {
		o.sms = map[string]string{}
	}
	o.sms[phone] = code
	return nil
}

func (o *outbox) last() mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mail[len(o.mail)-1]
}

type fakeFederation struct {
	identity *federation.Identity
	err      error
	gotNonce string
}

func (f *fakeFederation) AuthCodeURL(state, nonce, verifier string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (f *fakeFederation) Exchange(ctx context.Context, code, verifier, nonce string) (*federation.Identity, error) {
	f.gotNonce = nonce
	return f.identity, f.err
}

type identityFixture struct {
	svc *IdentityService
	rm  *memRepoManager
	out *outbox
	db  *sql.DB
	mk  sqlmock.Sqlmock
}

func newIdentityFixture(t *testing.T, fed federation.Provider) *identityFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"

	rm := newMemRepoManager()
	out := &outbox{}
	svc := NewIdentityService(db, rm, cfg, out, out, fed, logging.Nop{})
	return &identityFixture{svc: svc, rm: rm, out: out, db: db, mk: mock}
}
