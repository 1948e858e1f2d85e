package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ErrWeakPassword rejects passwords shorter than MinPasswordLength.
var ErrWeakPassword = fmt.Errorf("credential: password must be at least %d characters", MinPasswordLength)

// Users is the user store seen by the flow.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	HashPassword(password string) (string, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
}

// Notifier delivers verification codes.
type Notifier interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogNotifier writes codes to the log. Used in development, where no mail is sent.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) SendCode(_ context.Context, email, code string) error {
	n.Log.Info().Str("email", email).Str("code", code).Msg("verification code")
	return nil
}

// IdleTTL is how long a flow survives without activity before it is dropped.
const IdleTTL = 2 * CodeTTL

type entry struct {
	flow Flow
	seen time.Time
}

// Manager keeps flows in memory. A flow is forgotten on completion or once it has been
// idle for IdleTTL.
type Manager struct {
	users    Users
	notifier Notifier
	now      func() time.Time
	cost     int
	log      zerolog.Logger

	mu    sync.Mutex
	flows map[string]entry
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithLogger(log zerolog.Logger) Option { return func(m *Manager) { m.log = log } }

// WithBcryptCost sets the cost used to hash codes.
func WithBcryptCost(cost int) Option { return func(m *Manager) { m.cost = cost } }

func NewManager(users Users, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		users:    users,
		notifier: notifier,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
		log:      zerolog.Nop(),
		flows:    make(map[string]entry),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start opens a flow and submits email as its identity.
func (m *Manager) Start(ctx context.Context, email string) (Flow, error) {
	f := NewFlow(uuid.NewString())
	m.mu.Lock()
	m.sweep(m.now())
	m.flows[f.Token] = entry{flow: f, seen: m.now()}
	m.mu.Unlock()
	return m.Identify(ctx, f.Token, email)
}

// Identify submits the identity of a flow in collecting_identity and sends a fresh code.
// Unknown emails move the flow forward as well so callers cannot probe for accounts.
func (m *Manager) Identify(ctx context.Context, token, email string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.lookup(token)
	if !ok {
		return Flow{}, ErrFlowNotFound
	}
	if f.State != StateCollectingIdentity {
		return f, ErrInvalidTransition
	}

	email = strings.ToLower(strings.TrimSpace(email))
	var userID string
	u, err := m.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		userID = u.ID
	case !errors.Is(err, store.ErrNotFound):
		return f, err
	}

	code, err := generateCode()
	if err != nil {
		return f, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), m.cost)
	if err != nil {
		return f, err
	}
	next, err := f.Identify(email, userID, hash, m.now())
	if err != nil {
		return f, err
	}
	if userID != "" {
		if err := m.notifier.SendCode(ctx, email, code); err != nil {
			return f, fmt.Errorf("credential: send code: %w", err)
		}
	}
	m.store(next)
	m.log.Info().Str("flow", token).Bool("known", userID != "").Msg("credential flow identified")
	return next, nil
}

// Verify checks the code of a flow.
func (m *Manager) Verify(_ context.Context, token, code string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.lookup(token)
	if !ok {
		return Flow{}, ErrFlowNotFound
	}
	next, err := f.Verify(strings.TrimSpace(code), m.now())
	if !errors.Is(err, ErrInvalidTransition) {
		m.store(next)
	}
	if err != nil {
		m.log.Warn().Str("flow", token).Str("state", string(next.State)).Err(err).Msg("credential verification failed")
	}
	return next, err
}

// Complete stores the new password of a verified flow and forgets the flow.
func (m *Manager) Complete(ctx context.Context, token, password string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.lookup(token)
	if !ok {
		return Flow{}, ErrFlowNotFound
	}
	if f.State != StateSettingCredential {
		return f, ErrInvalidTransition
	}
	if len(password) < MinPasswordLength {
		return f, ErrWeakPassword
	}
	hash, err := m.users.HashPassword(password)
	if err != nil {
		return f, err
	}
	if err := m.users.SetPasswordHash(ctx, f.UserID(), hash); err != nil {
		return f, err
	}
	next, err := f.SetCredential()
	if err != nil {
		return f, err
	}
	delete(m.flows, token)
	m.log.Info().Str("flow", token).Str("user_id", f.UserID()).Msg("credential set")
	return next, nil
}

// Get returns a flow by token.
func (m *Manager) Get(token string) (Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(token)
}

// Len returns the number of live flows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(m.now())
	return len(m.flows)
}

// lookup returns the flow for token unless it went idle. Callers hold mu.
func (m *Manager) lookup(token string) (Flow, bool) {
	e, ok := m.flows[token]
	if !ok {
		return Flow{}, false
	}
	if m.now().Sub(e.seen) >= IdleTTL {
		delete(m.flows, token)
		return Flow{}, false
	}
	return e.flow, true
}

func (m *Manager) store(f Flow) {
	m.flows[f.Token] = entry{flow: f, seen: m.now()}
}

func (m *Manager) sweep(now time.Time) {
	for token, e := range m.flows {
		if now.Sub(e.seen) >= IdleTTL {
			delete(m.flows, token)
		}
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("credential: generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
