package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/storage"
)

// Authenticator verifies credentials against the account directory.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Account, error)
}

// Store is the single source of truth for who is acting in one browser
// profile. It is bound to that profile's storage for the lifetime of a
// request: Init loads, Dispose releases.
type Store struct {
	kv     storage.KV
	sink   *audit.Sink
	auth   Authenticator
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	session     Session
	initialized bool
	disposed    bool
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for discarded records.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

var identifierValidator = validator.New()

// NewStore constructs a Store over kv, writing audit entries to sink.
func NewStore(kv storage.KV, sink *audit.Sink, authenticator Authenticator, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		sink:   sink,
		auth:   authenticator,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted session. A record that does not decode or breaks
// the session invariant is deleted and the store starts unauthenticated.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrStoreClosed
	}
	s.session = Session{}
	s.initialized = true

	raw := s.kv.Get(storage.KeySession)
	if raw == "" {
		return nil
	}
	var stored Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || !stored.Valid() {
		s.logger.Warn("discarding unreadable session record", slog.Any("error", err))
		s.kv.Delete(storage.KeySession)
		return nil
	}
	s.session = stored
	return nil
}

// Dispose releases the store. Later mutations fail with ErrStoreClosed.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

// Initialized reports whether Init has completed.
func (s *Store) Initialized() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	if s == nil {
		return Session{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if s.session.User != nil {
		user := *s.session.User
		out.User = &user
	}
	return out
}

// User returns the acting user. A nil store has none.
func (s *Store) User() (User, bool) {
	if s == nil {
		return User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return User{}, false
	}
	return *s.session.User, true
}

// Authenticated reports whether a user is signed in.
func (s *Store) Authenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

// HasRole reports whether the signed-in user holds one of roles.
func (s *Store) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return false
	}
	return s.session.User.Role.In(roles...)
}

// Sink is the audit log the store writes to. A nil store has none.
func (s *Store) Sink() *audit.Sink {
	if s == nil {
		return nil
	}
	return s.sink
}

// Actor identifies the current user for audit entries.
func (s *Store) Actor() audit.Actor {
	user, ok := s.User()
	if !ok {
		return audit.Actor{}
	}
	return audit.Actor{Email: user.Email, Role: string(user.Role)}
}

// Record appends an audit entry attributed to the current user. It records
// nothing when no one is signed in.
func (s *Store) Record(ctx context.Context, action, entityType, entityID, details string, before, after map[string]any) error {
	if s == nil || s.sink == nil {
		return nil
	}
	_, err := s.sink.Record(ctx, s.Actor(), action, entityType, entityID, details, before, after)
	return err
}

// SignIn verifies creds and makes the matching account the acting user. The
// role always comes from the directory. A user already signed in is signed
// out first, so the log shows the hand-off.
func (s *Store) SignIn(ctx context.Context, creds Credentials, displayName string) (User, error) {
	if err := s.checkOpen(); err != nil {
		return User{}, err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Identifier))
	if err := identifierValidator.Var(email, "required,email"); err != nil {
		return User{}, ErrInvalidIdentifier
	}
	if s.auth == nil {
		return User{}, ErrInvalidCredentials
	}
	account, err := s.auth.Authenticate(ctx, email, creds.Secret)
	if err != nil {
		return User{}, err
	}

	if err := s.recordLogout(ctx); err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	user := User{
		ID:    shared.NewID("USR", now),
		Name:  DisplayName(email, displayName, account.Name),
		Email: email,
		Role:  account.Role,
	}
	next := Session{IsAuthenticated: true, User: &user, LoginTime: &now}

	s.mu.Lock()
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return User{}, err
	}
	s.mu.Unlock()

	details := fmt.Sprintf("Usuario %s inició sesión como %s", user.Email, user.Role)
	if err := s.Record(ctx, audit.ActionLoginSuccess, "session", user.ID, details, nil, nil); err != nil {
		return user, fmt.Errorf("auth: record sign-in: %w", err)
	}
	return user, nil
}

// SignOut records the outgoing user, then clears the session and its
// persisted record.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.recordLogout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.kv.Delete(storage.KeySession)
	return nil
}

func (s *Store) recordLogout(ctx context.Context) error {
	user, ok := s.User()
	if !ok {
		return nil
	}
	details := fmt.Sprintf("Usuario %s cerró sesión", user.Email)
	if err := s.Record(ctx, audit.ActionLogout, "session", user.ID, details, nil, nil); err != nil {
		return fmt.Errorf("auth: record sign-out: %w", err)
	}
	return nil
}

// UpdateUser merges patch into the acting user and records before/after
// snapshots. Without a user it does nothing.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) (User, error) {
	if err := s.checkOpen(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	if s.session.User == nil {
		s.mu.Unlock()
		return User{}, nil
	}
	before := *s.session.User
	after := before
	if patch.Name != nil {
		after.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if err := identifierValidator.Var(email, "required,email"); err != nil {
			s.mu.Unlock()
			return before, ErrInvalidIdentifier
		}
		after.Email = email
	}
	if patch.Avatar != nil {
		after.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	next := s.session
	next.User = &after
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return before, err
	}
	s.mu.Unlock()

	if err := s.Record(ctx, audit.ActionProfileUpdated, "user", after.ID, "Perfil de usuario actualizado", before.Snapshot(), after.Snapshot()); err != nil {
		return after, fmt.Errorf("auth: record profile update: %w", err)
	}
	return after, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return ErrStoreClosed
	}
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) persistLocked(next Session) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("auth: encode session: %w", err)
	}
	s.kv.Set(storage.KeySession, string(data))
	s.session = next
	return nil
}
