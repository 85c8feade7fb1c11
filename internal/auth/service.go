package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"officine.org/internal/directory"
	"officine.org/internal/obs"
	"officine.org/internal/store"
)

const defaultSessionTTL = 24 * time.Hour

// Service is the authentication and authorization chokepoint. Every
// protected operation starts with ValidateSession or Authorize.
type Service struct {
	store      *store.Store
	now        func() time.Time
	sessionTTL time.Duration

	loginRate  rate.Limit
	loginBurst int
	limiterMu  sync.Mutex
	limiters   map[string]*rate.Limiter
}

// Session binds a fresh token to the authenticated account.
type Session struct {
	Token string         `json:"token"`
	User  directory.User `json:"user"`
}

// Option configures Service behavior.
type Option func(*Service)

// WithSessionTTL overrides the 24h session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLoginRate throttles login attempts per username to n per minute.
// Zero disables throttling.
func WithLoginRate(perMinute int) Option {
	return func(s *Service) {
		if perMinute > 0 {
			s.loginRate = rate.Limit(float64(perMinute) / 60.0)
			s.loginBurst = perMinute
		}
	}
}

// NewService constructs the gateway over the shared store.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		now:        time.Now,
		sessionTTL: defaultSessionTTL,
		limiters:   map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and issues a fresh session token valid for the
// configured TTL. Unknown username and wrong password fail identically so
// usernames cannot be enumerated.
func (s *Service) Login(username, password string) (Session, error) {
	if !s.allowAttempt(username) {
		obs.CountLogin("throttled")
		return Session{}, ErrThrottled
	}

	var (
		user Session
		hash string
	)
	err := s.store.Do(func(db *sql.DB) error {
		row := db.QueryRow(
			`SELECT id, username, full_name, role, active, password_hash, created_at, updated_at
			 FROM users WHERE username = ?`, username)
		var (
			role     string
			active   int
			createdS string
			updatedS string
		)
		err := row.Scan(&user.User.ID, &user.User.Username, &user.User.FullName,
			&role, &active, &hash, &createdS, &updatedS)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return fmt.Errorf("auth: look up account: %w", err)
		}
		user.User.Role = directory.Role(role)
		user.User.Active = active != 0
		if user.User.CreatedAt, err = store.ParseTime(createdS); err != nil {
			return err
		}
		if user.User.UpdatedAt, err = store.ParseTime(updatedS); err != nil {
			return err
		}

		if !user.User.Active {
			return ErrAccountDisabled
		}
		if err := VerifyPassword(hash, password); err != nil {
			return ErrInvalidCredentials
		}

		now := s.now()
		user.Token = uuid.NewString()
		_, err = db.Exec(
			`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			user.Token, user.User.ID,
			store.FormatTime(now), store.FormatTime(now.Add(s.sessionTTL)),
		)
		if err != nil {
			return fmt.Errorf("auth: create session: %w", err)
		}
		return nil
	})
	if err != nil {
		obs.CountLogin("denied")
		return Session{}, err
	}
	obs.CountLogin("ok")
	return user, nil
}

// ValidateSession resolves a token to its owning account. A token that is
// unknown, expired, or belongs to a deactivated account fails identically
// with ErrSessionInvalid. Read-only; expiry is computed lazily here, no
// background reaper exists.
func (s *Service) ValidateSession(token string) (directory.User, error) {
	var user directory.User
	err := s.store.Do(func(db *sql.DB) error {
		row := db.QueryRow(
			`SELECT u.id, u.username, u.full_name, u.role, u.active, u.created_at, u.updated_at
			 FROM sessions s JOIN users u ON s.user_id = u.id
			 WHERE s.token = ? AND s.expires_at > ? AND u.active = 1`,
			token, store.FormatTime(s.now()))
		var (
			role     string
			active   int
			createdS string
			updatedS string
		)
		err := row.Scan(&user.ID, &user.Username, &user.FullName, &role, &active, &createdS, &updatedS)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionInvalid
		}
		if err != nil {
			return fmt.Errorf("auth: look up session: %w", err)
		}
		user.Role = directory.Role(role)
		user.Active = active != 0
		if user.CreatedAt, err = store.ParseTime(createdS); err != nil {
			return err
		}
		user.UpdatedAt, err = store.ParseTime(updatedS)
		return err
	})
	if err != nil {
		return directory.User{}, err
	}
	return user, nil
}

// Logout deletes the session row. Idempotent: an absent token is not an
// error.
func (s *Service) Logout(token string) error {
	return s.store.Do(func(db *sql.DB) error {
		if _, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
			return fmt.Errorf("auth: delete session: %w", err)
		}
		return nil
	})
}

// Authorize composes ValidateSession with a role-membership check. The
// returned error names the acceptable roles to aid operator diagnosis.
func (s *Service) Authorize(token string, allowed ...directory.Role) (directory.User, error) {
	user, err := s.ValidateSession(token)
	if err != nil {
		return directory.User{}, err
	}
	for _, role := range allowed {
		if user.Role == role {
			return user, nil
		}
	}
	return directory.User{}, fmt.Errorf("%w: requires role %s", ErrForbidden, joinRoles(allowed))
}

func (s *Service) allowAttempt(username string) bool {
	if s.loginRate == 0 {
		return true
	}
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	lim, ok := s.limiters[username]
	if !ok {
		lim = rate.NewLimiter(s.loginRate, s.loginBurst)
		s.limiters[username] = lim
	}
	return lim.Allow()
}

func joinRoles(roles []directory.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}
