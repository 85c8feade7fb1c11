package directory

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"officine.org/internal/ids"
	"officine.org/internal/store"
)

// Hasher turns a plaintext password into its stored hash. The hashing
// primitive is pluggable; auth provides the bcrypt implementation.
type Hasher func(password string) (string, error)

// Service manages user accounts over the shared store.
type Service struct {
	store *store.Store
	hash  Hasher
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a user directory backed by st, hashing passwords
// with hash.
func NewService(st *store.Store, hash Hasher, opts ...Option) *Service {
	s := &Service{store: st, hash: hash, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const userColumns = `id, username, full_name, role, active, created_at, updated_at`

// Create inserts a new active account. The caller is responsible for the
// admin-role check.
func (s *Service) Create(req CreateRequest) (User, error) {
	username, err := ValidateUsername(req.Username)
	if err != nil {
		return User{}, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return User{}, err
	}
	if !req.Role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return User{}, fmt.Errorf("directory: hash password: %w", err)
	}

	user := User{
		ID:        ids.New(),
		Username:  username,
		FullName:  strings.TrimSpace(req.FullName),
		Role:      req.Role,
		Active:    true,
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}
	err = s.store.Do(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO users (id, username, full_name, role, password_hash, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
			user.ID, user.Username, user.FullName, string(user.Role), hash,
			store.FormatTime(user.CreatedAt), store.FormatTime(user.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateUsername
			}
			return fmt.Errorf("directory: create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Update patches only the fields present in upd; absent fields are untouched.
func (s *Service) Update(id string, upd Update) error {
	if upd.Role != nil && !upd.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *upd.Role)
	}
	return s.store.Do(func(db *sql.DB) error {
		now := store.FormatTime(s.now())
		if upd.FullName != nil {
			if err := execUpdate(db, `UPDATE users SET full_name = ?, updated_at = ? WHERE id = ?`, *upd.FullName, now, id); err != nil {
				return err
			}
		}
		if upd.Role != nil {
			if err := execUpdate(db, `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, string(*upd.Role), now, id); err != nil {
				return err
			}
		}
		if upd.Active != nil {
			if err := execUpdate(db, `UPDATE users SET active = ?, updated_at = ? WHERE id = ?`, boolToInt(*upd.Active), now, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ChangePassword re-hashes and overwrites the credential, and revokes every
// outstanding session of that user so stolen tokens die with the old
// password.
func (s *Service) ChangePassword(id, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return fmt.Errorf("directory: hash password: %w", err)
	}
	return s.store.Do(func(db *sql.DB) error {
		if err := execUpdate(db, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, store.FormatTime(s.now()), id); err != nil {
			return err
		}
		if _, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("directory: revoke sessions: %w", err)
		}
		return nil
	})
}

// Deactivate sets active=false and deletes every session of the user in the
// same critical section, so a deactivated account cannot keep acting on an
// already-issued token. Accounts are never hard-deleted; inspections and
// audit entries keep referencing them.
func (s *Service) Deactivate(id string) error {
	return s.store.Do(func(db *sql.DB) error {
		if _, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("directory: delete sessions: %w", err)
		}
		return execUpdate(db, `UPDATE users SET active = 0, updated_at = ? WHERE id = ?`, store.FormatTime(s.now()), id)
	})
}

// Get returns one account by id.
func (s *Service) Get(id string) (User, error) {
	var user User
	err := s.store.Do(func(db *sql.DB) error {
		row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
		u, err := scanUser(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	return user, err
}

// List returns all accounts ordered by creation time, inactive ones included.
func (s *Service) List() ([]User, error) {
	var users []User
	err := s.store.Do(func(db *sql.DB) error {
		rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at`)
		if err != nil {
			return fmt.Errorf("directory: list users: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		role     string
		active   int
		createdS string
		updatedS string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &role, &active, &createdS, &updatedS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("directory: scan user: %w", err)
	}
	u.Role = Role(role)
	u.Active = active != 0
	var err error
	if u.CreatedAt, err = store.ParseTime(createdS); err != nil {
		return User{}, err
	}
	if u.UpdatedAt, err = store.ParseTime(updatedS); err != nil {
		return User{}, err
	}
	return u, nil
}

func execUpdate(db *sql.DB, query string, args ...any) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("directory: update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
