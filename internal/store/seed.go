package store

import (
	"database/sql"
	"fmt"
	"time"

	"officine.org/internal/ids"
)

// EnsureAdmin seeds one administrative account with the given credentials if
// no user with that username exists yet. The password hash is computed by the
// caller; the store never sees plaintext credentials. Returns true when the
// account was created.
func (s *Store) EnsureAdmin(username, fullName, passwordHash string) (bool, error) {
	var created bool
	err := s.Do(func(db *sql.DB) error {
		var exists bool
		err := db.QueryRow(`SELECT COUNT(*) > 0 FROM users WHERE username = ?`, username).Scan(&exists)
		if err != nil {
			return fmt.Errorf("store: check admin: %w", err)
		}
		if exists {
			return nil
		}
		now := FormatTime(time.Now())
		_, err = db.Exec(
			`INSERT INTO users (id, username, full_name, role, password_hash, active, created_at, updated_at)
			 VALUES (?, ?, ?, 'admin', ?, 1, ?, ?)`,
			ids.New(), username, fullName, passwordHash, now, now,
		)
		if err != nil {
			return fmt.Errorf("store: seed admin: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}
