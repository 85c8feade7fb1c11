package audit

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"officine.org/internal/obs"
	"officine.org/internal/store"
)

const defaultPageSize = 100

// Entry is one append-only action record. Username is a denormalized
// snapshot taken at write time so history stays readable after the account
// is renamed or deactivated.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Details    string    `json:"details,omitempty"`
}

// Filter is a set of independently optional predicates, AND-combined. A zero
// field means the predicate is not applied. From and To are inclusive
// timestamp bounds. Limit defaults to the configured page size, Offset to 0.
type Filter struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Service is the append-only audit trail over the shared store.
type Service struct {
	store    *store.Store
	now      func() time.Time
	pageSize int
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

// WithPageSize overrides the default query limit.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewService constructs the audit trail.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one action, best effort. A failure to write an audit row
// must never fail the operation it describes, so errors are logged and
// counted, not returned. The timestamp is stamped here at insert time.
func (s *Service) Append(e Entry) {
	if err := s.append(e); err != nil {
		obs.CountAuditWrite("failed")
		obs.LogEvent("audit_write_failed", map[string]any{
			"action": e.Action,
			"error":  err.Error(),
		})
		return
	}
	obs.CountAuditWrite("ok")
}

// append holds the critical section no longer than the single insert.
func (s *Service) append(e Entry) error {
	return s.store.Do(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO audit_log (timestamp, user_id, username, action, entity_type, entity_id, details)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			store.FormatTime(s.now()),
			nullable(e.UserID), nullable(e.Username), e.Action,
			nullable(e.EntityType), nullable(e.EntityID), nullable(e.Details),
		)
		if err != nil {
			return fmt.Errorf("audit: append: %w", err)
		}
		return nil
	})
}

// Query returns entries matching the filter, newest first, paginated after
// ordering. Each active predicate contributes exactly one parameterized
// clause; values never reach the statement text.
func (s *Service) Query(f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query := applyPredicates(
		sq.Select("id", "timestamp", "user_id", "username", "action", "entity_type", "entity_id", "details").
			From("audit_log"), f).
		OrderBy("timestamp DESC, id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("audit: build query: %w", err)
	}

	var entries []Entry
	err = s.store.Do(func(db *sql.DB) error {
		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return fmt.Errorf("audit: query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				e          Entry
				ts         string
				userID     sql.NullString
				username   sql.NullString
				entityType sql.NullString
				entityID   sql.NullString
				details    sql.NullString
			)
			if err := rows.Scan(&e.ID, &ts, &userID, &username, &e.Action, &entityType, &entityID, &details); err != nil {
				return fmt.Errorf("audit: scan: %w", err)
			}
			if e.Timestamp, err = store.ParseTime(ts); err != nil {
				return err
			}
			e.UserID = userID.String
			e.Username = username.String
			e.EntityType = entityType.String
			e.EntityID = entityID.String
			e.Details = details.String
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the total number of entries matching the filter, with the
// same predicate semantics as Query and no ordering or pagination. Used for
// pagination totals.
func (s *Service) Count(f Filter) (int, error) {
	sqlStr, args, err := applyPredicates(sq.Select("COUNT(*)").From("audit_log"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("audit: build count: %w", err)
	}
	var count int
	err = s.store.Do(func(db *sql.DB) error {
		if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
			return fmt.Errorf("audit: count: %w", err)
		}
		return nil
	})
	return count, err
}

func applyPredicates(query sq.SelectBuilder, f Filter) sq.SelectBuilder {
	if f.UserID != "" {
		query = query.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		query = query.Where(sq.Eq{"action": f.Action})
	}
	if f.EntityType != "" {
		query = query.Where(sq.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID != "" {
		query = query.Where(sq.Eq{"entity_id": f.EntityID})
	}
	if f.From != nil {
		query = query.Where(sq.GtOrEq{"timestamp": store.FormatTime(*f.From)})
	}
	if f.To != nil {
		query = query.Where(sq.LtOrEq{"timestamp": store.FormatTime(*f.To)})
	}
	return query
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
