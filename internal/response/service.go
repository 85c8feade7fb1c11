package response

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"officine.org/internal/store"
)

// ErrInspectionNotFound indicates the parent inspection does not exist.
var ErrInspectionNotFound = errors.New("response: inspection not found")

// Response is one answered (or cleared) checklist criterion. Conformity is
// tri-state: nil means not yet answered, true conforme, false non-conforme.
type Response struct {
	CriterionID int       `json:"criterion_id"`
	Conforme    *bool     `json:"conforme"`
	Observation string    `json:"observation"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Progress are the derived per-inspection counts. Total counts rows ever
// written, not the catalog size; criteria nobody touched do not appear.
type Progress struct {
	Total       int `json:"total"`
	Answered    int `json:"answered"`
	Conforme    int `json:"conforme"`
	NonConforme int `json:"non_conforme"`
}

// Service upserts answers and derives progress over the shared store.
type Service struct {
	store *store.Store
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

// NewService constructs the response ledger.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save upserts the (inspection, criterion) row: insert if absent, overwrite
// conformity, observation, editor and timestamp if present. At most one row
// per pair ever exists. Side effect, in the same critical section: a parent
// inspection still in draft advances to in_progress, the one automatic
// transition in the whole lifecycle. Any other status is left untouched.
// An absent editor is stored as NULL so the users foreign key stays
// satisfied.
func (s *Service) Save(inspectionID string, criterionID int, conforme *bool, observation, editorID string) error {
	return s.store.Do(func(db *sql.DB) error {
		var one int
		err := db.QueryRow(`SELECT 1 FROM inspections WHERE id = ?`, inspectionID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInspectionNotFound
		}
		if err != nil {
			return fmt.Errorf("response: check inspection: %w", err)
		}

		now := store.FormatTime(s.now())
		var confVal any
		if conforme != nil {
			if *conforme {
				confVal = 1
			} else {
				confVal = 0
			}
		}
		var editor any
		if editorID != "" {
			editor = editorID
		}
		_, err = db.Exec(
			`INSERT INTO responses (inspection_id, criterion_id, conforme, observation, updated_by, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(inspection_id, criterion_id)
			 DO UPDATE SET conforme = excluded.conforme, observation = excluded.observation,
			               updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
			inspectionID, criterionID, confVal, observation, editor, now,
		)
		if err != nil {
			return fmt.Errorf("response: save: %w", err)
		}

		_, err = db.Exec(
			`UPDATE inspections
			 SET status = CASE WHEN status = 'draft' THEN 'in_progress' ELSE status END,
			     updated_at = ?
			 WHERE id = ?`,
			now, inspectionID,
		)
		if err != nil {
			return fmt.Errorf("response: advance status: %w", err)
		}
		return nil
	})
}

// GetProgress derives the four counts for one inspection. Progress is never
// stored, always computed on demand.
func (s *Service) GetProgress(inspectionID string) (Progress, error) {
	var p Progress
	err := s.store.Do(func(db *sql.DB) error {
		var err error
		p, err = ProgressQuery(db, inspectionID)
		return err
	})
	return p, err
}

// ProgressQuery computes progress with the caller's database handle. It
// exists so the inspection listing can enrich results without re-entering
// the store's critical section.
func ProgressQuery(db *sql.DB, inspectionID string) (Progress, error) {
	var p Progress
	err := db.QueryRow(
		`SELECT COUNT(*),
		        COUNT(conforme),
		        COALESCE(SUM(CASE WHEN conforme = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN conforme = 0 THEN 1 ELSE 0 END), 0)
		 FROM responses WHERE inspection_id = ?`, inspectionID,
	).Scan(&p.Total, &p.Answered, &p.Conforme, &p.NonConforme)
	if err != nil {
		return Progress{}, fmt.Errorf("response: progress: %w", err)
	}
	if p.Answered > p.Total {
		p.Total = p.Answered
	}
	return p, nil
}

// List returns every response row of an inspection, unordered. Reconciling
// against the static catalog to find unanswered criteria is the caller's
// concern.
func (s *Service) List(inspectionID string) ([]Response, error) {
	var result []Response
	err := s.store.Do(func(db *sql.DB) error {
		rows, err := db.Query(
			`SELECT criterion_id, conforme, observation, updated_by, updated_at
			 FROM responses WHERE inspection_id = ?`, inspectionID)
		if err != nil {
			return fmt.Errorf("response: list: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				r        Response
				conf     sql.NullInt64
				editor   sql.NullString
				updatedS string
			)
			if err := rows.Scan(&r.CriterionID, &conf, &r.Observation, &editor, &updatedS); err != nil {
				return fmt.Errorf("response: scan: %w", err)
			}
			if conf.Valid {
				v := conf.Int64 != 0
				r.Conforme = &v
			}
			r.UpdatedBy = editor.String
			if r.UpdatedAt, err = store.ParseTime(updatedS); err != nil {
				return err
			}
			result = append(result, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
