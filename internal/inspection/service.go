package inspection

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"officine.org/internal/ids"
	"officine.org/internal/response"
	"officine.org/internal/store"
)

var (
	ErrNotFound      = errors.New("inspection: not found")
	ErrInvalidStatus = errors.New("inspection: invalid status")
)

// Inspection is one persisted checklist run, enriched with display names and
// a freshly derived progress snapshot on read.
type Inspection struct {
	ID              string            `json:"id"`
	GridID          string            `json:"grid_id"`
	Status          Status            `json:"status"`
	DateInspection  string            `json:"date_inspection"`
	Establishment   string            `json:"establishment"`
	InspectionType  string            `json:"inspection_type"`
	Inspectors      []string          `json:"inspectors"`
	CreatedBy       string            `json:"created_by,omitempty"`
	CreatedByName   string            `json:"created_by_name,omitempty"`
	ValidatedBy     string            `json:"validated_by,omitempty"`
	ValidatedByName string            `json:"validated_by_name,omitempty"`
	ValidatedAt     *time.Time        `json:"validated_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Progress        response.Progress `json:"progress"`
}

// CreateRequest carries the metadata of a new inspection. The same shape is
// reused by UpdateMeta, which overwrites these fields wholesale.
type CreateRequest struct {
	GridID         string   `json:"grid_id"`
	DateInspection string   `json:"date_inspection"`
	Establishment  string   `json:"establishment"`
	InspectionType string   `json:"inspection_type"`
	Inspectors     []string `json:"inspectors"`
}

// Filter narrows List results. Zero values mean the predicate is not applied.
type Filter struct {
	CreatedBy string
	Status    Status
}

// Service manages inspection records over the shared store.
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

// NewService constructs the inspection repository.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new draft inspection and returns its id. The inspectors
// list is stored as an ordered JSON array. An absent creator is stored as
// NULL so the users foreign key stays satisfied.
func (s *Service) Create(req CreateRequest, creatorID string) (string, error) {
	id := ids.New()
	inspectorsJSON, err := json.Marshal(req.Inspectors)
	if err != nil {
		return "", fmt.Errorf("inspection: encode inspectors: %w", err)
	}
	err = s.store.Do(func(db *sql.DB) error {
		now := store.FormatTime(s.now())
		var creator any
		if creatorID != "" {
			creator = creatorID
		}
		_, err := db.Exec(
			`INSERT INTO inspections (id, grid_id, status, date_inspection, establishment, inspection_type, inspectors, created_by, created_at, updated_at)
			 VALUES (?, ?, 'draft', ?, ?, ?, ?, ?, ?, ?)`,
			id, req.GridID, req.DateInspection, req.Establishment, req.InspectionType,
			string(inspectorsJSON), creator, now, now,
		)
		if err != nil {
			return fmt.Errorf("inspection: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

const selectColumns = `i.id, i.grid_id, i.status, i.date_inspection, i.establishment, i.inspection_type,
	i.inspectors, i.created_by, uc.full_name, i.validated_by, uv.full_name,
	i.validated_at, i.created_at, i.updated_at`

func selectBuilder() sq.SelectBuilder {
	return sq.Select(selectColumns).
		From("inspections i").
		LeftJoin("users uc ON i.created_by = uc.id").
		LeftJoin("users uv ON i.validated_by = uv.id")
}

// List returns inspections matching the filter, most recently updated first.
// Both predicates are optional and composable. Every result carries a
// progress snapshot derived inside the same critical section.
func (s *Service) List(f Filter) ([]Inspection, error) {
	query := selectBuilder().OrderBy("i.updated_at DESC")
	if f.CreatedBy != "" {
		query = query.Where(sq.Eq{"i.created_by": f.CreatedBy})
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
		}
		query = query.Where(sq.Eq{"i.status": string(f.Status)})
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("inspection: build query: %w", err)
	}

	var result []Inspection
	err = s.store.Do(func(db *sql.DB) error {
		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return fmt.Errorf("inspection: list: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			insp, err := scanInspection(rows)
			if err != nil {
				return err
			}
			result = append(result, insp)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range result {
			if result[i].Progress, err = response.ProgressQuery(db, result[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one inspection with display names and progress. Display names
// tolerate accounts that no longer resolve; they come back absent, not as an
// error.
func (s *Service) Get(id string) (Inspection, error) {
	sqlStr, args, err := selectBuilder().Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return Inspection{}, fmt.Errorf("inspection: build query: %w", err)
	}
	var insp Inspection
	err = s.store.Do(func(db *sql.DB) error {
		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return fmt.Errorf("inspection: get: %w", err)
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return ErrNotFound
		}
		if insp, err = scanInspection(rows); err != nil {
			return err
		}
		rows.Close()
		insp.Progress, err = response.ProgressQuery(db, insp.ID)
		return err
	})
	if err != nil {
		return Inspection{}, err
	}
	return insp, nil
}

// UpdateMeta overwrites date, establishment, type and inspectors wholesale.
// Unlike the user directory this is not a partial patch.
func (s *Service) UpdateMeta(id string, req CreateRequest) error {
	inspectorsJSON, err := json.Marshal(req.Inspectors)
	if err != nil {
		return fmt.Errorf("inspection: encode inspectors: %w", err)
	}
	return s.store.Do(func(db *sql.DB) error {
		res, err := db.Exec(
			`UPDATE inspections SET date_inspection = ?, establishment = ?, inspection_type = ?,
			 inspectors = ?, updated_at = ? WHERE id = ?`,
			req.DateInspection, req.Establishment, req.InspectionType,
			string(inspectorsJSON), store.FormatTime(s.now()), id,
		)
		if err != nil {
			return fmt.Errorf("inspection: update meta: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetStatus explicitly moves the inspection to the target state. The
// validated branch additionally stamps validator id and timestamp; every
// other branch writes only the status. Role gating for validated is the
// caller's responsibility.
func (s *Service) SetStatus(id string, status Status, actorID string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.Do(func(db *sql.DB) error {
		now := store.FormatTime(s.now())
		var (
			res sql.Result
			err error
		)
		if status == StatusValidated {
			var actor any
			if actorID != "" {
				actor = actorID
			}
			res, err = db.Exec(
				`UPDATE inspections SET status = ?, validated_by = ?, validated_at = ?, updated_at = ? WHERE id = ?`,
				string(status), actor, now, now, id,
			)
		} else {
			res, err = db.Exec(
				`UPDATE inspections SET status = ?, updated_at = ? WHERE id = ?`,
				string(status), now, id,
			)
		}
		if err != nil {
			return fmt.Errorf("inspection: set status: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Delete removes the inspection. Its responses go with it through the
// ON DELETE CASCADE foreign key, not application logic.
func (s *Service) Delete(id string) error {
	return s.store.Do(func(db *sql.DB) error {
		res, err := db.Exec(`DELETE FROM inspections WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("inspection: delete: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (Inspection, error) {
	var (
		insp           Inspection
		status         string
		dateInspection sql.NullString
		establishment  sql.NullString
		inspectionType sql.NullString
		inspectorsRaw  sql.NullString
		createdBy      sql.NullString
		createdByName  sql.NullString
		validatedBy    sql.NullString
		validatedName  sql.NullString
		validatedAtS   sql.NullString
		createdS       string
		updatedS       string
	)
	err := row.Scan(&insp.ID, &insp.GridID, &status, &dateInspection, &establishment,
		&inspectionType, &inspectorsRaw, &createdBy, &createdByName,
		&validatedBy, &validatedName, &validatedAtS, &createdS, &updatedS)
	if err != nil {
		return Inspection{}, fmt.Errorf("inspection: scan: %w", err)
	}
	insp.Status = Status(status)
	insp.DateInspection = dateInspection.String
	insp.Establishment = establishment.String
	insp.InspectionType = inspectionType.String
	insp.CreatedBy = createdBy.String
	insp.CreatedByName = createdByName.String
	insp.ValidatedBy = validatedBy.String
	insp.ValidatedByName = validatedName.String
	insp.Inspectors = []string{}
	if inspectorsRaw.Valid && inspectorsRaw.String != "" {
		if err := json.Unmarshal([]byte(inspectorsRaw.String), &insp.Inspectors); err != nil {
			return Inspection{}, fmt.Errorf("inspection: decode inspectors: %w", err)
		}
	}
	if validatedAtS.Valid && validatedAtS.String != "" {
		t, err := store.ParseTime(validatedAtS.String)
		if err != nil {
			return Inspection{}, err
		}
		insp.ValidatedAt = &t
	}
	if insp.CreatedAt, err = store.ParseTime(createdS); err != nil {
		return Inspection{}, err
	}
	if insp.UpdatedAt, err = store.ParseTime(updatedS); err != nil {
		return Inspection{}, err
	}
	return insp, nil
}
