package audit

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"officine.org/internal/store"
)

// newTestTrail opens a fresh store with two accounts, u1 and u2, so entries
// can reference real actor rows.
func newTestTrail(t *testing.T, opts ...Option) *Service {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	err = st.Do(func(db *sql.DB) error {
		for id, name := range map[string]string{"u1": "alice", "u2": "bob"} {
			_, err := db.Exec(
				`INSERT INTO users (id, username, full_name, role, password_hash, active, created_at, updated_at)
				 VALUES (?, ?, ?, 'inspector', 'h', 1, '2026-01-01T00:00:00.000000000Z', '2026-01-01T00:00:00.000000000Z')`,
				id, name, name,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewService(st, opts...)
}

// fixedClock returns a clock advancing one second per call, so entries get
// strictly increasing timestamps.
func fixedClock() func() time.Time {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestAppendAndQueryNewestFirst(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	trail.Append(Entry{UserID: "u1", Username: "alice", Action: "LOGIN", EntityType: "session", EntityID: "t1"})
	trail.Append(Entry{UserID: "u1", Username: "alice", Action: "CREATE_INSPECTION", EntityType: "inspection", EntityID: "i1"})
	trail.Append(Entry{UserID: "u2", Username: "bob", Action: "LOGIN", EntityType: "session", EntityID: "t2"})

	entries, err := trail.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "LOGIN" || entries[0].Username != "bob" {
		t.Fatalf("expected newest first, got %+v", entries[0])
	}
	if entries[2].EntityID != "t1" {
		t.Fatalf("expected oldest last, got %+v", entries[2])
	}
}

func TestQueryPredicatesCompose(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	trail.Append(Entry{UserID: "u1", Username: "alice", Action: "LOGIN"})
	trail.Append(Entry{UserID: "u1", Username: "alice", Action: "SAVE_RESPONSE", EntityType: "response", EntityID: "i1:4"})
	trail.Append(Entry{UserID: "u2", Username: "bob", Action: "LOGIN"})
	trail.Append(Entry{UserID: "u2", Username: "bob", Action: "SAVE_RESPONSE", EntityType: "response", EntityID: "i1:4"})

	byUser, err := trail.Query(Filter{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 2 {
		t.Fatalf("user predicate: expected 2, got %d", len(byUser))
	}

	combined, err := trail.Query(Filter{UserID: "u2", Action: "SAVE_RESPONSE", EntityType: "response"})
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 1 || combined[0].Username != "bob" {
		t.Fatalf("combined predicates: %+v", combined)
	}

	none, err := trail.Query(Filter{UserID: "u1", Action: "DELETE_INSPECTION"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestQueryTimeBoundsInclusive(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	trail.Append(Entry{Action: "A"}) // 10:00:01
	trail.Append(Entry{Action: "B"}) // 10:00:02
	trail.Append(Entry{Action: "C"}) // 10:00:03

	from := time.Date(2026, 2, 1, 10, 0, 2, 0, time.UTC)
	to := time.Date(2026, 2, 1, 10, 0, 3, 0, time.UTC)
	entries, err := trail.Query(Filter{From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Action != "C" || entries[1].Action != "B" {
		t.Fatalf("inclusive bounds: %+v", entries)
	}
}

func TestCountAgreesWithQuery(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	for i := 0; i < 5; i++ {
		trail.Append(Entry{UserID: "u1", Action: "LOGIN"})
	}
	trail.Append(Entry{UserID: "u2", Action: "LOGOUT"})

	f := Filter{UserID: "u1"}
	entries, err := trail.Query(f)
	if err != nil {
		t.Fatal(err)
	}
	n, err := trail.Count(f)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(entries) || n != 5 {
		t.Fatalf("count=%d query=%d", n, len(entries))
	}
}

func TestCountIgnoresPagination(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	for i := 0; i < 4; i++ {
		trail.Append(Entry{Action: "LOGIN"})
	}

	page, err := trail.Query(Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	n, err := trail.Count(Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("count must ignore limit/offset, got %d", n)
	}
}

func TestQueryDefaultPageSize(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()), WithPageSize(3))

	for i := 0; i < 5; i++ {
		trail.Append(Entry{Action: "LOGIN"})
	}
	entries, err := trail.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected configured page size 3, got %d", len(entries))
	}
}

func TestAppendDanglingActorIsSwallowed(t *testing.T) {
	trail := newTestTrail(t, WithClock(fixedClock()))

	trail.Append(Entry{UserID: "ghost", Action: "LOGIN"}) // violates the users FK
	trail.Append(Entry{UserID: "u1", Action: "LOGIN"})

	entries, err := trail.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].UserID != "u1" {
		t.Fatalf("expected only the valid entry to land, got %+v", entries)
	}
}

func TestAppendFailureIsSwallowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO audit_log").WillReturnError(errors.New("disk I/O error"))

	trail := NewService(store.NewWithDB(db))
	trail.Append(Entry{Action: "LOGIN"}) // must not panic or surface the error

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
