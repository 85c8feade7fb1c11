package directory

import (
	"database/sql"
	"errors"
	"testing"

	"officine.org/internal/store"
)

// plainHash is a transparent stand-in for bcrypt in repository tests.
func plainHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st, plainHash), st
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(CreateRequest{
		Username: "alice",
		FullName: "Alice Kouassi",
		Role:     RoleInspector,
		Password: "s3cret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if !created.Active {
		t.Fatal("new accounts must start active")
	}

	got, err := svc.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" || got.FullName != "Alice Kouassi" || got.Role != RoleInspector {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	req := CreateRequest{Username: "alice", Role: RoleInspector, Password: "s3cret"}
	if _, err := svc.Create(req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(req); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []CreateRequest{
		{Username: "ab", Role: RoleInspector, Password: "s3cret"},          // too short
		{Username: "bad name", Role: RoleInspector, Password: "s3cret"},    // space
		{Username: "alice", Role: RoleInspector, Password: "short"},        // password too short
		{Username: "alice", Role: Role("superuser"), Password: "s3cret1"},  // unknown role
	}
	for _, req := range cases {
		if _, err := svc.Create(req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", req, err)
		}
	}
}

func TestUpdatePatchesOnlySetFields(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Create(CreateRequest{Username: "alice", FullName: "Alice", Role: RoleInspector, Password: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}

	role := RoleLeadInspector
	if err := svc.Update(user.ID, Update{Role: &role}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != RoleLeadInspector {
		t.Fatalf("role not updated: %+v", got)
	}
	if got.FullName != "Alice" || !got.Active {
		t.Fatalf("unset fields must stay untouched: %+v", got)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	name := "Nobody"
	if err := svc.Update("missing", Update{FullName: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivateKeepsRowAndKillsSessions(t *testing.T) {
	svc, st := newTestService(t)

	user, err := svc.Create(CreateRequest{Username: "alice", Role: RoleInspector, Password: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	err = st.Do(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ('tok', ?, '2026-01-01T00:00:00Z', '2099-01-01T00:00:00Z')`,
			user.ID,
		)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Deactivate(user.ID); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Active {
		t.Fatal("expected account to be inactive")
	}

	var sessions int
	err = st.Do(func(db *sql.DB) error {
		return db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, user.ID).Scan(&sessions)
	})
	if err != nil {
		t.Fatal(err)
	}
	if sessions != 0 {
		t.Fatalf("expected sessions gone, %d left", sessions)
	}
}

func TestChangePasswordRehashesAndRevokesSessions(t *testing.T) {
	svc, st := newTestService(t)

	user, err := svc.Create(CreateRequest{Username: "alice", Role: RoleInspector, Password: "oldpass"})
	if err != nil {
		t.Fatal(err)
	}
	err = st.Do(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ('tok', ?, '2026-01-01T00:00:00Z', '2099-01-01T00:00:00Z')`,
			user.ID,
		)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(user.ID, "newpass"); err != nil {
		t.Fatal(err)
	}

	var hash string
	var sessions int
	err = st.Do(func(db *sql.DB) error {
		if err := db.QueryRow(`SELECT password_hash FROM users WHERE id = ?`, user.ID).Scan(&hash); err != nil {
			return err
		}
		return db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, user.ID).Scan(&sessions)
	})
	if err != nil {
		t.Fatal(err)
	}
	if hash != "hashed:newpass" {
		t.Fatalf("expected rotated hash, got %q", hash)
	}
	if sessions != 0 {
		t.Fatalf("rotation must revoke sessions, %d left", sessions)
	}
}

func TestChangePasswordRejectsWeak(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Create(CreateRequest{Username: "alice", Role: RoleInspector, Password: "oldpass"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangePassword(user.ID, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListReturnsAllAccounts(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := svc.Create(CreateRequest{Username: name, Role: RoleInspector, Password: "s3cret"}); err != nil {
			t.Fatal(err)
		}
	}

	users, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}
