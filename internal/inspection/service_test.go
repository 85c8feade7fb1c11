package inspection

import (
	"errors"
	"testing"
	"time"

	"officine.org/internal/directory"
	"officine.org/internal/response"
	"officine.org/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedUser(t *testing.T, st *store.Store, username string, role directory.Role) directory.User {
	t.Helper()
	hash := func(p string) (string, error) { return "h:" + p, nil }
	user, err := directory.NewService(st, hash).Create(directory.CreateRequest{
		Username: username,
		FullName: "Agent " + username,
		Role:     role,
		Password: "s3cret",
	})
	if err != nil {
		t.Fatal(err)
	}
	return user
}

func TestCreateStartsAsDraft(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{
		GridID:         "officine",
		DateInspection: "2026-02-01",
		Establishment:  "Pharmacie du Plateau",
		InspectionType: "routine",
		Inspectors:     []string{"Dr. Diallo", "Mme Traoré"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", got.Status)
	}
	if len(got.Inspectors) != 2 || got.Inspectors[0] != "Dr. Diallo" {
		t.Fatalf("inspectors list not preserved in order: %v", got.Inspectors)
	}
	if got.ValidatedAt != nil || got.ValidatedBy != "" {
		t.Fatalf("fresh inspection must carry no validation stamp: %+v", got)
	}
	// anonymous creation stores NULL, which reads back as the empty string
	if got.CreatedBy != "" || got.CreatedByName != "" {
		t.Fatalf("expected no creator on anonymous create: %+v", got)
	}
}

func TestGetResolvesCreatorName(t *testing.T) {
	st := newTestStore(t)
	user := seedUser(t, st, "alice", directory.RoleInspector)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "Pharmacie X"}, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.CreatedBy != user.ID || got.CreatedByName != "Agent alice" {
		t.Fatalf("creator not resolved: %+v", got)
	}
}

func TestGetUnknown(t *testing.T) {
	st := newTestStore(t)
	if _, err := NewService(st).Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersCompose(t *testing.T) {
	st := newTestStore(t)
	alice := seedUser(t, st, "alice", directory.RoleInspector)
	bob := seedUser(t, st, "bob", directory.RoleInspector)
	svc := NewService(st)

	a1, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "B"}, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetStatus(a1, StatusCompleted, alice.ID); err != nil {
		t.Fatal(err)
	}

	all, err := svc.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2, got %d", len(all))
	}

	mine, err := svc.List(Filter{CreatedBy: alice.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != a1 {
		t.Fatalf("creator filter failed: %+v", mine)
	}

	completed, err := svc.List(Filter{CreatedBy: alice.ID, Status: StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != a1 {
		t.Fatalf("composed filter failed: %+v", completed)
	}

	none, err := svc.List(Filter{CreatedBy: bob.ID, Status: StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty, got %+v", none)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	st := newTestStore(t)
	if _, err := NewService(st).List(Filter{Status: Status("garbage")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListNewestUpdateFirst(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := NewService(st, WithClock(clock))

	first, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Minute)
	second, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "B"}, "")
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if list[0].ID != second || list[1].ID != first {
		t.Fatalf("expected newest first, got %v then %v", list[0].ID, list[1].ID)
	}

	// touching the older one moves it back to the top
	now = now.Add(time.Minute)
	if err := svc.UpdateMeta(first, CreateRequest{GridID: "officine", Establishment: "A2"}); err != nil {
		t.Fatal(err)
	}
	list, err = svc.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if list[0].ID != first {
		t.Fatalf("expected updated inspection first, got %v", list[0].ID)
	}
}

func TestListCarriesProgress(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	conforme := true
	if err := response.NewService(st).Save(id, 1, &conforme, "", ""); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Progress.Total != 1 || list[0].Progress.Conforme != 1 {
		t.Fatalf("expected progress snapshot, got %+v", list[0].Progress)
	}
}

func TestUpdateMetaOverwritesWholesale(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{
		GridID:         "officine",
		DateInspection: "2026-02-01",
		Establishment:  "A",
		InspectionType: "routine",
		Inspectors:     []string{"Dr. Diallo"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	err = svc.UpdateMeta(id, CreateRequest{
		DateInspection: "2026-02-15",
		Establishment:  "B",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Establishment != "B" || got.DateInspection != "2026-02-15" {
		t.Fatalf("metadata not overwritten: %+v", got)
	}
	if got.InspectionType != "" || len(got.Inspectors) != 0 {
		t.Fatalf("overwrite is wholesale, fields must not survive: %+v", got)
	}
	if got.GridID != "officine" {
		t.Fatalf("grid id must be immutable: %+v", got)
	}
}

func TestSetStatusValidatedStampsValidator(t *testing.T) {
	st := newTestStore(t)
	lead := seedUser(t, st, "lead", directory.RoleLeadInspector)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetStatus(id, StatusValidated, lead.ID); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusValidated {
		t.Fatalf("expected validated, got %s", got.Status)
	}
	if got.ValidatedBy != lead.ID || got.ValidatedByName != "Agent lead" || got.ValidatedAt == nil {
		t.Fatalf("validator stamp missing: %+v", got)
	}

	// any other target writes the status only
	if err := svc.SetStatus(id, StatusArchived, lead.ID); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusArchived {
		t.Fatalf("expected archived, got %s", got.Status)
	}
	if got.ValidatedBy != lead.ID || got.ValidatedAt == nil {
		t.Fatalf("leaving validated must keep the stamp: %+v", got)
	}
}

func TestSetStatusPermissiveEdges(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	// no transition guard: archived straight back to draft is allowed
	for _, target := range []Status{StatusArchived, StatusDraft, StatusValidated, StatusInProgress} {
		if err := svc.SetStatus(id, target, ""); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}
}

func TestSetStatusErrors(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	if err := svc.SetStatus("missing", StatusCompleted, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetStatus(id, Status("garbage"), ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDeleteRemovesResponses(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st)

	id, err := svc.Create(CreateRequest{GridID: "officine", Establishment: "A"}, "")
	if err != nil {
		t.Fatal(err)
	}
	conforme := true
	resp := response.NewService(st)
	if err := resp.Save(id, 1, &conforme, "", ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	list, err := resp.List(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected responses gone, got %d", len(list))
	}

	if err := svc.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
