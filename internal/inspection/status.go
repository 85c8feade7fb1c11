package inspection

// Status is the inspection lifecycle state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusValidated  Status = "validated"
	StatusArchived   Status = "archived"
)

// Statuses lists every lifecycle state.
var Statuses = []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusValidated, StatusArchived}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusValidated, StatusArchived:
		return true
	}
	return false
}

// The state machine is permissive: any explicit transition between valid
// states is allowed at the data layer, archived included. The only guarded
// edge is entry into validated, which the caller gates on role before
// invoking SetStatus. The single automatic edge, draft to in_progress on the
// first saved response, lives in the response ledger.
