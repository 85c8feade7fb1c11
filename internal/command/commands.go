// Package command is the operation surface consumed by the CLI. Every
// protected operation follows the same control flow: resolve the token
// through the auth gateway, run the repository call, then emit exactly one
// audit entry describing the action.
package command

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"officine.org/internal/audit"
	"officine.org/internal/auth"
	"officine.org/internal/directory"
	"officine.org/internal/inspection"
	"officine.org/internal/kpi"
	"officine.org/internal/obs"
	"officine.org/internal/response"
)

// Audit action labels. One verb token per mutating operation.
const (
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionChangePassword   = "CHANGE_PASSWORD"
	ActionDeactivateUser   = "DEACTIVATE_USER"
	ActionCreateInspection = "CREATE_INSPECTION"
	ActionUpdateMeta       = "UPDATE_META"
	ActionSaveResponse     = "SAVE_RESPONSE"
	ActionDeleteInspection = "DELETE_INSPECTION"
	ActionAppStart         = "APP_START"
)

// Commands bundles the core services behind the operation surface.
type Commands struct {
	auth        *auth.Service
	users       *directory.Service
	inspections *inspection.Service
	responses   *response.Service
	trail       *audit.Service
}

// New wires the operation surface over already-constructed services.
func New(a *auth.Service, u *directory.Service, i *inspection.Service, r *response.Service, t *audit.Service) *Commands {
	return &Commands{auth: a, users: u, inspections: i, responses: r, trail: t}
}


// Login authenticates and issues a session token.
func (c *Commands) Login(username, password string) (auth.Session, error) {
	defer obs.ObserveCommand("login", time.Now())
	sess, err := c.auth.Login(username, password)
	if err != nil {
		return auth.Session{}, err
	}
	c.trail.Append(audit.Entry{
		UserID:     sess.User.ID,
		Username:   sess.User.Username,
		Action:     ActionLogin,
		EntityType: "session",
		EntityID:   sess.Token,
	})
	return sess, nil
}

// Logout deletes the session. Idempotent; the audit entry is only written
// when the token still resolved to a user.
func (c *Commands) Logout(token string) error {
	defer obs.ObserveCommand("logout", time.Now())
	if user, err := c.auth.ValidateSession(token); err == nil {
		c.trail.Append(audit.Entry{
			UserID:     user.ID,
			Username:   user.Username,
			Action:     ActionLogout,
			EntityType: "session",
			EntityID:   token,
		})
	}
	return c.auth.Logout(token)
}

// ValidateSession resolves a token to its owning account.
func (c *Commands) ValidateSession(token string) (directory.User, error) {
	return c.auth.ValidateSession(token)
}


// ListUsers returns every account, inactive ones included.
func (c *Commands) ListUsers(token string) ([]directory.User, error) {
	defer obs.ObserveCommand("list_users", time.Now())
	if _, err := c.auth.Authorize(token, directory.RoleAdmin, directory.RoleLeadInspector); err != nil {
		return nil, err
	}
	return c.users.List()
}

// CreateUser creates an account. Admin only.
func (c *Commands) CreateUser(token string, req directory.CreateRequest) (directory.User, error) {
	defer obs.ObserveCommand("create_user", time.Now())
	admin, err := c.auth.Authorize(token, directory.RoleAdmin)
	if err != nil {
		return directory.User{}, err
	}
	user, err := c.users.Create(req)
	if err != nil {
		return directory.User{}, err
	}
	c.trail.Append(audit.Entry{
		UserID:     admin.ID,
		Username:   admin.Username,
		Action:     ActionCreateUser,
		EntityType: "user",
		EntityID:   user.ID,
		Details:    detailsJSON(map[string]any{"username": user.Username, "role": user.Role}),
	})
	return user, nil
}

// UpdateUser patches account fields. Admin only.
func (c *Commands) UpdateUser(token, userID string, upd directory.Update) error {
	defer obs.ObserveCommand("update_user", time.Now())
	admin, err := c.auth.Authorize(token, directory.RoleAdmin)
	if err != nil {
		return err
	}
	if err := c.users.Update(userID, upd); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     admin.ID,
		Username:   admin.Username,
		Action:     ActionUpdateUser,
		EntityType: "user",
		EntityID:   userID,
		Details:    detailsJSON(upd),
	})
	return nil
}

// ChangeUserPassword rotates a credential. Admin only; the rotation also
// revokes the target user's outstanding sessions.
func (c *Commands) ChangeUserPassword(token, userID, newPassword string) error {
	defer obs.ObserveCommand("change_password", time.Now())
	admin, err := c.auth.Authorize(token, directory.RoleAdmin)
	if err != nil {
		return err
	}
	if err := c.users.ChangePassword(userID, newPassword); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     admin.ID,
		Username:   admin.Username,
		Action:     ActionChangePassword,
		EntityType: "user",
		EntityID:   userID,
	})
	return nil
}

// DeactivateUser soft-disables an account and kills its sessions. Admin only.
func (c *Commands) DeactivateUser(token, userID string) error {
	defer obs.ObserveCommand("deactivate_user", time.Now())
	admin, err := c.auth.Authorize(token, directory.RoleAdmin)
	if err != nil {
		return err
	}
	if err := c.users.Deactivate(userID); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     admin.ID,
		Username:   admin.Username,
		Action:     ActionDeactivateUser,
		EntityType: "user",
		EntityID:   userID,
	})
	return nil
}


// CreateInspection persists a new draft inspection owned by the caller.
func (c *Commands) CreateInspection(token string, req inspection.CreateRequest) (string, error) {
	defer obs.ObserveCommand("create_inspection", time.Now())
	user, err := c.auth.ValidateSession(token)
	if err != nil {
		return "", err
	}
	id, err := c.inspections.Create(req, user.ID)
	if err != nil {
		return "", err
	}
	c.trail.Append(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     ActionCreateInspection,
		EntityType: "inspection",
		EntityID:   id,
		Details:    detailsJSON(map[string]any{"grid": req.GridID, "establishment": req.Establishment}),
	})
	return id, nil
}

// ListInspections returns inspections visible to the caller, most recently
// updated first. Inspectors only ever see their own.
func (c *Commands) ListInspections(token string, myOnly bool, status inspection.Status) ([]inspection.Inspection, error) {
	defer obs.ObserveCommand("list_inspections", time.Now())
	user, err := c.auth.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	filter := inspection.Filter{Status: status}
	if myOnly || user.Role == directory.RoleInspector {
		filter.CreatedBy = user.ID
	}
	return c.inspections.List(filter)
}

// GetInspection returns one inspection with its progress snapshot.
func (c *Commands) GetInspection(token, inspectionID string) (inspection.Inspection, error) {
	defer obs.ObserveCommand("get_inspection", time.Now())
	if _, err := c.auth.ValidateSession(token); err != nil {
		return inspection.Inspection{}, err
	}
	return c.inspections.Get(inspectionID)
}

// UpdateInspectionMeta overwrites the inspection metadata wholesale.
func (c *Commands) UpdateInspectionMeta(token, inspectionID string, req inspection.CreateRequest) error {
	defer obs.ObserveCommand("update_meta", time.Now())
	user, err := c.auth.ValidateSession(token)
	if err != nil {
		return err
	}
	if err := c.inspections.UpdateMeta(inspectionID, req); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     ActionUpdateMeta,
		EntityType: "inspection",
		EntityID:   inspectionID,
	})
	return nil
}

// SetInspectionStatus moves the inspection to an explicit target state.
// Entry into validated is the one role-guarded edge: admin or lead inspector.
func (c *Commands) SetInspectionStatus(token, inspectionID string, status inspection.Status) error {
	defer obs.ObserveCommand("set_status", time.Now())
	var (
		user directory.User
		err  error
	)
	if status == inspection.StatusValidated {
		user, err = c.auth.Authorize(token, directory.RoleAdmin, directory.RoleLeadInspector)
	} else {
		user, err = c.auth.ValidateSession(token)
	}
	if err != nil {
		return err
	}
	if err := c.inspections.SetStatus(inspectionID, status, user.ID); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     "SET_STATUS_" + strings.ToUpper(string(status)),
		EntityType: "inspection",
		EntityID:   inspectionID,
	})
	return nil
}

// DeleteInspection removes an inspection and, through the cascade, its
// responses. Admin or lead inspector.
func (c *Commands) DeleteInspection(token, inspectionID string) error {
	defer obs.ObserveCommand("delete_inspection", time.Now())
	user, err := c.auth.Authorize(token, directory.RoleAdmin, directory.RoleLeadInspector)
	if err != nil {
		return err
	}
	if err := c.inspections.Delete(inspectionID); err != nil {
		return err
	}
	c.trail.Append(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     ActionDeleteInspection,
		EntityType: "inspection",
		EntityID:   inspectionID,
	})
	return nil
}


// SaveResponse upserts one answer; a draft parent advances to in_progress.
func (c *Commands) SaveResponse(token, inspectionID string, criterionID int, conforme *bool, observation string) error {
	defer obs.ObserveCommand("save_response", time.Now())
	user, err := c.auth.ValidateSession(token)
	if err != nil {
		return err
	}
	if err := c.responses.Save(inspectionID, criterionID, conforme, observation, user.ID); err != nil {
		return err
	}
	var conf any
	if conforme != nil {
		conf = *conforme
	}
	c.trail.Append(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     ActionSaveResponse,
		EntityType: "response",
		EntityID:   fmt.Sprintf("%s:%d", inspectionID, criterionID),
		Details:    detailsJSON(map[string]any{"conforme": conf, "has_obs": observation != ""}),
	})
	return nil
}

// GetResponses returns every response row of an inspection.
func (c *Commands) GetResponses(token, inspectionID string) ([]response.Response, error) {
	defer obs.ObserveCommand("get_responses", time.Now())
	if _, err := c.auth.ValidateSession(token); err != nil {
		return nil, err
	}
	return c.responses.List(inspectionID)
}

// GetProgress derives the progress counts for one inspection.
func (c *Commands) GetProgress(token, inspectionID string) (response.Progress, error) {
	defer obs.ObserveCommand("get_progress", time.Now())
	if _, err := c.auth.ValidateSession(token); err != nil {
		return response.Progress{}, err
	}
	return c.responses.GetProgress(inspectionID)
}


// QueryAudit returns audit entries matching the filter, newest first.
// Admin or lead inspector.
func (c *Commands) QueryAudit(token string, f audit.Filter) ([]audit.Entry, error) {
	defer obs.ObserveCommand("query_audit", time.Now())
	if _, err := c.auth.Authorize(token, directory.RoleAdmin, directory.RoleLeadInspector); err != nil {
		return nil, err
	}
	return c.trail.Query(f)
}

// CountAudit returns the total matching the filter, for pagination totals.
// Admin or lead inspector.
func (c *Commands) CountAudit(token string, f audit.Filter) (int, error) {
	defer obs.ObserveCommand("count_audit", time.Now())
	if _, err := c.auth.Authorize(token, directory.RoleAdmin, directory.RoleLeadInspector); err != nil {
		return 0, err
	}
	return c.trail.Count(f)
}


// Stats aggregates indicator values over the inspections visible to the
// caller.
func (c *Commands) Stats(token string, myOnly bool) (kpi.Aggregate, error) {
	defer obs.ObserveCommand("stats", time.Now())
	inspections, err := c.ListInspections(token, myOnly, "")
	if err != nil {
		return kpi.Aggregate{}, err
	}
	return kpi.AggregateStats(inspections), nil
}

func detailsJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
