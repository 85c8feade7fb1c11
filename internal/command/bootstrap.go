package command

import (
	"fmt"

	"officine.org/internal/audit"
	"officine.org/internal/auth"
	"officine.org/internal/config"
	"officine.org/internal/directory"
	"officine.org/internal/inspection"
	"officine.org/internal/obs"
	"officine.org/internal/response"
	"officine.org/internal/store"
)

// Bootstrap opens the datastore, seeds the default administrator when the
// user table is empty of that account, and wires the full operation surface.
// The returned store must be closed by the caller.
func Bootstrap(cfg *config.Config) (*Commands, *store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	hash := func(password string) (string, error) {
		return auth.HashPassword(password, cfg.Auth.BcryptCost)
	}

	adminHash, err := hash(cfg.Auth.DefaultAdminPassword)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("bootstrap: hash admin password: %w", err)
	}
	created, err := st.EnsureAdmin(cfg.Auth.DefaultAdminUser, "Administrateur", adminHash)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	if created {
		obs.LogEvent("admin_seeded", map[string]any{"username": cfg.Auth.DefaultAdminUser})
	}

	cmds := New(
		auth.NewService(st,
			auth.WithSessionTTL(cfg.Auth.SessionTTL),
			auth.WithLoginRate(cfg.Auth.LoginRatePerMinute),
		),
		directory.NewService(st, hash),
		inspection.NewService(st),
		response.NewService(st),
		audit.NewService(st, audit.WithPageSize(cfg.Audit.PageSize)),
	)
	cmds.trail.Append(audit.Entry{
		Action:     ActionAppStart,
		EntityType: "system",
	})
	return cmds, st, nil
}
