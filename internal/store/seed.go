package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"inspectroom/internal/inspection"
)

type seedUser struct {
	username string
	role     inspection.Role
}

var defaultUsers = []seedUser{
	{"admin", inspection.RoleAdmin},
	{"inspector1", inspection.RoleInspector},
	{"supervisor1", inspection.RoleSupervisor},
	{"inspector2", inspection.RoleInspector},
}

var sampleInspections = []struct {
	title     string
	inspector string
}{
	{"Sample Inspection for Turbine Blade", "inspector1"},
	{"FAI for Landing Gear Strut", "inspector2"},
}

// Seed creates the default accounts with the given password and, when no
// inspection exists yet, one sample inspection per default inspector.
func Seed(ctx context.Context, users *UserStore, reports *ReportStore, password string, lg *zap.SugaredLogger) error {
	byName := map[string]string{}
	for _, su := range defaultUsers {
		u, err := users.Create(ctx, su.username, password, su.role)
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return err
		}
		byName[su.username] = u.ID
		lg.Infow("seeded user", "username", su.username, "role", su.role)
	}
	existing, err := reports.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, si := range sampleInspections {
		id, ok := byName[si.inspector]
		if !ok {
			continue
		}
		r, err := reports.Create(ctx, si.title, id)
		if err != nil {
			return err
		}
		lg.Infow("seeded inspection", "id", r.ID, "title", r.Title)
	}
	return nil
}
