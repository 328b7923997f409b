package jobs

import (
	"context"
)

// MaintenanceChecker is the sweep the daily job triggers.
type MaintenanceChecker interface {
	CheckUpcomingMaintenance(ctx context.Context) (int, error)
}

// MaintenanceSweep re-runs the maintenance reminder sweep every day for
// processes that stay up longer than a day.
type MaintenanceSweep struct {
	checker MaintenanceChecker
	at      string
}

func NewMaintenanceSweep(checker MaintenanceChecker, at string) *MaintenanceSweep {
	if at == "" {
		at = "08:00"
	}
	return &MaintenanceSweep{checker: checker, at: at}
}

func (j *MaintenanceSweep) Name() string { return "maintenance_sweep" }
func (j *MaintenanceSweep) At() string   { return j.at }

func (j *MaintenanceSweep) Execute(ctx context.Context) error {
	_, err := j.checker.CheckUpcomingMaintenance(ctx)
	return err
}
