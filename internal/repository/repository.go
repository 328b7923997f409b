package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel_ops/internal/models"
)

// ErrNotFound is returned when a point read finds no document.
var ErrNotFound = errors.New("record not found")

type RoomRepo interface {
	Insert(ctx context.Context, r models.Room) (models.Room, error)
	Get(ctx context.Context, id string) (models.Room, error)
	List(ctx context.Context, states []string) ([]models.Room, error)
	SetCleaningBy(ctx context.Context, id string, employee *string) error
	MarkCleaned(ctx context.Context, id string, at time.Time) error
	SetLastMaintenance(ctx context.Context, id string, at time.Time) error
}

type DeviceRepo interface {
	// Upsert merges: token is refreshed, available and created_at of an
	// existing registration are preserved.
	Upsert(ctx context.Context, d models.DeviceRegistration) error
	Get(ctx context.Context, deviceID string) (models.DeviceRegistration, error)
	ListAvailable(ctx context.Context) ([]models.DeviceRegistration, error)
	SetAvailable(ctx context.Context, deviceID string, available bool) error
	SetCustomMessage(ctx context.Context, deviceID string, msg models.CustomMessage) error
}

type CleaningLogRepo interface {
	Append(ctx context.Context, l models.CleaningLog) (models.CleaningLog, error)
	List(ctx context.Context, from, to time.Time, roomNumber string) ([]models.CleaningLog, error)
}

type MaintenanceLogRepo interface {
	Append(ctx context.Context, l models.MaintenanceLog) (models.MaintenanceLog, error)
	List(ctx context.Context, roomID string) ([]models.MaintenanceLog, error)
}

type ReportRepo interface {
	Create(ctx context.Context, r models.ProblemReport) (models.ProblemReport, error)
	Get(ctx context.Context, id string) (models.ProblemReport, error)
	List(ctx context.Context, unresolvedOnly bool) ([]models.ProblemReport, error)
	// MarkResolved flips resolved false -> true. It reports false when the
	// report was already resolved.
	MarkResolved(ctx context.Context, id string) (bool, error)
}

// TimerStore persists an open cleaning session keyed by room.
type TimerStore interface {
	Save(ctx context.Context, rec models.TimerRecord) error
	Load(ctx context.Context, roomID string) (models.TimerRecord, bool, error)
	Clear(ctx context.Context, roomID string) error
}

type Repository struct {
	Rooms           RoomRepo
	Devices         DeviceRepo
	CleaningLogs    CleaningLogRepo
	MaintenanceLogs MaintenanceLogRepo
	Reports         ReportRepo
	Timers          TimerStore
}

// NewRepository wires SQLite implementations. The timer store defaults to
// the timer_sessions table; callers may swap it for the Redis store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Rooms:           NewRoomSQLite(db),
		Devices:         NewDeviceSQLite(db),
		CleaningLogs:    NewCleaningLogSQLite(db),
		MaintenanceLogs: NewMaintenanceLogSQLite(db),
		Reports:         NewReportSQLite(db),
		Timers:          NewTimerSQLite(db),
	}
}

// nullTimePtr converts a scanned NullTime into a UTC pointer.
func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// nullStringPtr converts a scanned NullString into a pointer.
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
