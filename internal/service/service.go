package service

import (
	"context"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/models"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/push"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"
	"hotel_ops/internal/storage"
)

// Sessions drives the per-room cleaning session state machine.
type Sessions interface {
	Start(ctx context.Context, p StartParams) (models.CleaningSession, error)
	Pause(ctx context.Context, roomID string) (models.CleaningSession, error)
	Stop(ctx context.Context, roomID string, c Confirmer) (models.CleaningLog, error)
	Cancel(ctx context.Context, roomID string, c Confirmer) (models.CleaningSession, error)
	Get(ctx context.Context, roomID string) (models.CleaningSession, error)
	Background(ctx context.Context, roomID string) error
	Close()
}

// Devices is the device registry client.
type Devices interface {
	RegisterDevice(ctx context.Context, req RegistrationRequest) (string, error)
	SubscribeAvailability(ctx context.Context, deviceID string, onChange func(available bool)) (func(), error)
	SubscribeCustomMessage(ctx context.Context, deviceID string, onMessage func(models.CustomMessage), onClear func()) (*MessageSubscription, error)
	SetAvailability(ctx context.Context, deviceID string, current bool) (bool, error)
	SetCustomMessage(ctx context.Context, deviceID, text string) (models.CustomMessage, error)
	GetDevice(ctx context.Context, deviceID string) (models.DeviceRegistration, error)
}

// Fanout pushes a "cleaning started" alert to every available device.
type Fanout interface {
	NotifyAvailableDevices(ctx context.Context, roomLabel, actorName string) ([]DeliveryResult, error)
}

type Maintenance interface {
	CheckUpcomingMaintenance(ctx context.Context) (int, error)
	ListStatus(ctx context.Context) ([]models.MaintenanceStatus, error)
	LogMaintenance(ctx context.Context, roomID, action string) (models.MaintenanceLog, error)
	History(ctx context.Context, roomID string) ([]models.MaintenanceLog, error)
}

// Rooms exposes read-only room documents.
type Rooms interface {
	List(ctx context.Context, states ...string) ([]models.Room, error)
	Get(ctx context.Context, id string) (models.Room, error)
}

type Reports interface {
	Create(ctx context.Context, p CreateReportParams) (models.ProblemReport, error)
	List(ctx context.Context, f ReportFilter) ([]models.ProblemReport, error)
	Resolve(ctx context.Context, id string) (models.ProblemReport, error)
}

// CleaningLogs exposes the append-only cleaning history with filtering.
type CleaningLogs interface {
	List(ctx context.Context, f LogFilter) ([]models.CleaningLog, error)
}

// Service aggregates all sub-services.
type Service struct {
	Sessions     Sessions
	Devices      Devices
	Fanout       Fanout
	Maintenance  Maintenance
	Rooms        Rooms
	Reports      Reports
	CleaningLogs CleaningLogs
	Notifier     notify.LocalNotifier
}

// Deps carries what NewService wires together. Blobs may be nil, in which
// case reports with a photo are rejected.
type Deps struct {
	Repos        *repository.Repository
	Hub          *realtime.Hub
	Push         push.Gateway
	Notifier     notify.LocalNotifier
	Blobs        storage.BlobStore
	Log          *logger.Logger
	TickInterval time.Duration
}

func NewService(d Deps) *Service {
	fanout := NewFanoutService(d.Repos.Devices, d.Push, d.Log)
	return &Service{
		Sessions:     NewSessionService(d.Repos, fanout, d.Notifier, d.Hub, d.Log, d.TickInterval),
		Devices:      NewDeviceService(d.Repos.Devices, d.Notifier, d.Hub, d.Log),
		Fanout:       fanout,
		Maintenance:  NewMaintenanceService(d.Repos.Rooms, d.Repos.MaintenanceLogs, d.Notifier, d.Hub, d.Log),
		Rooms:        NewRoomService(d.Repos.Rooms),
		Reports:      NewReportService(d.Repos.Reports, d.Blobs, d.Hub),
		CleaningLogs: NewCleaningLogService(d.Repos.CleaningLogs),
		Notifier:     d.Notifier,
	}
}
