package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/metrics"
	"hotel_ops/internal/models"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"

	"github.com/google/uuid"
)

const (
	MaintenanceIntervalDays = 76
	ReminderWindowDays      = 7
)

// MaintenanceDue is the derived due state for one lastMaintenance value.
type MaintenanceDue struct {
	DaysSinceLast    int
	DaysLeft         int
	NeedsMaintenance bool
	ReminderDue      bool
}

// CalculateMaintenanceDue derives the due state from the last service date.
// A room never serviced counts as one day past the interval. A date in the
// future counts as serviced today.
func CalculateMaintenanceDue(last *time.Time, now time.Time) MaintenanceDue {
	days := MaintenanceIntervalDays + 1
	if last != nil {
		days = int(now.Sub(*last) / (24 * time.Hour))
		if days < 0 {
			days = 0
		}
	}
	return MaintenanceDue{
		DaysSinceLast:    days,
		DaysLeft:         MaintenanceIntervalDays - days,
		NeedsMaintenance: days >= MaintenanceIntervalDays,
		ReminderDue:      days >= MaintenanceIntervalDays-ReminderWindowDays,
	}
}

type MaintenanceService struct {
	rooms    repository.RoomRepo
	logs     repository.MaintenanceLogRepo
	notifier notify.LocalNotifier
	hub      *realtime.Hub
	log      *logger.Logger
	now      func() time.Time
}

func NewMaintenanceService(rooms repository.RoomRepo, logs repository.MaintenanceLogRepo, notifier notify.LocalNotifier, hub *realtime.Hub, log *logger.Logger) *MaintenanceService {
	return &MaintenanceService{
		rooms:    rooms,
		logs:     logs,
		notifier: notifier,
		hub:      hub,
		log:      log.Named("maintenance"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func maintenanceReminder(room models.Room, due MaintenanceDue) notify.Reminder {
	body := fmt.Sprintf("Room %s needs maintenance in %d days", room.Number, due.DaysLeft)
	if due.NeedsMaintenance {
		body = fmt.Sprintf("Room %s is overdue for maintenance", room.Number)
	}
	return notify.Reminder{
		Key:   "maintenance-" + room.ID,
		Title: "Maintenance reminder",
		Body:  body,
		Sound: true,
	}
}

// CheckUpcomingMaintenance emits one reminder per room that is inside the
// reminder window or past the interval, and returns how many it emitted.
// Nothing records that a room was already reminded.
func (s *MaintenanceService) CheckUpcomingMaintenance(ctx context.Context) (int, error) {
	rooms, err := s.rooms.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list rooms: %w", err)
	}

	now := s.now()
	sent := 0
	for _, room := range rooms {
		due := CalculateMaintenanceDue(room.LastMaintenance, now)
		if !due.ReminderDue {
			continue
		}
		if err := s.notifier.Schedule(ctx, maintenanceReminder(room, due)); err != nil {
			s.log.Warnw("maintenance_reminder_failed", "room", room.Number, "err", err)
			continue
		}
		sent++
		metrics.MaintenanceReminders.Inc()
	}
	s.log.Infow("maintenance_sweep_done", "rooms", len(rooms), "reminders", sent)
	return sent, nil
}

// ListStatus returns the due state of every room, most urgent first.
func (s *MaintenanceService) ListStatus(ctx context.Context) ([]models.MaintenanceStatus, error) {
	rooms, err := s.rooms.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	now := s.now()
	out := make([]models.MaintenanceStatus, 0, len(rooms))
	for _, room := range rooms {
		due := CalculateMaintenanceDue(room.LastMaintenance, now)
		out = append(out, models.MaintenanceStatus{
			RoomID:           room.ID,
			RoomNumber:       room.Number,
			LastMaintenance:  room.LastMaintenance,
			DaysSinceLast:    due.DaysSinceLast,
			DaysLeft:         due.DaysLeft,
			NeedsMaintenance: due.NeedsMaintenance,
			ReminderDue:      due.ReminderDue,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out, nil
}

// LogMaintenance records a done or skipped action. Done also moves the
// room's lastMaintenance to now; the two writes are not atomic.
func (s *MaintenanceService) LogMaintenance(ctx context.Context, roomID, action string) (models.MaintenanceLog, error) {
	if action != models.MaintenanceDone && action != models.MaintenanceSkipped {
		return models.MaintenanceLog{}, ErrInvalidAction
	}
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.MaintenanceLog{}, ErrRoomNotFound
		}
		return models.MaintenanceLog{}, fmt.Errorf("load room %s: %w", roomID, err)
	}

	now := s.now()
	entry, err := s.logs.Append(ctx, models.MaintenanceLog{
		ID:         uuid.NewString(),
		RoomID:     room.ID,
		RoomNumber: room.Number,
		Action:     action,
		LoggedAt:   now,
	})
	if err != nil {
		return models.MaintenanceLog{}, fmt.Errorf("append maintenance log: %w", err)
	}
	if action == models.MaintenanceDone {
		if err := s.rooms.SetLastMaintenance(ctx, room.ID, now); err != nil {
			return entry, fmt.Errorf("set last maintenance of %s: %w", room.Number, err)
		}
		room.LastMaintenance = &now
		s.hub.Publish(realtime.Event{Topic: realtime.TopicRooms, Type: "updated", Key: room.ID, Data: room})
	}
	s.log.Infow("maintenance_logged", "room", room.Number, "action", action)
	return entry, nil
}

func (s *MaintenanceService) History(ctx context.Context, roomID string) ([]models.MaintenanceLog, error) {
	return s.logs.List(ctx, roomID)
}
