package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/metrics"
	"hotel_ops/internal/models"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"

	"github.com/google/uuid"
)

// DefaultTickInterval is how often a running session publishes its elapsed time.
const DefaultTickInterval = time.Second

type openSession struct {
	models.CleaningSession
	stopTick func()
	// stopLog is the cleaning log already appended by a Stop whose room
	// update failed; a retried Stop reuses it.
	stopLog *models.CleaningLog
}

// SessionService owns the open cleaning sessions of this process, one per room.
type SessionService struct {
	rooms    repository.RoomRepo
	logs     repository.CleaningLogRepo
	timers   repository.TimerStore
	fanout   Fanout
	notifier notify.LocalNotifier
	hub      *realtime.Hub
	log      *logger.Logger
	now      func() time.Time
	tick     time.Duration

	mu       sync.Mutex
	sessions map[string]*openSession
}

func NewSessionService(repos *repository.Repository, fanout Fanout, notifier notify.LocalNotifier, hub *realtime.Hub, log *logger.Logger, tick time.Duration) *SessionService {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &SessionService{
		rooms:    repos.Rooms,
		logs:     repos.CleaningLogs,
		timers:   repos.Timers,
		fanout:   fanout,
		notifier: notifier,
		hub:      hub,
		log:      log.Named("sessions"),
		now:      func() time.Time { return time.Now().UTC() },
		tick:     tick,
		sessions: map[string]*openSession{},
	}
}

func roomReminderKey(roomID string) string { return "room-" + roomID }

func inProgressReminder(s models.CleaningSession) notify.Reminder {
	return notify.Reminder{
		Key:    roomReminderKey(s.RoomID),
		Title:  "Cleaning in progress",
		Body:   fmt.Sprintf("Room %s is being cleaned by %s", s.RoomNumber, s.EmployeeName),
		Sticky: true,
	}
}

// Start moves an idle room to running, or resumes a paused one. Starting a
// running session from the same device, or without a device id, is a no-op.
// Another device starting an open room takes it over: the lock is rewritten
// with its employee and the last writer wins.
func (s *SessionService) Start(ctx context.Context, p StartParams) (models.CleaningSession, error) {
	name := strings.TrimSpace(p.EmployeeName)
	if name == "" {
		return models.CleaningSession{}, ErrEmployeeRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.lookupLocked(ctx, p.RoomID)
	if sess != nil {
		if p.DeviceID != "" && p.DeviceID != sess.DeviceID {
			return s.takeOverLocked(ctx, sess, name, p.DeviceID, now)
		}
		switch sess.Status {
		case models.SessionRunning:
			return s.snapshot(sess, now), nil
		case models.SessionPaused:
			s.resumeLocked(ctx, sess, now)
			return s.snapshot(sess, now), nil
		}
	}

	room, err := s.rooms.Get(ctx, p.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.CleaningSession{}, ErrRoomNotFound
		}
		return models.CleaningSession{}, fmt.Errorf("load room %s: %w", p.RoomID, err)
	}

	sess = &openSession{CleaningSession: models.CleaningSession{
		RoomID:       room.ID,
		RoomNumber:   room.Number,
		EmployeeName: name,
		DeviceID:     p.DeviceID,
		Status:       models.SessionRunning,
		StartTime:    now,
	}}
	s.sessions[room.ID] = sess
	s.saveTimer(ctx, sess)
	s.startTick(sess)
	s.transitioned(sess, now)

	return s.claimLocked(ctx, sess, now)
}

func (s *SessionService) resumeLocked(ctx context.Context, sess *openSession, now time.Time) {
	sess.TotalPaused += now.Sub(sess.PauseStart)
	sess.PauseStart = time.Time{}
	sess.Status = models.SessionRunning
	s.saveTimer(ctx, sess)
	s.startTick(sess)
	s.transitioned(sess, now)
}

// takeOverLocked hands an open session to another device. The elapsed time
// carries on; a paused session resumes.
func (s *SessionService) takeOverLocked(ctx context.Context, sess *openSession, name, deviceID string, now time.Time) (models.CleaningSession, error) {
	s.log.Infow("session_taken_over", "room", sess.RoomNumber, "from", sess.EmployeeName, "to", name)
	sess.EmployeeName = name
	sess.DeviceID = deviceID
	if sess.Status == models.SessionPaused {
		s.resumeLocked(ctx, sess, now)
	} else {
		s.saveTimer(ctx, sess)
	}
	return s.claimLocked(ctx, sess, now)
}

// claimLocked writes the room lock for the session's employee, then tells
// the other devices and schedules the in-progress reminder.
func (s *SessionService) claimLocked(ctx context.Context, sess *openSession, now time.Time) (models.CleaningSession, error) {
	name := sess.EmployeeName
	if err := s.rooms.SetCleaningBy(ctx, sess.RoomID, &name); err != nil {
		return s.snapshot(sess, now), fmt.Errorf("lock room %s: %w", sess.RoomNumber, err)
	}
	s.publishRoom(ctx, sess.RoomID)

	if _, err := s.fanout.NotifyAvailableDevices(ctx, sess.RoomNumber, name); err != nil {
		s.log.Errorw("fanout_failed", "room", sess.RoomNumber, "err", err)
	}
	if err := s.notifier.Schedule(ctx, inProgressReminder(sess.CleaningSession)); err != nil {
		s.log.Warnw("reminder_schedule_failed", "room", sess.RoomNumber, "err", err)
	}
	return s.snapshot(sess, now), nil
}

// Pause freezes elapsed time. Only the local timer store is written.
func (s *SessionService) Pause(ctx context.Context, roomID string) (models.CleaningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.lookupLocked(ctx, roomID)
	if sess == nil || sess.Status != models.SessionRunning {
		return models.CleaningSession{}, fmt.Errorf("pause room %s: %w", roomID, ErrInvalidTransition)
	}
	sess.stopTick()
	sess.PauseStart = now
	sess.Status = models.SessionPaused
	s.saveTimer(ctx, sess)
	s.transitioned(sess, now)
	return s.snapshot(sess, now), nil
}

// Stop completes the session after confirmation: it appends a cleaning log,
// marks the room clean and releases the lock in one write, then clears
// local state. A failed remote write leaves the session open.
func (s *SessionService) Stop(ctx context.Context, roomID string, c Confirmer) (models.CleaningLog, error) {
	if err := s.confirm(ctx, roomID, c, "Finish cleaning room %s?"); err != nil {
		return models.CleaningLog{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.lookupLocked(ctx, roomID)
	if sess == nil || !isOpen(sess.Status) {
		return models.CleaningLog{}, fmt.Errorf("stop room %s: %w", roomID, ErrInvalidTransition)
	}

	paused := sess.TotalPaused
	if sess.Status == models.SessionPaused {
		paused += now.Sub(sess.PauseStart)
	}

	if sess.stopLog == nil {
		duration := now.Sub(sess.StartTime) - paused
		if duration < 0 {
			duration = 0
		}
		entry, err := s.logs.Append(ctx, models.CleaningLog{
			ID:              uuid.NewString(),
			RoomID:          sess.RoomID,
			RoomNumber:      sess.RoomNumber,
			StartedAt:       sess.StartTime,
			EndedAt:         now,
			DurationMinutes: durationMinutes(duration),
			EmployeeName:    sess.EmployeeName,
			DeviceID:        sess.DeviceID,
		})
		if err != nil {
			return models.CleaningLog{}, fmt.Errorf("append cleaning log: %w", err)
		}
		sess.stopLog = &entry
	}
	entry := *sess.stopLog
	if err := s.rooms.MarkCleaned(ctx, sess.RoomID, now); err != nil {
		return entry, fmt.Errorf("mark room %s clean: %w", sess.RoomNumber, err)
	}

	sess.TotalPaused = paused
	sess.PauseStart = time.Time{}
	sess.Status = models.SessionCompleted
	s.closeLocked(ctx, sess, now)
	return entry, nil
}

// Cancel abandons the session after confirmation. No cleaning log is written.
func (s *SessionService) Cancel(ctx context.Context, roomID string, c Confirmer) (models.CleaningSession, error) {
	if err := s.confirm(ctx, roomID, c, "Cancel cleaning room %s?"); err != nil {
		return models.CleaningSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.lookupLocked(ctx, roomID)
	if sess == nil || !isOpen(sess.Status) {
		return models.CleaningSession{}, fmt.Errorf("cancel room %s: %w", roomID, ErrInvalidTransition)
	}
	if err := s.rooms.SetCleaningBy(ctx, sess.RoomID, nil); err != nil {
		return models.CleaningSession{}, fmt.Errorf("unlock room %s: %w", sess.RoomNumber, err)
	}

	sess.Status = models.SessionCancelled
	s.closeLocked(ctx, sess, now)
	return models.CleaningSession{
		RoomID:     sess.RoomID,
		RoomNumber: sess.RoomNumber,
		Status:     models.SessionCancelled,
	}, nil
}

// Get returns the room's session, recovering it from the timer store when
// this process holds none. A room without a session reads as idle.
func (s *SessionService) Get(ctx context.Context, roomID string) (models.CleaningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := s.lookupLocked(ctx, roomID)
	if sess == nil {
		return models.CleaningSession{RoomID: roomID, Status: models.SessionIdle}, nil
	}
	return s.snapshot(sess, now), nil
}

// Background is called when the client app goes to the background. A
// running session schedules its in-progress reminder.
func (s *SessionService) Background(ctx context.Context, roomID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[roomID]
	var snap models.CleaningSession
	if ok {
		snap = sess.CleaningSession
	}
	s.mu.Unlock()

	if !ok || snap.Status != models.SessionRunning {
		return nil
	}
	return s.notifier.Schedule(ctx, inProgressReminder(snap))
}

// Close stops every tick goroutine. Open sessions stay in the timer store.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.stopTick != nil {
			sess.stopTick()
		}
	}
}

func (s *SessionService) confirm(ctx context.Context, roomID string, c Confirmer, prompt string) error {
	s.mu.Lock()
	sess := s.lookupLocked(ctx, roomID)
	open := sess != nil && isOpen(sess.Status)
	var number string
	if open {
		number = sess.RoomNumber
	}
	s.mu.Unlock()

	if !open {
		return fmt.Errorf("room %s: %w", roomID, ErrInvalidTransition)
	}
	if c == nil {
		return ErrNotConfirmed
	}
	ok, err := c.Confirm(ctx, fmt.Sprintf(prompt, number))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}

// lookupLocked returns the in-memory session or recovers one from the timer
// store, paused if it was saved paused. Store failures read as "no session".
func (s *SessionService) lookupLocked(ctx context.Context, roomID string) *openSession {
	if sess, ok := s.sessions[roomID]; ok {
		return sess
	}
	rec, found, err := s.timers.Load(ctx, roomID)
	if err != nil {
		s.log.Warnw("timer_load_failed", "room_id", roomID, "err", err)
		return nil
	}
	if !found {
		return nil
	}

	sess := &openSession{CleaningSession: models.CleaningSession{
		RoomID:       roomID,
		RoomNumber:   rec.RoomNumber,
		EmployeeName: rec.EmployeeName,
		DeviceID:     rec.DeviceID,
		Status:       models.SessionRunning,
		StartTime:    rec.StartTime,
		TotalPaused:  rec.TotalPaused,
		PauseStart:   rec.PauseStart,
	}}
	s.sessions[roomID] = sess
	if rec.PauseStart.IsZero() {
		s.startTick(sess)
	} else {
		sess.Status = models.SessionPaused
		sess.stopTick = func() {}
	}
	s.log.Infow("session_recovered", "room", rec.RoomNumber, "employee", rec.EmployeeName, "status", sess.Status)
	return sess
}

func (s *SessionService) closeLocked(ctx context.Context, sess *openSession, now time.Time) {
	sess.stopTick()
	if err := s.timers.Clear(ctx, sess.RoomID); err != nil {
		s.log.Warnw("timer_clear_failed", "room_id", sess.RoomID, "err", err)
	}
	if err := s.notifier.Dismiss(ctx, roomReminderKey(sess.RoomID)); err != nil {
		s.log.Warnw("reminder_dismiss_failed", "room_id", sess.RoomID, "err", err)
	}
	delete(s.sessions, sess.RoomID)
	s.transitioned(sess, now)
	s.publishRoom(ctx, sess.RoomID)
}

func (s *SessionService) saveTimer(ctx context.Context, sess *openSession) {
	err := s.timers.Save(ctx, models.TimerRecord{
		RoomID:       sess.RoomID,
		StartTime:    sess.StartTime,
		TotalPaused:  sess.TotalPaused,
		PauseStart:   sess.PauseStart,
		EmployeeName: sess.EmployeeName,
		RoomNumber:   sess.RoomNumber,
		DeviceID:     sess.DeviceID,
	})
	if err != nil {
		s.log.Warnw("timer_save_failed", "room_id", sess.RoomID, "err", err)
	}
}

// startTick publishes the elapsed time of a running session until stopped.
// The goroutine works on a copy so it never takes s.mu.
func (s *SessionService) startTick(sess *openSession) {
	snap := sess.CleaningSession
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		t := time.NewTicker(s.tick)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				now := s.now()
				s.hub.Publish(realtime.Event{
					Topic: realtime.TopicSessions,
					Type:  "tick",
					Key:   snap.RoomID,
					Data:  map[string]any{"elapsed_seconds": int64(snap.Elapsed(now) / time.Second)},
					At:    now,
				})
			}
		}
	}()

	var once sync.Once
	sess.stopTick = func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *SessionService) transitioned(sess *openSession, now time.Time) {
	metrics.SessionTransitions.WithLabelValues(sess.Status).Inc()
	s.hub.Publish(realtime.Event{
		Topic: realtime.TopicSessions,
		Type:  sess.Status,
		Key:   sess.RoomID,
		Data:  s.snapshot(sess, now),
		At:    now,
	})
	s.log.Infow("session_"+sess.Status, "room", sess.RoomNumber, "employee", sess.EmployeeName)
}

func (s *SessionService) publishRoom(ctx context.Context, roomID string) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		s.log.Warnw("room_reload_failed", "room_id", roomID, "err", err)
		return
	}
	s.hub.Publish(realtime.Event{Topic: realtime.TopicRooms, Type: "updated", Key: room.ID, Data: room})
}

func (s *SessionService) snapshot(sess *openSession, now time.Time) models.CleaningSession {
	out := sess.CleaningSession
	out.ElapsedSeconds = int64(out.Elapsed(now) / time.Second)
	return out
}

func isOpen(status string) bool {
	return status == models.SessionRunning || status == models.SessionPaused
}

// durationMinutes rounds whole elapsed seconds up to the next minute.
func durationMinutes(d time.Duration) int {
	secs := int64(d / time.Second)
	return int((secs + 59) / 60)
}
