package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/models"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"

	"github.com/google/uuid"
)

// MessageDisplayWindow is how long a surfaced custom message stays on screen.
const MessageDisplayWindow = 10 * time.Second

// Notification permission states.
const (
	PermissionGranted      = "granted"
	PermissionDenied       = "denied"
	PermissionUndetermined = "undetermined"
)

// PermissionPrompter reads and requests the notification permission.
type PermissionPrompter interface {
	Status(ctx context.Context) (string, error)
	Request(ctx context.Context) (string, error)
}

// TokenSource yields the push token of this installation.
type TokenSource interface {
	PushToken(ctx context.Context) (string, error)
}

// RegistrationRequest carries the device id candidates in priority order
// (build id, install id, vendor id) plus the platform hooks.
type RegistrationRequest struct {
	Candidates  []string
	Permissions PermissionPrompter
	Tokens      TokenSource
}

// StaticPermission answers every permission query with the same status.
type StaticPermission string

func (p StaticPermission) Status(context.Context) (string, error)  { return string(p), nil }
func (p StaticPermission) Request(context.Context) (string, error) { return string(p), nil }

// PromptedPermission replays a permission flow the client already ran:
// Current is the status before prompting, Answer the user's response to the
// prompt. An empty Answer repeats Current.
type PromptedPermission struct {
	Current string
	Answer  string
}

func (p PromptedPermission) Status(context.Context) (string, error) { return p.Current, nil }

func (p PromptedPermission) Request(context.Context) (string, error) {
	if p.Answer == "" {
		return p.Current, nil
	}
	return p.Answer, nil
}

// StaticToken is a TokenSource for a token obtained by the caller.
type StaticToken string

func (t StaticToken) PushToken(context.Context) (string, error) { return string(t), nil }

// ResolveDeviceID returns the first non-blank candidate, or fallback().
func ResolveDeviceID(candidates []string, fallback func() string) string {
	for _, p := range candidates {
		if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return fallback()
}

// timeBasedID is a UUIDv7, so ids minted on first launch sort by time.
func timeBasedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type DeviceService struct {
	repo     repository.DeviceRepo
	notifier notify.LocalNotifier
	hub      *realtime.Hub
	log      *logger.Logger
	now      func() time.Time
	window   time.Duration
}

func NewDeviceService(repo repository.DeviceRepo, notifier notify.LocalNotifier, hub *realtime.Hub, log *logger.Logger) *DeviceService {
	return &DeviceService{
		repo:     repo,
		notifier: notifier,
		hub:      hub,
		log:      log.Named("devices"),
		now:      func() time.Time { return time.Now().UTC() },
		window:   MessageDisplayWindow,
	}
}

// RegisterDevice checks the notification permission, resolves the device id,
// fetches the push token and upserts the registration. Re-registering keeps
// the stored availability flag.
func (s *DeviceService) RegisterDevice(ctx context.Context, req RegistrationRequest) (string, error) {
	if req.Permissions == nil || req.Tokens == nil {
		return "", errors.New("register device: permission and token sources are required")
	}
	status, err := req.Permissions.Status(ctx)
	if err != nil {
		return "", fmt.Errorf("read permission: %w", err)
	}
	switch status {
	case PermissionGranted:
	case PermissionUndetermined:
		status, err = req.Permissions.Request(ctx)
		if err != nil {
			return "", fmt.Errorf("request permission: %w", err)
		}
		if status != PermissionGranted {
			return "", ErrPermissionDenied
		}
	default:
		return "", ErrPermissionDenied
	}

	deviceID := ResolveDeviceID(req.Candidates, timeBasedID)
	token, err := req.Tokens.PushToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch push token: %w", err)
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrPushTokenRequired
	}

	err = s.repo.Upsert(ctx, models.DeviceRegistration{
		DeviceID:  deviceID,
		Token:     token,
		Available: true,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("upsert device %s: %w", deviceID, err)
	}
	s.log.Infow("device_registered", "device_id", deviceID)
	s.publish(ctx, deviceID)
	return deviceID, nil
}

// SubscribeAvailability calls onChange with the current flag and again on
// every change of the registration until cancel is called or ctx ends.
func (s *DeviceService) SubscribeAvailability(ctx context.Context, deviceID string, onChange func(available bool)) (func(), error) {
	events, unsubscribe := s.hub.Subscribe(realtime.TopicDevices)

	reg, err := s.GetDevice(ctx, deviceID)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	onChange(reg.Available)

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if r, match := deviceEvent(ev, deviceID); match {
					onChange(r.Available)
				}
			}
		}
	}()
	return cancel, nil
}

// MessageSubscription delivers operator messages for one device. It keeps
// its own watermark: a message surfaces only if it was sent strictly after
// the last one this subscription surfaced.
type MessageSubscription struct {
	deviceID  string
	onMessage func(models.CustomMessage)
	onClear   func()
	notifier  notify.LocalNotifier
	window    time.Duration
	log       *logger.Logger

	mu        sync.Mutex
	watermark time.Time
	clear     *time.Timer
	closed    bool

	unsubscribe func()
	done        chan struct{}
	once        sync.Once
}

// Watermark is the sentAt of the last surfaced message.
func (m *MessageSubscription) Watermark() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watermark
}

func (m *MessageSubscription) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		if m.clear != nil {
			m.clear.Stop()
		}
		m.mu.Unlock()
		if m.done != nil {
			close(m.done)
		}
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
	})
}

// offer surfaces msg unless it is not newer than the watermark.
func (m *MessageSubscription) offer(ctx context.Context, msg *models.CustomMessage) bool {
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return false
	}

	m.mu.Lock()
	if m.closed || !msg.SentAt.After(m.watermark) {
		m.mu.Unlock()
		return false
	}
	m.watermark = msg.SentAt
	if m.clear != nil {
		m.clear.Stop()
	}
	if m.onClear != nil {
		m.clear = time.AfterFunc(m.window, m.onClear)
	}
	m.mu.Unlock()

	err := m.notifier.Schedule(ctx, notify.Reminder{
		Key:   "device-" + m.deviceID,
		Title: "New message",
		Body:  msg.Text,
		Sound: true,
	})
	if err != nil {
		m.log.Warnw("message_notification_failed", "device_id", m.deviceID, "err", err)
	}
	m.onMessage(*msg)
	return true
}

// SubscribeCustomMessage surfaces the device's current message, if any, and
// every newer one after it. onClear runs when the display window ends.
func (s *DeviceService) SubscribeCustomMessage(ctx context.Context, deviceID string, onMessage func(models.CustomMessage), onClear func()) (*MessageSubscription, error) {
	events, unsubscribe := s.hub.Subscribe(realtime.TopicDevices)

	reg, err := s.GetDevice(ctx, deviceID)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	sub := &MessageSubscription{
		deviceID:    deviceID,
		onMessage:   onMessage,
		onClear:     onClear,
		notifier:    s.notifier,
		window:      s.window,
		log:         s.log,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}
	sub.offer(ctx, reg.CustomMessage)

	go func() {
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case <-sub.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if r, match := deviceEvent(ev, deviceID); match {
					sub.offer(ctx, r.CustomMessage)
				}
			}
		}
	}()
	return sub, nil
}

// SetAvailability writes the negation of current and returns the new flag.
func (s *DeviceService) SetAvailability(ctx context.Context, deviceID string, current bool) (bool, error) {
	if _, err := s.GetDevice(ctx, deviceID); err != nil {
		return current, err
	}
	next := !current
	if err := s.repo.SetAvailable(ctx, deviceID, next); err != nil {
		return current, fmt.Errorf("set availability of %s: %w", deviceID, err)
	}
	s.log.Infow("device_availability_changed", "device_id", deviceID, "available", next)
	s.publish(ctx, deviceID)
	return next, nil
}

// SetCustomMessage stores an operator message stamped with the current time.
func (s *DeviceService) SetCustomMessage(ctx context.Context, deviceID, text string) (models.CustomMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.CustomMessage{}, ErrMessageRequired
	}
	if _, err := s.GetDevice(ctx, deviceID); err != nil {
		return models.CustomMessage{}, err
	}
	msg := models.CustomMessage{Text: text, SentAt: s.now()}
	if err := s.repo.SetCustomMessage(ctx, deviceID, msg); err != nil {
		return models.CustomMessage{}, fmt.Errorf("set message of %s: %w", deviceID, err)
	}
	s.publish(ctx, deviceID)
	return msg, nil
}

func (s *DeviceService) GetDevice(ctx context.Context, deviceID string) (models.DeviceRegistration, error) {
	reg, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.DeviceRegistration{}, ErrDeviceNotFound
		}
		return models.DeviceRegistration{}, fmt.Errorf("load device %s: %w", deviceID, err)
	}
	return reg, nil
}

func (s *DeviceService) publish(ctx context.Context, deviceID string) {
	reg, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		s.log.Warnw("device_reload_failed", "device_id", deviceID, "err", err)
		return
	}
	s.hub.Publish(realtime.Event{Topic: realtime.TopicDevices, Type: "updated", Key: deviceID, Data: reg})
}

func deviceEvent(ev realtime.Event, deviceID string) (models.DeviceRegistration, bool) {
	if ev.Key != deviceID {
		return models.DeviceRegistration{}, false
	}
	reg, ok := ev.Data.(models.DeviceRegistration)
	return reg, ok
}
