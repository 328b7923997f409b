package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/push"
	"hotel_ops/internal/repository"
)

type fakeRoomRepo struct {
	mu              sync.Mutex
	rooms           map[string]models.Room
	setCleaningErr  error
	markCleanedErr  error
	setCleaningArgs []*string
}

func newFakeRoomRepo(rooms ...models.Room) *fakeRoomRepo {
	f := &fakeRoomRepo{rooms: map[string]models.Room{}}
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	return f
}

func (f *fakeRoomRepo) Insert(_ context.Context, r models.Room) (models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[r.ID] = r
	return r, nil
}

func (f *fakeRoomRepo) Get(_ context.Context, id string) (models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return models.Room{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoomRepo) List(_ context.Context, states []string) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Room
	for _, r := range f.rooms {
		if len(states) == 0 || contains(states, r.State) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeRoomRepo) SetCleaningBy(_ context.Context, id string, employee *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCleaningArgs = append(f.setCleaningArgs, employee)
	if f.setCleaningErr != nil {
		return f.setCleaningErr
	}
	r := f.rooms[id]
	r.CleaningBy = employee
	f.rooms[id] = r
	return nil
}

func (f *fakeRoomRepo) MarkCleaned(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markCleanedErr != nil {
		return f.markCleanedErr
	}
	r := f.rooms[id]
	r.State = models.RoomStateClean
	r.LastCleaned = &at
	r.CleaningBy = nil
	f.rooms[id] = r
	return nil
}

func (f *fakeRoomRepo) SetLastMaintenance(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.LastMaintenance = &at
	f.rooms[id] = r
	return nil
}

func (f *fakeRoomRepo) room(id string) models.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[id]
}

type fakeCleaningLogRepo struct {
	logs      []models.CleaningLog
	appendErr error
}

func (f *fakeCleaningLogRepo) Append(_ context.Context, l models.CleaningLog) (models.CleaningLog, error) {
	if f.appendErr != nil {
		return models.CleaningLog{}, f.appendErr
	}
	f.logs = append(f.logs, l)
	return l, nil
}

func (f *fakeCleaningLogRepo) List(_ context.Context, _, _ time.Time, _ string) ([]models.CleaningLog, error) {
	return f.logs, nil
}

type fakeTimerStore struct {
	mu      sync.Mutex
	recs    map[string]models.TimerRecord
	loadErr error
	saves   int
}

func newFakeTimerStore() *fakeTimerStore {
	return &fakeTimerStore{recs: map[string]models.TimerRecord{}}
}

func (f *fakeTimerStore) Save(_ context.Context, rec models.TimerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.recs[rec.RoomID] = rec
	return nil
}

func (f *fakeTimerStore) Load(_ context.Context, roomID string) (models.TimerRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return models.TimerRecord{}, false, f.loadErr
	}
	rec, ok := f.recs[roomID]
	return rec, ok, nil
}

func (f *fakeTimerStore) Clear(_ context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, roomID)
	return nil
}

func (f *fakeTimerStore) has(roomID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.recs[roomID]
	return ok
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]models.DeviceRegistration
	listErr error
}

func newFakeDeviceRepo(devs ...models.DeviceRegistration) *fakeDeviceRepo {
	f := &fakeDeviceRepo{devices: map[string]models.DeviceRegistration{}}
	for _, d := range devs {
		f.devices[d.DeviceID] = d
	}
	return f
}

func (f *fakeDeviceRepo) Upsert(_ context.Context, d models.DeviceRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.devices[d.DeviceID]; ok {
		cur.Token = d.Token
		f.devices[d.DeviceID] = cur
		return nil
	}
	f.devices[d.DeviceID] = d
	return nil
}

func (f *fakeDeviceRepo) Get(_ context.Context, id string) (models.DeviceRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok {
		return models.DeviceRegistration{}, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDeviceRepo) ListAvailable(_ context.Context) ([]models.DeviceRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.DeviceRegistration
	for _, d := range f.devices {
		if d.Available {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (f *fakeDeviceRepo) SetAvailable(_ context.Context, id string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Available = available
	f.devices[id] = d
	return nil
}

func (f *fakeDeviceRepo) SetCustomMessage(_ context.Context, id string, msg models.CustomMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.CustomMessage = &msg
	f.devices[id] = d
	return nil
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []push.Message
	fail map[string]bool
}

func (g *fakeGateway) Send(_ context.Context, msg push.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	if g.fail[msg.To] {
		return errors.New("gateway unavailable")
	}
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	scheduled []notify.Reminder
	dismissed []string
}

func (n *fakeNotifier) Schedule(_ context.Context, r notify.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scheduled = append(n.scheduled, r)
	return nil
}

func (n *fakeNotifier) Dismiss(_ context.Context, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dismissed = append(n.dismissed, key)
	return nil
}

func (n *fakeNotifier) scheduledCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.scheduled)
}

type fakeFanout struct {
	calls [][2]string
}

func (f *fakeFanout) NotifyAvailableDevices(_ context.Context, room, actor string) ([]DeliveryResult, error) {
	f.calls = append(f.calls, [2]string{room, actor})
	return nil, nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
