package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/models"
	"hotel_ops/internal/realtime"

	"github.com/stretchr/testify/require"
)

type scriptedPermission struct {
	status   string
	answer   string
	requests int
}

func (p *scriptedPermission) Status(context.Context) (string, error) { return p.status, nil }

func (p *scriptedPermission) Request(context.Context) (string, error) {
	p.requests++
	return p.answer, nil
}

func newDeviceFixture(devs ...models.DeviceRegistration) (*DeviceService, *fakeDeviceRepo, *fakeNotifier) {
	repo := newFakeDeviceRepo(devs...)
	n := &fakeNotifier{}
	svc := NewDeviceService(repo, n, realtime.NewHub(), logger.Nop())
	return svc, repo, n
}

func TestResolveDeviceID(t *testing.T) {
	fallback := func() string { return "generated" }
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"build id wins", []string{"build", "install", "vendor"}, "build"},
		{"blank build id skipped", []string{"  ", "install", "vendor"}, "install"},
		{"vendor id last", []string{"", "", "vendor"}, "vendor"},
		{"fallback when all blank", []string{"", "", ""}, "generated"},
		{"fallback when no candidates", nil, "generated"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDeviceID(tc.candidates, fallback); got != tc.want {
				t.Fatalf("ResolveDeviceID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeviceService_RegisterDevice_Permissions(t *testing.T) {
	ctx := context.Background()

	t.Run("denied is terminal and never prompts", func(t *testing.T) {
		svc, repo, _ := newDeviceFixture()
		perm := &scriptedPermission{status: PermissionDenied}
		_, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: perm, Tokens: StaticToken("tok")})
		require.ErrorIs(t, err, ErrPermissionDenied)
		require.Zero(t, perm.requests)
		require.Empty(t, repo.devices)
	})

	t.Run("undetermined prompts once", func(t *testing.T) {
		svc, _, _ := newDeviceFixture()
		perm := &scriptedPermission{status: PermissionUndetermined, answer: PermissionGranted}
		id, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: perm, Tokens: StaticToken("tok")})
		require.NoError(t, err)
		require.Equal(t, "d1", id)
		require.Equal(t, 1, perm.requests)
	})

	t.Run("undetermined then refused", func(t *testing.T) {
		svc, _, _ := newDeviceFixture()
		perm := &scriptedPermission{status: PermissionUndetermined, answer: PermissionDenied}
		_, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: perm, Tokens: StaticToken("tok")})
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("prompt answered by the client", func(t *testing.T) {
		svc, repo, _ := newDeviceFixture()
		perm := PromptedPermission{Current: PermissionUndetermined, Answer: PermissionGranted}
		id, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: perm, Tokens: StaticToken("tok")})
		require.NoError(t, err)
		require.Equal(t, "d1", id)
		require.Contains(t, repo.devices, "d1")
	})

	t.Run("denied needs no token", func(t *testing.T) {
		svc, _, _ := newDeviceFixture()
		perm := PromptedPermission{Current: PermissionDenied}
		_, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: perm, Tokens: StaticToken("")})
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("granted without token", func(t *testing.T) {
		svc, repo, _ := newDeviceFixture()
		_, err := svc.RegisterDevice(ctx, RegistrationRequest{Candidates: []string{"d1"}, Permissions: StaticPermission(PermissionGranted), Tokens: StaticToken("  ")})
		require.ErrorIs(t, err, ErrPushTokenRequired)
		require.Empty(t, repo.devices)
	})
}

func TestPromptedPermission(t *testing.T) {
	ctx := context.Background()

	p := PromptedPermission{Current: PermissionUndetermined}
	got, err := p.Request(ctx)
	require.NoError(t, err)
	require.Equal(t, PermissionUndetermined, got)

	p.Answer = PermissionGranted
	got, err = p.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, PermissionUndetermined, got)
	got, err = p.Request(ctx)
	require.NoError(t, err)
	require.Equal(t, PermissionGranted, got)
}

func TestDeviceService_RegisterDevice_PreservesAvailability(t *testing.T) {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc, repo, _ := newDeviceFixture(models.DeviceRegistration{DeviceID: "d1", Token: "old", Available: false, CreatedAt: created})

	for i := 0; i < 2; i++ {
		id, err := svc.RegisterDevice(context.Background(), RegistrationRequest{
			Candidates:  []string{"d1"},
			Permissions: StaticPermission(PermissionGranted),
			Tokens:      StaticToken("new"),
		})
		require.NoError(t, err)
		require.Equal(t, "d1", id)
	}

	got := repo.devices["d1"]
	require.Equal(t, "new", got.Token)
	require.False(t, got.Available)
	require.True(t, got.CreatedAt.Equal(created))
	require.Len(t, repo.devices, 1)
}

func TestDeviceService_RegisterDevice_FallbackID(t *testing.T) {
	svc, repo, _ := newDeviceFixture()
	id, err := svc.RegisterDevice(context.Background(), RegistrationRequest{
		Permissions: StaticPermission(PermissionGranted),
		Tokens:      StaticToken("tok"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.True(t, repo.devices[id].Available)
}

func TestDeviceService_SetAvailabilityNegates(t *testing.T) {
	svc, repo, _ := newDeviceFixture(models.DeviceRegistration{DeviceID: "d1", Available: true})

	next, err := svc.SetAvailability(context.Background(), "d1", true)
	require.NoError(t, err)
	require.False(t, next)
	require.False(t, repo.devices["d1"].Available)

	_, err = svc.SetAvailability(context.Background(), "missing", true)
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeviceService_SubscribeAvailability(t *testing.T) {
	svc, _, _ := newDeviceFixture(
		models.DeviceRegistration{DeviceID: "d1", Available: true},
		models.DeviceRegistration{DeviceID: "d2", Available: true},
	)
	ctx := context.Background()

	got := make(chan bool, 8)
	cancel, err := svc.SubscribeAvailability(ctx, "d1", func(v bool) { got <- v })
	require.NoError(t, err)
	defer cancel()

	require.True(t, <-got)

	_, err = svc.SetAvailability(ctx, "d2", true)
	require.NoError(t, err)
	_, err = svc.SetAvailability(ctx, "d1", true)
	require.NoError(t, err)

	select {
	case v := <-got:
		require.False(t, v)
	case <-time.After(time.Second):
		t.Fatalf("no availability change delivered")
	}

	cancel()
	cancel()
}

func TestDeviceService_SubscribeAvailability_UnknownDevice(t *testing.T) {
	svc, _, _ := newDeviceFixture()
	_, err := svc.SubscribeAvailability(context.Background(), "nope", func(bool) {})
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestMessageSubscription_WatermarkDedupe(t *testing.T) {
	n := &fakeNotifier{}
	var shown []string
	sub := &MessageSubscription{
		deviceID:    "d1",
		onMessage:   func(m models.CustomMessage) { shown = append(shown, m.Text) },
		notifier:    n,
		window:      time.Hour,
		log:         logger.Nop(),
		unsubscribe: func() {},
		done:        make(chan struct{}),
	}
	defer sub.Close()

	t0 := time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.True(t, sub.offer(ctx, &models.CustomMessage{Text: "first", SentAt: t0}))
	require.False(t, sub.offer(ctx, &models.CustomMessage{Text: "same instant", SentAt: t0}))
	require.False(t, sub.offer(ctx, &models.CustomMessage{Text: "older", SentAt: t0.Add(-time.Minute)}))
	require.True(t, sub.offer(ctx, &models.CustomMessage{Text: "later", SentAt: t0.Add(time.Second)}))
	require.False(t, sub.offer(ctx, nil))

	require.Equal(t, []string{"first", "later"}, shown)
	require.Equal(t, 2, n.scheduledCount())
	require.True(t, n.scheduled[0].Sound)
	require.True(t, sub.Watermark().Equal(t0.Add(time.Second)))
}

func TestDeviceService_SubscribeCustomMessage_ClearsAfterWindow(t *testing.T) {
	sent := time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC)
	svc, _, _ := newDeviceFixture(models.DeviceRegistration{
		DeviceID:      "d1",
		CustomMessage: &models.CustomMessage{Text: "Go to floor 2", SentAt: sent},
	})
	svc.window = 10 * time.Millisecond

	var mu sync.Mutex
	var shown []string
	cleared := make(chan struct{}, 1)
	sub, err := svc.SubscribeCustomMessage(context.Background(), "d1",
		func(m models.CustomMessage) {
			mu.Lock()
			shown = append(shown, m.Text)
			mu.Unlock()
		},
		func() { cleared <- struct{}{} },
	)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatalf("message was not cleared")
	}

	svc.now = func() time.Time { return sent.Add(time.Minute) }
	_, err = svc.SetCustomMessage(context.Background(), "d1", "Lobby spill")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(shown) == 2 && shown[1] == "Lobby spill"
	}, time.Second, 5*time.Millisecond)
}

func TestDeviceService_SetCustomMessage_Validation(t *testing.T) {
	svc, _, _ := newDeviceFixture()
	_, err := svc.SetCustomMessage(context.Background(), "d1", " ")
	require.ErrorIs(t, err, ErrMessageRequired)
	_, err = svc.SetCustomMessage(context.Background(), "d1", "hi")
	require.True(t, errors.Is(err, ErrDeviceNotFound))
}
