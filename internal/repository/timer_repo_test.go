package repository_test

import (
	"context"
	"testing"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseTimerStore(t *testing.T, store repository.TimerStore) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := store.Load(ctx, "r1"); err != nil || found {
		t.Fatalf("empty load: found=%v err=%v", found, err)
	}

	start := time.UnixMilli(1_700_000_000_123).UTC()
	rec := models.TimerRecord{
		RoomID:       "r1",
		StartTime:    start,
		TotalPaused:  10 * time.Second,
		EmployeeName: "Ana",
		RoomNumber:   "101",
		DeviceID:     "dev-1",
	}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec.TotalPaused = 25 * time.Second
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	got, found, err := store.Load(ctx, "r1")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if !got.StartTime.Equal(start) || got.TotalPaused != 25*time.Second {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.EmployeeName != "Ana" || got.RoomNumber != "101" || got.DeviceID != "dev-1" {
		t.Fatalf("metadata lost: %+v", got)
	}
	if !got.PauseStart.IsZero() {
		t.Fatalf("running record loaded with pause start %v", got.PauseStart)
	}

	pausedAt := start.Add(30 * time.Second)
	rec.PauseStart = pausedAt
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save paused: %v", err)
	}
	got, _, err = store.Load(ctx, "r1")
	if err != nil || !got.PauseStart.Equal(pausedAt) {
		t.Fatalf("pause start not persisted: %+v err=%v", got, err)
	}

	if err := store.Clear(ctx, "r1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found, _ := store.Load(ctx, "r1"); found {
		t.Fatalf("record survived Clear")
	}
}

func TestTimerSQLite_SaveLoadClear(t *testing.T) {
	repos := newSQLite(t)
	exerciseTimerStore(t, repos.Timers)
}

func TestTimerRedis_SaveLoadClear(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseTimerStore(t, repository.NewTimerRedis(rdb))
}

func TestTimerRedis_NoExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewTimerRedis(rdb)
	if err := store.Save(context.Background(), models.TimerRecord{RoomID: "r9", StartTime: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("timer-r9"); ttl != 0 {
		t.Fatalf("expected no TTL, got %v", ttl)
	}
}
