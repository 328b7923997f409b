package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hotel_ops/internal/models"

	"github.com/redis/go-redis/v9"
)

// TimerRedis keeps open sessions as JSON values under "timer-<roomID>".
// Keys never expire; they are removed on completion or cancellation.
type TimerRedis struct {
	rdb *redis.Client
}

func NewTimerRedis(rdb *redis.Client) *TimerRedis {
	return &TimerRedis{rdb: rdb}
}

var _ TimerStore = (*TimerRedis)(nil)

func timerKey(roomID string) string { return "timer-" + roomID }

// timerValue is the stored shape: epoch milliseconds, like a client clock.
type timerValue struct {
	StartTime       int64  `json:"startTime"`
	TotalPausedTime int64  `json:"totalPausedTime"`
	PauseStart      int64  `json:"pauseStart,omitempty"`
	EmployeeName    string `json:"employeeName,omitempty"`
	RoomNumber      string `json:"roomNumber,omitempty"`
	DeviceID        string `json:"deviceId,omitempty"`
}

func (c *TimerRedis) Save(ctx context.Context, rec models.TimerRecord) error {
	b, err := json.Marshal(timerValue{
		StartTime:       rec.StartTime.UnixMilli(),
		TotalPausedTime: rec.TotalPaused.Milliseconds(),
		PauseStart:      unixMilliOrZero(rec.PauseStart),
		EmployeeName:    rec.EmployeeName,
		RoomNumber:      rec.RoomNumber,
		DeviceID:        rec.DeviceID,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, timerKey(rec.RoomID), b, 0).Err()
}

func (c *TimerRedis) Load(ctx context.Context, roomID string) (models.TimerRecord, bool, error) {
	b, err := c.rdb.Get(ctx, timerKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.TimerRecord{}, false, nil
	}
	if err != nil {
		return models.TimerRecord{}, false, err
	}
	var v timerValue
	if err := json.Unmarshal(b, &v); err != nil {
		return models.TimerRecord{}, false, err
	}
	return models.TimerRecord{
		RoomID:       roomID,
		StartTime:    time.UnixMilli(v.StartTime).UTC(),
		TotalPaused:  time.Duration(v.TotalPausedTime) * time.Millisecond,
		PauseStart:   timeFromUnixMilli(v.PauseStart),
		EmployeeName: v.EmployeeName,
		RoomNumber:   v.RoomNumber,
		DeviceID:     v.DeviceID,
	}, true, nil
}

func (c *TimerRedis) Clear(ctx context.Context, roomID string) error {
	return c.rdb.Del(ctx, timerKey(roomID)).Err()
}
