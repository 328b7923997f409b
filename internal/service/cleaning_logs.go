package service

import (
	"context"
	"strings"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/repository"
)

type CleaningLogService struct {
	repo repository.CleaningLogRepo
}

func NewCleaningLogService(repo repository.CleaningLogRepo) *CleaningLogService {
	return &CleaningLogService{repo: repo}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}
	return from, to, strings.TrimSpace(f.RoomNumber), nil
}

func (s *CleaningLogService) List(ctx context.Context, f LogFilter) ([]models.CleaningLog, error) {
	from, to, room, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, from, to, room)
}
