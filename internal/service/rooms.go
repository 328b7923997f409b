package service

import (
	"context"
	"errors"
	"fmt"

	"hotel_ops/internal/models"
	"hotel_ops/internal/repository"
)

type RoomService struct {
	repo repository.RoomRepo
}

func NewRoomService(repo repository.RoomRepo) *RoomService {
	return &RoomService{repo: repo}
}

// List returns rooms in any of states, or all rooms when none are given.
func (s *RoomService) List(ctx context.Context, states ...string) ([]models.Room, error) {
	for _, st := range states {
		if !models.IsValidRoomState(st) {
			return nil, ErrInvalidRoomState
		}
	}
	return s.repo.List(ctx, states)
}

func (s *RoomService) Get(ctx context.Context, id string) (models.Room, error) {
	room, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("load room %s: %w", id, err)
	}
	return room, nil
}
