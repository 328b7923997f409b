package service

import (
	"context"
	"errors"
	"testing"

	"hotel_ops/internal/models"
)

func TestRoomService_ListFiltersByState(t *testing.T) {
	repo := newFakeRoomRepo(
		models.Room{ID: "a", Number: "101", State: models.RoomStateDirty},
		models.Room{ID: "b", Number: "102", State: models.RoomStateCheckout},
		models.Room{ID: "c", Number: "103", State: models.RoomStateClean},
	)
	svc := NewRoomService(repo)

	got, err := svc.List(context.Background(), models.RoomStateDirty, models.RoomStateCheckout)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Number != "101" || got[1].Number != "102" {
		t.Fatalf("unexpected rooms %+v", got)
	}

	all, _ := svc.List(context.Background())
	if len(all) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(all))
	}

	if _, err := svc.List(context.Background(), "DIRTY"); !errors.Is(err, ErrInvalidRoomState) {
		t.Fatalf("expected ErrInvalidRoomState, got %v", err)
	}
}

func TestRoomService_GetNotFound(t *testing.T) {
	svc := NewRoomService(newFakeRoomRepo())
	if _, err := svc.Get(context.Background(), "x"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
