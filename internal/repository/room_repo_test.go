package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRoomSQLite_MarkCleaned_SingleWriteReleasesLock(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	loc, _ := time.LoadLocation("Asia/Tokyo")
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, loc)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET state = ?, last_cleaned = ?, cleaning_by = NULL WHERE id = ?")).
		WithArgs(models.RoomStateClean, at.UTC(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkCleaned(context.Background(), "r1", at); err != nil {
		t.Fatalf("MarkCleaned() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoomSQLite_SetCleaningBy_NilClearsAndMissingRoomIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET cleaning_by = ? WHERE id = ?")).
		WithArgs(nil, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET cleaning_by = ? WHERE id = ?")).
		WithArgs("Ana", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetCleaningBy(context.Background(), "r1", nil); err != nil {
		t.Fatalf("clear lock: %v", err)
	}
	name := "Ana"
	err := repo.SetCleaningBy(context.Background(), "ghost", &name)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoomSQLite_Get_ScansNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	cleaned := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "number", "type", "state", "last_cleaned", "last_maintenance", "cleaning_by"}).
		AddRow("r1", "101", "room", "SE", cleaned, nil, "Ana")
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).WithArgs("r1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Number != "101" || got.State != "SE" {
		t.Fatalf("unexpected room: %+v", got)
	}
	if got.LastCleaned == nil || !got.LastCleaned.Equal(cleaned) {
		t.Fatalf("last_cleaned = %v, want %v", got.LastCleaned, cleaned)
	}
	if got.LastMaintenance != nil {
		t.Fatalf("expected nil last_maintenance, got %v", got.LastMaintenance)
	}
	if got.CleaningBy == nil || *got.CleaningBy != "Ana" {
		t.Fatalf("cleaning_by = %v", got.CleaningBy)
	}
}

func TestRoomSQLite_Get_NoRowsIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomSQLite_List_BuildsInclusionFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewRoomSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "number", "type", "state", "last_cleaned", "last_maintenance", "cleaning_by"}).
		AddRow("r1", "101", "room", "SE", nil, nil, nil).
		AddRow("r2", "102", "room", "CO", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE state IN (?, ?) ORDER BY number ASC")).
		WithArgs("SE", "CO").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), []string{"SE", "CO"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[1].State != "CO" {
		t.Fatalf("unexpected rooms: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
