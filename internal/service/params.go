package service

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmployeeRequired   = errors.New("employee name is required")
	ErrInvalidTransition  = errors.New("invalid session transition")
	ErrNotConfirmed       = errors.New("action not confirmed")
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidRoomState   = errors.New("invalid room state: must be SE, CO or CLEAN")
	ErrPermissionDenied   = errors.New("notification permission denied")
	ErrDeviceNotFound     = errors.New("device not registered")
	ErrMessageRequired    = errors.New("message text is required")
	ErrPushTokenRequired  = errors.New("push token is required")
	ErrInvalidAction      = errors.New("invalid maintenance action: must be done or skipped")
	ErrReportNotFound     = errors.New("report not found")
	ErrReportResolved     = errors.New("report already resolved")
	ErrInvalidReport      = errors.New("invalid report")
	ErrStorageUnavailable = errors.New("photo storage is not configured")
	ErrInvalidTimeRange   = errors.New("invalid time range: From must be <= To")
)

// StartParams starts or resumes a cleaning session.
type StartParams struct {
	RoomID       string
	EmployeeName string
	DeviceID     string
}

// Confirmer is the two-step confirmation gate for destructive transitions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer for callers that collected the answer up front.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) (bool, error) { return bool(c), nil }

// LogFilter narrows cleaning history.
type LogFilter struct {
	From       time.Time // inclusive; zero means no lower bound
	To         time.Time // inclusive; zero means no upper bound
	RoomNumber string
}

type ReportFilter struct {
	UnresolvedOnly bool
}

// CreateReportParams describes a new problem report. Either RoomNumber or,
// for a general report, Location is required.
type CreateReportParams struct {
	RoomNumber       string
	Location         string
	IsGeneralReport  bool
	Description      string
	Priority         string // empty derives it from the description
	EmployeeName     string
	Photo            []byte
	PhotoContentType string
}
