package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"
	"hotel_ops/internal/storage"

	"github.com/google/uuid"
)

var (
	urgentKeywords = []string{"urgente", "urgent", "fuga", "leak", "inundación", "flood", "enchufe", "outlet"}
	mediumKeywords = []string{"falla", "no funciona", "not working", "broken"}
)

// PriorityFor derives a report priority from keywords in its description.
func PriorityFor(description string) string {
	d := strings.ToLower(description)
	for _, k := range urgentKeywords {
		if strings.Contains(d, k) {
			return models.PriorityUrgent
		}
	}
	for _, k := range mediumKeywords {
		if strings.Contains(d, k) {
			return models.PriorityMedium
		}
	}
	return models.PriorityLow
}

func isValidPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityUrgent:
		return true
	}
	return false
}

type ReportService struct {
	repo  repository.ReportRepo
	blobs storage.BlobStore
	hub   *realtime.Hub
	now   func() time.Time
}

func NewReportService(repo repository.ReportRepo, blobs storage.BlobStore, hub *realtime.Hub) *ReportService {
	return &ReportService{
		repo:  repo,
		blobs: blobs,
		hub:   hub,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validateReport(p CreateReportParams) error {
	switch {
	case strings.TrimSpace(p.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidReport)
	case p.IsGeneralReport && strings.TrimSpace(p.Location) == "":
		return fmt.Errorf("%w: location is required for a general report", ErrInvalidReport)
	case !p.IsGeneralReport && strings.TrimSpace(p.RoomNumber) == "":
		return fmt.Errorf("%w: room number is required", ErrInvalidReport)
	case p.Priority != "" && !isValidPriority(p.Priority):
		return fmt.Errorf("%w: priority must be low, medium or urgent", ErrInvalidReport)
	}
	return nil
}

// Create stores a report. A photo, when present, is uploaded first and the
// report keeps its URL.
func (s *ReportService) Create(ctx context.Context, p CreateReportParams) (models.ProblemReport, error) {
	if err := validateReport(p); err != nil {
		return models.ProblemReport{}, err
	}
	now := s.now()

	r := models.ProblemReport{
		ID:              uuid.NewString(),
		IsGeneralReport: p.IsGeneralReport,
		Description:     strings.TrimSpace(p.Description),
		Priority:        p.Priority,
		ReportedAt:      now,
	}
	if p.IsGeneralReport {
		r.Location = strings.TrimSpace(p.Location)
	} else {
		r.RoomNumber = strings.TrimSpace(p.RoomNumber)
	}
	if r.Priority == "" {
		r.Priority = PriorityFor(r.Description)
	}
	if name := strings.TrimSpace(p.EmployeeName); name != "" {
		r.EmployeeName = &name
	}

	if len(p.Photo) > 0 {
		if s.blobs == nil {
			return models.ProblemReport{}, ErrStorageUnavailable
		}
		contentType := p.PhotoContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		key := fmt.Sprintf("problems/%d.jpg", now.UnixMilli())
		url, err := s.blobs.Put(ctx, key, contentType, p.Photo)
		if err != nil {
			return models.ProblemReport{}, fmt.Errorf("upload photo: %w", err)
		}
		r.ImageURL = &url
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return models.ProblemReport{}, fmt.Errorf("create report: %w", err)
	}
	s.hub.Publish(realtime.Event{Topic: realtime.TopicReports, Type: "created", Key: created.ID, Data: created})
	return created, nil
}

func (s *ReportService) List(ctx context.Context, f ReportFilter) ([]models.ProblemReport, error) {
	return s.repo.List(ctx, f.UnresolvedOnly)
}

// Resolve flips a report to resolved. It succeeds only once per report.
func (s *ReportService) Resolve(ctx context.Context, id string) (models.ProblemReport, error) {
	flipped, err := s.repo.MarkResolved(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.ProblemReport{}, ErrReportNotFound
	}
	if err != nil {
		return models.ProblemReport{}, fmt.Errorf("resolve report %s: %w", id, err)
	}
	if !flipped {
		return models.ProblemReport{}, ErrReportResolved
	}

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.ProblemReport{}, fmt.Errorf("reload report %s: %w", id, err)
	}
	s.hub.Publish(realtime.Event{Topic: realtime.TopicReports, Type: "resolved", Key: id, Data: r})
	return r, nil
}
