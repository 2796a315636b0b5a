package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/lib/logger/sl"
	"uni_portal/internal/repository"
)

type AnnouncementService struct {
	log  *slog.Logger
	repo repository.AnnouncementRepository
}

func NewAnnouncementService(log *slog.Logger, repo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{log: log, repo: repo}
}

// CreateAnnouncement создает объявление. Раздел опционален.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, title, body string, sectionID *int64, isActive bool) (int64, error) {
	const op = "announcement_service.CreateAnnouncement"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", title),
	)

	log.Info("creating announcement")

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	fieldErrors := models.FieldErrors{}
	if title == "" {
		fieldErrors["title"] = "title is required"
	}
	if body == "" {
		fieldErrors["body"] = "body is required"
	}
	if len(fieldErrors) > 0 {
		log.Warn("announcement form validation failed", slog.Int("errors", len(fieldErrors)))
		return 0, fieldErrors
	}

	id, err := s.repo.CreateAnnouncement(ctx, models.Announcement{
		SectionID: sectionID,
		Title:     title,
		Body:      body,
		IsActive:  isActive,
	})
	if err != nil {
		log.Error("failed to create announcement", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("announcement created", slog.Int64("announcement_id", id))
	return id, nil
}

// ActiveAnnouncements возвращает активные объявления свежими первыми.
func (s *AnnouncementService) ActiveAnnouncements(ctx context.Context, limit uint64) ([]models.Announcement, error) {
	const op = "announcement_service.ActiveAnnouncements"

	announcements, err := s.repo.ActiveAnnouncements(ctx, limit)
	if err != nil {
		s.log.Error("failed to list announcements", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return announcements, nil
}

// AnnouncementByID возвращает активное объявление; неактивные
// невидимы независимо от корректности id.
func (s *AnnouncementService) AnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	const op = "announcement_service.AnnouncementByID"

	announcement, err := s.repo.ActiveAnnouncementByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return announcement, nil
}

func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, id int64) error {
	const op = "announcement_service.DeleteAnnouncement"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("announcement_id", id),
	)

	log.Info("deleting announcement")

	if err := s.repo.DeleteAnnouncement(ctx, id); err != nil {
		log.Error("failed to delete announcement", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("announcement deleted")
	return nil
}
