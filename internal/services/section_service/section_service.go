package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/lib/logger/sl"
	"uni_portal/internal/repository"
	"uni_portal/internal/storage"
	"uni_portal/internal/transport/http/dto"
)

type SectionService struct {
	log  *slog.Logger
	repo repository.SectionRepository
}

func NewSectionService(log *slog.Logger, repo repository.SectionRepository) *SectionService {
	return &SectionService{log: log, repo: repo}
}

// ListSections возвращает все разделы по возрастанию заголовка.
func (s *SectionService) ListSections(ctx context.Context) ([]models.Section, error) {
	const op = "section_service.ListSections"

	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		s.log.Error("failed to list sections", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sections, nil
}

func (s *SectionService) Resolve(ctx context.Context, id int64) (models.Section, error) {
	const op = "section_service.Resolve"

	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return models.Section{}, fmt.Errorf("%s: %w", op, err)
	}

	return section, nil
}

// CreateSection создает раздел. Родитель обязан существовать, тип
// по умолчанию main.
func (s *SectionService) CreateSection(ctx context.Context, req dto.CreateSectionRequest) (int64, error) {
	const op = "section_service.CreateSection"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating section")

	sectionType := models.SectionType(req.SectionType)
	if sectionType == "" {
		sectionType = models.SectionTypeMain
	}
	if !sectionType.Valid() {
		return 0, fmt.Errorf("%s: invalid section type %q", op, req.SectionType)
	}

	if req.ParentID != nil {
		if _, err := s.repo.GetSection(ctx, *req.ParentID); err != nil {
			log.Warn("parent section not found", sl.Err(err))
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	id, err := s.repo.CreateSection(ctx, models.Section{
		Title:       req.Title,
		ParentID:    req.ParentID,
		SectionType: sectionType,
	})
	if err != nil {
		log.Error("failed to create section", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("section created", slog.Int64("section_id", id))
	return id, nil
}

// SetParent переносит раздел под нового родителя. Назначение,
// которое сделало бы узел собственным предком, отклоняется.
func (s *SectionService) SetParent(ctx context.Context, id int64, parentID *int64) error {
	const op = "section_service.SetParent"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("section_id", id),
	)

	if parentID != nil {
		if err := s.checkNoCycle(ctx, id, *parentID); err != nil {
			log.Warn("rejected parent assignment", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.repo.SetSectionParent(ctx, id, parentID); err != nil {
		log.Error("failed to set parent", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("section parent updated")
	return nil
}

// DeleteSection удаляет раздел и всех его потомков. Пока на раздел
// ссылается контент, удаление отклоняется без изменения состояния.
func (s *SectionService) DeleteSection(ctx context.Context, id int64) error {
	const op = "section_service.DeleteSection"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("section_id", id),
	)

	log.Info("deleting section")

	inUse, err := s.repo.HasContent(ctx, id)
	if err != nil {
		log.Error("failed to check section references", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if inUse {
		log.Warn("section is referenced by content")
		return fmt.Errorf("%s: %w", op, storage.ErrSectionInUse)
	}

	if err := s.repo.DeleteSection(ctx, id); err != nil {
		if errors.Is(err, storage.ErrSectionInUse) {
			log.Warn("descendant section is referenced by content")
		} else {
			log.Error("failed to delete section", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("section deleted")
	return nil
}

// checkNoCycle поднимается по цепочке предков от предлагаемого
// родителя до корня и отклоняет назначение, если встречает сам узел.
func (s *SectionService) checkNoCycle(ctx context.Context, id, parentID int64) error {
	if id == parentID {
		return storage.ErrSectionCycle
	}

	visited := map[int64]struct{}{id: {}}
	current := parentID

	for {
		if _, seen := visited[current]; seen {
			return storage.ErrSectionCycle
		}
		visited[current] = struct{}{}

		section, err := s.repo.GetSection(ctx, current)
		if err != nil {
			return err
		}
		if section.ParentID == nil {
			return nil
		}
		current = *section.ParentID
	}
}
