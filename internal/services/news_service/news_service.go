package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/lib/logger/sl"
	"uni_portal/internal/metrics"
	"uni_portal/internal/repository"
	"uni_portal/internal/storage"
	filestorage "uni_portal/internal/storage/filestorage"
	"uni_portal/internal/transport/http/dto"
)

const (
	newsImagesDir      = "news/images"
	newsAttachmentsDir = "news/attachments"
)

type NewsService struct {
	log         *slog.Logger
	repo        repository.NewsRepository
	sections    repository.SectionRepository
	fileStorage filestorage.FileStorage
}

func NewNewsService(log *slog.Logger, repo repository.NewsRepository, sections repository.SectionRepository, fileStorage filestorage.FileStorage) *NewsService {
	return &NewsService{
		log:         log,
		repo:        repo,
		sections:    sections,
		fileStorage: fileStorage,
	}
}

// CreateNews проверяет форму и атомарно сохраняет новость вместе с
// медиа. Ошибки валидации собираются все сразу и возвращаются одной
// models.FieldErrors; в этом случае не создается ни одной записи и
// ни одного файла.
func (s *NewsService) CreateNews(ctx context.Context, input dto.CreateNewsInput) (int64, error) {
	const op = "news_service.CreateNews"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", input.Title),
	)

	log.Info("creating news",
		slog.Int("images", len(input.Images)),
		slog.Int("attachments", len(input.Attachments)),
	)

	title := strings.TrimSpace(input.Title)
	shortDescription := strings.TrimSpace(input.ShortDescription)
	body := strings.TrimSpace(input.Body)

	fieldErrors := models.FieldErrors{}

	var sectionID int64
	if input.SectionID == "" {
		fieldErrors["section"] = "section required"
	} else {
		id, err := strconv.ParseInt(input.SectionID, 10, 64)
		if err != nil {
			fieldErrors["section"] = "section not found"
		} else if _, err := s.sections.GetSection(ctx, id); err != nil {
			// Ошибкой формы считается только отсутствие раздела;
			// сбой хранилища отдаем наверх как есть.
			if !errors.Is(err, storage.ErrSectionNotFound) {
				log.Error("failed to resolve section", sl.Err(err))
				return 0, fmt.Errorf("%s: %w", op, err)
			}
			fieldErrors["section"] = "section not found"
		} else {
			sectionID = id
		}
	}

	if title == "" {
		fieldErrors["title"] = "title is required"
	}
	if shortDescription == "" {
		fieldErrors["short_description"] = "short description is required"
	}
	if body == "" {
		fieldErrors["body"] = "body is required"
	}

	if len(fieldErrors) > 0 {
		log.Warn("news form validation failed", slog.Int("errors", len(fieldErrors)))
		return 0, fieldErrors
	}

	imagePaths, err := s.storeAll(ctx, input.Images, newsImagesDir, nil)
	if err != nil {
		log.Error("failed to store image", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	attachmentPaths, err := s.storeAll(ctx, input.Attachments, newsAttachmentsDir, imagePaths)
	if err != nil {
		log.Error("failed to store attachment", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	news := models.News{
		SectionID:        sectionID,
		Title:            title,
		ShortDescription: shortDescription,
		Body:             body,
		IsPublished:      input.IsPublished,
	}

	originalNames := make([]string, 0, len(input.Attachments))
	for _, f := range input.Attachments {
		originalNames = append(originalNames, f.Filename)
	}

	id, err := s.repo.CreateNewsWithMedia(ctx, news,
		models.BuildNewsImages(imagePaths),
		models.BuildNewsAttachments(attachmentPaths, originalNames),
	)
	if err != nil {
		// Транзакция откатилась, файлы остались -- убираем и их.
		s.releaseBlobs(ctx, append(imagePaths, attachmentPaths...))
		log.Error("failed to save news", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.NewsCreatedTotal.Inc()
	log.Info("news created", slog.Int64("news_id", id))

	return id, nil
}

// UpdateNews меняет только переданные поля новости, updated_at
// обновляется в хранилище. Ошибки валидации собираются все сразу,
// как и при создании.
func (s *NewsService) UpdateNews(ctx context.Context, id int64, input dto.UpdateNewsRequest) error {
	const op = "news_service.UpdateNews"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("news_id", id),
	)

	fieldErrors := models.FieldErrors{}
	updates := map[string]interface{}{}

	if input.SectionID != nil {
		if _, err := s.sections.GetSection(ctx, *input.SectionID); err != nil {
			if !errors.Is(err, storage.ErrSectionNotFound) {
				log.Error("failed to resolve section", sl.Err(err))
				return fmt.Errorf("%s: %w", op, err)
			}
			fieldErrors["section"] = "section not found"
		} else {
			updates["section_id"] = *input.SectionID
		}
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fieldErrors["title"] = "title is required"
		} else {
			updates["title"] = title
		}
	}
	if input.ShortDescription != nil {
		shortDescription := strings.TrimSpace(*input.ShortDescription)
		if shortDescription == "" {
			fieldErrors["short_description"] = "short description is required"
		} else {
			updates["short_description"] = shortDescription
		}
	}
	if input.Body != nil {
		body := strings.TrimSpace(*input.Body)
		if body == "" {
			fieldErrors["body"] = "body is required"
		} else {
			updates["body"] = body
		}
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}

	if len(fieldErrors) > 0 {
		log.Warn("news update validation failed", slog.Int("errors", len(fieldErrors)))
		return fieldErrors
	}

	if len(updates) == 0 {
		return models.FieldErrors{"form": "no fields to update"}
	}

	if err := s.repo.UpdateNewsFields(ctx, id, updates); err != nil {
		log.Error("failed to update news", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("news updated", slog.Int("fields", len(updates)))
	return nil
}

// PublishedNews возвращает опубликованные новости свежими первыми.
func (s *NewsService) PublishedNews(ctx context.Context, limit uint64) ([]models.News, error) {
	const op = "news_service.PublishedNews"

	news, err := s.repo.PublishedNews(ctx, limit)
	if err != nil {
		s.log.Error("failed to list news", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return news, nil
}

// NewsByID возвращает опубликованную новость с ее медиа.
// Неопубликованные невидимы независимо от корректности id.
func (s *NewsService) NewsByID(ctx context.Context, id int64) (*models.News, error) {
	const op = "news_service.NewsByID"

	news, err := s.repo.PublishedNewsByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return news, nil
}

// DeleteNews удаляет новость; записи медиа уходят каскадом, их файлы
// освобождаются из хранилища после фиксации.
func (s *NewsService) DeleteNews(ctx context.Context, id int64) error {
	const op = "news_service.DeleteNews"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("news_id", id),
	)

	log.Info("deleting news")

	paths, err := s.repo.DeleteNews(ctx, id)
	if err != nil {
		log.Error("failed to delete news", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.releaseBlobs(ctx, paths)

	log.Info("news deleted", slog.Int("released_files", len(paths)))
	return nil
}

// storeAll сохраняет файлы по порядку. При сбое удаляет уже
// сохраненные в этом вызове и все из alreadyStored.
func (s *NewsService) storeAll(ctx context.Context, files []*multipart.FileHeader, subPath string, alreadyStored []string) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, _, err := s.fileStorage.Save(ctx, file, subPath)
		if err != nil {
			s.releaseBlobs(ctx, append(paths, alreadyStored...))
			return nil, fmt.Errorf("failed to save file %q: %w", file.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *NewsService) releaseBlobs(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.fileStorage.Delete(ctx, path); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			s.log.Warn("failed to release stored file",
				slog.String("path", path), sl.Err(err))
		}
	}
}
