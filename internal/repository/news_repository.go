package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/storage"

	sq "github.com/Masterminds/squirrel"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type NewsRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewNewsRepository(db *pgxpool.Pool) *NewsRepo {
	return &NewsRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateNewsWithMedia сохраняет новость вместе со всеми изображениями
// и файлами в одной транзакции: либо появляется все, либо ничего.
func (r *NewsRepo) CreateNewsWithMedia(ctx context.Context, news models.News, images []models.NewsImage, attachments []models.NewsAttachment) (int64, error) {
	const op = "repository.news_repository.CreateNewsWithMedia"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	query, args, err := r.sb.Insert("news").
		Columns("section_id", "title", "short_description", "body", "created_at", "updated_at", "is_published").
		Values(news.SectionID, news.Title, news.ShortDescription, news.Body, now, now, news.IsPublished).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: failed to create news: %w", op, err)
	}

	for _, img := range images {
		query, args, err := r.sb.Insert("news_images").
			Columns("news_id", "storage_path", "is_preview", "sort_order").
			Values(id, img.StoragePath, img.IsPreview, img.SortOrder).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("%s: failed to add image: %w", op, err)
		}
	}

	for _, att := range attachments {
		query, args, err := r.sb.Insert("news_attachments").
			Columns("news_id", "storage_path", "original_name").
			Values(id, att.StoragePath, att.OriginalName).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("%s: failed to add attachment: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return id, nil
}

// PublishedNews возвращает опубликованные новости, свежие первыми.
func (r *NewsRepo) PublishedNews(ctx context.Context, limit uint64) ([]models.News, error) {
	const op = "repository.news_repository.PublishedNews"

	builder := r.sb.Select(
		"id", "section_id", "title", "short_description", "body",
		"created_at", "updated_at", "is_published",
	).
		From("news").
		Where(sq.Eq{"is_published": true}).
		OrderBy("created_at DESC", "id DESC")

	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryNews(ctx, op, query, args)
}

func (r *NewsRepo) PublishedNewsByID(ctx context.Context, id int64) (*models.News, error) {
	const op = "repository.news_repository.PublishedNewsByID"

	query, args, err := r.sb.Select(
		"id", "section_id", "title", "short_description", "body",
		"created_at", "updated_at", "is_published",
	).
		From("news").
		Where(sq.Eq{"id": id, "is_published": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var news models.News
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&news.ID,
		&news.SectionID,
		&news.Title,
		&news.ShortDescription,
		&news.Body,
		&news.CreatedAt,
		&news.UpdatedAt,
		&news.IsPublished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNewsNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if news.Images, err = r.newsImages(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if news.Attachments, err = r.newsAttachments(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &news, nil
}

// SearchPublishedNews ищет подстроку без учета регистра в теме,
// кратком описании и тексте опубликованных новостей.
func (r *NewsRepo) SearchPublishedNews(ctx context.Context, query string, limit uint64) ([]models.News, error) {
	const op = "repository.news_repository.SearchPublishedNews"

	pattern := "%" + query + "%"

	sqlQuery, args, err := r.sb.Select(
		"id", "section_id", "title", "short_description", "body",
		"created_at", "updated_at", "is_published",
	).
		From("news").
		Where(sq.Eq{"is_published": true}).
		Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"short_description": pattern},
			sq.ILike{"body": pattern},
		}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryNews(ctx, op, sqlQuery, args)
}

func (r *NewsRepo) UpdateNewsFields(ctx context.Context, newsID int64, updates map[string]interface{}) error {
	const op = "repository.news_repository.UpdateNewsFields"

	allowedFields := map[string]bool{
		"section_id":        true,
		"title":             true,
		"short_description": true,
		"body":              true,
		"is_published":      true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("news").
		Set("updated_at", time.Now().UTC())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	query, args, err := updateBuilder.Where(sq.Eq{"id": newsID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNewsNotFound)
	}

	return nil
}

// DeleteNews удаляет новость; записи медиа уходят каскадом. Возвращает
// пути всех файлов новости, чтобы вызывающий код освободил хранилище.
func (r *NewsRepo) DeleteNews(ctx context.Context, id int64) ([]string, error) {
	const op = "repository.news_repository.DeleteNews"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT storage_path FROM news_images WHERE news_id = $1
		 UNION ALL
		 SELECT storage_path FROM news_attachments WHERE news_id = $1`,
		id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		paths = append(paths, path)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	query, args, err := r.sb.Delete("news").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNewsNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return paths, nil
}

func (r *NewsRepo) queryNews(ctx context.Context, op, query string, args []interface{}) ([]models.News, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var newsList []models.News
	for rows.Next() {
		var news models.News
		err := rows.Scan(
			&news.ID,
			&news.SectionID,
			&news.Title,
			&news.ShortDescription,
			&news.Body,
			&news.CreatedAt,
			&news.UpdatedAt,
			&news.IsPublished,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		newsList = append(newsList, news)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return newsList, nil
}

func (r *NewsRepo) newsImages(ctx context.Context, newsID int64) ([]models.NewsImage, error) {
	query, args, err := r.sb.Select("id", "news_id", "storage_path", "is_preview", "sort_order").
		From("news_images").
		Where(sq.Eq{"news_id": newsID}).
		OrderBy("sort_order", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.NewsImage
	for rows.Next() {
		var img models.NewsImage
		if err := rows.Scan(&img.ID, &img.NewsID, &img.StoragePath, &img.IsPreview, &img.SortOrder); err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

func (r *NewsRepo) newsAttachments(ctx context.Context, newsID int64) ([]models.NewsAttachment, error) {
	query, args, err := r.sb.Select("id", "news_id", "storage_path", "original_name").
		From("news_attachments").
		Where(sq.Eq{"news_id": newsID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.NewsAttachment
	for rows.Next() {
		var att models.NewsAttachment
		if err := rows.Scan(&att.ID, &att.NewsID, &att.StoragePath, &att.OriginalName); err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	return attachments, rows.Err()
}
