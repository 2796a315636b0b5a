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

type AnnouncementRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepo {
	return &AnnouncementRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AnnouncementRepo) CreateAnnouncement(ctx context.Context, announcement models.Announcement) (int64, error) {
	const op = "repository.announcement_repository.CreateAnnouncement"

	now := time.Now().UTC()

	query, args, err := r.sb.Insert("announcements").
		Columns("section_id", "title", "body", "created_at", "updated_at", "is_active").
		Values(announcement.SectionID, announcement.Title, announcement.Body, now, now, announcement.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var id int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ActiveAnnouncements возвращает активные объявления, свежие первыми.
func (r *AnnouncementRepo) ActiveAnnouncements(ctx context.Context, limit uint64) ([]models.Announcement, error) {
	const op = "repository.announcement_repository.ActiveAnnouncements"

	builder := r.sb.Select(
		"id", "section_id", "title", "body", "created_at", "updated_at", "is_active",
	).
		From("announcements").
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at DESC", "id DESC")

	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryAnnouncements(ctx, op, query, args)
}

func (r *AnnouncementRepo) ActiveAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	const op = "repository.announcement_repository.ActiveAnnouncementByID"

	query, args, err := r.sb.Select(
		"id", "section_id", "title", "body", "created_at", "updated_at", "is_active",
	).
		From("announcements").
		Where(sq.Eq{"id": id, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var announcement models.Announcement
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&announcement.ID,
		&announcement.SectionID,
		&announcement.Title,
		&announcement.Body,
		&announcement.CreatedAt,
		&announcement.UpdatedAt,
		&announcement.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAnnouncementNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &announcement, nil
}

// SearchActiveAnnouncements ищет подстроку без учета регистра в теме
// и тексте активных объявлений.
func (r *AnnouncementRepo) SearchActiveAnnouncements(ctx context.Context, query string, limit uint64) ([]models.Announcement, error) {
	const op = "repository.announcement_repository.SearchActiveAnnouncements"

	pattern := "%" + query + "%"

	sqlQuery, args, err := r.sb.Select(
		"id", "section_id", "title", "body", "created_at", "updated_at", "is_active",
	).
		From("announcements").
		Where(sq.Eq{"is_active": true}).
		Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"body": pattern},
		}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryAnnouncements(ctx, op, sqlQuery, args)
}

func (r *AnnouncementRepo) DeleteAnnouncement(ctx context.Context, id int64) error {
	const op = "repository.announcement_repository.DeleteAnnouncement"

	query, args, err := r.sb.Delete("announcements").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAnnouncementNotFound)
	}

	return nil
}

func (r *AnnouncementRepo) queryAnnouncements(ctx context.Context, op, query string, args []interface{}) ([]models.Announcement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var announcement models.Announcement
		err := rows.Scan(
			&announcement.ID,
			&announcement.SectionID,
			&announcement.Title,
			&announcement.Body,
			&announcement.CreatedAt,
			&announcement.UpdatedAt,
			&announcement.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		announcements = append(announcements, announcement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return announcements, nil
}
