package repository

import (
	"context"
	"errors"
	"fmt"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type SectionRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSectionRepository(db *pgxpool.Pool) *SectionRepo {
	return &SectionRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SectionRepo) CreateSection(ctx context.Context, section models.Section) (int64, error) {
	const op = "repository.section_repository.CreateSection"

	query, args, err := r.sb.Insert("sections").
		Columns("title", "parent_id", "section_type").
		Values(section.Title, section.ParentID, section.SectionType).
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

func (r *SectionRepo) GetSection(ctx context.Context, id int64) (models.Section, error) {
	const op = "repository.section_repository.GetSection"

	query, args, err := r.sb.Select("id", "title", "parent_id", "section_type").
		From("sections").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Section{}, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var section models.Section
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&section.ID,
		&section.Title,
		&section.ParentID,
		&section.SectionType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Section{}, fmt.Errorf("%s: %w", op, storage.ErrSectionNotFound)
		}
		return models.Section{}, fmt.Errorf("%s: %w", op, err)
	}

	return section, nil
}

// ListSections возвращает все разделы по алфавиту заголовков
// (наполнение выпадающего списка формы).
func (r *SectionRepo) ListSections(ctx context.Context) ([]models.Section, error) {
	const op = "repository.section_repository.ListSections"

	query, args, err := r.sb.Select("id", "title", "parent_id", "section_type").
		From("sections").
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var section models.Section
		err := rows.Scan(&section.ID, &section.Title, &section.ParentID, &section.SectionType)
		if err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return sections, nil
}

func (r *SectionRepo) SetSectionParent(ctx context.Context, id int64, parentID *int64) error {
	const op = "repository.section_repository.SetSectionParent"

	query, args, err := r.sb.Update("sections").
		Set("parent_id", parentID).
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
		return fmt.Errorf("%s: %w", op, storage.ErrSectionNotFound)
	}

	return nil
}

// HasContent проверяет, ссылается ли на раздел какая-либо новость
// или объявление напрямую.
func (r *SectionRepo) HasContent(ctx context.Context, sectionID int64) (bool, error) {
	const op = "repository.section_repository.HasContent"

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM news WHERE section_id = $1)
		     OR EXISTS(SELECT 1 FROM announcements WHERE section_id = $1)`,
		sectionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// DeleteSection удаляет раздел вместе со всеми потомками (каскад по
// parent_id). Если на раздел или его потомков ссылается контент,
// FK RESTRICT отклоняет удаление целиком -- состояние не меняется.
func (r *SectionRepo) DeleteSection(ctx context.Context, id int64) error {
	const op = "repository.section_repository.DeleteSection"

	query, args, err := r.sb.Delete("sections").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%s: %w", op, storage.ErrSectionInUse)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrSectionNotFound)
	}

	return nil
}
