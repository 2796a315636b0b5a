package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// News новость: тема, краткое описание, подробный текст,
// привязка к разделу, галерея изображений и прикрепленные файлы.
type News struct {
	ID               int64     `db:"id" json:"id"`
	SectionID        int64     `db:"section_id" json:"section_id"`
	Title            string    `db:"title" json:"title"`
	ShortDescription string    `db:"short_description" json:"short_description"`
	Body             string    `db:"body" json:"body"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
	IsPublished      bool      `db:"is_published" json:"is_published"`

	Images      []NewsImage      `json:"images,omitempty"`
	Attachments []NewsAttachment `json:"attachments,omitempty"`
}

// Announcement объявление: тема и описание, раздел опционален.
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	SectionID *int64    `db:"section_id" json:"section_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	IsActive  bool      `db:"is_active" json:"is_active"`
}

// FieldErrors ошибки валидации формы по полям. Собираются все сразу,
// без останова на первой.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
