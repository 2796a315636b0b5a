package dto

import (
	"mime/multipart"

	"uni_portal/internal/domain/models"
)

// CreateNewsInput данные формы создания новости. SectionID остается
// сырой строкой из формы: разбор и проверка существования раздела
// выполняются рабочим процессом, не транспортом.
type CreateNewsInput struct {
	SectionID        string                  `form:"section"`
	Title            string                  `form:"title"`
	ShortDescription string                  `form:"short_description"`
	Body             string                  `form:"body"`
	IsPublished      bool                    `form:"is_published"`
	Images           []*multipart.FileHeader `form:"-"`
	Attachments      []*multipart.FileHeader `form:"-"`
}

// FormEcho значения формы, возвращаемые при ошибках валидации,
// чтобы форма открылась заполненной.
type FormEcho struct {
	Section          string `json:"section"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Body             string `json:"body"`
	IsPublished      bool   `json:"is_published"`
}

type CreateNewsFailure struct {
	Errors models.FieldErrors `json:"errors"`
	Old    FormEcho           `json:"old"`
}

type CreateNewsResponse struct {
	ID int64 `json:"id"`
}

// UpdateNewsRequest частичное обновление новости: меняются только
// переданные поля, nil означает "не трогать".
type UpdateNewsRequest struct {
	SectionID        *int64  `json:"section_id"`
	Title            *string `json:"title"`
	ShortDescription *string `json:"short_description"`
	Body             *string `json:"body"`
	IsPublished      *bool   `json:"is_published"`
}

type UpdateNewsFailure struct {
	Errors models.FieldErrors `json:"errors"`
}

type HomeResponse struct {
	News          []models.News         `json:"news"`
	Announcements []models.Announcement `json:"announcements"`
}
