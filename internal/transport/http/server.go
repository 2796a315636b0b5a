package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/lib/logger/sl"
	"uni_portal/internal/storage"
	"uni_portal/internal/transport/http/dto"
	"uni_portal/internal/transport/http/dto/request"
	"uni_portal/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "uni_portal/docs"
)

const (
	homeNewsLimit          = 20
	homeAnnouncementsLimit = 15
)

type SectionService interface {
	ListSections(ctx context.Context) ([]models.Section, error)
	CreateSection(ctx context.Context, req dto.CreateSectionRequest) (int64, error)
	SetParent(ctx context.Context, id int64, parentID *int64) error
	DeleteSection(ctx context.Context, id int64) error
}

type NewsService interface {
	CreateNews(ctx context.Context, input dto.CreateNewsInput) (int64, error)
	UpdateNews(ctx context.Context, id int64, input dto.UpdateNewsRequest) error
	PublishedNews(ctx context.Context, limit uint64) ([]models.News, error)
	NewsByID(ctx context.Context, id int64) (*models.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

type AnnouncementService interface {
	CreateAnnouncement(ctx context.Context, title, body string, sectionID *int64, isActive bool) (int64, error)
	ActiveAnnouncements(ctx context.Context, limit uint64) ([]models.Announcement, error)
	AnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id int64) error
}

type SearchService interface {
	Search(ctx context.Context, query string) (*dto.SearchResponse, error)
}

type UserService interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	IsStaff(ctx context.Context, userID uuid.UUID) (bool, error)
}

type AuthService interface {
	RefreshTokens(refreshToken string) (*models.TokenPair, error)
}

type Routers struct {
	log                 *slog.Logger
	SectionService      SectionService
	NewsService         NewsService
	AnnouncementService AnnouncementService
	SearchService       SearchService
	UserService         UserService
	AuthService         AuthService
}

func NewRouter(log *slog.Logger, sectionService SectionService, newsService NewsService, announcementService AnnouncementService, searchService SearchService, userService UserService, authService AuthService) *Routers {
	return &Routers{
		log:                 log,
		SectionService:      sectionService,
		NewsService:         newsService,
		AnnouncementService: announcementService,
		SearchService:       searchService,
		UserService:         userService,
		AuthService:         authService,
	}
}

// Home godoc
// @Summary Главная страница
// @Description Первые 20 опубликованных новостей и 15 активных объявлений.
// @Tags Контент
// @Produce json
// @Success 200 {object} dto.HomeResponse
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router / [get]
func (r *Routers) Home(c echo.Context) error {
	const op = "http.routers.Home"

	log := r.log.With(
		slog.String("op", op),
	)

	ctx := c.Request().Context()

	news, err := r.NewsService.PublishedNews(ctx, homeNewsLimit)
	if err != nil {
		log.Error("failed to list news", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	announcements, err := r.AnnouncementService.ActiveAnnouncements(ctx, homeAnnouncementsLimit)
	if err != nil {
		log.Error("failed to list announcements", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	if news == nil {
		news = []models.News{}
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}

	return c.JSON(http.StatusOK, dto.HomeResponse{
		News:          news,
		Announcements: announcements,
	})
}

// Search godoc
// @Summary Поиск по контенту
// @Description Подстрочный поиск без учета регистра по новостям и объявлениям.
// @Tags Контент
// @Produce json
// @Param q query string false "Поисковый запрос"
// @Success 200 {object} dto.SearchResponse
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /search [get]
func (r *Routers) Search(c echo.Context) error {
	const op = "http.routers.Search"

	log := r.log.With(
		slog.String("op", op),
	)

	result, err := r.SearchService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		log.Error("search failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, result)
}

// NewsDetail godoc
// @Summary Страница новости
// @Description Опубликованная новость с изображениями и файлами.
// @Tags Контент
// @Produce json
// @Param id path int true "ID новости"
// @Success 200 {object} models.News
// @Failure 404 {object} response.ErrorResponse "Новость не найдена"
// @Router /news/{id} [get]
func (r *Routers) NewsDetail(c echo.Context) error {
	const op = "http.routers.NewsDetail"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	news, err := r.NewsService.NewsByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to get news", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, news)
}

// AnnouncementDetail godoc
// @Summary Страница объявления
// @Tags Контент
// @Produce json
// @Param id path int true "ID объявления"
// @Success 200 {object} models.Announcement
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Router /announcement/{id} [get]
func (r *Routers) AnnouncementDetail(c echo.Context) error {
	const op = "http.routers.AnnouncementDetail"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	announcement, err := r.AnnouncementService.AnnouncementByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to get announcement", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, announcement)
}

// AdminLogin godoc
// @Summary Вход для сотрудников
// @Description Вход по email и паролю, только для учетных записей staff.
// @Tags Администрирование
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.TokenPair} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Router /admin/login [post]
func (r *Routers) AdminLogin(c echo.Context) error {
	const op = "http.routers.AdminLogin"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	sess, _ := session.Get("session", c)
	sess.Values["user_id"] = pair.UserID.String()
	sess.Save(c.Request(), c.Response())

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	newTokens, err := r.AuthService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Error("error refresh tokens", sl.Err(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	return c.JSON(http.StatusOK, newTokens)
}

// CreateNews godoc
// @Summary Создание новости
// @Description Создает новость с галереей изображений и файлами одной транзакцией.
// @Tags Администрирование
// @Accept multipart/form-data
// @Produce json
// @Param section formData string true "ID раздела"
// @Param title formData string true "Тема"
// @Param short_description formData string true "Краткое описание"
// @Param body formData string true "Текст новости"
// @Param is_published formData boolean false "Опубликовать сразу"
// @Param images formData file false "Изображения в порядке показа"
// @Param attachments formData file false "Прикрепляемые файлы"
// @Success 201 {object} dto.CreateNewsResponse "Новость создана"
// @Failure 400 {object} dto.CreateNewsFailure "Ошибки валидации формы"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /admin/news [post]
func (r *Routers) CreateNews(c echo.Context) error {
	const op = "http.routers.CreateNews"

	log := r.log.With(
		slog.String("op", op),
	)

	input := dto.CreateNewsInput{
		SectionID:        c.FormValue("section"),
		Title:            c.FormValue("title"),
		ShortDescription: c.FormValue("short_description"),
		Body:             c.FormValue("body"),
		IsPublished:      formBool(c.FormValue("is_published")),
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		input.Images = form.File["images"]
		input.Attachments = form.File["attachments"]
	}

	id, err := r.NewsService.CreateNews(c.Request().Context(), input)
	if err != nil {
		if fieldErrors, ok := models.IsFieldErrors(err); ok {
			log.Warn("news form rejected", slog.Int("errors", len(fieldErrors)))
			return c.JSON(http.StatusBadRequest, dto.CreateNewsFailure{
				Errors: fieldErrors,
				Old: dto.FormEcho{
					Section:          input.SectionID,
					Title:            input.Title,
					ShortDescription: input.ShortDescription,
					Body:             input.Body,
					IsPublished:      input.IsPublished,
				},
			})
		}

		log.Error("failed to create news", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	log.Info("news created", slog.Int64("news_id", id))

	return c.JSON(http.StatusCreated, dto.CreateNewsResponse{ID: id})
}

// CreateAnnouncement godoc
// @Summary Создание объявления
// @Tags Администрирование
// @Accept json
// @Produce json
// @Param request body dto.CreateAnnouncementRequest true "Данные объявления"
// @Success 201 {object} dto.CreateAnnouncementResponse
// @Failure 400 {object} dto.CreateNewsFailure "Ошибки валидации формы"
// @Security ApiKeyAuth
// @Router /admin/announcements [post]
func (r *Routers) CreateAnnouncement(c echo.Context) error {
	const op = "http.routers.CreateAnnouncement"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateAnnouncementRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	id, err := r.AnnouncementService.CreateAnnouncement(c.Request().Context(), req.Title, req.Body, req.SectionID, req.IsActive)
	if err != nil {
		if fieldErrors, ok := models.IsFieldErrors(err); ok {
			return c.JSON(http.StatusBadRequest, dto.CreateNewsFailure{
				Errors: fieldErrors,
				Old: dto.FormEcho{
					Title: req.Title,
					Body:  req.Body,
				},
			})
		}

		log.Error("failed to create announcement", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusCreated, dto.CreateAnnouncementResponse{ID: id})
}

// DeleteAnnouncement godoc
// @Summary Удаление объявления
// @Tags Администрирование
// @Param id path int true "ID объявления"
// @Success 204 "Объявление удалено"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Security ApiKeyAuth
// @Router /admin/announcements/{id} [delete]
func (r *Routers) DeleteAnnouncement(c echo.Context) error {
	const op = "http.routers.DeleteAnnouncement"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	if err := r.AnnouncementService.DeleteAnnouncement(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to delete announcement", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateNews godoc
// @Summary Частичное обновление новости
// @Description Меняет только переданные поля, updated_at обновляется автоматически.
// @Tags Администрирование
// @Accept json
// @Produce json
// @Param id path int true "ID новости"
// @Param input body dto.UpdateNewsRequest true "Обновляемые поля"
// @Success 204 "Новость обновлена"
// @Failure 400 {object} dto.UpdateNewsFailure "Ошибки валидации"
// @Failure 404 {object} response.ErrorResponse "Новость не найдена"
// @Security ApiKeyAuth
// @Router /admin/news/{id} [patch]
func (r *Routers) UpdateNews(c echo.Context) error {
	const op = "http.routers.UpdateNews"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	var req dto.UpdateNewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Status: "error",
			Error:  "invalid request body",
		})
	}

	if err := r.NewsService.UpdateNews(c.Request().Context(), id, req); err != nil {
		if fieldErrors, ok := models.IsFieldErrors(err); ok {
			return c.JSON(http.StatusBadRequest, dto.UpdateNewsFailure{Errors: fieldErrors})
		}
		if errors.Is(err, storage.ErrNewsNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to update news", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteNews godoc
// @Summary Удаление новости
// @Tags Администрирование
// @Param id path int true "ID новости"
// @Success 204 "Новость удалена"
// @Failure 404 {object} response.ErrorResponse "Новость не найдена"
// @Security ApiKeyAuth
// @Router /admin/news/{id} [delete]
func (r *Routers) DeleteNews(c echo.Context) error {
	const op = "http.routers.DeleteNews"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	if err := r.NewsService.DeleteNews(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to delete news", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// ListSections godoc
// @Summary Список разделов
// @Description Разделы по алфавиту для выпадающего списка формы.
// @Tags Администрирование
// @Produce json
// @Success 200 {array} models.Section
// @Security ApiKeyAuth
// @Router /admin/sections [get]
func (r *Routers) ListSections(c echo.Context) error {
	const op = "http.routers.ListSections"

	log := r.log.With(
		slog.String("op", op),
	)

	sections, err := r.SectionService.ListSections(c.Request().Context())
	if err != nil {
		log.Error("failed to list sections", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	if sections == nil {
		sections = []models.Section{}
	}

	return c.JSON(http.StatusOK, sections)
}

// CreateSection godoc
// @Summary Создание раздела
// @Tags Администрирование
// @Accept json
// @Produce json
// @Param request body dto.CreateSectionRequest true "Данные раздела"
// @Success 201 {object} dto.CreateSectionResponse
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Security ApiKeyAuth
// @Router /admin/sections [post]
func (r *Routers) CreateSection(c echo.Context) error {
	const op = "http.routers.CreateSection"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateSectionRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	id, err := r.SectionService.CreateSection(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrSectionNotFound) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "parent section not found"))
		}
		log.Error("failed to create section", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusCreated, dto.CreateSectionResponse{ID: id})
}

// UpdateSectionParent godoc
// @Summary Перенос раздела
// @Description Назначает разделу нового родителя; циклы отклоняются.
// @Tags Администрирование
// @Accept json
// @Param id path int true "ID раздела"
// @Param request body dto.UpdateSectionParentRequest true "Новый родитель (null для корня)"
// @Success 204 "Родитель обновлен"
// @Failure 400 {object} response.ErrorResponse "Цикл в дереве разделов"
// @Failure 404 {object} response.ErrorResponse "Раздел не найден"
// @Security ApiKeyAuth
// @Router /admin/sections/{id}/parent [patch]
func (r *Routers) UpdateSectionParent(c echo.Context) error {
	const op = "http.routers.UpdateSectionParent"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	var req dto.UpdateSectionParentRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.SectionService.SetParent(c.Request().Context(), id, req.ParentID); err != nil {
		switch {
		case errors.Is(err, storage.ErrSectionCycle):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "section cannot be its own ancestor"))
		case errors.Is(err, storage.ErrSectionNotFound):
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to update section parent", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteSection godoc
// @Summary Удаление раздела
// @Description Удаляет раздел с потомками; отклоняется, пока на раздел ссылается контент.
// @Tags Администрирование
// @Param id path int true "ID раздела"
// @Success 204 "Раздел удален"
// @Failure 404 {object} response.ErrorResponse "Раздел не найден"
// @Failure 409 {object} response.ErrorResponse "Раздел используется контентом"
// @Security ApiKeyAuth
// @Router /admin/sections/{id} [delete]
func (r *Routers) DeleteSection(c echo.Context) error {
	const op = "http.routers.DeleteSection"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	if err := r.SectionService.DeleteSection(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrSectionInUse):
			return c.JSON(http.StatusConflict, response.ErrSectionReferenced)
		case errors.Is(err, storage.ErrSectionNotFound):
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to delete section", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// IsStaffPermission godoc
// @Summary Проверка права staff
// @Tags Администрирование
// @Produce json
// @Param user_id path string true "UUID пользователя" format(uuid)
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorResponse "Невалидный UUID"
// @Security ApiKeyAuth
// @Router /users/{user_id}/is-staff [get]
func (r *Routers) IsStaffPermission(c echo.Context) error {
	const op = "http.routers.IsStaffPermission"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		log.Error("error parse uuid", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Error: "invalid user ID format",
		})
	}

	isStaff, err := r.UserService.IsStaff(c.Request().Context(), userID)
	if err != nil {
		log.Error("failed to check staff status", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: "failed to check staff status",
		})
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"is_staff": isStaff,
	})
}

func formBool(value string) bool {
	switch value {
	case "on", "true", "1":
		return true
	}
	return false
}
