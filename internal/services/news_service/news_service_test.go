package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"testing"

	"uni_portal/internal/domain/models"
	"uni_portal/internal/storage"
	"uni_portal/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNewsRepository реализация мок-репозитория
type MockNewsRepository struct {
	mock.Mock
}

func (m *MockNewsRepository) CreateNewsWithMedia(ctx context.Context, news models.News, images []models.NewsImage, attachments []models.NewsAttachment) (int64, error) {
	args := m.Called(ctx, news, images, attachments)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNewsRepository) PublishedNews(ctx context.Context, limit uint64) ([]models.News, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.News), args.Error(1)
}

func (m *MockNewsRepository) PublishedNewsByID(ctx context.Context, id int64) (*models.News, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.News), args.Error(1)
}

func (m *MockNewsRepository) SearchPublishedNews(ctx context.Context, query string, limit uint64) ([]models.News, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.News), args.Error(1)
}

func (m *MockNewsRepository) UpdateNewsFields(ctx context.Context, newsID int64, updates map[string]interface{}) error {
	args := m.Called(ctx, newsID, updates)
	return args.Error(0)
}

func (m *MockNewsRepository) DeleteNews(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) CreateSection(ctx context.Context, section models.Section) (int64, error) {
	args := m.Called(ctx, section)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSectionRepository) GetSection(ctx context.Context, id int64) (models.Section, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Section), args.Error(1)
}

func (m *MockSectionRepository) ListSections(ctx context.Context) ([]models.Section, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Section), args.Error(1)
}

func (m *MockSectionRepository) SetSectionParent(ctx context.Context, id int64, parentID *int64) error {
	args := m.Called(ctx, id, parentID)
	return args.Error(0)
}

func (m *MockSectionRepository) DeleteSection(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSectionRepository) HasContent(ctx context.Context, sectionID int64) (bool, error) {
	args := m.Called(ctx, sectionID)
	return args.Bool(0), args.Error(1)
}

// MockFileStorage мок файлового хранилища: выдает предсказуемые
// пути и запоминает, что было удалено.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	args := m.Called(ctx, file, subPath)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockFileStorage) Delete(ctx context.Context, filePath string) error {
	args := m.Called(ctx, filePath)
	return args.Error(0)
}

func (m *MockFileStorage) GetFullPath(relativePath string) string {
	args := m.Called(relativePath)
	return args.String(0)
}

func (m *MockFileStorage) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFileStorage) GetBaseDir() string {
	args := m.Called()
	return args.String(0)
}

func fileHeader(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func TestNewsService_CreateNews_Validation(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	tests := []struct {
		name       string
		input      dto.CreateNewsInput
		mockSetup  func(sections *MockSectionRepository)
		wantErrors map[string]string
	}{
		{
			name:  "all fields empty",
			input: dto.CreateNewsInput{},
			wantErrors: map[string]string{
				"section":           "section required",
				"title":             "title is required",
				"short_description": "short description is required",
				"body":              "body is required",
			},
		},
		{
			name: "whitespace only fields",
			input: dto.CreateNewsInput{
				SectionID:        "1",
				Title:            "   ",
				ShortDescription: "\t\n",
				Body:             " ",
			},
			mockSetup: func(sections *MockSectionRepository) {
				sections.On("GetSection", ctx, int64(1)).
					Return(models.Section{ID: 1, Title: "Наука"}, nil).Once()
			},
			wantErrors: map[string]string{
				"title":             "title is required",
				"short_description": "short description is required",
				"body":              "body is required",
			},
		},
		{
			name: "unknown section and missing body collected together",
			input: dto.CreateNewsInput{
				SectionID:        "99",
				Title:            "Заголовок",
				ShortDescription: "Кратко",
			},
			mockSetup: func(sections *MockSectionRepository) {
				sections.On("GetSection", ctx, int64(99)).
					Return(models.Section{}, storage.ErrSectionNotFound).Once()
			},
			wantErrors: map[string]string{
				"section": "section not found",
				"body":    "body is required",
			},
		},
		{
			name: "non-numeric section id",
			input: dto.CreateNewsInput{
				SectionID:        "abc",
				Title:            "Заголовок",
				ShortDescription: "Кратко",
				Body:             "Текст",
			},
			wantErrors: map[string]string{
				"section": "section not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockNewsRepository)
			mockSections := new(MockSectionRepository)
			mockStorage := new(MockFileStorage)
			service := NewNewsService(log, mockRepo, mockSections, mockStorage)

			if tt.mockSetup != nil {
				tt.mockSetup(mockSections)
			}

			id, err := service.CreateNews(ctx, tt.input)

			require.Error(t, err)
			assert.Zero(t, id)

			fieldErrors, ok := models.IsFieldErrors(err)
			require.True(t, ok, "expected FieldErrors, got %T", err)
			assert.Equal(t, models.FieldErrors(tt.wantErrors), fieldErrors)

			// ни записей, ни файлов при отказе формы
			mockRepo.AssertNotCalled(t, "CreateNewsWithMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			mockStorage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
			mockSections.AssertExpectations(t)
		})
	}
}

func TestNewsService_CreateNews_SectionStoreFailureIsNotValidation(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	mockSections := new(MockSectionRepository)
	mockStorage := new(MockFileStorage)
	service := NewNewsService(log, mockRepo, mockSections, mockStorage)

	storeErr := errors.New("connection refused")
	mockSections.On("GetSection", ctx, int64(1)).
		Return(models.Section{}, storeErr).Once()

	input := dto.CreateNewsInput{
		SectionID:        "1",
		Title:            "Заголовок",
		ShortDescription: "Кратко",
		Body:             "Текст",
	}

	id, err := service.CreateNews(ctx, input)

	require.Error(t, err)
	assert.Zero(t, id)

	// сбой хранилища не маскируется под ошибку формы
	_, ok := models.IsFieldErrors(err)
	assert.False(t, ok, "expected a plain error, got FieldErrors")
	assert.ErrorIs(t, err, storeErr)

	mockRepo.AssertNotCalled(t, "CreateNewsWithMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewsService_CreateNews_MediaOrdering(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	mockSections := new(MockSectionRepository)
	mockStorage := new(MockFileStorage)
	service := NewNewsService(log, mockRepo, mockSections, mockStorage)

	mockSections.On("GetSection", ctx, int64(3)).
		Return(models.Section{ID: 3, Title: "Новости"}, nil).Once()

	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("news/images/a.jpg", int64(10), nil).Once()
	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("news/images/b.jpg", int64(20), nil).Once()
	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("news/images/c.jpg", int64(30), nil).Once()
	mockStorage.On("Save", ctx, mock.Anything, "news/attachments").
		Return("news/attachments/report.pdf", int64(40), nil).Once()

	var gotImages []models.NewsImage
	var gotAttachments []models.NewsAttachment

	mockRepo.On("CreateNewsWithMedia", ctx, mock.AnythingOfType("models.News"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotImages = args.Get(2).([]models.NewsImage)
			gotAttachments = args.Get(3).([]models.NewsAttachment)
		}).
		Return(int64(7), nil).Once()

	input := dto.CreateNewsInput{
		SectionID:        "3",
		Title:            "Открытие корпуса",
		ShortDescription: "Новый учебный корпус",
		Body:             "Сегодня открылся новый учебный корпус.",
		IsPublished:      true,
		Images:           []*multipart.FileHeader{fileHeader("a.jpg"), fileHeader("b.jpg"), fileHeader("c.jpg")},
		Attachments:      []*multipart.FileHeader{fileHeader("report.pdf")},
	}

	id, err := service.CreateNews(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	require.Len(t, gotImages, 3)
	assert.True(t, gotImages[0].IsPreview)
	assert.False(t, gotImages[1].IsPreview)
	assert.False(t, gotImages[2].IsPreview)
	assert.Equal(t, 0, gotImages[0].SortOrder)
	assert.Equal(t, 1, gotImages[1].SortOrder)
	assert.Equal(t, 2, gotImages[2].SortOrder)

	require.Len(t, gotAttachments, 1)
	assert.Equal(t, "report.pdf", gotAttachments[0].OriginalName)
	assert.Equal(t, "news/attachments/report.pdf", gotAttachments[0].StoragePath)

	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestNewsService_CreateNews_RollbackReleasesFiles(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	mockSections := new(MockSectionRepository)
	mockStorage := new(MockFileStorage)
	service := NewNewsService(log, mockRepo, mockSections, mockStorage)

	mockSections.On("GetSection", ctx, int64(1)).
		Return(models.Section{ID: 1}, nil).Once()

	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("news/images/a.jpg", int64(10), nil).Once()

	mockRepo.On("CreateNewsWithMedia", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("deadlock detected")).Once()

	mockStorage.On("Delete", ctx, "news/images/a.jpg").Return(nil).Once()

	input := dto.CreateNewsInput{
		SectionID:        "1",
		Title:            "Заголовок",
		ShortDescription: "Кратко",
		Body:             "Текст",
		Images:           []*multipart.FileHeader{fileHeader("a.jpg")},
	}

	id, err := service.CreateNews(ctx, input)

	require.Error(t, err)
	assert.Zero(t, id)
	mockStorage.AssertExpectations(t)
}

func TestNewsService_CreateNews_StorageFailureCleansUp(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	mockSections := new(MockSectionRepository)
	mockStorage := new(MockFileStorage)
	service := NewNewsService(log, mockRepo, mockSections, mockStorage)

	mockSections.On("GetSection", ctx, int64(1)).
		Return(models.Section{ID: 1}, nil).Once()

	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("news/images/a.jpg", int64(10), nil).Once()
	mockStorage.On("Save", ctx, mock.Anything, "news/images").
		Return("", int64(0), errors.New("disk full")).Once()

	mockStorage.On("Delete", ctx, "news/images/a.jpg").Return(nil).Once()

	input := dto.CreateNewsInput{
		SectionID:        "1",
		Title:            "Заголовок",
		ShortDescription: "Кратко",
		Body:             "Текст",
		Images:           []*multipart.FileHeader{fileHeader("a.jpg"), fileHeader("b.jpg")},
	}

	_, err := service.CreateNews(ctx, input)

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "CreateNewsWithMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertExpectations(t)
}

func TestNewsService_UpdateNews(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	strPtr := func(s string) *string { return &s }
	int64Ptr := func(v int64) *int64 { return &v }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("only given fields reach the store", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		mockSections := new(MockSectionRepository)
		service := NewNewsService(log, mockRepo, mockSections, new(MockFileStorage))

		var gotUpdates map[string]interface{}
		mockRepo.On("UpdateNewsFields", ctx, int64(7), mock.Anything).
			Run(func(args mock.Arguments) {
				gotUpdates = args.Get(2).(map[string]interface{})
			}).
			Return(nil).Once()

		err := service.UpdateNews(ctx, 7, dto.UpdateNewsRequest{
			Title:       strPtr("  Новый заголовок  "),
			IsPublished: boolPtr(false),
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"title":        "Новый заголовок",
			"is_published": false,
		}, gotUpdates)
		mockSections.AssertNotCalled(t, "GetSection", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("section change is checked against the tree", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		mockSections := new(MockSectionRepository)
		service := NewNewsService(log, mockRepo, mockSections, new(MockFileStorage))

		mockSections.On("GetSection", ctx, int64(3)).
			Return(models.Section{ID: 3}, nil).Once()
		mockRepo.On("UpdateNewsFields", ctx, int64(7), map[string]interface{}{
			"section_id": int64(3),
		}).Return(nil).Once()

		err := service.UpdateNews(ctx, 7, dto.UpdateNewsRequest{SectionID: int64Ptr(3)})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockSections.AssertExpectations(t)
	})

	t.Run("validation errors collected, nothing stored", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		mockSections := new(MockSectionRepository)
		service := NewNewsService(log, mockRepo, mockSections, new(MockFileStorage))

		mockSections.On("GetSection", ctx, int64(99)).
			Return(models.Section{}, storage.ErrSectionNotFound).Once()

		err := service.UpdateNews(ctx, 7, dto.UpdateNewsRequest{
			SectionID: int64Ptr(99),
			Title:     strPtr("   "),
			Body:      strPtr(""),
		})

		fieldErrors, ok := models.IsFieldErrors(err)
		require.True(t, ok, "expected FieldErrors, got %T", err)
		assert.Equal(t, models.FieldErrors{
			"section": "section not found",
			"title":   "title is required",
			"body":    "body is required",
		}, fieldErrors)
		mockRepo.AssertNotCalled(t, "UpdateNewsFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("section store failure is not validation", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		mockSections := new(MockSectionRepository)
		service := NewNewsService(log, mockRepo, mockSections, new(MockFileStorage))

		storeErr := errors.New("connection refused")
		mockSections.On("GetSection", ctx, int64(3)).
			Return(models.Section{}, storeErr).Once()

		err := service.UpdateNews(ctx, 7, dto.UpdateNewsRequest{SectionID: int64Ptr(3)})

		require.Error(t, err)
		_, ok := models.IsFieldErrors(err)
		assert.False(t, ok, "expected a plain error, got FieldErrors")
		assert.ErrorIs(t, err, storeErr)
		mockRepo.AssertNotCalled(t, "UpdateNewsFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty request rejected", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		service := NewNewsService(log, mockRepo, new(MockSectionRepository), new(MockFileStorage))

		err := service.UpdateNews(ctx, 7, dto.UpdateNewsRequest{})

		fieldErrors, ok := models.IsFieldErrors(err)
		require.True(t, ok)
		assert.Contains(t, fieldErrors, "form")
		mockRepo.AssertNotCalled(t, "UpdateNewsFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing news surfaces not found", func(t *testing.T) {
		mockRepo := new(MockNewsRepository)
		service := NewNewsService(log, mockRepo, new(MockSectionRepository), new(MockFileStorage))

		mockRepo.On("UpdateNewsFields", ctx, int64(404), mock.Anything).
			Return(storage.ErrNewsNotFound).Once()

		err := service.UpdateNews(ctx, 404, dto.UpdateNewsRequest{Title: strPtr("Заголовок")})

		assert.ErrorIs(t, err, storage.ErrNewsNotFound)
	})
}

func TestNewsService_DeleteNews(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	mockSections := new(MockSectionRepository)
	mockStorage := new(MockFileStorage)
	service := NewNewsService(log, mockRepo, mockSections, mockStorage)

	mockRepo.On("DeleteNews", ctx, int64(5)).
		Return([]string{"news/images/a.jpg", "news/attachments/r.pdf"}, nil).Once()
	mockStorage.On("Delete", ctx, "news/images/a.jpg").Return(nil).Once()
	mockStorage.On("Delete", ctx, "news/attachments/r.pdf").Return(nil).Once()

	err := service.DeleteNews(ctx, 5)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestNewsService_NewsByID_NotFound(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockNewsRepository)
	service := NewNewsService(log, mockRepo, new(MockSectionRepository), new(MockFileStorage))

	mockRepo.On("PublishedNewsByID", ctx, int64(404)).
		Return(nil, storage.ErrNewsNotFound).Once()

	news, err := service.NewsByID(ctx, 404)

	require.Error(t, err)
	assert.Nil(t, news)
	assert.ErrorIs(t, err, storage.ErrNewsNotFound)
}
