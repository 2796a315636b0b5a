package repository

import (
	"context"
	"time"

	"uni_portal/internal/domain/models"

	"github.com/google/uuid"
)

type SectionRepository interface {
	CreateSection(ctx context.Context, section models.Section) (int64, error)
	GetSection(ctx context.Context, id int64) (models.Section, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	SetSectionParent(ctx context.Context, id int64, parentID *int64) error
	DeleteSection(ctx context.Context, id int64) error
	HasContent(ctx context.Context, sectionID int64) (bool, error)
}

type NewsRepository interface {
	CreateNewsWithMedia(ctx context.Context, news models.News, images []models.NewsImage, attachments []models.NewsAttachment) (int64, error)
	PublishedNews(ctx context.Context, limit uint64) ([]models.News, error)
	PublishedNewsByID(ctx context.Context, id int64) (*models.News, error)
	SearchPublishedNews(ctx context.Context, query string, limit uint64) ([]models.News, error)
	UpdateNewsFields(ctx context.Context, newsID int64, updates map[string]interface{}) error
	DeleteNews(ctx context.Context, id int64) ([]string, error)
}

type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, announcement models.Announcement) (int64, error)
	ActiveAnnouncements(ctx context.Context, limit uint64) ([]models.Announcement, error)
	ActiveAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error)
	SearchActiveAnnouncements(ctx context.Context, query string, limit uint64) ([]models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id int64) error
}

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	IsStaff(ctx context.Context, userID uuid.UUID) (bool, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}
