package app

import (
	"context"
	"log/slog"

	httpapp "uni_portal/internal/app/http"
	"uni_portal/internal/config"
	"uni_portal/internal/repository"
	announcementservice "uni_portal/internal/services/announcement_service"
	newsservice "uni_portal/internal/services/news_service"
	searchservice "uni_portal/internal/services/search_service"
	sectionservice "uni_portal/internal/services/section_service"
	tokenservice "uni_portal/internal/services/token_service"
	userservice "uni_portal/internal/services/user_service"
	"uni_portal/internal/storage/filestorage"
	redis "uni_portal/internal/storage/redis"
	httprouters "uni_portal/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Repo       *repository.Repository
	Redis      *redis.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	repo, err := repository.NewRepository(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redis.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		panic(err)
	}

	tokenRepo := repository.NewRedisTokenRepo(redisClient)
	tokenService := tokenservice.NewTokenService(tokenRepo, cfg.TokenSecret, cfg.TokenTTL)

	sectionService := sectionservice.NewSectionService(log, repo.Section)
	newsService := newsservice.NewNewsService(log, repo.News, repo.Section, fileStorage)
	announcementService := announcementservice.NewAnnouncementService(log, repo.Announcement)
	searchService := searchservice.NewSearchService(log, repo.News, repo.Announcement)
	userService := userservice.NewUserService(log, repo.User, tokenService)

	routers := httprouters.NewRouter(log, sectionService, newsService, announcementService, searchService, userService, tokenService)

	server := httpapp.New(log, cfg.TokenSecret, cfg.HTTP.Host, cfg.HTTP.Port, cfg.TokenSecret, routers)

	return &App{
		HTTPServer: server,
		Repo:       repo,
		Redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	a.Repo.Close()
	a.Redis.Close()
}
