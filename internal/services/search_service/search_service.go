package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"uni_portal/internal/lib/logger/sl"
	"uni_portal/internal/metrics"
	"uni_portal/internal/repository"
	"uni_portal/internal/transport/http/dto"

	"github.com/patrickmn/go-cache"
)

const (
	// на каждый вид контента отдается не больше 10 совпадений
	searchResultLimit = 10

	// длинное поле обрезается до 150 символов, ровно 150 не трогается
	truncateLimit  = 150
	truncateMarker = "..."

	cacheTTL = time.Minute
)

type SearchService struct {
	log           *slog.Logger
	news          repository.NewsRepository
	announcements repository.AnnouncementRepository
	cache         *cache.Cache
}

func NewSearchService(log *slog.Logger, news repository.NewsRepository, announcements repository.AnnouncementRepository) *SearchService {
	return &SearchService{
		log:           log,
		news:          news,
		announcements: announcements,
		cache:         cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Search выполняет поиск подстроки без учета регистра по
// опубликованным новостям и активным объявлениям. Пустой или
// пробельный запрос дает пустую выдачу без обращения к хранилищу.
func (s *SearchService) Search(ctx context.Context, query string) (*dto.SearchResponse, error) {
	const op = "search_service.Search"

	query = strings.TrimSpace(query)

	response := &dto.SearchResponse{
		News:          []dto.NewsSummary{},
		Announcements: []dto.AnnouncementSummary{},
	}

	if query == "" {
		return response, nil
	}

	metrics.SearchRequestsTotal.Inc()

	if cached, found := s.cache.Get(query); found {
		return cached.(*dto.SearchResponse), nil
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("query", query),
	)

	newsList, err := s.news.SearchPublishedNews(ctx, query, searchResultLimit)
	if err != nil {
		log.Error("news search failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	announcements, err := s.announcements.SearchActiveAnnouncements(ctx, query, searchResultLimit)
	if err != nil {
		log.Error("announcement search failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, n := range newsList {
		response.News = append(response.News, dto.NewsSummary{
			ID:               n.ID,
			Title:            n.Title,
			ShortDescription: truncate(n.ShortDescription),
		})
	}

	for _, a := range announcements {
		response.Announcements = append(response.Announcements, dto.AnnouncementSummary{
			ID:    a.ID,
			Title: a.Title,
			Body:  truncate(a.Body),
		})
	}

	s.cache.SetDefault(query, response)

	log.Info("search completed",
		slog.Int("news", len(response.News)),
		slog.Int("announcements", len(response.Announcements)),
	)

	return response, nil
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= truncateLimit {
		return text
	}
	return string(runes[:truncateLimit]) + truncateMarker
}
