package dto

// NewsSummary строка поисковой выдачи по новостям. Имена полей
// зафиксированы существующими клиентами.
type NewsSummary struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
}

// AnnouncementSummary строка поисковой выдачи по объявлениям.
type AnnouncementSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SearchResponse struct {
	News          []NewsSummary         `json:"news"`
	Announcements []AnnouncementSummary `json:"announcements"`
}
