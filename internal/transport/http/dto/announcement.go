package dto

type CreateAnnouncementRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	SectionID *int64 `json:"section_id,omitempty"`
	IsActive  bool   `json:"is_active"`
}

type CreateAnnouncementResponse struct {
	ID int64 `json:"id"`
}
