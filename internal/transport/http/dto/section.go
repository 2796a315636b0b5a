package dto

type CreateSectionRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	SectionType string `json:"section_type,omitempty" validate:"omitempty,oneof=main news announcement"`
}

type CreateSectionResponse struct {
	ID int64 `json:"id"`
}

type UpdateSectionParentRequest struct {
	ParentID *int64 `json:"parent_id"`
}
