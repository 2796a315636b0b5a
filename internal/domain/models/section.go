package models

type SectionType string

const (
	SectionTypeMain         SectionType = "main"
	SectionTypeNews         SectionType = "news"
	SectionTypeAnnouncement SectionType = "announcement"
)

// Section представляет раздел или подраздел (рекурсивная иерархия).
type Section struct {
	ID          int64       `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	ParentID    *int64      `db:"parent_id" json:"parent_id,omitempty"`
	SectionType SectionType `db:"section_type" json:"section_type"`
}

func (t SectionType) Valid() bool {
	switch t {
	case SectionTypeMain, SectionTypeNews, SectionTypeAnnouncement:
		return true
	}
	return false
}
