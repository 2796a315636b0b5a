package models

// NewsImage изображение новости. Первое по порядку загрузки является
// превью; сортировка набора владельца -- (sort_order, id).
type NewsImage struct {
	ID          int64  `db:"id" json:"id"`
	NewsID      int64  `db:"news_id" json:"news_id"`
	StoragePath string `db:"storage_path" json:"storage_path"`
	IsPreview   bool   `db:"is_preview" json:"is_preview"`
	SortOrder   int    `db:"sort_order" json:"sort_order"`
}

// NewsAttachment файл, прикрепленный к новости.
type NewsAttachment struct {
	ID           int64  `db:"id" json:"id"`
	NewsID       int64  `db:"news_id" json:"news_id"`
	StoragePath  string `db:"storage_path" json:"storage_path"`
	OriginalName string `db:"original_name" json:"original_name"`
}

// AnnouncementImage изображение объявления.
type AnnouncementImage struct {
	ID             int64  `db:"id" json:"id"`
	AnnouncementID int64  `db:"announcement_id" json:"announcement_id"`
	StoragePath    string `db:"storage_path" json:"storage_path"`
	SortOrder      int    `db:"sort_order" json:"sort_order"`
}

// AnnouncementAttachment файл, прикрепленный к объявлению.
type AnnouncementAttachment struct {
	ID             int64  `db:"id" json:"id"`
	AnnouncementID int64  `db:"announcement_id" json:"announcement_id"`
	StoragePath    string `db:"storage_path" json:"storage_path"`
	OriginalName   string `db:"original_name" json:"original_name"`
}

// BuildNewsImages собирает записи изображений из сохраненных путей.
// sort_order -- позиция в порядке загрузки, превью только у нулевой.
func BuildNewsImages(paths []string) []NewsImage {
	images := make([]NewsImage, 0, len(paths))
	for idx, path := range paths {
		images = append(images, NewsImage{
			StoragePath: path,
			IsPreview:   idx == 0,
			SortOrder:   idx,
		})
	}
	return images
}

// BuildNewsAttachments собирает записи файлов, оригинальное имя
// сохраняется как есть.
func BuildNewsAttachments(paths, originalNames []string) []NewsAttachment {
	attachments := make([]NewsAttachment, 0, len(paths))
	for idx, path := range paths {
		var name string
		if idx < len(originalNames) {
			name = originalNames[idx]
		}
		attachments = append(attachments, NewsAttachment{
			StoragePath:  path,
			OriginalName: name,
		})
	}
	return attachments
}
