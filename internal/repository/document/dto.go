package document

import (
	"time"

	"github.com/marksearch/marksearch/internal/domain"
)

// docDTO mirrors the JSON shape the bookmark manager writes to the store.
type docDTO struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	OCRText      string    `json:"ocrText"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
	CollectionID string    `json:"collectionId"`
	Source       string    `json:"source"`
}

// toDomain converts the stored shape into a searchable document. The type is
// derived here from the URL shape; it is not stored upstream.
func (d docDTO) toDomain() domain.Document {
	return domain.Document{
		ID:           d.ID,
		Title:        d.Title,
		Notes:        d.Notes,
		Description:  d.Description,
		Tags:         d.Tags,
		OCRText:      d.OCRText,
		URL:          d.URL,
		CreatedAt:    d.CreatedAt,
		CollectionID: d.CollectionID,
		Source:       d.Source,
		Type:         domain.ClassifyType(d.URL),
	}
}
