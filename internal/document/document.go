package document

import (
	"slices"
	"time"

	"github.com/dcalliari/appe/internal"
	documentDatamodel "github.com/dcalliari/appe/internal/core/datamodel/document"
)

const (
	CategoryMeetingMinutes = "meeting_minutes"
	CategoryBills          = "bills"
	CategoryRegulations    = "regulations"
	CategoryAnnouncements  = "announcements"
)

type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Categories = []CategoryOption{
	{Value: CategoryMeetingMinutes, Label: "Atas de Reuniões"},
	{Value: CategoryBills, Label: "Boletos e Taxas"},
	{Value: CategoryRegulations, Label: "Regulamentos"},
	{Value: CategoryAnnouncements, Label: "Comunicados"},
}

func CategoryValues() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Value
	}
	return out
}

func IsValidCategory(c string) bool {
	return slices.Contains(CategoryValues(), c)
}

type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FilePath   string    `json:"file_path"`
	Category   string    `json:"category"`
	UploadedBy *string   `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Filter narrows a listing. Empty fields match everything; Search is a title
// substring.
type Filter struct {
	Category string
	Search   string
}

var (
	ErrDocumentNotFound = internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	ErrFileNotFound     = internal.NewNotFoundError("file not found", internal.ErrCodeFileNotFound)
	ErrInvalidCategory  = internal.NewValidationFieldError("category", "category must be one of meeting_minutes, bills, regulations, announcements", internal.ErrCodeInvalidCategory)
	ErrFileRequired     = internal.NewValidationFieldError("file", "file is required", internal.ErrCodeFileRequired)
	ErrFileTooLarge     = internal.NewValidationFieldError("file", "file exceeds the upload limit", internal.ErrCodeFileTooLarge)
)

func ToDataModel(d *Document) *documentDatamodel.Document {
	return &documentDatamodel.Document{
		ID:         d.ID,
		Title:      d.Title,
		FilePath:   d.FilePath,
		Category:   d.Category,
		UploadedBy: d.UploadedBy,
		UploadedAt: d.UploadedAt,
	}
}

func FromDataModel(m *documentDatamodel.Document) *Document {
	return &Document{
		ID:         m.ID,
		Title:      m.Title,
		FilePath:   m.FilePath,
		Category:   m.Category,
		UploadedBy: m.UploadedBy,
		UploadedAt: m.UploadedAt,
	}
}

func FromDataModelSlice(rows []*documentDatamodel.Document) []*Document {
	out := make([]*Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out
}
