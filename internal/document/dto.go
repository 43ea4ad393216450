package document

type CreateDocumentDTO struct {
	Title    string `json:"title" validate:"required"`
	FilePath string `json:"file_path" validate:"required"`
	Category string `json:"category" validate:"required,oneof=meeting_minutes bills regulations announcements"`
}

// UpdateDocumentDTO is a partial update; nil fields keep their value.
type UpdateDocumentDTO struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	FilePath *string `json:"file_path" validate:"omitempty,min=1"`
	Category *string `json:"category" validate:"omitempty,oneof=meeting_minutes bills regulations announcements"`
}

// UploadDTO carries the form fields of a multipart upload.
type UploadDTO struct {
	Title    string
	Category string
	Filename string
}

type CategoriesResponse struct {
	Categories []CategoryOption `json:"categories"`
}
