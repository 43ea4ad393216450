package notice

type CreateNoticeDTO struct {
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=maintenance general meeting"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	// ExpiresAt accepts YYYY-MM-DD or RFC 3339.
	ExpiresAt *string `json:"expires_at"`
}
