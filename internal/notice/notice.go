package notice

import (
	"time"

	"github.com/dcalliari/appe/internal"
	noticeDatamodel "github.com/dcalliari/appe/internal/core/datamodel/notice"
)

const (
	TypeMaintenance = "maintenance"
	TypeGeneral     = "general"
	TypeMeeting     = "meeting"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Notice struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      string     `json:"type"`
	Priority  string     `json:"priority"`
	CreatedBy *string    `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ActiveOn reports whether the notice is still shown on day. Expiry is
// compared at day granularity.
func (n *Notice) ActiveOn(day time.Time) bool {
	return n.ExpiresAt == nil || !n.ExpiresAt.Before(StartOfDay(day))
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var ErrNoticeNotFound = internal.NewNotFoundError("notice not found", internal.ErrCodeNoticeNotFound)

func ToDataModel(n *Notice) *noticeDatamodel.Notice {
	return &noticeDatamodel.Notice{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		Priority:  n.Priority,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}

func FromDataModel(n *noticeDatamodel.Notice) *Notice {
	return &Notice{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		Priority:  n.Priority,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}

func FromDataModelSlice(rows []*noticeDatamodel.Notice) []*Notice {
	result := make([]*Notice, len(rows))
	for i, n := range rows {
		result[i] = FromDataModel(n)
	}
	return result
}
