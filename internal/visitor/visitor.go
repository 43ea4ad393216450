package visitor

import (
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/common/validation"
	visitorDatamodel "github.com/dcalliari/appe/internal/core/datamodel/visitor"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// DefaultVisitTime is used when a request names no arrival time.
	DefaultVisitTime = "00:00:00"
)

type Requester struct {
	Name      string `json:"name"`
	Apartment string `json:"apartment"`
}

type Request struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requesterId"`
	VisitorName     string     `json:"visitorName"`
	VisitorDocument *string    `json:"visitorDocument"`
	VisitDate       string     `json:"visitDate"`
	VisitTime       string     `json:"visitTime"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	Requester       *Requester `json:"requester,omitempty"`
}

// CanTransition allows pending to move to approved or rejected. Writing the
// current status again is a no-op.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

var (
	ErrVisitorNotFound = internal.NewNotFoundError("visitor not found", internal.ErrCodeVisitorNotFound)
	ErrInvalidStatus   = internal.NewValidationError("status transition not allowed", internal.ErrCodeInvalidTransition)
	ErrNotEditable     = internal.NewForbiddenError("only pending requests can be edited", internal.ErrCodeRequestNotEditable)
	ErrStatusAdminOnly = internal.NewForbiddenError("Only admins can update the status", internal.ErrCodeAdminRequired)
)

func ToDataModel(v *Request) (*visitorDatamodel.VisitorRequest, error) {
	date, err := validation.ParseDate(v.VisitDate)
	if err != nil {
		return nil, err
	}
	return &visitorDatamodel.VisitorRequest{
		ID:              v.ID,
		RequesterID:     v.RequesterID,
		VisitorName:     v.VisitorName,
		VisitorDocument: v.VisitorDocument,
		VisitDate:       date,
		VisitTime:       v.VisitTime,
		Status:          v.Status,
		CreatedAt:       v.CreatedAt,
	}, nil
}

func FromDataModel(m *visitorDatamodel.VisitorRequest) *Request {
	return &Request{
		ID:              m.ID,
		RequesterID:     m.RequesterID,
		VisitorName:     m.VisitorName,
		VisitorDocument: m.VisitorDocument,
		VisitDate:       m.VisitDate.UTC().Format(validation.DateLayout),
		VisitTime:       m.VisitTime,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
	}
}
