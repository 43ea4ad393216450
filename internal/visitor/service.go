package visitor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/common/validation"
	"github.com/dcalliari/appe/internal/core/events"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Request, error)
	// List returns requests oldest first; an empty requesterID lists all.
	List(ctx context.Context, requesterID string) ([]*Request, error)
	Create(ctx context.Context, v *Request) error
	Update(ctx context.Context, v *Request) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type ServiceAPI interface {
	Create(ctx context.Context, id *internal.Identity, dto CreateVisitorDTO) (*Request, error)
	Get(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error)
	List(ctx context.Context, id *internal.Identity) ([]*Request, error)
	Update(ctx context.Context, id *internal.Identity, visitorID string, dto UpdateVisitorDTO) (*Request, error)
	Approve(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error)
	Reject(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error)
	Delete(ctx context.Context, id *internal.Identity, visitorID string) error
}

type Service struct {
	repo   Repository
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, id *internal.Identity, dto CreateVisitorDTO) (*Request, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}

	name := strings.TrimSpace(dto.VisitorName)
	v := validation.NewValidator()
	v.Field("visitorName", name).Required()
	v.Field("visitorDocument", dto.VisitorDocument).MinLength(11).MaxLength(14)
	v.Field("visitDate", dto.VisitDate).Required().Date()
	v.Field("visitTime", dto.VisitTime).Clock()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	date, _ := validation.NormalizeDate(dto.VisitDate)
	visitTime := DefaultVisitTime
	if dto.VisitTime != nil && *dto.VisitTime != "" {
		visitTime, _ = validation.NormalizeLongClock(*dto.VisitTime)
	}

	req := &Request{
		RequesterID:     id.UserID,
		VisitorName:     name,
		VisitorDocument: dto.VisitorDocument,
		VisitDate:       date,
		VisitTime:       visitTime,
		Status:          StatusPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, internal.NewInternalError("failed to create visitor", err)
	}

	s.logger.Info("visitor request created",
		"visitor_id", req.ID,
		"user_id", id.UserID,
		"visit_date", req.VisitDate)
	s.publish(ctx, events.EventTypeVisitorCreated, req)
	return req, nil
}

func (s *Service) Get(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error) {
	req, err := s.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, req.RequesterID); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, id *internal.Identity) ([]*Request, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	requester := id.UserID
	if id.IsAdmin() {
		requester = ""
	}
	list, err := s.repo.List(ctx, requester)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch visitors", err)
	}
	return list, nil
}

// Update edits a request. Requesters may only touch pending requests and
// never the status.
func (s *Service) Update(ctx context.Context, id *internal.Identity, visitorID string, dto UpdateVisitorDTO) (*Request, error) {
	req, err := s.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, req.RequesterID); err != nil {
		return nil, err
	}
	if dto.Status != nil && !id.IsAdmin() {
		return nil, ErrStatusAdminOnly
	}
	if !id.IsAdmin() && req.Status != StatusPending {
		return nil, ErrNotEditable
	}

	v := validation.NewValidator()
	if dto.VisitorName != nil {
		v.Field("visitorName", strings.TrimSpace(*dto.VisitorName)).Required()
	}
	v.Field("visitorDocument", dto.VisitorDocument).MinLength(11).MaxLength(14)
	if dto.VisitDate != nil {
		v.Field("visitDate", *dto.VisitDate).Required().Date()
	}
	v.Field("visitTime", dto.VisitTime).Clock()
	if dto.Status != nil {
		v.Field("status", dto.Status).OneOf(StatusPending, StatusApproved, StatusRejected)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	updated := *req
	if dto.VisitorName != nil {
		updated.VisitorName = strings.TrimSpace(*dto.VisitorName)
	}
	if dto.VisitorDocument != nil {
		doc := *dto.VisitorDocument
		updated.VisitorDocument = &doc
	}
	if dto.VisitDate != nil {
		updated.VisitDate, _ = validation.NormalizeDate(*dto.VisitDate)
	}
	if dto.VisitTime != nil {
		if *dto.VisitTime == "" {
			updated.VisitTime = DefaultVisitTime
		} else {
			updated.VisitTime, _ = validation.NormalizeLongClock(*dto.VisitTime)
		}
	}
	if dto.Status != nil {
		if !CanTransition(req.Status, *dto.Status) {
			return nil, ErrInvalidStatus
		}
		updated.Status = *dto.Status
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update visitor", err)
	}

	s.logger.Info("visitor request updated",
		"visitor_id", updated.ID,
		"user_id", id.UserID,
		"status", updated.Status)

	if updated.Status != req.Status {
		switch updated.Status {
		case StatusApproved:
			s.publish(ctx, events.EventTypeVisitorApproved, &updated)
		case StatusRejected:
			s.publish(ctx, events.EventTypeVisitorRejected, &updated)
		}
	}
	return &updated, nil
}

// Approve is admin only.
func (s *Service) Approve(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}
	req, err := s.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, req, StatusApproved, events.EventTypeVisitorApproved)
}

// Reject is allowed for admins and the requester.
func (s *Service) Reject(ctx context.Context, id *internal.Identity, visitorID string) (*Request, error) {
	req, err := s.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, req.RequesterID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, req, StatusRejected, events.EventTypeVisitorRejected)
}

func (s *Service) Delete(ctx context.Context, id *internal.Identity, visitorID string) error {
	req, err := s.load(ctx, visitorID)
	if err != nil {
		return err
	}
	if err := internal.RequireOwnerOrAdmin(id, req.RequesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, visitorID); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to delete visitor", err)
	}
	s.logger.Info("visitor request deleted", "visitor_id", visitorID, "user_id", id.UserID)
	return nil
}

func (s *Service) load(ctx context.Context, visitorID string) (*Request, error) {
	req, err := s.repo.GetByID(ctx, visitorID)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to fetch visitor", err)
	}
	return req, nil
}

func (s *Service) transition(ctx context.Context, id *internal.Identity, req *Request, to, eventType string) (*Request, error) {
	if !CanTransition(req.Status, to) {
		return nil, ErrInvalidStatus
	}
	if req.Status == to {
		return req, nil
	}
	if err := s.repo.UpdateStatus(ctx, req.ID, to); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update visitor status", err)
	}

	from := req.Status
	req.Status = to
	s.logger.Info("visitor status changed",
		"visitor_id", req.ID,
		"user_id", id.UserID,
		"from", from,
		"to", to)
	s.publish(ctx, eventType, req)
	return req, nil
}

func (s *Service) publish(ctx context.Context, eventType string, req *Request) {
	if s.events == nil {
		return
	}
	evt := events.NewVisitorEvent(eventType, req.ID, req.RequesterID, req.VisitorName, req.Status)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish visitor event", "event_type", eventType, "visitor_id", req.ID, "error", err)
	}
}
