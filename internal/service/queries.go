package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// QueryService handles the help desk: members ask, admins answer.
type QueryService struct {
	store repository.Store
	options
}

// NewQueryService constructs a QueryService.
func NewQueryService(store repository.Store, opts ...Option) *QueryService {
	return &QueryService{store: store, options: buildOptions(opts)}
}

// SubmitQuery stores a new open query from a member.
func (s *QueryService) SubmitQuery(ctx context.Context, memberID string, req model.QueryRequest) (*model.HelpQuery, error) {
	if err := checkID("member id", &memberID); err != nil {
		return nil, err
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	now := s.utcNow()
	q := &model.HelpQuery{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    model.QueryOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Queries().Create(ctx, q); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, ErrMemberNotFound
		}
		return nil, storage("create query", err)
	}
	return q, nil
}

// ListQueries returns queries newest first, optionally narrowed by status.
func (s *QueryService) ListQueries(ctx context.Context, status model.QueryStatus) ([]model.HelpQueryView, error) {
	if status != "" && !status.Valid() {
		return nil, Validation("status must be open, resolved or closed")
	}
	out, err := s.store.Queries().List(ctx, status)
	if err != nil {
		return nil, storage("list queries", err)
	}
	if out == nil {
		out = []model.HelpQueryView{}
	}
	return out, nil
}

// RespondQuery records an admin answer. The status defaults to resolved.
func (s *QueryService) RespondQuery(ctx context.Context, id string, req model.QueryResponseRequest) error {
	if err := checkID("query id", &id); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = model.QueryResolved
	}
	if !req.Status.Valid() {
		return Validation("status must be open, resolved or closed")
	}

	err := s.store.Queries().Respond(ctx, id, strings.TrimSpace(req.AdminResponse), req.Status, s.utcNow())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQueryNotFound
		}
		return storage("respond to query", err)
	}
	s.logger.Info("query answered", "query_id", id, "status", req.Status)
	return nil
}
