package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/library-circulation/internal/auth"
	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

// TokenIssuer signs a bearer token for a member.
type TokenIssuer interface {
	Issue(m *model.Member) (string, error)
}

// MemberService handles registration, login and member administration.
type MemberService struct {
	store  repository.Store
	tokens TokenIssuer
	options
}

// NewMemberService constructs a MemberService.
func NewMemberService(store repository.Store, tokens TokenIssuer, opts ...Option) *MemberService {
	return &MemberService{store: store, tokens: tokens, options: buildOptions(opts)}
}

// Register creates a member account and returns a signed token for it.
func (s *MemberService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	m := &model.Member{
		Email:   req.Email,
		Name:    req.Name,
		Role:    model.RoleMember,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.createMember(ctx, m, req.Password); err != nil {
		return nil, err
	}
	s.logger.Info("member registered", "member_id", m.ID)
	return s.authResponse("registered successfully", m)
}

// Login exchanges credentials for a token.
func (s *MemberService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	m, err := s.store.Members().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storage("find member", err)
	}
	if err := auth.CheckPassword(m.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, storage("check password", err)
	}
	return s.authResponse("login successful", m)
}

// Profile returns the caller's own account.
func (s *MemberService) Profile(ctx context.Context, memberID string) (*model.Member, error) {
	return s.GetMember(ctx, memberID)
}

// UpdateProfile lets members edit their own name and contact details.
func (s *MemberService) UpdateProfile(ctx context.Context, memberID string, req model.ProfileRequest) (*model.Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	m, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	m.Name, m.Phone, m.Address = req.Name, req.Phone, req.Address
	m.UpdatedAt = s.utcNow()
	if err := s.store.Members().Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, storage("update profile", err)
	}
	return m, nil
}

// ListMembers returns a page of accounts with the member role.
func (s *MemberService) ListMembers(ctx context.Context, f model.MemberFilter) (*model.MemberList, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	f.Search = strings.TrimSpace(f.Search)

	members, total, err := s.store.Members().List(ctx, f)
	if err != nil {
		return nil, storage("list members", err)
	}
	if members == nil {
		members = []model.Member{}
	}
	return &model.MemberList{Members: members, Pagination: model.NewPage(f.Page, f.Limit, total)}, nil
}

// GetMember returns a single account by ID.
func (s *MemberService) GetMember(ctx context.Context, id string) (*model.Member, error) {
	if err := checkID("member id", &id); err != nil {
		return nil, err
	}
	m, err := s.store.Members().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, storage("get member", err)
	}
	return m, nil
}

// UpdateMember is the admin edit of a member's details.
func (s *MemberService) UpdateMember(ctx context.Context, id string, req model.MemberUpdateRequest) (*model.Member, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	m, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name, m.Email, m.Phone, m.Address = req.Name, req.Email, req.Phone, req.Address
	m.UpdatedAt = s.utcNow()
	if err := s.store.Members().Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMemberNotFound
		}
		return nil, storage("update member", err)
	}
	s.logger.Info("member updated", "member_id", m.ID)
	return m, nil
}

// DeleteMember removes an account that holds no issued loans. Returned
// loans keep referencing their member, so accounts with history stay.
func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	if err := checkID("member id", &id); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Members().GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMemberNotFound
			}
			return storage("get member", err)
		}
		active, err := tx.Loans().CountIssuedByMember(ctx, id)
		if err != nil {
			return storage("count member loans", err)
		}
		if active > 0 {
			return ErrMemberHasActiveLoans
		}
		if err := tx.Members().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return ErrMemberHasHistory
			}
			return storage("delete member", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("member deleted", "member_id", id)
	return nil
}

// MemberHistory returns every loan of a member, newest first.
func (s *MemberService) MemberHistory(ctx context.Context, id string) ([]model.LoanView, error) {
	m, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListByMember(ctx, m.ID)
	if err != nil {
		return nil, storage("member history", err)
	}
	return nonNilLoans(loans), nil
}

// EnsureAdmin creates the admin account when no account uses email yet.
// It reports whether an account was created.
func (s *MemberService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, Validation("admin email and password are required")
	}
	_, err := s.store.Members().GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, storage("find admin", err)
	}

	admin := &model.Member{Email: email, Name: strings.TrimSpace(name), Role: model.RoleAdmin}
	if err := s.createMember(ctx, admin, password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("admin account created", "email", email)
	return true, nil
}

// createMember fills in the identity, hash and timestamps of m and stores it.
func (s *MemberService) createMember(ctx context.Context, m *model.Member, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return Validation("password must be at most %d bytes", auth.MaxPasswordBytes)
		}
		return storage("hash password", err)
	}
	now := s.utcNow()
	m.ID = uuid.NewString()
	m.PasswordHash = hash
	m.CreatedAt, m.UpdatedAt = now, now
	if err := s.store.Members().Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		return storage("create member", err)
	}
	return nil
}

func (s *MemberService) authResponse(msg string, m *model.Member) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(m)
	if err != nil {
		return nil, storage("issue token", err)
	}
	return &model.AuthResponse{Message: msg, Token: token, Member: *m}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
