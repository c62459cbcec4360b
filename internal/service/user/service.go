package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidStatus = errors.New("invalid status")
	ErrSelfDemotion  = errors.New("admins cannot change their own role")
)

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error)
	AssignRole(ctx context.Context, actorID uuid.UUID, input domain.AssignRoleInput) (*domain.User, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, input domain.UpdateUserStatusInput) (*domain.User, error)
}

type service struct {
	userRepo repository.UserRepository
}

func NewService(userRepo repository.UserRepository) Service {
	return &service{userRepo: userRepo}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error) {
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.User]{}, err
	}
	return domain.NewPaginatedResponse(users, params.Page, params.PageSize, total), nil
}

func (s *service) AssignRole(ctx context.Context, actorID uuid.UUID, input domain.AssignRoleInput) (*domain.User, error) {
	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if input.UserID == actorID {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.AssignRole(ctx, input.UserID, input.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, input.UserID)
}

func (s *service) UpdateStatus(ctx context.Context, userID uuid.UUID, input domain.UpdateUserStatusInput) (*domain.User, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, input.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}
