package service

import (
	"context"

	"anoa.com/kudoswall/internal/modules/user/dto"
	"anoa.com/kudoswall/internal/modules/user/repository"
	"github.com/google/uuid"
)

type UserService interface {
	ListTeamMembers(ctx context.Context) ([]dto.TeamMember, error)
	GetUser(ctx context.Context, id uuid.UUID) (*dto.TeamMember, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListTeamMembers(ctx context.Context) ([]dto.TeamMember, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]dto.TeamMember, 0, len(users))
	for i := range users {
		members = append(members, dto.NewTeamMember(&users[i]))
	}
	return members, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*dto.TeamMember, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member := dto.NewTeamMember(user)
	return &member, nil
}
