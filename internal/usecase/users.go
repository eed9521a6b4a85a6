package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// CreateUserInput contains the parameters for creating a user.
type CreateUserInput struct {
	Name  string // Display name (required, unique)
	Email string // Optional
}

// CreateUserOutput contains the created user.
type CreateUserOutput struct {
	User *domain.User
}

// CreateUser is the use case for adding a team member.
type CreateUser struct {
	users domain.UserRepository
	clock domain.Clock
}

// NewCreateUser creates a new CreateUser use case.
func NewCreateUser(users domain.UserRepository, clock domain.Clock) *CreateUser {
	return &CreateUser{users: users, clock: clock}
}

// Execute creates the user. Names are unique regardless of case.
func (uc *CreateUser) Execute(ctx context.Context, in CreateUserInput) (*CreateUserOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	existing, err := uc.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	user := &domain.User{
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &CreateUserOutput{User: user}, nil
}

// ListUsersOutput contains all users ordered by ID.
type ListUsersOutput struct {
	Users []*domain.User
}

// ListUsers is the use case for listing users.
type ListUsers struct {
	users domain.UserRepository
}

// NewListUsers creates a new ListUsers use case.
func NewListUsers(users domain.UserRepository) *ListUsers {
	return &ListUsers{users: users}
}

// Execute lists all users.
func (uc *ListUsers) Execute(ctx context.Context) (*ListUsersOutput, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ListUsersOutput{Users: users}, nil
}

// ShowUser is the use case for retrieving one user.
type ShowUser struct {
	users domain.UserRepository
}

// NewShowUser creates a new ShowUser use case.
func NewShowUser(users domain.UserRepository) *ShowUser {
	return &ShowUser{users: users}
}

// Execute returns the user or domain.ErrUserNotFound.
func (uc *ShowUser) Execute(ctx context.Context, id int64) (*domain.User, error) {
	return shared.GetUser(ctx, uc.users, id)
}
