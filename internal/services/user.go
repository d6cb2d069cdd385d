package services

import (
	"context"
	"regexp"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService handles user-related operations. Passwords and sessions are
// an external collaborator's concern; only the profile row lives here.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u.UserID == "" {
		return nil, model.NewValidationError("userId", "userId is required")
	}
	if u.Email == "" || len(u.Email) > 320 || !emailRx.MatchString(u.Email) {
		return nil, model.NewValidationError("email", "invalid email")
	}
	if u.DisplayName != nil && len(*u.DisplayName) > 100 {
		return nil, model.NewValidationError("displayName", "displayName exceeds 100 characters")
	}
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "userId is required")
	}
	return s.store.Users().Get(ctx, userID)
}
