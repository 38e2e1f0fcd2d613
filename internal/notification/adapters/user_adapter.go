package adapters

import (
	"context"

	usermodels "motorcover/internal/user/models"
	id "motorcover/pkg/domain"
)

// UserFinder is the slice of the user store the adapter needs.
type UserFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// UserAdapter resolves notification recipients against the user store.
type UserAdapter struct {
	users UserFinder
}

func NewUserAdapter(users UserFinder) *UserAdapter {
	return &UserAdapter{users: users}
}

func (a *UserAdapter) EmailOf(ctx context.Context, userID id.UserID) (string, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
