package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/authz"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/user/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// UserStore is the persistence port for user records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int, error)
	Count(ctx context.Context) (int, error)
}

// Service manages user profiles and the admin-only account operations.
type Service struct {
	users   UserStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(users UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user record for an identity minted by the external
// authentication layer. New accounts always start as customers.
func (s *Service) Register(ctx context.Context, userID id.UserID, name, email string) (*models.User, error) {
	user, err := models.NewUser(userID, name, email, id.RoleCustomer, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "account already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return user, nil
}

// Get returns a user profile. Customers may only read their own record;
// the miss is reported as NotFound so account ids cannot be probed.
func (s *Service) Get(ctx context.Context, actor authz.Identity, userID id.UserID) (*models.User, error) {
	if err := authz.RequireOwnerOrAdmin(actor, userID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// UpdateProfile patches the caller's own mutable profile fields. Admins may
// patch any profile.
func (s *Service) UpdateProfile(ctx context.Context, actor authz.Identity, userID id.UserID, patch models.ProfilePatch) (*models.User, error) {
	if err := authz.RequireOwnerOrAdmin(actor, userID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, err
	}

	now := requestcontext.Now(ctx)
	user, err := s.users.Execute(ctx, userID,
		func(u *models.User) error {
			if !u.IsActive() {
				return dErrors.New(dErrors.CodeInvalidTransition, "user is deactivated")
			}
			return nil
		},
		func(u *models.User) {
			u.ApplyProfileUpdate(patch, now)
		},
	)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// List returns a page of users, newest first. Admin only.
func (s *Service) List(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.User, int, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, total, nil
}

// UpdateRole changes a user's role. Admin only; the before/after pair is
// always written to the audit log.
func (s *Service) UpdateRole(ctx context.Context, actor authz.Identity, userID id.UserID, role id.Role) (*models.User, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role")
	}

	now := requestcontext.Now(ctx)
	var previous id.Role
	user, err := s.users.Execute(ctx, userID,
		func(u *models.User) error {
			if !u.IsActive() {
				return dErrors.New(dErrors.CodeInvalidTransition, "user is deactivated")
			}
			return nil
		},
		func(u *models.User) {
			previous = u.ApplyRoleChange(role, now)
		},
	)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	s.logger.InfoContext(ctx, "user role updated",
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", actor.UserID,
		"user_id", userID,
		"old_role", previous,
		"new_role", role,
	)
	return user, nil
}

// Deactivate soft-disables an account. Admin only; idempotent calls fail so
// a double submit is visible to the caller.
func (s *Service) Deactivate(ctx context.Context, actor authz.Identity, userID id.UserID) (*models.User, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	user, err := s.users.Execute(ctx, userID,
		func(u *models.User) error {
			if err := u.CanDeactivate(); err != nil {
				return dErrors.New(dErrors.CodeInvalidTransition, "user is already deactivated")
			}
			return nil
		},
		func(u *models.User) {
			u.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	s.logger.InfoContext(ctx, "user deactivated",
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", actor.UserID,
		"user_id", userID,
	)
	return user, nil
}

func wrapUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}
}
