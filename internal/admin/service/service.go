package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"motorcover/internal/authz"
	claimmodels "motorcover/internal/claim/models"
	policymodels "motorcover/internal/policy/models"
	proposalmodels "motorcover/internal/proposal/models"
	usermodels "motorcover/internal/user/models"
	vehiclemodels "motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
)

// Store slices the dashboard reads from. Each domain store satisfies its
// own interface; the admin service never writes.

type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	Count(ctx context.Context) (int, error)
}

type VehicleStore interface {
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*vehiclemodels.Vehicle, error)
}

type ProposalStore interface {
	CountByStatus(ctx context.Context) (map[proposalmodels.ProposalStatus]int, error)
}

type PolicyStore interface {
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*policymodels.Policy, error)
	CountByStatus(ctx context.Context) (map[policymodels.PolicyStatus]int, error)
}

type ClaimStore interface {
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*claimmodels.Claim, error)
	CountByStatus(ctx context.Context) (map[claimmodels.ClaimStatus]int, error)
}

// Dashboard is the operational snapshot the back office lands on.
type Dashboard struct {
	TotalUsers int                                    `json:"total_users"`
	Proposals  map[proposalmodels.ProposalStatus]int  `json:"proposals"`
	Policies   map[policymodels.PolicyStatus]int      `json:"policies"`
	Claims     map[claimmodels.ClaimStatus]int        `json:"claims"`
}

// UserDetail is the composite view of one customer's footprint.
type UserDetail struct {
	User     *usermodels.User          `json:"user"`
	Vehicles []*vehiclemodels.Vehicle  `json:"vehicles"`
	Policies []*policymodels.Policy    `json:"policies"`
	Claims   []*claimmodels.Claim      `json:"claims"`
}

// Service serves the back-office aggregate views.
type Service struct {
	users     UserStore
	vehicles  VehicleStore
	proposals ProposalStore
	policies  PolicyStore
	claims    ClaimStore
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users UserStore, vehicles VehicleStore, proposals ProposalStore, policies PolicyStore, claims ClaimStore, opts ...Option) *Service {
	s := &Service{
		users:     users,
		vehicles:  vehicles,
		proposals: proposals,
		policies:  policies,
		claims:    claims,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard gathers the status counters in parallel. Reviewer access.
func (s *Service) Dashboard(ctx context.Context, actor authz.Identity) (*Dashboard, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, err
	}

	dashboard := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.users.Count(ctx)
		if err != nil {
			return err
		}
		dashboard.TotalUsers = count
		return nil
	})
	g.Go(func() error {
		counts, err := s.proposals.CountByStatus(ctx)
		if err != nil {
			return err
		}
		dashboard.Proposals = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.policies.CountByStatus(ctx)
		if err != nil {
			return err
		}
		dashboard.Policies = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.claims.CountByStatus(ctx)
		if err != nil {
			return err
		}
		dashboard.Claims = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}
	return dashboard, nil
}

// UserDetail assembles one customer's vehicles, policies, and claims.
// Admin access.
func (s *Service) UserDetail(ctx context.Context, actor authz.Identity, userID id.UserID) (*UserDetail, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	detail := &UserDetail{User: user}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vehicles, err := s.vehicles.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		detail.Vehicles = vehicles
		return nil
	})
	g.Go(func() error {
		policies, err := s.policies.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		detail.Policies = policies
		return nil
	})
	g.Go(func() error {
		claims, err := s.claims.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		detail.Claims = claims
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user detail")
	}
	return detail, nil
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
