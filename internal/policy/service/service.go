package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/authz"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/policy/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// Renewal term bounds, in calendar months.
const (
	minRenewalMonths = 1
	maxRenewalMonths = 24
)

// PolicyStore is the persistence port for policy records.
type PolicyStore interface {
	Create(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Policy, error)
	List(ctx context.Context, offset, limit int) ([]*models.Policy, int, error)
	Execute(ctx context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error)
}

// VehicleSummary is the slice of vehicle data policy reads embed.
type VehicleSummary struct {
	ID                 id.VehicleID
	Type               string
	Make               string
	Model              string
	RegistrationNumber string
}

// VehicleReader resolves vehicle summaries for policy detail reads.
type VehicleReader interface {
	Get(ctx context.Context, vehicleID id.VehicleID) (*VehicleSummary, error)
}

// Service manages the policy portfolio: reads, term updates, renewal, and
// termination. Policy creation from proposals lives in the issuance service;
// Create here is the administrative direct path.
type Service struct {
	policies PolicyStore
	vehicles VehicleReader
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(policies PolicyStore, vehicles VehicleReader, opts ...Option) *Service {
	s := &Service{policies: policies, vehicles: vehicles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the caller's policies, newest first.
func (s *Service) List(ctx context.Context, actor authz.Identity) ([]*models.Policy, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	policies, err := s.policies.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

// Detail pairs a policy with its vehicle summary.
type Detail struct {
	Policy  *models.Policy
	Vehicle *VehicleSummary
}

// Get returns one policy with its vehicle summary. Ownership misses surface
// as NotFound; admins bypass ownership.
func (s *Service) Get(ctx context.Context, actor authz.Identity, policyID id.PolicyID) (*Detail, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	policy, err := s.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, wrapPolicyErr(err)
	}
	if err := authz.RequireOwnerOrAdmin(actor, policy.OwnerID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, err
	}

	vehicle, err := s.vehicles.Get(ctx, policy.VehicleID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}
	return &Detail{Policy: policy, Vehicle: vehicle}, nil
}

// Create records a policy directly, without a proposal. Admin only.
func (s *Service) Create(ctx context.Context, actor authz.Identity, p models.NewPolicyParams) (*models.Policy, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	policy, err := models.NewPolicy(id.NewPolicyID(), p, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "proposal already has a policy")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create policy")
	}
	return policy, nil
}

// Update patches the policy term. The end-after-start invariant is checked
// against the patched values before anything is written. Admin only.
func (s *Service) Update(ctx context.Context, actor authz.Identity, policyID id.PolicyID, patch models.Patch) (*models.Policy, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	policy, err := s.policies.Execute(ctx, policyID,
		func(p *models.Policy) error { return p.ValidatePatch(patch) },
		func(p *models.Policy) { p.ApplyPatch(patch, now) },
	)
	if err != nil {
		return nil, wrapPolicyErr(err)
	}
	return policy, nil
}

// Renew extends a policy by whole calendar months. Only the owner (or an
// admin) may renew, only Active and Expired policies qualify, and this is
// the single path that reactivates an Expired policy.
func (s *Service) Renew(ctx context.Context, actor authz.Identity, policyID id.PolicyID, months int, premiumOverride *float64) (*models.Policy, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	if months < minRenewalMonths || months > maxRenewalMonths {
		return nil, dErrors.New(dErrors.CodeValidation, "renewal term must be between 1 and 24 months")
	}
	if premiumOverride != nil && *premiumOverride <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "premium override must be greater than zero")
	}

	now := requestcontext.Now(ctx)
	policy, err := s.policies.Execute(ctx, policyID,
		func(p *models.Policy) error {
			if err := authz.RequireOwnerOrAdmin(actor, p.OwnerID); err != nil {
				if authz.IsOwnershipDenial(err) {
					return dErrors.New(dErrors.CodeNotFound, "policy not found")
				}
				return err
			}
			return p.CanRenew()
		},
		func(p *models.Policy) {
			p.ApplyRenewal(months, premiumOverride, now)
		},
	)
	if err != nil {
		return nil, wrapPolicyErr(err)
	}

	s.logger.InfoContext(ctx, "policy renewed",
		"request_id", requestcontext.RequestID(ctx),
		"policy_id", policy.ID,
		"months", months,
		"new_end_date", policy.EndDate,
	)
	if s.metrics != nil {
		s.metrics.PoliciesRenewed.Inc()
	}
	return policy, nil
}

// Terminate ends a policy for good. Admin only, legal from Active or
// Expired, and always audit-logged with the reason.
func (s *Service) Terminate(ctx context.Context, actor authz.Identity, policyID id.PolicyID, reason string) (*models.Policy, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "termination reason is required")
	}

	now := requestcontext.Now(ctx)
	policy, err := s.policies.Execute(ctx, policyID,
		func(p *models.Policy) error { return p.CanTerminate() },
		func(p *models.Policy) { p.ApplyTerminate(reason, now) },
	)
	if err != nil {
		return nil, wrapPolicyErr(err)
	}

	s.logger.InfoContext(ctx, "policy terminated",
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", actor.UserID,
		"policy_id", policy.ID,
		"reason", reason,
	)
	return policy, nil
}

// ListAll returns a page of every policy for the review surface.
func (s *Service) ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Policy, int, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, 0, err
	}
	policies, total, err := s.policies.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, total, nil
}

func wrapPolicyErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "policy not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "policy store failure")
	}
}
