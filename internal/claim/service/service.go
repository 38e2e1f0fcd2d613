package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/authz"
	"motorcover/internal/claim/models"
	notifmodels "motorcover/internal/notification/models"
	"motorcover/internal/platform/metrics"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// ClaimStore is the persistence port for claim records.
type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Claim, error)
	List(ctx context.Context, offset, limit int) ([]*models.Claim, int, error)
	Execute(ctx context.Context, claimID id.ClaimID, validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error)
	Delete(ctx context.Context, claimID id.ClaimID) error
}

// PolicySummary is the slice of policy data claim flows need.
type PolicySummary struct {
	ID             id.PolicyID
	OwnerID        id.UserID
	VehicleID      id.VehicleID
	Type           string
	Status         string
	CoverageAmount float64
	Active         bool
}

// PolicyReader resolves policies during filing and detail reads.
type PolicyReader interface {
	Get(ctx context.Context, policyID id.PolicyID) (*PolicySummary, error)
}

// DocumentAttacher persists an uploaded attachment against a claim after
// the claim row exists.
type DocumentAttacher interface {
	AttachToClaim(ctx context.Context, claimID id.ClaimID, docType, filename string, content []byte) (locator string, err error)
	DeleteByClaim(ctx context.Context, claimID id.ClaimID) error
}

// EventSink accepts outbox notification events after a transition commits.
type EventSink interface {
	Emit(ctx context.Context, event *notifmodels.Event) error
}

// Attachment is an optional uploaded file accompanying a filing.
type Attachment struct {
	Type     string
	Filename string
	Content  []byte
}

// Service drives the claim state machine.
type Service struct {
	claims    ClaimStore
	policies  PolicyReader
	documents DocumentAttacher
	events    EventSink
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithDocuments(documents DocumentAttacher) Option {
	return func(s *Service) { s.documents = documents }
}

func WithEvents(events EventSink) Option {
	return func(s *Service) { s.events = events }
}

func New(claims ClaimStore, policies PolicyReader, opts ...Option) *Service {
	s := &Service{claims: claims, policies: policies, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File records a loss report against a policy the caller owns. A missing or
// foreign policy surfaces as NotFound; an inactive policy or a future
// incident date fails the transition.
func (s *Service) File(ctx context.Context, actor authz.Identity, p models.NewClaimParams, attachment *Attachment) (*models.Claim, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	policy, err := s.policies.Get(ctx, p.PolicyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	if policy.OwnerID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if !policy.Active {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "claims can only be filed on an active policy")
	}

	p.OwnerID = policy.OwnerID
	claim, err := models.NewClaim(id.NewClaimID(), p, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create claim")
	}

	// Attach only after the claim row exists so the document always has a
	// valid parent. A failed upload degrades the filing, it does not undo
	// it.
	if attachment != nil && s.documents != nil {
		if _, err := s.documents.AttachToClaim(ctx, claim.ID, attachment.Type, attachment.Filename, attachment.Content); err != nil {
			s.logger.WarnContext(ctx, "claim attachment failed",
				"request_id", requestcontext.RequestID(ctx),
				"claim_id", claim.ID,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.ClaimsFiled.Inc()
	}
	return claim, nil
}

// Listed pairs a claim with its policy summary.
type Listed struct {
	Claim  *models.Claim
	Policy *PolicySummary
}

// List returns the caller's claims, newest first, each with its policy
// summary.
func (s *Service) List(ctx context.Context, actor authz.Identity) ([]*Listed, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	claims, err := s.claims.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}

	out := make([]*Listed, 0, len(claims))
	for _, claim := range claims {
		policy, err := s.policies.Get(ctx, claim.PolicyID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
		}
		out = append(out, &Listed{Claim: claim, Policy: policy})
	}
	return out, nil
}

// Get returns one claim with its policy summary. Ownership misses surface
// as NotFound; admins bypass ownership.
func (s *Service) Get(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*Listed, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	if err := authz.RequireOwnerOrAdmin(actor, claim.OwnerID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, err
	}

	policy, err := s.policies.Get(ctx, claim.PolicyID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	return &Listed{Claim: claim, Policy: policy}, nil
}

// Update patches a claim. Only admins may touch the status; a non-admin
// attempting a status change is refused outright, not silently ignored.
func (s *Service) Update(ctx context.Context, actor authz.Identity, claimID id.ClaimID, patch models.Patch) (*models.Claim, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	if patch.Status != nil && !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can change claim status")
	}

	now := requestcontext.Now(ctx)
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error {
			if err := authz.RequireOwnerOrAdmin(actor, c.OwnerID); err != nil {
				if authz.IsOwnershipDenial(err) {
					return dErrors.New(dErrors.CodeNotFound, "claim not found")
				}
				return err
			}
			return c.ValidatePatch(patch)
		},
		func(c *models.Claim) {
			c.ApplyPatch(patch, now)
		},
	)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return claim, nil
}

// StartReview moves a pending claim into assessment. Reviewer only.
func (s *Service) StartReview(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*models.Claim, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error { return c.CanStartReview() },
		func(c *models.Claim) { c.ApplyStartReview(now) },
	)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return claim, nil
}

// Approve records a payout decision and notifies the claimant. The approval
// is the durable fact: a failed notification is logged, never rolled back.
func (s *Service) Approve(ctx context.Context, actor authz.Identity, claimID id.ClaimID, approvedAmount float64, notes string) (*models.Claim, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if approvedAmount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "approved amount must be greater than zero")
	}

	now := requestcontext.Now(ctx)
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error { return c.CanApprove() },
		func(c *models.Claim) { c.ApplyApprove(approvedAmount, notes, now) },
	)
	if err != nil {
		return nil, wrapClaimErr(err)
	}

	s.emit(ctx, notifmodels.ClaimApproved(claim.OwnerID, claim.ID, approvedAmount, now))
	if s.metrics != nil {
		s.metrics.ClaimsApproved.Inc()
	}
	return claim, nil
}

// Reject turns a claim down. The owner may withdraw their own claim this
// way; an admin rejection notifies the claimant.
func (s *Service) Reject(ctx context.Context, actor authz.Identity, claimID id.ClaimID, notes string) (*models.Claim, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error {
			if err := authz.RequireOwnerOrAdmin(actor, c.OwnerID); err != nil {
				if authz.IsOwnershipDenial(err) {
					return dErrors.New(dErrors.CodeNotFound, "claim not found")
				}
				return err
			}
			return c.CanReject()
		},
		func(c *models.Claim) {
			c.ApplyReject(notes, now)
		},
	)
	if err != nil {
		return nil, wrapClaimErr(err)
	}

	if actor.Role.IsAdmin() {
		s.emit(ctx, notifmodels.ClaimRejected(claim.OwnerID, claim.ID, notes, now))
	}
	if s.metrics != nil {
		s.metrics.ClaimsRejected.Inc()
	}
	return claim, nil
}

// Settle marks an approved claim as paid out. Admin only.
func (s *Service) Settle(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*models.Claim, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error { return c.CanSettle() },
		func(c *models.Claim) { c.ApplySettle(now) },
	)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return claim, nil
}

// Delete hard-deletes a claim and its documents. Only claims still in
// flight can be removed.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, claimID id.ClaimID) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}

	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return wrapClaimErr(err)
	}
	if err := claim.CanDelete(); err != nil {
		return err
	}

	if s.documents != nil {
		if err := s.documents.DeleteByClaim(ctx, claimID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete claim documents")
		}
	}
	if err := s.claims.Delete(ctx, claimID); err != nil {
		return wrapClaimErr(err)
	}
	return nil
}

// ListAll returns a page of every claim for the review surface.
func (s *Service) ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Claim, int, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, 0, err
	}
	claims, total, err := s.claims.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	return claims, total, nil
}

// emit hands an event to the outbox. A full outbox is an operational
// problem, not a reason to fail the transition that already committed.
func (s *Service) emit(ctx context.Context, event *notifmodels.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "notification event dropped",
			"request_id", requestcontext.RequestID(ctx),
			"event_type", event.Type,
			"recipient_id", event.RecipientID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.NotificationErrors.Inc()
		}
	}
}

func wrapClaimErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "claim not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "claim store failure")
	}
}
