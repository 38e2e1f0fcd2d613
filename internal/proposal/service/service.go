package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/authz"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/proposal/models"
	notifmodels "motorcover/internal/notification/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// ProposalStore is the persistence port for proposal records.
type ProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	FindByID(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Proposal, error)
	List(ctx context.Context, offset, limit int) ([]*models.Proposal, int, error)
	Execute(ctx context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error)
	Delete(ctx context.Context, proposalID id.ProposalID) error
}

// VehicleSummary is the slice of vehicle data proposal flows need.
type VehicleSummary struct {
	ID                 id.VehicleID
	OwnerID            id.UserID
	Type               string
	Make               string
	Model              string
	RegistrationNumber string
	Active             bool
}

// VehicleReader resolves vehicles during submission and detail reads.
type VehicleReader interface {
	Get(ctx context.Context, vehicleID id.VehicleID) (*VehicleSummary, error)
}

// DocumentAttacher persists an uploaded attachment against a proposal after
// the proposal row exists.
type DocumentAttacher interface {
	AttachToProposal(ctx context.Context, proposalID id.ProposalID, docType, filename string, content []byte) (locator string, err error)
	DeleteByProposal(ctx context.Context, proposalID id.ProposalID) error
}

// EventSink accepts outbox notification events after a transition commits.
type EventSink interface {
	Emit(ctx context.Context, event *notifmodels.Event) error
}

// Attachment is an optional uploaded file accompanying a submission.
type Attachment struct {
	Type     string
	Filename string
	Content  []byte
}

// Service drives the proposal state machine.
type Service struct {
	proposals ProposalStore
	vehicles  VehicleReader
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

func New(proposals ProposalStore, vehicles VehicleReader, opts ...Option) *Service {
	s := &Service{proposals: proposals, vehicles: vehicles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a proposal for a vehicle the caller owns. A missing,
// deleted, or foreign vehicle all surface as NotFound so vehicle ids cannot
// be probed.
func (s *Service) Submit(ctx context.Context, actor authz.Identity, p models.NewProposalParams, attachment *Attachment) (*models.Proposal, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.Get(ctx, p.VehicleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}
	if !vehicle.Active || vehicle.OwnerID != actor.UserID {
		return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
	}

	p.OwnerID = actor.UserID
	proposal, err := models.NewProposal(id.NewProposalID(), p, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create proposal")
	}

	// Attach only after the proposal row exists so the document always has
	// a valid parent. A failed upload degrades the submission, it does not
	// undo it.
	if attachment != nil && s.documents != nil {
		if _, err := s.documents.AttachToProposal(ctx, proposal.ID, attachment.Type, attachment.Filename, attachment.Content); err != nil {
			s.logger.WarnContext(ctx, "proposal attachment failed",
				"request_id", requestcontext.RequestID(ctx),
				"proposal_id", proposal.ID,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.ProposalsSubmitted.Inc()
	}
	return proposal, nil
}

// List returns the caller's proposals, canceled ones excluded, newest first.
func (s *Service) List(ctx context.Context, actor authz.Identity) ([]*models.Proposal, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	proposals, err := s.proposals.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list proposals")
	}
	return proposals, nil
}

// Detail pairs a proposal with its vehicle summary.
type Detail struct {
	Proposal *models.Proposal
	Vehicle  *VehicleSummary
}

// Get returns one proposal with its vehicle summary. Ownership misses
// surface as NotFound; admins bypass ownership.
func (s *Service) Get(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*Detail, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, wrapProposalErr(err)
	}
	if err := authz.RequireOwnerOrAdmin(actor, proposal.OwnerID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "proposal not found")
		}
		return nil, err
	}

	vehicle, err := s.vehicles.Get(ctx, proposal.VehicleID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}
	return &Detail{Proposal: proposal, Vehicle: vehicle}, nil
}

// Cancel withdraws the caller's own proposal. Only a submitted proposal may
// be withdrawn; a repeat cancel fails rather than silently succeeding.
func (s *Service) Cancel(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	proposal, err := s.proposals.Execute(ctx, proposalID,
		func(p *models.Proposal) error {
			if err := authz.RequireOwnerOrAdmin(actor, p.OwnerID); err != nil {
				if authz.IsOwnershipDenial(err) {
					return dErrors.New(dErrors.CodeNotFound, "proposal not found")
				}
				return err
			}
			return p.CanCancel()
		},
		func(p *models.Proposal) {
			p.ApplyCancel(now)
		},
	)
	if err != nil {
		return nil, wrapProposalErr(err)
	}
	return proposal, nil
}

// StartReview moves a submitted proposal into underwriting. Reviewer only.
func (s *Service) StartReview(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	proposal, err := s.proposals.Execute(ctx, proposalID,
		func(p *models.Proposal) error { return p.CanStartReview() },
		func(p *models.Proposal) { p.ApplyStartReview(now) },
	)
	if err != nil {
		return nil, wrapProposalErr(err)
	}
	return proposal, nil
}

// Approve marks a proposal approved and notifies the owner. The approval is
// the durable fact: a failed notification is logged, never rolled back.
func (s *Service) Approve(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	proposal, err := s.proposals.Execute(ctx, proposalID,
		func(p *models.Proposal) error { return p.CanApprove() },
		func(p *models.Proposal) { p.ApplyApprove(now) },
	)
	if err != nil {
		return nil, wrapProposalErr(err)
	}

	s.emit(ctx, notifmodels.ProposalApproved(proposal.OwnerID, proposal.ID, now))
	if s.metrics != nil {
		s.metrics.ProposalsApproved.Inc()
	}
	return proposal, nil
}

// Reject marks a proposal rejected with a reason and notifies the owner.
func (s *Service) Reject(ctx context.Context, actor authz.Identity, proposalID id.ProposalID, reason string) (*models.Proposal, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	proposal, err := s.proposals.Execute(ctx, proposalID,
		func(p *models.Proposal) error { return p.CanReject() },
		func(p *models.Proposal) { p.ApplyReject(reason, now) },
	)
	if err != nil {
		return nil, wrapProposalErr(err)
	}

	s.emit(ctx, notifmodels.ProposalRejected(proposal.OwnerID, proposal.ID, proposal.RejectionReason, now))
	if s.metrics != nil {
		s.metrics.ProposalsRejected.Inc()
	}
	return proposal, nil
}

// Delete hard-deletes a proposal and its documents. Admin cleanup only; a
// converted proposal is referenced by a policy and stays.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}

	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return wrapProposalErr(err)
	}
	if err := proposal.CanDelete(); err != nil {
		return err
	}

	if s.documents != nil {
		if err := s.documents.DeleteByProposal(ctx, proposalID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete proposal documents")
		}
	}
	if err := s.proposals.Delete(ctx, proposalID); err != nil {
		return wrapProposalErr(err)
	}
	return nil
}

// ListAll returns a page of every proposal for the review surface.
func (s *Service) ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Proposal, int, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, 0, err
	}
	proposals, total, err := s.proposals.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list proposals")
	}
	return proposals, total, nil
}

func (s *Service) emit(ctx context.Context, event *notifmodels.Event) {
	if s.events == nil || event == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "notification emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_type", event.Type,
			"recipient_id", event.RecipientID,
			"error", err,
		)
	}
}

func wrapProposalErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "proposal not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "proposal store failure")
	}
}
