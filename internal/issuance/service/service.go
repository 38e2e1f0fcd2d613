package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"motorcover/internal/authz"
	"motorcover/internal/certificate"
	notifmodels "motorcover/internal/notification/models"
	paymentmodels "motorcover/internal/payment/models"
	"motorcover/internal/platform/metrics"
	policymodels "motorcover/internal/policy/models"
	proposalmodels "motorcover/internal/proposal/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// policyTerm is the initial coverage period of an issued policy.
const policyTerm = 1 // years

// issuanceLockTTL bounds how long a proposal stays locked if an instance
// dies mid-issuance.
const issuanceLockTTL = time.Minute

// ProposalConverter is the slice of the proposal store issuance needs.
type ProposalConverter interface {
	Execute(ctx context.Context, proposalID id.ProposalID, validate func(*proposalmodels.Proposal) error, mutate func(*proposalmodels.Proposal)) (*proposalmodels.Proposal, error)
}

// PolicyCreator persists the new policy.
type PolicyCreator interface {
	Create(ctx context.Context, policy *policymodels.Policy) error
}

// PaymentRecorder persists the settlement record.
type PaymentRecorder interface {
	Create(ctx context.Context, payment *paymentmodels.Payment) error
}

// UserReader resolves the policyholder's display name for the certificate.
type UserReader interface {
	DisplayName(ctx context.Context, userID id.UserID) (string, error)
}

// EventSink accepts outbox notification events after issuance commits.
type EventSink interface {
	Emit(ctx context.Context, event *notifmodels.Event) error
}

// TxRunner runs the issuance steps inside one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes issuance attempts per proposal across instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Service turns an approved proposal into an active policy. Converting the
// proposal, creating the policy, and recording the payment happen in one
// transaction; the certificate and notification follow after commit and
// never undo it.
type Service struct {
	proposals ProposalConverter
	policies  PolicyCreator
	payments  PaymentRecorder
	users     UserReader
	runner    TxRunner
	locker    Locker
	events    EventSink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithEvents(events EventSink) Option {
	return func(s *Service) { s.events = events }
}

func WithLocker(locker Locker) Option {
	return func(s *Service) { s.locker = locker }
}

func New(proposals ProposalConverter, policies PolicyCreator, payments PaymentRecorder, users UserReader, runner TxRunner, opts ...Option) *Service {
	s := &Service{
		proposals: proposals,
		policies:  policies,
		payments:  payments,
		users:     users,
		runner:    runner,
		logger:    slog.Default(),
		tracer:    otel.Tracer("motorcover/issuance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is what issuance hands back: the policy and its payment record.
type Result struct {
	Policy  *policymodels.Policy  `json:"policy"`
	Payment *paymentmodels.Payment `json:"payment"`
}

// IssuePolicyFromProposal converts an approved proposal the caller owns
// into an active one-year policy with a completed payment. A proposal can
// be issued exactly once: the Converted check runs under the row lock and
// the policies table carries a unique proposal constraint behind it.
func (s *Service) IssuePolicyFromProposal(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*Result, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "issuance.IssuePolicyFromProposal",
		trace.WithAttributes(attribute.String("proposal_id", proposalID.String())))
	defer span.End()

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, proposalID.String(), issuanceLockTTL)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock issuance")
		}
		if !acquired {
			return nil, dErrors.New(dErrors.CodeConflict, "issuance already in progress for this proposal")
		}
		defer func() {
			if err := s.locker.Release(ctx, proposalID.String()); err != nil {
				s.logger.WarnContext(ctx, "issuance lock not released",
					"proposal_id", proposalID, "error", err)
			}
		}()
	}

	now := requestcontext.Now(ctx)
	var policy *policymodels.Policy
	var payment *paymentmodels.Payment

	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		proposal, err := s.proposals.Execute(txCtx, proposalID,
			func(p *proposalmodels.Proposal) error {
				if err := authz.RequireOwnerOrAdmin(actor, p.OwnerID); err != nil {
					if authz.IsOwnershipDenial(err) {
						return dErrors.New(dErrors.CodeNotFound, "proposal not found")
					}
					return err
				}
				return p.CanConvert()
			},
			func(p *proposalmodels.Proposal) {
				p.ApplyConvert(now)
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "proposal not found")
			}
			return err
		}

		policy, err = policymodels.NewPolicy(id.NewPolicyID(), policymodels.NewPolicyParams{
			OwnerID:        proposal.OwnerID,
			VehicleID:      proposal.VehicleID,
			ProposalID:     &proposal.ID,
			Type:           proposal.PolicyType,
			CoverageAmount: proposal.RequestedCoverage,
			PremiumAmount:  proposal.PremiumEstimate,
			StartDate:      now,
			EndDate:        now.AddDate(policyTerm, 0, 0),
		}, now)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeInvalidTransition, err.Error())
			}
			return err
		}
		if err := s.policies.Create(txCtx, policy); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "proposal already has a policy")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create policy")
		}

		payment, err = paymentmodels.NewCompletedPayment(proposal.OwnerID, policy.ID, policy.PremiumAmount, "", now)
		if err != nil {
			return err
		}
		if err := s.payments.Create(txCtx, payment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issuance failed")
	}

	span.SetAttributes(attribute.String("policy_id", policy.ID.String()))
	s.logger.InfoContext(ctx, "policy issued",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", proposalID,
		"policy_id", policy.ID,
		"transaction_id", payment.TransactionID,
	)
	if s.metrics != nil {
		s.metrics.PoliciesIssued.Inc()
	}

	// Post-commit. The policy stands even if rendering or the outbox
	// fails; that is degraded success, logged, never rolled back.
	s.dispatchCertificate(ctx, policy, now)

	return &Result{Policy: policy, Payment: payment}, nil
}

func (s *Service) dispatchCertificate(ctx context.Context, policy *policymodels.Policy, now time.Time) {
	if s.events == nil {
		return
	}

	holder := ""
	if s.users != nil {
		name, err := s.users.DisplayName(ctx, policy.OwnerID)
		if err != nil {
			s.logger.WarnContext(ctx, "holder name unavailable for certificate",
				"policy_id", policy.ID, "error", err)
		} else {
			holder = name
		}
	}

	cert, err := certificate.Render(policy, holder)
	if err != nil {
		s.logger.ErrorContext(ctx, "certificate render failed",
			"policy_id", policy.ID, "error", err)
		if s.metrics != nil {
			s.metrics.NotificationErrors.Inc()
		}
		return
	}

	if err := s.events.Emit(ctx, notifmodels.PolicyIssued(policy.OwnerID, policy.ID, cert, now)); err != nil {
		s.logger.ErrorContext(ctx, "policy issued notification dropped",
			"policy_id", policy.ID, "error", err)
		if s.metrics != nil {
			s.metrics.NotificationErrors.Inc()
		}
	}
}
