package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"motorcover/internal/authz"
	"motorcover/internal/issuance/idempotency"
	"motorcover/internal/issuance/service/mocks"
	notifmodels "motorcover/internal/notification/models"
	"motorcover/internal/payment/models"
	paymentstore "motorcover/internal/payment/store"
	"motorcover/internal/platform/database"
	policymodels "motorcover/internal/policy/models"
	policystore "motorcover/internal/policy/store"
	proposalmodels "motorcover/internal/proposal/models"
	proposalstore "motorcover/internal/proposal/store"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/requestcontext"
)

// recordingSink captures emitted events; optionally fails.
type recordingSink struct {
	events []*notifmodels.Event
	fail   bool
}

func (r *recordingSink) Emit(_ context.Context, event *notifmodels.Event) error {
	if r.fail {
		return fmt.Errorf("sink unavailable")
	}
	r.events = append(r.events, event)
	return nil
}

// staticUsers resolves every user to one display name.
type staticUsers struct {
	name string
}

func (s *staticUsers) DisplayName(context.Context, id.UserID) (string, error) {
	return s.name, nil
}

type IssuanceSuite struct {
	suite.Suite
	proposals *proposalstore.Memory
	policies  *policystore.Memory
	payments  *paymentstore.Memory
	sink      *recordingSink
	service   *Service
	ctx       context.Context
	now       time.Time
	owner     authz.Identity
}

func TestIssuanceSuite(t *testing.T) {
	suite.Run(t, new(IssuanceSuite))
}

func (s *IssuanceSuite) SetupTest() {
	s.proposals = proposalstore.NewMemory()
	s.policies = policystore.NewMemory()
	s.payments = paymentstore.NewMemory()
	s.sink = &recordingSink{}
	s.service = New(s.proposals, s.policies, s.payments,
		&staticUsers{name: "Priya Raman"}, database.PassthroughRunner{},
		WithEvents(s.sink), WithLocker(idempotency.NewMemory()),
	)
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.owner = authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
}

// approvedProposal seeds a proposal that has cleared review.
func (s *IssuanceSuite) approvedProposal() *proposalmodels.Proposal {
	proposal, err := proposalmodels.NewProposal(id.NewProposalID(), proposalmodels.NewProposalParams{
		OwnerID:           s.owner.UserID,
		VehicleID:         id.NewVehicleID(),
		PolicyType:        id.PolicyTypeComprehensive,
		RequestedCoverage: 500000,
		PremiumEstimate:   12000,
	}, s.now.AddDate(0, 0, -7))
	s.Require().NoError(err)
	s.Require().NoError(s.proposals.Create(s.ctx, proposal))

	approved, err := s.proposals.Execute(s.ctx, proposal.ID,
		func(p *proposalmodels.Proposal) error { return p.CanApprove() },
		func(p *proposalmodels.Proposal) { p.ApplyApprove(s.now.AddDate(0, 0, -1)) },
	)
	s.Require().NoError(err)
	return approved
}

func (s *IssuanceSuite) TestIssue() {
	proposal := s.approvedProposal()

	result, err := s.service.IssuePolicyFromProposal(s.ctx, s.owner, proposal.ID)
	s.Require().NoError(err)

	s.Run("policy carries the proposal terms", func() {
		policy := result.Policy
		s.Equal(s.owner.UserID, policy.OwnerID)
		s.Equal(proposal.VehicleID, policy.VehicleID)
		s.Require().NotNil(policy.ProposalID)
		s.Equal(proposal.ID, *policy.ProposalID)
		s.Equal(policymodels.PolicyStatusActive, policy.Status)
		s.Equal(s.now, policy.StartDate)
		s.Equal(s.now.AddDate(1, 0, 0), policy.EndDate)
		s.Equal(policy.EndDate.Add(-30*24*time.Hour), policy.RenewalReminderDate)
		s.Equal(500000.0, policy.CoverageAmount)
		s.Equal(12000.0, policy.PremiumAmount)
	})

	s.Run("payment is completed with a transaction reference", func() {
		payment := result.Payment
		s.Equal(models.PaymentStatusCompleted, payment.Status)
		s.NotEmpty(payment.TransactionID)
		s.Equal(result.Policy.ID, payment.PolicyID)
		s.Equal(12000.0, payment.Amount)

		stored, err := s.payments.FindByID(s.ctx, payment.ID)
		s.Require().NoError(err)
		s.Equal(payment.TransactionID, stored.TransactionID)
	})

	s.Run("proposal is converted", func() {
		stored, err := s.proposals.FindByID(s.ctx, proposal.ID)
		s.Require().NoError(err)
		s.Equal(proposalmodels.ProposalStatusConverted, stored.Status)
	})

	s.Run("certificate event reaches the owner", func() {
		s.Require().Len(s.sink.events, 1)
		event := s.sink.events[0]
		s.Equal(notifmodels.EventPolicyIssued, event.Type)
		s.Equal(s.owner.UserID, event.RecipientID)
		s.Contains(string(event.Attachment), "Priya Raman")
		s.Contains(string(event.Attachment), result.Policy.ID.String())
	})
}

func (s *IssuanceSuite) TestIssueTwiceFails() {
	proposal := s.approvedProposal()

	_, err := s.service.IssuePolicyFromProposal(s.ctx, s.owner, proposal.ID)
	s.Require().NoError(err)

	_, err = s.service.IssuePolicyFromProposal(s.ctx, s.owner, proposal.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	s.Len(s.sink.events, 1, "no second certificate")
}

func (s *IssuanceSuite) TestSubmittedProposalCannotIssue() {
	proposal, err := proposalmodels.NewProposal(id.NewProposalID(), proposalmodels.NewProposalParams{
		OwnerID:           s.owner.UserID,
		VehicleID:         id.NewVehicleID(),
		PolicyType:        id.PolicyTypeThirdParty,
		RequestedCoverage: 100000,
		PremiumEstimate:   4000,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.proposals.Create(s.ctx, proposal))

	_, err = s.service.IssuePolicyFromProposal(s.ctx, s.owner, proposal.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *IssuanceSuite) TestStrangerGetsNotFound() {
	proposal := s.approvedProposal()
	stranger := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}

	_, err := s.service.IssuePolicyFromProposal(s.ctx, stranger, proposal.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	stored, err := s.proposals.FindByID(s.ctx, proposal.ID)
	s.Require().NoError(err)
	s.Equal(proposalmodels.ProposalStatusApproved, stored.Status, "proposal untouched")
}

func (s *IssuanceSuite) TestUnknownProposalNotFound() {
	_, err := s.service.IssuePolicyFromProposal(s.ctx, s.owner, id.NewProposalID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IssuanceSuite) TestSinkFailureDoesNotUndoIssuance() {
	proposal := s.approvedProposal()
	s.sink.fail = true

	result, err := s.service.IssuePolicyFromProposal(s.ctx, s.owner, proposal.ID)
	s.Require().NoError(err)

	stored, err := s.policies.FindByID(s.ctx, result.Policy.ID)
	s.Require().NoError(err)
	s.Equal(policymodels.PolicyStatusActive, stored.Status)
}

func TestIssuanceLockContention(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockLocker(ctrl)
	runner := mocks.NewMockTxRunner(ctrl)

	locker.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	svc := New(mocks.NewMockProposalConverter(ctrl), mocks.NewMockPolicyCreator(ctrl),
		mocks.NewMockPaymentRecorder(ctrl), mocks.NewMockUserReader(ctrl), runner,
		WithLocker(locker))

	actor := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
	_, err := svc.IssuePolicyFromProposal(context.Background(), actor, id.NewProposalID())
	if !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestIssuanceTransactionFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockTxRunner(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	runner.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("connection reset"))

	svc := New(mocks.NewMockProposalConverter(ctrl), mocks.NewMockPolicyCreator(ctrl),
		mocks.NewMockPaymentRecorder(ctrl), mocks.NewMockUserReader(ctrl), runner,
		WithEvents(sink))

	actor := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
	_, err := svc.IssuePolicyFromProposal(context.Background(), actor, id.NewProposalID())
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	// No Emit expectation: a failed transaction must not notify.
}
