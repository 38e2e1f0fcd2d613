package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"motorcover/internal/authz"
	notifmodels "motorcover/internal/notification/models"
	"motorcover/internal/proposal/models"
	"motorcover/internal/proposal/store"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// fakeVehicles serves canned vehicle summaries.
type fakeVehicles struct {
	vehicles map[id.VehicleID]*VehicleSummary
}

func (f *fakeVehicles) Get(_ context.Context, vehicleID id.VehicleID) (*VehicleSummary, error) {
	if v, ok := f.vehicles[vehicleID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("vehicle %s: %w", vehicleID, sentinel.ErrNotFound)
}

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

type ProposalServiceSuite struct {
	suite.Suite
	store    *store.Memory
	vehicles *fakeVehicles
	sink     *recordingSink
	service  *Service
	ctx      context.Context
	now      time.Time
	owner    authz.Identity
	admin    authz.Identity
}

func TestProposalServiceSuite(t *testing.T) {
	suite.Run(t, new(ProposalServiceSuite))
}

func (s *ProposalServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.vehicles = &fakeVehicles{vehicles: make(map[id.VehicleID]*VehicleSummary)}
	s.sink = &recordingSink{}
	s.service = New(s.store, s.vehicles, WithEvents(s.sink))
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.owner = authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
	s.admin = authz.Identity{UserID: id.NewUserID(), Role: id.RoleAdmin}
}

func (s *ProposalServiceSuite) ownedVehicle() id.VehicleID {
	vehicleID := id.NewVehicleID()
	s.vehicles.vehicles[vehicleID] = &VehicleSummary{
		ID:      vehicleID,
		OwnerID: s.owner.UserID,
		Make:    "Honda",
		Model:   "Civic",
		Active:  true,
	}
	return vehicleID
}

func (s *ProposalServiceSuite) submit() *models.Proposal {
	proposal, err := s.service.Submit(s.ctx, s.owner, models.NewProposalParams{
		VehicleID:         s.ownedVehicle(),
		PolicyType:        id.PolicyTypeComprehensive,
		RequestedCoverage: 50000,
		PremiumEstimate:   2000,
	}, nil)
	s.Require().NoError(err)
	return proposal
}

func (s *ProposalServiceSuite) TestSubmit() {
	s.Run("creates submitted proposal", func() {
		proposal := s.submit()
		s.Equal(models.ProposalStatusSubmitted, proposal.Status)
		s.Equal(s.now, proposal.SubmissionDate)
		s.Equal(s.owner.UserID, proposal.OwnerID)
	})

	s.Run("missing vehicle is not found", func() {
		_, err := s.service.Submit(s.ctx, s.owner, models.NewProposalParams{
			VehicleID:         id.NewVehicleID(),
			PolicyType:        id.PolicyTypeComprehensive,
			RequestedCoverage: 50000,
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("inactive vehicle is not found", func() {
		vehicleID := s.ownedVehicle()
		s.vehicles.vehicles[vehicleID].Active = false
		_, err := s.service.Submit(s.ctx, s.owner, models.NewProposalParams{
			VehicleID:         vehicleID,
			PolicyType:        id.PolicyTypeComprehensive,
			RequestedCoverage: 50000,
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("another customer's vehicle is not found", func() {
		vehicleID := s.ownedVehicle()
		stranger := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
		_, err := s.service.Submit(s.ctx, stranger, models.NewProposalParams{
			VehicleID:         vehicleID,
			PolicyType:        id.PolicyTypeComprehensive,
			RequestedCoverage: 50000,
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("zero coverage fails validation", func() {
		_, err := s.service.Submit(s.ctx, s.owner, models.NewProposalParams{
			VehicleID:         s.ownedVehicle(),
			PolicyType:        id.PolicyTypeComprehensive,
			RequestedCoverage: 0,
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ProposalServiceSuite) TestCancel() {
	proposal := s.submit()

	canceled, err := s.service.Cancel(s.ctx, s.owner, proposal.ID)
	s.Require().NoError(err)
	s.Equal(models.ProposalStatusCanceled, canceled.Status)

	s.Run("second cancel is an invalid transition", func() {
		_, err := s.service.Cancel(s.ctx, s.owner, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("stranger cancel is not found", func() {
		fresh := s.submit()
		stranger := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
		_, err := s.service.Cancel(s.ctx, stranger, fresh.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("approved proposal cannot be canceled", func() {
		fresh := s.submit()
		_, err := s.service.Approve(s.ctx, s.admin, fresh.ID)
		s.Require().NoError(err)
		_, err = s.service.Cancel(s.ctx, s.owner, fresh.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ProposalServiceSuite) TestApprove() {
	proposal := s.submit()

	s.Run("customer cannot approve", func() {
		_, err := s.service.Approve(s.ctx, s.owner, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin approval stamps date and notifies owner", func() {
		approved, err := s.service.Approve(s.ctx, s.admin, proposal.ID)
		s.Require().NoError(err)
		s.Equal(models.ProposalStatusApproved, approved.Status)
		s.Require().NotNil(approved.ApprovalDate)
		s.Equal(s.now, *approved.ApprovalDate)

		s.Require().Len(s.sink.events, 1)
		s.Equal(notifmodels.EventProposalApproved, s.sink.events[0].Type)
		s.Equal(s.owner.UserID, s.sink.events[0].RecipientID)
	})

	s.Run("double approve is an invalid transition", func() {
		_, err := s.service.Approve(s.ctx, s.admin, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("notification failure does not roll back approval", func() {
		s.sink.fail = true
		fresh := s.submit()
		approved, err := s.service.Approve(s.ctx, s.admin, fresh.ID)
		s.Require().NoError(err)
		s.Equal(models.ProposalStatusApproved, approved.Status)
		s.sink.fail = false
	})
}

func (s *ProposalServiceSuite) TestReject() {
	proposal := s.submit()

	rejected, err := s.service.Reject(s.ctx, s.admin, proposal.ID, "insufficient documentation")
	s.Require().NoError(err)
	s.Equal(models.ProposalStatusRejected, rejected.Status)
	s.Equal("insufficient documentation", rejected.RejectionReason)

	s.Require().Len(s.sink.events, 1)
	s.Equal(notifmodels.EventProposalRejected, s.sink.events[0].Type)
}

func (s *ProposalServiceSuite) TestReview() {
	proposal := s.submit()
	officer := authz.Identity{UserID: id.NewUserID(), Role: id.RoleOfficer}

	reviewed, err := s.service.StartReview(s.ctx, officer, proposal.ID)
	s.Require().NoError(err)
	s.Equal(models.ProposalStatusUnderReview, reviewed.Status)

	s.Run("under review cannot be canceled", func() {
		_, err := s.service.Cancel(s.ctx, s.owner, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ProposalServiceSuite) TestDelete() {
	proposal := s.submit()

	s.Run("customer cannot delete", func() {
		err := s.service.Delete(s.ctx, s.owner, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin deletes unconverted proposal", func() {
		s.Require().NoError(s.service.Delete(s.ctx, s.admin, proposal.ID))
		_, err := s.service.Get(s.ctx, s.admin, proposal.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("converted proposal cannot be deleted", func() {
		fresh := s.submit()
		_, err := s.service.Approve(s.ctx, s.admin, fresh.ID)
		s.Require().NoError(err)
		_, err = s.store.Execute(s.ctx, fresh.ID,
			func(p *models.Proposal) error { return p.CanConvert() },
			func(p *models.Proposal) { p.ApplyConvert(s.now) },
		)
		s.Require().NoError(err)

		err = s.service.Delete(s.ctx, s.admin, fresh.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ProposalServiceSuite) TestListExcludesCanceled() {
	kept := s.submit()
	dropped := s.submit()
	_, err := s.service.Cancel(s.ctx, s.owner, dropped.ID)
	s.Require().NoError(err)

	proposals, err := s.service.List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(proposals, 1)
	s.Equal(kept.ID, proposals[0].ID)
}
