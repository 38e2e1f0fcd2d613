package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"motorcover/internal/authz"
	"motorcover/internal/claim/models"
	"motorcover/internal/claim/store"
	notifmodels "motorcover/internal/notification/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// fakePolicies serves canned policy summaries.
type fakePolicies struct {
	policies map[id.PolicyID]*PolicySummary
}

func (f *fakePolicies) Get(_ context.Context, policyID id.PolicyID) (*PolicySummary, error) {
	if p, ok := f.policies[policyID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
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

type ClaimServiceSuite struct {
	suite.Suite
	store    *store.Memory
	policies *fakePolicies
	sink     *recordingSink
	service  *Service
	ctx      context.Context
	now      time.Time
	owner    authz.Identity
	officer  authz.Identity
	admin    authz.Identity
}

func TestClaimServiceSuite(t *testing.T) {
	suite.Run(t, new(ClaimServiceSuite))
}

func (s *ClaimServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.policies = &fakePolicies{policies: make(map[id.PolicyID]*PolicySummary)}
	s.sink = &recordingSink{}
	s.service = New(s.store, s.policies, WithEvents(s.sink))
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.owner = authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
	s.officer = authz.Identity{UserID: id.NewUserID(), Role: id.RoleOfficer}
	s.admin = authz.Identity{UserID: id.NewUserID(), Role: id.RoleAdmin}
}

func (s *ClaimServiceSuite) activePolicy(owner id.UserID) id.PolicyID {
	policyID := id.NewPolicyID()
	s.policies.policies[policyID] = &PolicySummary{
		ID:             policyID,
		OwnerID:        owner,
		VehicleID:      id.NewVehicleID(),
		Type:           "Comprehensive",
		Status:         "Active",
		CoverageAmount: 500000,
		Active:         true,
	}
	return policyID
}

func (s *ClaimServiceSuite) expiredPolicy(owner id.UserID) id.PolicyID {
	policyID := id.NewPolicyID()
	s.policies.policies[policyID] = &PolicySummary{
		ID:      policyID,
		OwnerID: owner,
		Status:  "Expired",
		Active:  false,
	}
	return policyID
}

func (s *ClaimServiceSuite) fileClaim() *models.Claim {
	policyID := s.activePolicy(s.owner.UserID)
	claim, err := s.service.File(s.ctx, s.owner, models.NewClaimParams{
		PolicyID:     policyID,
		IncidentDate: s.now.Add(-48 * time.Hour),
		Description:  "rear-end collision at a junction",
	}, nil)
	s.Require().NoError(err)
	return claim
}

func (s *ClaimServiceSuite) TestFile() {
	s.Run("claim starts pending on an active policy", func() {
		claim := s.fileClaim()
		s.Equal(models.ClaimStatusPending, claim.Status)
		s.Equal(s.owner.UserID, claim.OwnerID)
	})

	s.Run("unknown policy is not found", func() {
		_, err := s.service.File(s.ctx, s.owner, models.NewClaimParams{
			PolicyID:     id.NewPolicyID(),
			IncidentDate: s.now.Add(-time.Hour),
			Description:  "windscreen cracked",
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("someone else's policy reads as not found", func() {
		policyID := s.activePolicy(id.NewUserID())
		_, err := s.service.File(s.ctx, s.owner, models.NewClaimParams{
			PolicyID:     policyID,
			IncidentDate: s.now.Add(-time.Hour),
			Description:  "windscreen cracked",
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("expired policy cannot take a claim", func() {
		policyID := s.expiredPolicy(s.owner.UserID)
		_, err := s.service.File(s.ctx, s.owner, models.NewClaimParams{
			PolicyID:     policyID,
			IncidentDate: s.now.Add(-time.Hour),
			Description:  "windscreen cracked",
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("future incident date is refused", func() {
		policyID := s.activePolicy(s.owner.UserID)
		_, err := s.service.File(s.ctx, s.owner, models.NewClaimParams{
			PolicyID:     policyID,
			IncidentDate: s.now.Add(time.Hour),
			Description:  "windscreen cracked",
		}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ClaimServiceSuite) TestGet() {
	s.Run("owner sees claim with policy summary", func() {
		claim := s.fileClaim()

		listed, err := s.service.Get(s.ctx, s.owner, claim.ID)
		s.Require().NoError(err)
		s.Equal(claim.ID, listed.Claim.ID)
		s.Require().NotNil(listed.Policy)
		s.Equal("Comprehensive", listed.Policy.Type)
	})

	s.Run("other customer gets not found, not forbidden", func() {
		claim := s.fileClaim()
		stranger := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}

		_, err := s.service.Get(s.ctx, stranger, claim.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.False(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin bypasses ownership", func() {
		claim := s.fileClaim()

		listed, err := s.service.Get(s.ctx, s.admin, claim.ID)
		s.Require().NoError(err)
		s.Equal(claim.ID, listed.Claim.ID)
	})
}

func (s *ClaimServiceSuite) TestUpdate() {
	s.Run("owner amends the description", func() {
		claim := s.fileClaim()
		desc := "rear-end collision, police report attached"

		updated, err := s.service.Update(s.ctx, s.owner, claim.ID, models.Patch{Description: &desc})
		s.Require().NoError(err)
		s.Equal(desc, updated.Description)
	})

	s.Run("non-admin setting status is forbidden", func() {
		claim := s.fileClaim()
		status := models.ClaimStatusApproved

		_, err := s.service.Update(s.ctx, s.owner, claim.ID, models.Patch{Status: &status})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin moves status through the table", func() {
		claim := s.fileClaim()
		status := models.ClaimStatusUnderReview

		updated, err := s.service.Update(s.ctx, s.admin, claim.ID, models.Patch{Status: &status})
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusUnderReview, updated.Status)
	})

	s.Run("admin cannot skip the transition table", func() {
		claim := s.fileClaim()
		status := models.ClaimStatusSettled

		_, err := s.service.Update(s.ctx, s.admin, claim.ID, models.Patch{Status: &status})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("zero claim amount is rejected", func() {
		claim := s.fileClaim()
		amount := 0.0

		_, err := s.service.Update(s.ctx, s.owner, claim.ID, models.Patch{ClaimAmount: &amount})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ClaimServiceSuite) TestApprove() {
	s.Run("customer cannot approve", func() {
		claim := s.fileClaim()
		_, err := s.service.Approve(s.ctx, s.owner, claim.ID, 25000, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("approval records amount, date, and notifies", func() {
		claim := s.fileClaim()

		approved, err := s.service.Approve(s.ctx, s.admin, claim.ID, 25000, "assessor confirmed damage")
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusApproved, approved.Status)
		s.Require().NotNil(approved.ApprovedAmount)
		s.Equal(25000.0, *approved.ApprovedAmount)
		s.Require().NotNil(approved.ApprovalDate)
		s.Equal(s.now, *approved.ApprovalDate)

		s.Require().Len(s.sink.events, 1)
		s.Equal(notifmodels.EventClaimApproved, s.sink.events[0].Type)
		s.Equal(s.owner.UserID, s.sink.events[0].RecipientID)
	})

	s.Run("zero amount is rejected before the transition", func() {
		claim := s.fileClaim()
		_, err := s.service.Approve(s.ctx, s.admin, claim.ID, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		stored, err := s.store.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusPending, stored.Status)
	})

	s.Run("double approve fails the second time", func() {
		claim := s.fileClaim()
		_, err := s.service.Approve(s.ctx, s.admin, claim.ID, 25000, "")
		s.Require().NoError(err)

		_, err = s.service.Approve(s.ctx, s.admin, claim.ID, 25000, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("sink failure does not roll back the approval", func() {
		claim := s.fileClaim()
		s.sink.fail = true

		approved, err := s.service.Approve(s.ctx, s.admin, claim.ID, 25000, "")
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusApproved, approved.Status)
	})
}

func (s *ClaimServiceSuite) TestReject() {
	s.Run("admin rejection stores notes as description and notifies", func() {
		claim := s.fileClaim()

		rejected, err := s.service.Reject(s.ctx, s.admin, claim.ID, "damage predates the policy")
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusRejected, rejected.Status)
		s.Equal("damage predates the policy", rejected.Description)
		s.Require().Len(s.sink.events, 1)
		s.Equal(notifmodels.EventClaimRejected, s.sink.events[0].Type)
	})

	s.Run("owner withdrawal does not notify", func() {
		claim := s.fileClaim()

		rejected, err := s.service.Reject(s.ctx, s.owner, claim.ID, "withdrawn, settled privately")
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusRejected, rejected.Status)
		s.Empty(s.sink.events)
	})

	s.Run("rejected claim cannot be rejected again", func() {
		claim := s.fileClaim()
		_, err := s.service.Reject(s.ctx, s.admin, claim.ID, "duplicate filing")
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx, s.admin, claim.ID, "duplicate filing")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("stranger rejecting gets not found", func() {
		claim := s.fileClaim()
		stranger := authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}

		_, err := s.service.Reject(s.ctx, stranger, claim.ID, "not mine")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ClaimServiceSuite) TestReviewAndSettle() {
	s.Run("officer picks up review, admin settles after approval", func() {
		claim := s.fileClaim()

		reviewed, err := s.service.StartReview(s.ctx, s.officer, claim.ID)
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusUnderReview, reviewed.Status)

		_, err = s.service.Approve(s.ctx, s.admin, claim.ID, 18000, "")
		s.Require().NoError(err)

		settled, err := s.service.Settle(s.ctx, s.admin, claim.ID)
		s.Require().NoError(err)
		s.Equal(models.ClaimStatusSettled, settled.Status)
	})

	s.Run("pending claim cannot be settled", func() {
		claim := s.fileClaim()
		_, err := s.service.Settle(s.ctx, s.admin, claim.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ClaimServiceSuite) TestDelete() {
	s.Run("pending claim can be removed", func() {
		claim := s.fileClaim()

		s.Require().NoError(s.service.Delete(s.ctx, s.admin, claim.ID))
		_, err := s.store.FindByID(s.ctx, claim.ID)
		s.True(dErrors.HasCode(wrapClaimErr(err), dErrors.CodeNotFound))
	})

	s.Run("approved claim cannot be removed", func() {
		claim := s.fileClaim()
		_, err := s.service.Approve(s.ctx, s.admin, claim.ID, 25000, "")
		s.Require().NoError(err)

		err = s.service.Delete(s.ctx, s.admin, claim.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("customer cannot delete", func() {
		claim := s.fileClaim()
		err := s.service.Delete(s.ctx, s.owner, claim.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ClaimServiceSuite) TestList() {
	s.fileClaim()
	s.fileClaim()

	listed, err := s.service.List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(listed, 2)
	for _, l := range listed {
		s.NotNil(l.Policy)
	}
}

func (s *ClaimServiceSuite) TestListAll() {
	s.fileClaim()
	s.fileClaim()

	s.Run("officer pages through every claim", func() {
		claims, total, err := s.service.ListAll(s.ctx, s.officer, 0, 1)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(claims, 1)
	})

	s.Run("customer is forbidden", func() {
		_, _, err := s.service.ListAll(s.ctx, s.owner, 0, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
