package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"motorcover/internal/authz"
	claimmodels "motorcover/internal/claim/models"
	claimstore "motorcover/internal/claim/store"
	policymodels "motorcover/internal/policy/models"
	policystore "motorcover/internal/policy/store"
	proposalmodels "motorcover/internal/proposal/models"
	proposalstore "motorcover/internal/proposal/store"
	usermodels "motorcover/internal/user/models"
	userstore "motorcover/internal/user/store"
	vehiclemodels "motorcover/internal/vehicle/models"
	vehiclestore "motorcover/internal/vehicle/store"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/requestcontext"
)

type AdminServiceSuite struct {
	suite.Suite
	users     *userstore.Memory
	vehicles  *vehiclestore.Memory
	proposals *proposalstore.Memory
	policies  *policystore.Memory
	claims    *claimstore.Memory
	service   *Service
	ctx       context.Context
	now       time.Time
	admin     authz.Identity
	officer   authz.Identity
	customer  authz.Identity
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.users = userstore.NewMemory()
	s.vehicles = vehiclestore.NewMemory()
	s.proposals = proposalstore.NewMemory()
	s.policies = policystore.NewMemory()
	s.claims = claimstore.NewMemory()
	s.service = New(s.users, s.vehicles, s.proposals, s.policies, s.claims)
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.admin = authz.Identity{UserID: id.NewUserID(), Role: id.RoleAdmin}
	s.officer = authz.Identity{UserID: id.NewUserID(), Role: id.RoleOfficer}
	s.customer = authz.Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
}

func (s *AdminServiceSuite) seedUser(name, email string) *usermodels.User {
	user, err := usermodels.NewUser(id.NewUserID(), name, email, id.RoleCustomer, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *AdminServiceSuite) seedVehicle(ownerID id.UserID) *vehiclemodels.Vehicle {
	vehicle, err := vehiclemodels.NewVehicle(id.NewVehicleID(), vehiclemodels.NewVehicleParams{
		OwnerID:            ownerID,
		Type:               vehiclemodels.VehicleTypeCar,
		Make:               "Maruti",
		Model:              "Swift",
		Year:               2022,
		RegistrationNumber: "KA01AB1234",
		MarketValue:        650000,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.vehicles.Create(s.ctx, vehicle))
	return vehicle
}

func (s *AdminServiceSuite) seedProposal(ownerID id.UserID, vehicleID id.VehicleID) *proposalmodels.Proposal {
	proposal, err := proposalmodels.NewProposal(id.NewProposalID(), proposalmodels.NewProposalParams{
		OwnerID:           ownerID,
		VehicleID:         vehicleID,
		PolicyType:        id.PolicyTypeComprehensive,
		RequestedCoverage: 500000,
		PremiumEstimate:   12000,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.proposals.Create(s.ctx, proposal))
	return proposal
}

func (s *AdminServiceSuite) seedPolicy(ownerID id.UserID, vehicleID id.VehicleID) *policymodels.Policy {
	policy, err := policymodels.NewPolicy(id.NewPolicyID(), policymodels.NewPolicyParams{
		OwnerID:        ownerID,
		VehicleID:      vehicleID,
		Type:           id.PolicyTypeComprehensive,
		CoverageAmount: 500000,
		PremiumAmount:  12000,
		StartDate:      s.now,
		EndDate:        s.now.AddDate(1, 0, 0),
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.policies.Create(s.ctx, policy))
	return policy
}

func (s *AdminServiceSuite) seedClaim(ownerID id.UserID, policyID id.PolicyID) *claimmodels.Claim {
	claim, err := claimmodels.NewClaim(id.NewClaimID(), claimmodels.NewClaimParams{
		PolicyID:     policyID,
		OwnerID:      ownerID,
		IncidentDate: s.now.AddDate(0, 0, -2),
		Description:  "rear bumper damage in parking lot",
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.claims.Create(s.ctx, claim))
	return claim
}

func (s *AdminServiceSuite) TestDashboard() {
	alice := s.seedUser("Alice Kumar", "alice@example.com")
	bob := s.seedUser("Bob Menon", "bob@example.com")
	vehicle := s.seedVehicle(alice.ID)
	s.seedProposal(alice.ID, vehicle.ID)
	s.seedProposal(bob.ID, vehicle.ID)
	policy := s.seedPolicy(alice.ID, vehicle.ID)
	s.seedClaim(alice.ID, policy.ID)

	dashboard, err := s.service.Dashboard(s.ctx, s.officer)
	s.Require().NoError(err)

	s.Equal(2, dashboard.TotalUsers)
	s.Equal(2, dashboard.Proposals[proposalmodels.ProposalStatusSubmitted])
	s.Equal(1, dashboard.Policies[policymodels.PolicyStatusActive])
	s.Equal(1, dashboard.Claims[claimmodels.ClaimStatusPending])
}

func (s *AdminServiceSuite) TestDashboardRequiresReviewer() {
	_, err := s.service.Dashboard(s.ctx, s.customer)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *AdminServiceSuite) TestUserDetail() {
	alice := s.seedUser("Alice Kumar", "alice@example.com")
	stranger := s.seedUser("Bob Menon", "bob@example.com")
	vehicle := s.seedVehicle(alice.ID)
	s.seedVehicle(stranger.ID)
	policy := s.seedPolicy(alice.ID, vehicle.ID)
	s.seedClaim(alice.ID, policy.ID)

	detail, err := s.service.UserDetail(s.ctx, s.admin, alice.ID)
	s.Require().NoError(err)

	s.Equal(alice.ID, detail.User.ID)
	s.Require().Len(detail.Vehicles, 1)
	s.Equal(vehicle.ID, detail.Vehicles[0].ID)
	s.Require().Len(detail.Policies, 1)
	s.Equal(policy.ID, detail.Policies[0].ID)
	s.Len(detail.Claims, 1)
}

func (s *AdminServiceSuite) TestUserDetailUnknownUser() {
	_, err := s.service.UserDetail(s.ctx, s.admin, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AdminServiceSuite) TestUserDetailRequiresAdmin() {
	_, err := s.service.UserDetail(s.ctx, s.officer, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
