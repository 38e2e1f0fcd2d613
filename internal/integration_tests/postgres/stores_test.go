//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	claimmodels "motorcover/internal/claim/models"
	claimstore "motorcover/internal/claim/store"
	"motorcover/internal/platform/database"
	policymodels "motorcover/internal/policy/models"
	policystore "motorcover/internal/policy/store"
	proposalmodels "motorcover/internal/proposal/models"
	proposalstore "motorcover/internal/proposal/store"
	usermodels "motorcover/internal/user/models"
	userstore "motorcover/internal/user/store"
	vehiclemodels "motorcover/internal/vehicle/models"
	vehiclestore "motorcover/internal/vehicle/store"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pc        *containers.PostgresContainer
	users     *userstore.Postgres
	vehicles  *vehiclestore.Postgres
	proposals *proposalstore.Postgres
	policies  *policystore.Postgres
	claims    *claimstore.Postgres
	ctx       context.Context
	now       time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pc = containers.NewPostgresContainer(s.T(), "../../../migrations")
	s.users = userstore.NewPostgres(s.pc.DB)
	s.vehicles = vehiclestore.NewPostgres(s.pc.DB)
	s.proposals = proposalstore.NewPostgres(s.pc.DB)
	s.policies = policystore.NewPostgres(s.pc.DB)
	s.claims = claimstore.NewPostgres(s.pc.DB)
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pc.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) seedUser() *usermodels.User {
	user, err := usermodels.NewUser(id.NewUserID(), "Priya Raman", "priya@example.com", id.RoleCustomer, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *PostgresStoreSuite) seedVehicle(ownerID id.UserID) *vehiclemodels.Vehicle {
	vehicle, err := vehiclemodels.NewVehicle(id.NewVehicleID(), vehiclemodels.NewVehicleParams{
		OwnerID:            ownerID,
		Type:               vehiclemodels.VehicleTypeCar,
		Make:               "Tata",
		Model:              "Nexon",
		Year:               2024,
		RegistrationNumber: "KA05MN4321",
		MarketValue:        1100000,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.vehicles.Create(s.ctx, vehicle))
	return vehicle
}

func (s *PostgresStoreSuite) seedApprovedProposal(ownerID id.UserID, vehicleID id.VehicleID) *proposalmodels.Proposal {
	proposal, err := proposalmodels.NewProposal(id.NewProposalID(), proposalmodels.NewProposalParams{
		OwnerID:           ownerID,
		VehicleID:         vehicleID,
		PolicyType:        id.PolicyTypeComprehensive,
		RequestedCoverage: 700000,
		PremiumEstimate:   14000,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.proposals.Create(s.ctx, proposal))

	approved, err := s.proposals.Execute(s.ctx, proposal.ID,
		func(p *proposalmodels.Proposal) error { return p.CanApprove() },
		func(p *proposalmodels.Proposal) { p.ApplyApprove(s.now) },
	)
	s.Require().NoError(err)
	return approved
}

func (s *PostgresStoreSuite) newPolicy(owner *usermodels.User, vehicleID id.VehicleID, proposalID *id.ProposalID) *policymodels.Policy {
	policy, err := policymodels.NewPolicy(id.NewPolicyID(), policymodels.NewPolicyParams{
		OwnerID:        owner.ID,
		VehicleID:      vehicleID,
		ProposalID:     proposalID,
		Type:           id.PolicyTypeComprehensive,
		CoverageAmount: 700000,
		PremiumAmount:  14000,
		StartDate:      s.now,
		EndDate:        s.now.AddDate(1, 0, 0),
	}, s.now)
	s.Require().NoError(err)
	return policy
}

func (s *PostgresStoreSuite) TestUserRoundTrip() {
	user := s.seedUser()

	found, err := s.users.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, found.Email)
	s.Equal(id.RoleCustomer, found.Role)

	_, err = s.users.FindByID(s.ctx, id.NewUserID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestProposalExecutePersistsTransition() {
	user := s.seedUser()
	vehicle := s.seedVehicle(user.ID)
	proposal := s.seedApprovedProposal(user.ID, vehicle.ID)

	found, err := s.proposals.FindByID(s.ctx, proposal.ID)
	s.Require().NoError(err)
	s.Equal(proposalmodels.ProposalStatusApproved, found.Status)
	s.Require().NotNil(found.ApprovalDate)
}

func (s *PostgresStoreSuite) TestPolicyUniqueProposalConstraint() {
	user := s.seedUser()
	vehicle := s.seedVehicle(user.ID)
	proposal := s.seedApprovedProposal(user.ID, vehicle.ID)

	first := s.newPolicy(user, vehicle.ID, &proposal.ID)
	s.Require().NoError(s.policies.Create(s.ctx, first))

	second := s.newPolicy(user, vehicle.ID, &proposal.ID)
	err := s.policies.Create(s.ctx, second)
	s.True(errors.Is(err, sentinel.ErrConflict), "second policy for one proposal must conflict")
}

func (s *PostgresStoreSuite) TestIssuanceTransactionRollsBackTogether() {
	user := s.seedUser()
	vehicle := s.seedVehicle(user.ID)
	proposal := s.seedApprovedProposal(user.ID, vehicle.ID)

	runner := database.NewTxRunner(s.pc.DB)
	boom := errors.New("forced failure")

	err := runner.RunInTx(s.ctx, func(txCtx context.Context) error {
		_, err := s.proposals.Execute(txCtx, proposal.ID,
			func(p *proposalmodels.Proposal) error { return p.CanConvert() },
			func(p *proposalmodels.Proposal) { p.ApplyConvert(s.now) },
		)
		s.Require().NoError(err)
		if err := s.policies.Create(txCtx, s.newPolicy(user, vehicle.ID, &proposal.ID)); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	found, err := s.proposals.FindByID(s.ctx, proposal.ID)
	s.Require().NoError(err)
	s.Equal(proposalmodels.ProposalStatusApproved, found.Status, "conversion rolled back")
}

func (s *PostgresStoreSuite) TestClaimLifecyclePersistence() {
	user := s.seedUser()
	vehicle := s.seedVehicle(user.ID)
	policy := s.newPolicy(user, vehicle.ID, nil)
	s.Require().NoError(s.policies.Create(s.ctx, policy))

	claim, err := claimmodels.NewClaim(id.NewClaimID(), claimmodels.NewClaimParams{
		PolicyID:     policy.ID,
		OwnerID:      user.ID,
		IncidentDate: s.now.AddDate(0, 0, -3),
		Description:  "windshield crack on highway",
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.claims.Create(s.ctx, claim))

	updated, err := s.claims.Execute(s.ctx, claim.ID,
		func(c *claimmodels.Claim) error { return c.CanApprove() },
		func(c *claimmodels.Claim) { c.ApplyApprove(30000, "survey complete", s.now) },
	)
	s.Require().NoError(err)
	s.Equal(claimmodels.ClaimStatusApproved, updated.Status)

	found, err := s.claims.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.ApprovedAmount)
	s.Equal(30000.0, *found.ApprovedAmount)
	s.Require().NotNil(found.ApprovalDate)

	counts, err := s.claims.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, counts[claimmodels.ClaimStatusApproved])
}

func (s *PostgresStoreSuite) TestVehicleRegistrationUniqueWhileActive() {
	user := s.seedUser()
	s.seedVehicle(user.ID)

	duplicate, err := vehiclemodels.NewVehicle(id.NewVehicleID(), vehiclemodels.NewVehicleParams{
		OwnerID:            user.ID,
		Type:               vehiclemodels.VehicleTypeCar,
		Make:               "Tata",
		Model:              "Nexon",
		Year:               2024,
		RegistrationNumber: "KA05MN4321",
		MarketValue:        1100000,
	}, s.now)
	s.Require().NoError(err)
	err = s.vehicles.Create(s.ctx, duplicate)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *PostgresStoreSuite) TestPolicyExpirySweep() {
	user := s.seedUser()
	vehicle := s.seedVehicle(user.ID)
	policy := s.newPolicy(user, vehicle.ID, nil)
	s.Require().NoError(s.policies.Create(s.ctx, policy))

	expired, err := s.policies.MarkExpiredDue(s.ctx, s.now.AddDate(2, 0, 0))
	s.Require().NoError(err)
	s.Equal(1, expired)

	found, err := s.policies.FindByID(s.ctx, policy.ID)
	s.Require().NoError(err)
	s.Equal(policymodels.PolicyStatusExpired, found.Status)
}
