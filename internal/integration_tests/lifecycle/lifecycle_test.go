package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorcover/internal/admin"
	"motorcover/internal/claim"
	claimadapters "motorcover/internal/claim/adapters"
	claimservice "motorcover/internal/claim/service"
	claimstore "motorcover/internal/claim/store"
	"motorcover/internal/document"
	"motorcover/internal/document/blobstore"
	documentservice "motorcover/internal/document/service"
	documentstore "motorcover/internal/document/store"
	"motorcover/internal/issuance"
	issuanceadapters "motorcover/internal/issuance/adapters"
	"motorcover/internal/issuance/idempotency"
	issuanceservice "motorcover/internal/issuance/service"
	"motorcover/internal/notification"
	notifadapters "motorcover/internal/notification/adapters"
	"motorcover/internal/notification/mailer"
	"motorcover/internal/notification/relay"
	notifstore "motorcover/internal/notification/store"
	"motorcover/internal/payment"
	paymentstore "motorcover/internal/payment/store"
	"motorcover/internal/platform/database"
	"motorcover/internal/platform/middleware"
	"motorcover/internal/policy"
	policyadapters "motorcover/internal/policy/adapters"
	policyservice "motorcover/internal/policy/service"
	policystore "motorcover/internal/policy/store"
	"motorcover/internal/proposal"
	proposaladapters "motorcover/internal/proposal/adapters"
	proposalservice "motorcover/internal/proposal/service"
	proposalstore "motorcover/internal/proposal/store"
	"motorcover/internal/user"
	usermodels "motorcover/internal/user/models"
	userservice "motorcover/internal/user/service"
	userstore "motorcover/internal/user/store"
	"motorcover/internal/vehicle"
	vehiclemodels "motorcover/internal/vehicle/models"
	vehicleservice "motorcover/internal/vehicle/service"
	vehiclestore "motorcover/internal/vehicle/store"
	id "motorcover/pkg/domain"
	"motorcover/pkg/testutil"
)

// env is the full service wired on in-memory infrastructure, mirroring the
// production composition in cmd/server.
type env struct {
	router   chi.Router
	users    *userstore.Memory
	vehicles *vehiclestore.Memory
	outbox   *notifstore.Memory
	mail     *mailer.Memory
	relay    *notification.Relay
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := userstore.NewMemory()
	vehicles := vehiclestore.NewMemory()
	proposals := proposalstore.NewMemory()
	policies := policystore.NewMemory()
	claims := claimstore.NewMemory()
	payments := paymentstore.NewMemory()
	documents := documentstore.NewMemory()
	outbox := notifstore.NewMemory()
	mail := mailer.NewMemory()

	documentSvc := document.NewService(documents, blobstore.NewMemory(), documentservice.WithLogger(log))
	emitter := notification.NewEmitter(outbox)

	userSvc := user.NewService(users, userservice.WithLogger(log))
	vehicleSvc := vehicle.NewService(vehicles, vehicleservice.WithLogger(log))
	proposalSvc := proposal.NewService(proposals, proposaladapters.NewVehicleAdapter(vehicles),
		proposalservice.WithLogger(log),
		proposalservice.WithDocuments(documentSvc),
		proposalservice.WithEvents(emitter),
	)
	policySvc := policy.NewService(policies, policyadapters.NewVehicleAdapter(vehicles),
		policyservice.WithLogger(log))
	claimSvc := claim.NewService(claims, claimadapters.NewPolicyAdapter(policies),
		claimservice.WithLogger(log),
		claimservice.WithDocuments(documentSvc),
		claimservice.WithEvents(emitter),
	)
	paymentSvc := payment.NewService(payments)
	adminSvc := admin.NewService(users, vehicles, proposals, policies, claims)
	issuanceSvc := issuance.NewService(proposals, policies, payments,
		issuanceadapters.NewUserAdapter(users), database.PassthroughRunner{},
		issuanceservice.WithLogger(log),
		issuanceservice.WithEvents(emitter),
		issuanceservice.WithLocker(idempotency.NewMemory()),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	user.NewHandler(userSvc, log).Register(router)
	vehicle.NewHandler(vehicleSvc, log).Register(router)
	proposal.NewHandler(proposalSvc, log).Register(router)
	policy.NewHandler(policySvc, log).Register(router)
	claim.NewHandler(claimSvc, log).Register(router)
	payment.NewHandler(paymentSvc, log).Register(router)
	issuance.NewHandler(issuanceSvc, log).Register(router)
	router.Route("/admin", func(r chi.Router) {
		user.NewHandler(userSvc, log).RegisterAdmin(r)
		proposal.NewHandler(proposalSvc, log).RegisterAdmin(r)
		policy.NewHandler(policySvc, log).RegisterAdmin(r)
		claim.NewHandler(claimSvc, log).RegisterAdmin(r)
		payment.NewHandler(paymentSvc, log).RegisterAdmin(r)
		admin.NewHandler(adminSvc, log).RegisterAdmin(r)
	})

	outboxRelay := notification.NewRelay(outbox, mail, notifadapters.NewUserAdapter(users),
		relay.WithLogger(log))

	return &env{
		router:   router,
		users:    users,
		vehicles: vehicles,
		outbox:   outbox,
		mail:     mail,
		relay:    outboxRelay,
		now:      time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func (e *env) seedUser(t *testing.T, name, email string, role id.Role) *usermodels.User {
	t.Helper()
	u, err := usermodels.NewUser(id.NewUserID(), name, email, role, e.now)
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) seedVehicle(t *testing.T, ownerID id.UserID) *vehiclemodels.Vehicle {
	t.Helper()
	v, err := vehiclemodels.NewVehicle(id.NewVehicleID(), vehiclemodels.NewVehicleParams{
		OwnerID:            ownerID,
		Type:               vehiclemodels.VehicleTypeCar,
		Make:               "Hyundai",
		Model:              "i20",
		Year:               2023,
		RegistrationNumber: "MH12XY9876",
		MarketValue:        900000,
	}, e.now)
	require.NoError(t, err)
	require.NoError(t, e.vehicles.Create(context.Background(), v))
	return v
}

func (e *env) do(t *testing.T, actor *usermodels.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req = testutil.WithIdentity(req, actor.ID, actor.Role)
	req = testutil.WithClock(req, e.now)
	return testutil.DoRequest(e.router, req)
}

func TestProposalToClaimLifecycle(t *testing.T) {
	e := newEnv(t)
	customer := e.seedUser(t, "Priya Raman", "priya@example.com", id.RoleCustomer)
	officer := e.seedUser(t, "Arun Shah", "arun@example.com", id.RoleOfficer)
	adminUser := e.seedUser(t, "Root Admin", "admin@example.com", id.RoleAdmin)
	v := e.seedVehicle(t, customer.ID)

	var proposalID string
	testutil.Given(t, "a customer submits a proposal for their vehicle", func(t *testing.T) {
		rr := e.do(t, customer, http.MethodPost, "/proposals", map[string]any{
			"vehicle_id":         v.ID.String(),
			"policy_type":        "Comprehensive",
			"requested_coverage": 800000,
			"premium_estimate":   15000,
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		proposalID = (*resp)["id"].(string)
		require.NotEmpty(t, proposalID)
	})

	testutil.When(t, "an officer reviews and approves it", func(t *testing.T) {
		rr := e.do(t, officer, http.MethodPost, "/admin/proposals/"+proposalID+"/review", nil)
		testutil.AssertStatusOK(t, rr)
		rr = e.do(t, officer, http.MethodPost, "/admin/proposals/"+proposalID+"/approve", nil)
		testutil.AssertStatusOK(t, rr)
	})

	var policyID string
	testutil.When(t, "the customer completes payment to issue the policy", func(t *testing.T) {
		rr := e.do(t, customer, http.MethodPost, "/proposals/"+proposalID+"/issue", nil)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		result := testutil.UnmarshalResponse[issuanceResult](t, rr)
		policyID = result.Policy.ID
		assert.Equal(t, "Active", result.Policy.Status)
		assert.Equal(t, "Completed", result.Payment.Status)
		assert.NotEmpty(t, result.Payment.TransactionID)
	})

	testutil.Then(t, "issuing the same proposal again conflicts", func(t *testing.T) {
		rr := e.do(t, customer, http.MethodPost, "/proposals/"+proposalID+"/issue", nil)
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	testutil.Then(t, "the certificate mail reaches the customer", func(t *testing.T) {
		require.NoError(t, e.relay.DispatchPending(context.Background()))
		sent := e.mail.Sent()
		// Proposal approval plus policy issuance.
		require.Len(t, sent, 2)
		var withAttachment int
		for _, msg := range sent {
			assert.Equal(t, "priya@example.com", msg.To)
			if len(msg.Attachment) > 0 {
				withAttachment++
			}
		}
		assert.Equal(t, 1, withAttachment, "only the issuance mail carries the certificate")
	})

	var claimID string
	testutil.When(t, "the customer files a claim on the active policy", func(t *testing.T) {
		rr := e.do(t, customer, http.MethodPost, "/claims", map[string]any{
			"policy_id":     policyID,
			"incident_date": e.now.AddDate(0, 0, -1).Format(time.RFC3339),
			"description":   "front bumper collision at a junction",
			"claim_amount":  42000,
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		claimID = (*resp)["id"].(string)
	})

	testutil.When(t, "an admin approves the claim", func(t *testing.T) {
		rr := e.do(t, adminUser, http.MethodPost, "/admin/claims/"+claimID+"/approve", map[string]any{
			"approved_amount": 40000,
			"notes":           "approved after survey",
		})
		testutil.AssertStatusOK(t, rr)
	})

	testutil.Then(t, "the dashboard reflects the lifecycle", func(t *testing.T) {
		rr := e.do(t, adminUser, http.MethodGet, "/admin/dashboard", nil)
		testutil.AssertStatusOK(t, rr)
		dashboard := testutil.UnmarshalResponse[dashboardResponse](t, rr)
		assert.Equal(t, 3, dashboard.TotalUsers)
		assert.Equal(t, 1, dashboard.Proposals["Converted"])
		assert.Equal(t, 1, dashboard.Policies["Active"])
		assert.Equal(t, 1, dashboard.Claims["Approved"])
	})

	testutil.Then(t, "a stranger cannot see the policy", func(t *testing.T) {
		stranger := e.seedUser(t, "Someone Else", "other@example.com", id.RoleCustomer)
		rr := e.do(t, stranger, http.MethodGet, "/policies/"+policyID, nil)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestCustomerCannotUseAdminSurface(t *testing.T) {
	e := newEnv(t)
	customer := e.seedUser(t, "Priya Raman", "priya@example.com", id.RoleCustomer)

	rr := e.do(t, customer, http.MethodGet, "/admin/dashboard", nil)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = e.do(t, customer, http.MethodGet, "/admin/proposals", nil)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

type issuanceResult struct {
	Policy struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"policy"`
	Payment struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	} `json:"payment"`
}

type dashboardResponse struct {
	TotalUsers int            `json:"total_users"`
	Proposals  map[string]int `json:"proposals"`
	Policies   map[string]int `json:"policies"`
	Claims     map[string]int `json:"claims"`
}
