package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adminapi "asset-manager-api/internal/api/admin"
	"asset-manager-api/internal/api/billing"
	inventoryapi "asset-manager-api/internal/api/inventory"
	organizationapi "asset-manager-api/internal/api/organization"
	plansapi "asset-manager-api/internal/api/plans"
	stripewebhooks "asset-manager-api/internal/api/stripewebhook"
	usersapi "asset-manager-api/internal/api/users"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/access"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/plans"
	"asset-manager-api/internal/infra/eventledger"
	"asset-manager-api/internal/subscription"
	"asset-manager-api/internal/subscription/subscriptiontest"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "test-secret"

type testServer struct {
	router   *gin.Engine
	store    *subscriptiontest.MemoryStore
	provider *subscriptiontest.FakeProvider
	service  *subscription.Service
	org      *organizations.Organization
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := plans.DefaultCatalog(plans.PriceRefs{Basic: "price_basic", Professional: "price_pro", Enterprise: "price_ent"})
	require.NoError(t, err)

	store := subscriptiontest.NewMemoryStore()
	provider := subscriptiontest.NewFakeProvider()
	gateway := subscription.NewGateway(store, provider, catalog, nil)
	svc := subscription.NewService(gateway, catalog, store, store, nil)
	reconciler := subscription.NewReconciler(gateway, store, store, nil)

	org := organizations.New("Acme", "acme.io", time.Now(), 14*24*time.Hour, catalog)
	require.NoError(t, store.Create(context.Background(), &org))

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Billing:      billing.NewHandler(svc, "https://app.test", nil),
		Organization: organizationapi.NewHandler(store, svc, nil),
		Inventory:    inventoryapi.NewHandler(store, nil),
		Users:        usersapi.NewHandler(catalog, nil),
		Admin:        adminapi.NewHandler(store, svc, nil),
		Plans:        plansapi.NewHandler(svc, nil),
		Webhook:      stripewebhooks.NewHandler("whsec_test", eventledger.NewMemoryLedger(16, time.Hour), reconciler, nil),
	}, Guards{
		Verifier:      middleware.NewHMACVerifier(jwtSecret),
		Organizations: store,
		Assets:        svc,
	})

	return &testServer{router: r, store: store, provider: provider, service: svc, org: &org}
}

func token(t *testing.T, orgID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":         "user-1",
		"organization_id": orgID,
		"role":            role,
		"email":           "ops@acme.io",
		"exp":             time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, s.org.ID, role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (s *testServer) subscribe(t *testing.T, priceID string) {
	t.Helper()
	ctx := context.Background()
	remote, err := s.provider.CreateSubscription(ctx, "cus_"+s.org.ID, priceID)
	require.NoError(t, err)
	require.NoError(t, s.service.LinkSubscription(ctx, s.org, remote.ID))
}

func (s *testServer) mutate(t *testing.T, fn func(*organizations.Subscription)) {
	t.Helper()
	org, err := s.store.Get(context.Background(), s.org.ID)
	require.NoError(t, err)
	sub := org.Subscription
	fn(&sub)
	require.NoError(t, s.store.SaveSubscription(context.Background(), org.ID, org.Subscription.Version, sub))
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/subscription/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["plans"], 4)

	w = s.do(t, http.MethodGet, "/api/organization/available", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orgs := decode(t, w)["organizations"].([]interface{})
	require.Len(t, orgs, 1)
	assert.Equal(t, "free", orgs[0].(map[string]interface{})["plan"])

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/subscription/details", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/details", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrganizationContext(t *testing.T) {
	s := newTestServer(t)
	s.org.IsActive = false
	require.NoError(t, s.store.Create(context.Background(), s.org))

	w := s.do(t, http.MethodGet, "/api/organization/details", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Organization is inactive", decode(t, w)["error"])

	s.org.ID = "missing"
	w = s.do(t, http.MethodGet, "/api/organization/details", "user", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePlanFromFreeStartsCheckout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/subscription/change-plan", "user", gin.H{"planName": "professional"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "checkout", body["action"])
	assert.NotEmpty(t, body["sessionId"])
	assert.Contains(t, body["url"], "https://checkout.test/")

	w = s.do(t, http.MethodPost, "/api/subscription/change-plan", "user", gin.H{"planName": "free"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "already on this plan", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/subscription/change-plan", "user", gin.H{"planName": "platinum"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid plan selected", decode(t, w)["error"])
}

func TestCheckoutAndSuccess(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/subscription/checkout", "user", gin.H{"planName": "basic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/subscription/checkout", "user", gin.H{
		"planName":   "basic",
		"successUrl": "https://app.test/ok?session_id={CHECKOUT_SESSION_ID}",
		"cancelUrl":  "https://app.test/cancel",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sessionID := decode(t, w)["sessionId"].(string)

	s.provider.CompleteSession(sessionID, "price_basic")

	w = s.do(t, http.MethodGet, "/api/subscription/success?session_id="+sessionID, "user", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	org, err := s.store.Get(context.Background(), s.org.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.Basic, org.Subscription.Plan)
	assert.Equal(t, 100, org.Subscription.MaxAssets)
}

func TestCancelAndReactivate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/subscription/cancel", "user", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no active subscription found", decode(t, w)["error"])

	s.subscribe(t, "price_pro")

	w = s.do(t, http.MethodPost, "/api/subscription/cancel", "user", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["subscription"].(map[string]interface{})["cancelAtPeriodEnd"])

	w = s.do(t, http.MethodGet, "/api/hardware", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, access.CancelAtPeriodEndNotice, w.Header().Get(middleware.SubscriptionWarningHeader))

	w = s.do(t, http.MethodPost, "/api/subscription/reactivate", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/hardware", "user", nil)
	assert.Empty(t, w.Header().Get(middleware.SubscriptionWarningHeader))

	w = s.do(t, http.MethodPost, "/api/subscription/cancel", "user", gin.H{"cancelAtPeriodEnd": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Subscription cancelled immediately", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, "/api/hardware", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(access.ReasonInactive), decode(t, w)["reason"])
}

func TestAssetLimit(t *testing.T) {
	s := newTestServer(t)
	s.store.SetCount(s.org.ID, inventory.CollectionHardware, 10)

	w := s.do(t, http.MethodPost, "/api/hardware", "user", gin.H{"name": "Laptop"})
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Asset limit reached", body["error"])
	assert.EqualValues(t, 10, body["currentAssets"])
	assert.EqualValues(t, 10, body["maxAssets"])

	s.store.SetCount(s.org.ID, inventory.CollectionHardware, 9)
	w = s.do(t, http.MethodPost, "/api/hardware", "user", gin.H{"name": "<b>Laptop</b>", "type": "laptop"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hw := decode(t, w)["hardware"].(map[string]interface{})
	assert.Equal(t, "Laptop", hw["name"])

	w = s.do(t, http.MethodDelete, "/api/hardware/"+hw["id"].(string), "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/hardware/"+hw["id"].(string), "user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeatureGate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/hardware/summary", "user", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "advanced_analytics", body["requiredFeature"])
	assert.Equal(t, []interface{}{"basic_scanning"}, body["availableFeatures"])

	s.subscribe(t, "price_pro")
	w = s.do(t, http.MethodGet, "/api/hardware/summary", "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredTrialBlocksGatedRoutes(t *testing.T) {
	s := newTestServer(t)
	s.mutate(t, func(sub *organizations.Subscription) {
		past := time.Now().Add(-time.Hour)
		sub.EndDate = &past
	})

	w := s.do(t, http.MethodGet, "/api/hardware", "user", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Subscription has expired", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/organization/subscription", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["isExpired"])
	assert.EqualValues(t, 0, body["daysRemaining"])
	assert.Equal(t, "free", body["plan"])
}

func TestOrganizationStatsAndSettings(t *testing.T) {
	s := newTestServer(t)
	s.store.SetCount(s.org.ID, inventory.CollectionHardware, 5)
	s.store.SetCount(s.org.ID, inventory.CollectionTickets, 3)

	w := s.do(t, http.MethodGet, "/api/organization/stats", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 5, body["assets"])
	assert.EqualValues(t, 3, body["tickets"])
	assert.EqualValues(t, 50, body["usagePercentage"])

	w = s.do(t, http.MethodPut, "/api/organization/settings", "user", gin.H{"timezone": "Europe/Berlin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode(t, w)["error"])

	w = s.do(t, http.MethodPut, "/api/organization/settings", "admin", gin.H{"timezone": "Europe/Berlin", "currency": "EUR"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	org, err := s.store.Get(context.Background(), s.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", org.Settings.Timezone)
	assert.Equal(t, "EUR", org.Settings.Currency)
	assert.Equal(t, "en", org.Settings.Language)
}

func TestAdminSync(t *testing.T) {
	s := newTestServer(t)
	s.subscribe(t, "price_basic")

	for id, sub := range s.provider.Subscriptions {
		sub.PriceID = "price_ent"
		s.provider.Subscriptions[id] = sub
	}

	w := s.do(t, http.MethodPost, "/api/admin/organizations/"+s.org.ID+"/sync", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/organizations/"+s.org.ID+"/sync", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	org, err := s.store.Get(context.Background(), s.org.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.Enterprise, org.Subscription.Plan)

	w = s.do(t, http.MethodPost, "/api/admin/organizations/nope/sync", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/organizations", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["totalOrganizations"])
}

func TestPortalNeedsCustomer(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/subscription/portal", "user", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	s.subscribe(t, "price_basic")
	w = s.do(t, http.MethodGet, "/api/subscription/portal", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["url"])
}

func TestCurrentUser(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me", "user", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "user-1", body["user"].(map[string]interface{})["id"])
	assert.Equal(t, "trial", body["access"].(map[string]interface{})["state"])
	assert.Equal(t, s.org.ID, body["organization"].(map[string]interface{})["id"])
}

func TestAdminPriceCheck(t *testing.T) {
	s := newTestServer(t)
	s.provider.Prices = []subscription.Price{
		{ID: "price_basic", Active: true, Currency: "usd", UnitAmount: 2900, Interval: "month"},
		{ID: "price_pro", Active: true, Currency: "usd", UnitAmount: 9900, Interval: "month"},
		{ID: "price_ent", Active: true, Currency: "usd", UnitAmount: 29900, Interval: "month"},
	}

	w := s.do(t, http.MethodGet, "/api/admin/plans/prices", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/plans/prices", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["ok"])
	assert.EqualValues(t, 0, body["problems"])

	s.provider.Err = assert.AnError
	w = s.do(t, http.MethodGet, "/api/admin/plans/prices", "admin", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
