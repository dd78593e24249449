package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartbin-backend/internal/alerts"
	"smartbin-backend/internal/database"
	"smartbin-backend/internal/database/testdb"
	"smartbin-backend/internal/logging"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/telemetry"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-secret"

type harness struct {
	t      *testing.T
	store  *database.Store
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logging.Silence()

	store := testdb.New(t)
	source := telemetry.NewSQLSource(store.DB())
	evaluator := alerts.NewEvaluator(store, source, nil)

	router := NewRouter(Dependencies{
		Store:     store,
		Source:    source,
		Discovery: telemetry.NewDiscovery(source, "default-app"),
		Alerts:    alerts.NewScheduler(evaluator, time.Minute),
		JWTSecret: testSecret,
	})
	return &harness{t: t, store: store, router: router}
}

func (h *harness) user(email, role, appID string) string {
	h.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pw"), bcrypt.MinCost)
	require.NoError(h.t, err)

	user := &models.User{Email: email, Password: string(hash), Name: email, Role: role, ApplicationID: appID}
	require.NoError(h.t, h.store.CreateUser(context.Background(), user))

	token, err := middleware.IssueToken(testSecret, user)
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.user("ops@example.com", models.RoleUser, "tenant-x")

	rec := h.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "OPS@example.com", Password: "secret-pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[LoginResponse](t, rec)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.User)
	assert.Equal(t, "tenant-x", resp.User.ApplicationID)

	parsed, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	exp, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp.Time, time.Minute)

	rec = h.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "ops@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "secret-pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/auth/me", "/api/smartbins", "/api/compartments", "/api/singlebins", "/api/alerts", "/api/devices"} {
		rec := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", nil).Code)
	plans := decode[[]models.SubscriptionPlan](t, h.do(http.MethodGet, "/api/subscription-plans", "", nil))
	assert.Len(t, plans, 3)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	token := h.user("ops@example.com", models.RoleUser, "tenant-x")

	me := decode[models.UserResponse](t, h.do(http.MethodGet, "/auth/me", token, nil))
	assert.Equal(t, "ops@example.com", me.Email)

	rec := h.do(http.MethodPut, "/auth/me", token, map[string]interface{}{
		"name":              "Ops Team",
		"notify_whatsapp":   true,
		"whatsapp_number":   "+15550100",
		"subscription_plan": "enterprise",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.UserResponse](t, rec)
	assert.Equal(t, "Ops Team", updated.Name)
	assert.True(t, updated.Notifications.NotifyWhatsApp)
	assert.Equal(t, "+15550100", updated.Notifications.WhatsAppNumber)
	assert.Equal(t, "basic", updated.SubscriptionPlan, "users cannot change their own plan")

	rec = h.do(http.MethodPut, "/auth/me", token, map[string]interface{}{"notification_email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSmartBinsAreOwnerScoped(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice@example.com", models.RoleUser, "")
	bob := h.user("bob@example.com", models.RoleUser, "")
	admin := h.user("admin@example.com", models.RoleAdmin, "")

	rec := h.do(http.MethodPost, "/api/smartbins", alice, map[string]interface{}{"name": "BinA", "bin_height": 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bin := decode[models.SmartBin](t, rec)
	assert.Equal(t, "alice@example.com", bin.CreatedBy)
	assert.Equal(t, models.StatusActive, bin.Status)

	assert.Len(t, decode[[]models.SmartBin](t, h.do(http.MethodGet, "/api/smartbins", alice, nil)), 1)
	assert.Empty(t, decode[[]models.SmartBin](t, h.do(http.MethodGet, "/api/smartbins", bob, nil)))
	assert.Len(t, decode[[]models.SmartBin](t, h.do(http.MethodGet, "/api/smartbins", admin, nil)), 1)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/smartbins/"+bin.ID, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/smartbins/"+bin.ID, bob, nil).Code)

	rec = h.do(http.MethodPatch, "/api/smartbins/"+bin.ID, alice, map[string]interface{}{"status": "maintenance"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusMaintenance, decode[models.SmartBin](t, rec).Status)

	rec = h.do(http.MethodPost, "/api/smartbins", alice, map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(http.MethodPatch, "/api/smartbins/"+bin.ID, alice, map[string]interface{}{"fill_threshold": 140})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompartmentsNamingAndCascade(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice@example.com", models.RoleUser, "")

	bin := decode[models.SmartBin](t, h.do(http.MethodPost, "/api/smartbins", token,
		map[string]interface{}{"name": "BinA", "location": "Lobby"}))

	var identifiers []string
	for i := 0; i < 2; i++ {
		rec := h.do(http.MethodPost, "/api/compartments", token, map[string]interface{}{
			"smartbin_id": bin.ID,
			"waste_type":  "recyclable",
			"bin_height":  80,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		c := decode[models.Compartment](t, rec)
		assert.Equal(t, "alice@example.com", c.CreatedBy)
		assert.Equal(t, "Lobby", c.Location)
		identifiers = append(identifiers, c.Identifier)
	}
	assert.Equal(t, []string{"BinA-REC-001", "BinA-REC-002"}, identifiers)

	rec := h.do(http.MethodPost, "/api/compartments", token, map[string]interface{}{
		"smartbin_id": bin.ID, "waste_type": "recyclable", "identifier": "BinA-REC-002",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPost, "/api/compartments", token, map[string]interface{}{"smartbin_id": bin.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "waste_type is required")

	full := decode[models.SmartBinWithCompartments](t, h.do(http.MethodGet, "/api/smartbins/"+bin.ID, token, nil))
	assert.Len(t, full.Compartments, 2)
	assert.Len(t, decode[[]models.Compartment](t, h.do(http.MethodGet, "/api/compartments?smartbin_id="+bin.ID, token, nil)), 2)
	assert.Len(t, decode[[]models.Compartment](t, h.do(http.MethodGet, "/api/smartbins/"+bin.ID+"/compartments", token, nil)), 2)

	rec = h.do(http.MethodDelete, "/api/smartbins/"+bin.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]interface{}](t, rec)["deleted_compartments"])

	assert.Empty(t, decode[[]models.Compartment](t, h.do(http.MethodGet, "/api/compartments?smartbin_id="+bin.ID, token, nil)))
}

func TestSingleBins(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice@example.com", models.RoleUser, "")

	first := decode[models.SingleBin](t, h.do(http.MethodPost, "/api/singlebins", token,
		map[string]interface{}{"name": "S1", "waste_type": "paper"}))
	h.do(http.MethodPost, "/api/singlebins", token, map[string]interface{}{"name": "S2"})
	assert.Equal(t, "paper", first.WasteType)

	rec := h.do(http.MethodPatch, "/api/singlebins/"+first.ID, token, map[string]interface{}{"waste_type": "glass", "capacity": 60})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.SingleBin](t, rec)
	assert.Equal(t, "glass", updated.WasteType)
	assert.Equal(t, 60.0, updated.Capacity)

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/singlebins/"+first.ID, token, nil).Code)
	left := decode[[]models.SingleBin](t, h.do(http.MethodGet, "/api/singlebins", token, nil))
	require.Len(t, left, 1)
	assert.Equal(t, "S2", left[0].Name)
}

func TestAlertFlow(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice@example.com", models.RoleUser, "tenant-x")
	other := h.user("bob@example.com", models.RoleUser, "tenant-x")

	rec := h.do(http.MethodPost, "/api/devices", token, map[string]interface{}{"device_id": "dev-1", "name": "Lobby Recycling"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "tenant-x", decode[models.Device](t, rec).ApplicationID)

	rec = h.do(http.MethodPost, "/api/singlebins", token, map[string]interface{}{
		"name":           "Lobby",
		"bin_height":     100,
		"device_id":      "dev-1",
		"sensors":        []string{"fill_level"},
		"fill_threshold": 80,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bin := decode[models.SingleBin](t, rec)

	rec = h.do(http.MethodPost, "/api/devices/dev-1/samples", token, map[string]interface{}{"distance": 20, "timestamp": 1700000000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/devices/ghost/samples", token, map[string]interface{}{"distance": 1}).Code)

	first := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", token, nil))
	require.Len(t, first.Created, 1)
	assert.Equal(t, bin.ID, first.Created[0].EntityID)
	assert.Equal(t, models.SeverityHigh, first.Created[0].Severity)

	second := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", token, nil))
	assert.Empty(t, second.Created)

	list := decode[[]models.Alert](t, h.do(http.MethodGet, "/api/alerts?acknowledged=false", token, nil))
	require.Len(t, list, 1)
	assert.Empty(t, decode[[]models.Alert](t, h.do(http.MethodGet, "/api/alerts", other, nil)))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/alerts?acknowledged=maybe", token, nil).Code)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, "/api/alerts/"+list[0].ID+"/acknowledge", other, nil).Code)
	rec = h.do(http.MethodPut, "/api/alerts/"+list[0].ID+"/acknowledge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Alert](t, rec).Acknowledged)

	third := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", token, nil))
	assert.Len(t, third.Created, 1)

	all := decode[[]models.Alert](t, h.do(http.MethodGet, "/api/alerts", token, nil))
	assert.Len(t, all, 2)
}

func TestDevicesAreTenantFiltered(t *testing.T) {
	h := newHarness(t)
	admin := h.user("admin@example.com", models.RoleAdmin, "")
	x := h.user("x@example.com", models.RoleUser, "tenant-x")
	unassigned := h.user("new@example.com", models.RoleUser, "")

	for _, d := range []map[string]interface{}{
		{"device_id": "x-1", "name": "Kitchen Organic", "application_id": "tenant-x"},
		{"device_id": "y-1", "application_id": "tenant-y"},
		{"device_id": "d-1"},
	} {
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/devices", admin, d).Code)
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/devices/x-1/samples", admin, map[string]interface{}{"distance": 10}).Code)

	devices := decode[[]models.DeviceStatus](t, h.do(http.MethodGet, "/api/devices", x, nil))
	require.Len(t, devices, 1)
	assert.Equal(t, "x-1", devices[0].DeviceID)
	assert.Equal(t, models.DeviceOnline, devices[0].Status)

	defaults := decode[[]models.DeviceStatus](t, h.do(http.MethodGet, "/api/devices", unassigned, nil))
	require.Len(t, defaults, 1)
	assert.Equal(t, "d-1", defaults[0].DeviceID)
	assert.Equal(t, models.DeviceOffline, defaults[0].Status)

	yDevices := decode[[]models.DeviceStatus](t, h.do(http.MethodGet, "/api/devices?application_id=tenant-y", admin, nil))
	require.Len(t, yDevices, 1)
	assert.Equal(t, "y-1", yDevices[0].DeviceID)

	suggestion := decode[models.DeviceSuggestion](t, h.do(http.MethodGet, "/api/devices/x-1/suggestion", x, nil))
	assert.True(t, suggestion.Matched)
	assert.Equal(t, "Kitchen", suggestion.Location)
	assert.Equal(t, []string{"organic"}, suggestion.WasteTypes)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/devices/y-1/suggestion", x, nil).Code)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	admin := h.user("admin@example.com", models.RoleAdmin, "")
	user := h.user("user@example.com", models.RoleUser, "")

	body := CreateUserRequest{Email: "new@example.com", Password: "longenough", Name: "New", Role: models.RoleUser}
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/users", user, body).Code)

	rec := h.do(http.MethodPost, "/api/users", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "new@example.com", decode[CreateUserResponse](t, rec).User.Email)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/users", admin, body).Code)

	body.Role = "driver"
	body.Email = "other@example.com"
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/users", admin, body).Code)

	rec = h.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "new@example.com", Password: "longenough"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterFCMToken(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice@example.com", models.RoleUser, "")

	rec := h.do(http.MethodPost, "/api/notifications/fcm-token", token, RegisterFCMTokenRequest{Token: "tok", DeviceType: "android"})
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := h.store.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	tokens, err := h.store.ListFCMTokens(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, tokens)

	rec = h.do(http.MethodPost, "/api/notifications/fcm-token", token, RegisterFCMTokenRequest{Token: "tok", DeviceType: "pager"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAlertsOnlyReturnsCallersAlerts(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice@example.com", models.RoleUser, "tenant-x")
	bob := h.user("bob@example.com", models.RoleUser, "tenant-y")
	admin := h.user("admin@example.com", models.RoleAdmin, "")

	rec := h.do(http.MethodPost, "/api/singlebins", alice, map[string]interface{}{
		"name":           "AliceBin",
		"sensors":        []string{"fill_level"},
		"fill_threshold": 80,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bin := decode[models.SingleBin](t, rec)
	require.NoError(t, h.store.UpdateSensorSnapshot(context.Background(), models.EntitySingleBin, bin.ID,
		models.SensorSnapshot{FillLevel: ptr(95.0)}))

	bobView := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", bob, nil))
	assert.Empty(t, bobView.Created)
	assert.Empty(t, bobView.Refreshed)
	assert.Equal(t, 1, bobView.Evaluated)

	aliceView := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", alice, nil))
	require.Len(t, aliceView.Refreshed, 1)
	assert.Equal(t, "AliceBin", aliceView.Refreshed[0].BinName)

	adminView := decode[alerts.Result](t, h.do(http.MethodPost, "/api/alerts/check", admin, nil))
	assert.Len(t, adminView.Refreshed, 1)
}

func ptr[T any](v T) *T { return &v }
