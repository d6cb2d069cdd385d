package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindcare/mindcare-server/internal/api"
	"github.com/mindcare/mindcare-server/internal/crisis"
	"github.com/mindcare/mindcare-server/internal/services"
	"github.com/mindcare/mindcare-server/internal/store/sqlite"
)

func newTestServer(t *testing.T, strictTriage bool) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(t.Context()))

	log := zerolog.Nop()
	router := api.NewRouter(api.Deps{
		Users:  services.NewUserService(st),
		Risks:  services.NewRiskService(st, log),
		Alerts: services.NewAlertService(st, log, strictTriage),
		Crisis: crisis.NewResolver("bd"),
		Log:    log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCreateAlertLegacyShape(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"userId":      "u1",
		"userMessage": "I can't keep doing this",
		"moodLevel":   2,
		"riskLevel":   "high",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["id"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/alert-tracking", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := body["alerts"].([]interface{})
	require.Len(t, alerts, 1)

	a := alerts[0].(map[string]interface{})
	assert.Equal(t, "u1", a["userId"])
	assert.Equal(t, "high", a["riskLevel"])
	assert.Equal(t, true, a["isHeavy"])
	assert.Equal(t, "I can't keep doing this", a["fullText"])
	assert.Equal(t, "I can't keep doing this", a["excerpt"])
	assert.Equal(t, "new", a["status"])
	meta := a["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["moodLevel"])
}

func TestCreateAlertBarePayloadDefaults(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"userId": "u2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := doJSON(t, http.MethodGet, srv.URL+"/api/alert-tracking", nil)
	alerts := body["alerts"].([]interface{})
	require.Len(t, alerts, 1)

	a := alerts[0].(map[string]interface{})
	assert.Equal(t, "", a["fullText"])
	assert.Equal(t, "", a["excerpt"])
	assert.Equal(t, "low", a["riskLevel"])
	assert.Equal(t, false, a["isHeavy"])
	assert.Nil(t, a["meta"])
}

func TestCreateAlertMissingUserID(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"riskLevel": "high",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordRiskNumericUserID(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/risks", map[string]interface{}{
		"userId":    5,
		"riskLevel": "medium",
		"riskType":  "mood_decline",
		"riskScore": "severe", // non-numeric, coerces to 1
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "5", body["userId"])
	assert.Equal(t, float64(1), body["riskScore"])
	assert.NotEmpty(t, body["riskId"])
	assert.NotEmpty(t, body["detectedAt"])

	// Listing returns a bare array, newest first.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/risks?userId=5", nil)
	require.NoError(t, err)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var recs []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "medium", recs[0]["riskLevel"])
}

func TestListRisksBadLimit(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/risks?userId=u1&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateStatusUnknownAlert(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"id":     "999",
		"status": "resolved",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Some callers send the id as a JSON number; an unknown numeric id is
	// still a 404, not a decode failure.
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"id":     999,
		"status": "resolved",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateStatusRoundTrip(t *testing.T) {
	srv := newTestServer(t, false)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"userId": "u1",
	})
	id := created["id"].(string)

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"id":     id,
		"status": "in_review",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	_, listBody := doJSON(t, http.MethodGet, srv.URL+"/api/alert-tracking", nil)
	a := listBody["alerts"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "in_review", a["status"])
}

func TestUpdateStatusStrictModeConflict(t *testing.T) {
	srv := newTestServer(t, true)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"userId": "u1",
	})
	id := created["id"].(string)

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"id": id, "status": "resolved",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"id": id, "status": "in_review",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCrisisResources(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/crisis-resources?region=us", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rs := body["resources"].(map[string]interface{})
	assert.Equal(t, "United States", rs["regionName"])
	assert.Equal(t, "988", rs["emergency"])
	assert.Contains(t, body["advisory"], "call 988")

	// Default region applies when the query param is absent.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/crisis-resources", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rs = body["resources"].(map[string]interface{})
	assert.Equal(t, "Bangladesh", rs["regionName"])

	// Unknown regions fall back rather than erroring.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/crisis-resources?region=zz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rs = body["resources"].(map[string]interface{})
	assert.Equal(t, "International", rs["regionName"])
	assert.Nil(t, rs["emergency"])
}

func TestUserLifecycle(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/users", map[string]interface{}{
		"userId":      "u1",
		"email":       "u1@example.com",
		"displayName": "First User",
		"region":      "us",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u1", body["userId"])

	// Duplicate registration conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/users", map[string]interface{}{
		"userId": "u1",
		"email":  "u1@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1@example.com", body["email"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Invalid email rejected up front.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/users", map[string]interface{}{
		"userId": "u2",
		"email":  "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestStoreUnavailableAnswers503(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	st := sqlite.NewWithDB(db)
	require.NoError(t, st.EnsureSchema(t.Context()))

	log := zerolog.Nop()
	router := api.NewRouter(api.Deps{
		Users:  services.NewUserService(st),
		Risks:  services.NewRiskService(st, log),
		Alerts: services.NewAlertService(st, log, false),
		Crisis: crisis.NewResolver("bd"),
		Log:    log,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	require.NoError(t, db.Close())

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/risks?userId=u1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/alert-tracking", map[string]interface{}{
		"userId": "u1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMalformedJSON(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/api/alert-tracking", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
