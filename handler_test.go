package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testToken = "tok-alice"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer wires a Handler over a memStore holding alice (password
// "secret") with the tracker clock pinned to fixedNow.
func newTestServer(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	store := newMemStore()
	store.addUser(user{Username: "alice", Email: "alice@example.com", Password: string(hash), AuthToken: testToken})

	h := newHandler(store, time.UTC, zap.NewNop())
	h.tracker.now = func() time.Time { return fixedNow }
	return h.newRouter(), h
}

func do(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestLogin(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodPost, "/api/login", "", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var data struct {
		Token  string `json:"token"`
		UserID int    `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, testToken, data.Token)
	assert.Equal(t, 1, data.UserID)

	w, env = do(t, router, http.MethodPost, "/api/login", "", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, router, http.MethodPost, "/api/login", "", `{"username":"nobody","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, router, http.MethodGet, "/api/auth/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/auth/me", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "auth_token")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestProfileAndRecommendationRoutes(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodPut, "/api/users/personal-info", testToken,
		`{"gender":"male","age":30,"height_cm":178,"weight_kg":82,"activity_level":"moderate"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Personal information updated successfully", env.Message)
	assert.Contains(t, string(env.Data), `"health_condition":"none"`)

	w, env = do(t, router, http.MethodPut, "/api/users/personal-info", testToken,
		`{"gender":"male","age":12,"height_cm":178,"weight_kg":82}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Age must be between 15 and 150", env.Message)

	w, env = do(t, router, http.MethodPost, "/api/users/calculate-recommendations", testToken,
		`{"gender":"male","age":30,"height_cm":178,"weight_kg":82,"activity_level":1.55}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec recommendation
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, goalWeightLoss, rec.SuggestedAction)
	assert.Equal(t, 2355.0, rec.TargetCalories)
}

func TestUpdateGoalsRoute(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodPut, "/api/users/goals", testToken,
		`{"target_calories":"2000","target_protein":150,"target_weight":75}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Goals updated successfully", env.Message)
	assert.Contains(t, string(env.Data), `"type":"Custom Goal"`)

	w, env = do(t, router, http.MethodPut, "/api/users/goals", testToken,
		`{"target_calories":"abc","target_protein":150,"target_weight":75}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid number values provided for goals", env.Message)
}

func TestTrackingRoutes(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodGet, "/api/tracking/entries", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[]}`, string(env.Data))

	w, env = do(t, router, http.MethodGet, "/api/tracking/progress-stats", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"latest_entry":null}`, string(env.Data))

	w, env = do(t, router, http.MethodPost, "/api/tracking/entries", testToken,
		`{"date":"2024-01-05","calories":1500,"protein":100,"weight":70}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Tracking entry saved successfully", env.Message)

	w, env = do(t, router, http.MethodPost, "/api/tracking/entries", testToken,
		`{"date":"2024-01-05","calories":1600,"protein":110,"weight":69}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = do(t, router, http.MethodGet, "/api/tracking/entries", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history.Entries, 1)
	assert.Equal(t, "2024-01-05", history.Entries[0]["date"])
	assert.Equal(t, 1600.0, history.Entries[0]["calories"])
	assert.NotContains(t, history.Entries[0], "id")
	assert.NotContains(t, history.Entries[0], "user_id")

	w, env = do(t, router, http.MethodGet, "/api/tracking/progress-stats", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"date":"2024-01-05"`)
}

func TestAddEntryRejections(t *testing.T) {
	router, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"future date", `{"date":"2024-01-11","calories":1500,"protein":100,"weight":70}`, "Cannot add entries for future dates"},
		{"bad date", `{"date":"yesterday","calories":1500,"protein":100,"weight":70}`, "Valid date is required"},
		{"missing calories", `{"date":"2024-01-05","protein":100,"weight":70}`, "Calories must be between 0 and 2000"},
		{"protein out of range", `{"date":"2024-01-05","calories":1500,"protein":170,"weight":70}`, "Protein must be between 0 and 160g"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodPost, "/api/tracking/entries", testToken, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.msg, env.Message)
		})
	}

	w, env := do(t, router, http.MethodGet, "/api/tracking/entries", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[]}`, string(env.Data))
}

func TestRespondError(t *testing.T) {
	_, h := newTestServer(t)

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"input", invalidInput("Age must be between 15 and 150"), http.StatusBadRequest, "Age must be between 15 and 150"},
		{"duplicate", &storeError{Sentinel: ErrDuplicateEntry, Cause: errors.New("23505")}, http.StatusConflict, "Entry already exists for this date"},
		{"not found", ErrNotFound, http.StatusNotFound, "User not found"},
		{"store failure", &storeError{Sentinel: ErrStoreFailure, Cause: errors.New("conn reset")}, http.StatusInternalServerError, "Server error while saving tracking entry"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/tracking/entries", nil)

			h.respondError(c, tc.err, "Server error while saving tracking entry")

			assert.Equal(t, tc.status, w.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tc.msg, env.Message)
			assert.NotContains(t, w.Body.String(), "conn reset")
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := do(t, router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	do(t, router, http.MethodPost, "/api/tracking/entries", testToken,
		`{"date":"2024-01-05","calories":1500,"protein":100,"weight":70}`)

	w, _ = do(t, router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `fitness_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, body, `fitness_entry_writes_total{outcome="created"} 1`)
}
