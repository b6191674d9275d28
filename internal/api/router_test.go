package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/layover-backend-go/internal/config"
	"github.com/jengzang/layover-backend-go/internal/database"
	"github.com/jengzang/layover-backend-go/internal/embedding"
	"github.com/jengzang/layover-backend-go/internal/middleware"
	"github.com/jengzang/layover-backend-go/internal/repository"
	"github.com/jengzang/layover-backend-go/internal/service"
)

const testSecret = "router-test-secret"

const changiBody = `{
  "profile": {
    "name": "Singapore Changi",
    "lat": 1.3644, "lon": 103.9915,
    "intelligence_factors": {
      "immigration_avg_mins": 30, "security_check_mins": 20, "transit_to_city_mins": 40,
      "risk_multipliers": {"rush_hour": 1.5, "late_night": 0.8}
    },
    "visa_policy": {
      "us": {"type": "Visa Free", "details": "90 days"},
      "indian": {"type": "Visa Required", "details": "apply in advance"}
    },
    "activities": [
      {"id": "hawker", "title": "Airside Hawker Food Court", "type": "food",
       "description": "Cheap local food", "location": {"zone": "airside"},
       "time_constraints": {"min_duration_hours": 1, "is_24h": true}, "cost_tier": "CHEAP"},
      {"id": "gardens", "title": "Gardens by the Bay", "type": "SIGHTS",
       "description": "Supertree grove and city skyline views",
       "location": {"zone": "LANDSIDE", "lat": 1.2816, "lon": 103.8636},
       "time_constraints": {"min_duration_hours": 2, "opening_hour_24": 9, "closing_hour_24": 21}}
    ]
  },
  "meta": {"name": "Singapore Changi", "code": "SIN", "region": "SE_ASIA", "popularity": 0.93, "friction": 0.1,
           "late_night_strength": 0.9, "airside_strength": 0.98, "landside_strength": 0.85}
}`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "api.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cache := embedding.NewCache(embedding.NewLocal(), nil, time.Hour, nil)
	svc, err := service.NewLayoverService(repository.NewHubRepository(conn), cache, config.DefaultPolicy(), nil)
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: testSecret, CORSOrigins: []string{"*"}}
	return SetupRouter(cfg, svc, middleware.NewRateLimiter(1000, time.Minute), nil)
}

func do(t *testing.T, r *gin.Engine, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func adminHeader(t *testing.T) map[string]string {
	tok, err := middleware.IssueToken(testSecret, "ops", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func provision(t *testing.T, r *gin.Engine) {
	rec, _ := do(t, r, http.MethodPut, "/api/v1/admin/hubs/SIN", changiBody, adminHeader(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scorer":"multi_factor"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestListHubsBuiltinThenStored(t *testing.T) {
	r := newTestRouter(t)

	rec, env := do(t, r, http.MethodGet, "/api/v1/hubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 10, data.Total)

	provision(t, r)
	_, env = do(t, r, http.MethodGet, "/api/v1/hubs", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Total)
}

func TestProvisionRequiresAdmin(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPut, "/api/v1/admin/hubs/sin", changiBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := do(t, r, http.MethodPut, "/api/v1/admin/hubs/sin", `{"profile": {"activities": [{"id": ""}]}}`, adminHeader(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Message)
}

func TestRankHubs(t *testing.T) {
	r := newTestRouter(t)

	rec, env := do(t, r, http.MethodPost, "/api/v1/hubs/rank",
		`{"origin": "Delhi", "destination": "Sydney", "layover_hours": 6, "arrival_hour": 23}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Hubs []struct {
			HubID string `json:"hub_id"`
		} `json:"hubs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Hubs, 2)

	rec, _ = do(t, r, http.MethodPost, "/api/v1/hubs/rank", `{"destination": "Sydney"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/api/v1/hubs/rank", `{"origin": "DEL", "destination": "SYD", "arrival_hour": 25}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Message)
}

func TestRankActivitiesResolvesVisaFromPassport(t *testing.T) {
	r := newTestRouter(t)
	provision(t, r)

	body := `{"hub_id": "sin", "layover_hours": 8, "arrival_hour": 12, "day_of_week": "Monday",
	          "passport": "USA", "query": "city skyline views and sightseeing"}`
	rec, env := do(t, r, http.MethodPost, "/api/v1/activities/rank", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Activities []struct {
			Activity struct {
				ID string `json:"id"`
			} `json:"activity"`
			Score float64 `json:"score"`
		} `json:"activities"`
		VisaValid bool `json:"visa_valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.VisaValid)
	require.NotEmpty(t, data.Activities)
	assert.Equal(t, "gardens", data.Activities[0].Activity.ID)

	// a passport that needs a visa keeps the plan airside
	body = `{"hub_id": "sin", "layover_hours": 8, "arrival_hour": 12, "day_of_week": "mon",
	         "passport": "India", "query": "city skyline views and sightseeing"}`
	_, env = do(t, r, http.MethodPost, "/api/v1/activities/rank", body, nil)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.VisaValid)
	for _, a := range data.Activities {
		assert.NotEqual(t, "gardens", a.Activity.ID)
	}
}

func TestRankActivitiesBadInput(t *testing.T) {
	r := newTestRouter(t)

	for _, body := range []string{
		`{"hub_id": "sin", "layover_hours": 8, "arrival_hour": 30}`,
		`{"hub_id": "sin", "layover_hours": -1, "arrival_hour": 3}`,
		`{"hub_id": "sin", "layover_hours": 8, "arrival_hour": 3, "day_of_week": "someday"}`,
		`{"layover_hours": 8}`,
		`not json`,
	} {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/activities/rank", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestPlanEndpoint(t *testing.T) {
	r := newTestRouter(t)
	provision(t, r)

	body := `{"hub_id": "sin", "layover_hours": 6, "arrival_hour": 14, "day_of_week": "Tuesday",
	          "visa_valid": false, "query": "local food"}`
	rec, env := do(t, r, http.MethodPost, "/api/v1/plans", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan struct {
		HubID    string `json:"hub_id"`
		Timeline []struct {
			Task  string    `json:"task"`
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"timeline"`
		Risk struct {
			Level string `json:"level"`
		} `json:"risk"`
		Overhead struct {
			Method string `json:"method"`
		} `json:"overhead"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, "sin", plan.HubID)
	assert.Equal(t, "LOW", plan.Risk.Level)
	assert.Equal(t, "DYNAMIC", plan.Overhead.Method)
	require.NotEmpty(t, plan.Timeline)
	first, last := plan.Timeline[0], plan.Timeline[len(plan.Timeline)-1]
	assert.Equal(t, 6*time.Hour, last.End.Sub(first.Start))
}

func TestPlanUnknownHubIsEmpty(t *testing.T) {
	r := newTestRouter(t)

	rec, env := do(t, r, http.MethodPost, "/api/v1/plans",
		`{"hub_id": "zzz", "layover_hours": 6, "arrival_hour": 14, "visa_valid": true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		Activities []json.RawMessage `json:"activities"`
		Risk       struct {
			Level string `json:"level"`
		} `json:"risk"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Empty(t, plan.Activities)
	assert.Equal(t, "UNKNOWN", plan.Risk.Level)
}

func TestVisaEndpoint(t *testing.T) {
	r := newTestRouter(t)
	provision(t, r)

	rec, env := do(t, r, http.MethodGet, "/api/v1/hubs/SIN/visa?passport=us", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Valid bool   `json:"valid"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Valid)
	assert.Equal(t, "Visa Free", status.Title)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/hubs/sin/visa", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveHub(t *testing.T) {
	r := newTestRouter(t)
	provision(t, r)

	rec, _ := do(t, r, http.MethodDelete, "/api/v1/admin/hubs/sin", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, r, http.MethodDelete, "/api/v1/admin/hubs/SIN", "", adminHeader(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := do(t, r, http.MethodDelete, "/api/v1/admin/hubs/sin", "", adminHeader(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Message)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
