// ABOUTME: Tests for the HTTP API routes
// ABOUTME: Drives the gin router through httptest against a fixture-seeded store
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupServer(t *testing.T) (*Server, *db.Store) {
	t.Helper()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store, err := db.New(db.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	require.NoError(t, err)

	srv := NewServer(store, zap.NewNop(), WithVersion("test"), WithClock(func() time.Time { return now }))
	return srv, store
}

func do(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	srv, store := setupServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, store.SessionID(), body["session"])
}

func TestContactRoutes(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Len(t, decode[[]models.Contact](t, env), 6)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/contacts?tag=enterprise", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Contact](t, env), 2)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/contacts/search?q=innovate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.Contact](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, "Michael Chen", found[0].Name)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/contacts", map[string]any{
		"name":  "Dana Scully",
		"email": "dana@fbi.gov",
		"tags":  []string{"federal"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Contact](t, env)
	assert.Equal(t, 7, created.ID)
	assert.Equal(t, []string{"federal"}, created.Tags)

	rec, env = do(t, srv, http.MethodPut, "/api/v1/contacts/7", map[string]any{"company": "FBI"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Contact](t, env)
	assert.Equal(t, "FBI", updated.Company)
	assert.Equal(t, "Dana Scully", updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/contacts/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/contacts/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "7")
}

func TestContactValidation(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/contacts", map[string]any{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/contacts", map[string]any{"name": "X", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/contacts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodPut, "/api/v1/contacts/99", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactRelations(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/contacts/1/deals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deals := decode[[]models.Deal](t, env)
	require.Len(t, deals, 2)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/contacts/1/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	activities := decode[[]models.Activity](t, env)
	require.Len(t, activities, 2)
}

func TestDealRoutes(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/deals?stage=Lead", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Deal](t, env), 2)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/deals", map[string]any{
		"title":               "Expansion",
		"contact_id":          2,
		"value":               12000,
		"stage":               "Qualified",
		"expected_close_date": "2024-09-30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Deal](t, env)
	assert.Equal(t, 8, created.ID)
	assert.Equal(t, 40, created.Probability)
	require.NotNil(t, created.ExpectedCloseDate)
	assert.Equal(t, "2024-09-30", created.ExpectedCloseDate.Format(dateLayout))

	rec, env = do(t, srv, http.MethodPut, "/api/v1/deals/8", map[string]any{"probability": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[models.Deal](t, env).Probability)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/deals/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := decode[models.PipelineMetrics](t, env)
	assert.Equal(t, 8, metrics.TotalDeals)
	assert.InDelta(t, 349500.0, metrics.TotalValue, 0.001)
}

func TestDealValidation(t *testing.T) {
	srv, _ := setupServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"contact_id": 1}},
		{"missing contact", map[string]any{"title": "x"}},
		{"negative value", map[string]any{"title": "x", "contact_id": 1, "value": -5}},
		{"probability too high", map[string]any{"title": "x", "contact_id": 1, "probability": 101}},
		{"bad date", map[string]any{"title": "x", "contact_id": 1, "expected_close_date": "soon"}},
		{"unknown contact", map[string]any{"title": "x", "contact_id": 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, "/api/v1/deals", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestMoveDealRoute(t *testing.T) {
	srv, store := setupServer(t)

	rec, env := do(t, srv, http.MethodPut, "/api/v1/deals/1/stage", map[string]any{"stage": "Closed Won"})
	require.Equal(t, http.StatusOK, rec.Code)
	move := decode[moveResponse](t, env)
	assert.True(t, move.Moved)
	assert.Equal(t, "Negotiation", move.FromStage)
	assert.Equal(t, 100, move.Deal.Probability)
	require.NotNil(t, move.Activity)
	assert.Equal(t, "Deal moved from Negotiation to Closed Won", move.Activity.Description)

	recent, err := store.Activities.GetRecent(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, move.Activity.ID, recent[0].ID)

	rec, env = do(t, srv, http.MethodPut, "/api/v1/deals/1/stage", map[string]any{"stage": "Closed Won"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deal already in stage", env.Message)
	assert.False(t, decode[moveResponse](t, env).Moved)

	rec, _ = do(t, srv, http.MethodPut, "/api/v1/deals/99/stage", map[string]any{"stage": "Lead"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, srv, http.MethodPut, "/api/v1/deals/1/stage", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDealRoute(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodDelete, "/api/v1/deals/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[struct {
		Deal     models.Deal     `json:"deal"`
		Activity models.Activity `json:"activity"`
	}](t, env)
	assert.Equal(t, "Innovate Labs Pilot", out.Deal.Title)
	assert.Contains(t, out.Activity.Description, "Innovate Labs Pilot")
	assert.Nil(t, out.Activity.DealID)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/deals/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivityRoutes(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/activities/recent?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]models.Activity](t, env)
	require.Len(t, recent, 3)
	assert.Equal(t, []int{7, 5, 8}, []int{recent[0].ID, recent[1].ID, recent[2].ID})

	rec, env = do(t, srv, http.MethodGet, "/api/v1/activities?deal_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Activity](t, env), 2)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/activities", map[string]any{
		"type":        "call",
		"description": "Intro call",
		"contact_id":  3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	logged := decode[models.Activity](t, env)
	assert.Equal(t, 9, logged.ID)
	require.NotNil(t, logged.ContactID)
	assert.Equal(t, 3, *logged.ContactID)

	rec, env = do(t, srv, http.MethodPut, "/api/v1/activities/9", map[string]any{"description": "Follow-up call"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Activity](t, env)
	assert.Equal(t, "Follow-up call", updated.Description)
	assert.True(t, updated.Timestamp.Equal(logged.Timestamp))

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/activities", map[string]any{"type": "fax", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/activities/9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, srv, http.MethodGet, "/api/v1/activities/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivityFeed(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/activities/feed?type=call", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[feedResponse](t, env)
	assert.Equal(t, 2, feed.Total)
	assert.Equal(t, 2, feed.ByType[models.ActivityCall])
	assert.Equal(t, 2, feed.ByType[models.ActivityEmail])

	var ids []int
	for _, g := range feed.Groups {
		assert.NotEmpty(t, g.Label)
		for _, a := range g.Activities {
			ids = append(ids, a.ID)
		}
	}
	assert.Equal(t, []int{7, 1}, ids)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/activities/feed?type=call&sort=oldest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed = decode[feedResponse](t, env)
	require.NotEmpty(t, feed.Groups)
	assert.Equal(t, 1, feed.Groups[0].Activities[0].ID)

	for _, q := range []string{"sort=sideways", "type=fax", "date=June"} {
		rec, _ = do(t, srv, http.MethodGet, "/api/v1/activities/feed?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestStageRoutes(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/stages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stages := decode[[]models.Stage](t, env)
	require.Len(t, stages, 6)
	assert.Equal(t, "Lead", stages[0].Name)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/stages", map[string]any{"name": "On Hold"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Stage](t, env)
	assert.Equal(t, 7, created.Order)
	assert.Equal(t, defaultStageColor, created.Color)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/stages", map[string]any{"name": "Lead"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/stages/reorder", map[string]any{
		"stages": []map[string]int{{"id": created.ID, "order": 0}, {"id": 999, "order": 1}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reordered := decode[[]models.Stage](t, env)
	assert.Equal(t, "On Hold", reordered[0].Name)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/stages/reorder", map[string]any{"stages": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/stages/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardRoute(t *testing.T) {
	srv, _ := setupServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Metrics        models.PipelineMetrics `json:"metrics"`
		RecentActivity []models.Activity      `json:"recent_activity"`
		TotalContacts  int                    `json:"total_contacts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 6, out.TotalContacts)
	assert.Equal(t, 5, out.Metrics.ActiveDeals)
	assert.Len(t, out.RecentActivity, 8)
}

func TestDashboardActivityStatsCountWholeFeed(t *testing.T) {
	srv, store := setupServer(t)

	for i := 0; i < 12; i++ {
		_, err := store.Activities.Create(context.Background(), models.ActivityFields{
			Type:        models.ActivityCall,
			Description: fmt.Sprintf("call %d", i),
		})
		require.NoError(t, err)
	}

	rec, env := do(t, srv, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		RecentActivity []models.Activity `json:"recent_activity"`
		ActivityStats  struct {
			Today     int `json:"today"`
			Yesterday int `json:"yesterday"`
			Week      int `json:"week"`
		} `json:"activity_stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.RecentActivity, 8)
	assert.Equal(t, 12, out.ActivityStats.Today)
	assert.Equal(t, 0, out.ActivityStats.Yesterday)
	assert.Equal(t, 12, out.ActivityStats.Week)
}

func TestRecoveryMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware(zap.NewNop()))
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
