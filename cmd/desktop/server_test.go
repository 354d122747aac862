package main

import (
	"bytes"
	stdsql "database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/notaryapp/backend/internal/appointments"
	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/directory"
	"github.com/notaryapp/backend/internal/favorites"
	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/seed"
	"github.com/notaryapp/backend/internal/session"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	sqlDB, err := stdsql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.MigrateUp(sqlDB))

	repo := db.NewRepository(sqlDB)
	require.NoError(t, seed.NewSeeder(repo).SeedIfEmpty())

	bus := notify.NewBus()
	recorder := audit.NewRecorder(repo)

	srv := &Server{
		session:      session.New(repo, recorder, bus),
		directory:    directory.NewService(repo, recorder, bus),
		favorites:    favorites.NewManager(repo, bus),
		appointments: appointments.NewManager(repo, recorder, bus),
		audit:        recorder,
		hub:          NewWSHub(),
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func login(t *testing.T, ts *httptest.Server, email string) {
	t.Helper()
	resp := postJSON(t, ts, "/api/session/login", map[string]string{
		"email":    email,
		"password": "123456",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)

	var body map[string]string
	resp := getJSON(t, ts, "/api/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestLoginFlow(t *testing.T) {
	ts := setupServer(t)

	// Bad credentials are rejected.
	resp := postJSON(t, ts, "/api/session/login", map[string]string{
		"email": seed.AdminEmail, "password": "wrong",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	login(t, ts, seed.AdminEmail)

	var state struct {
		Authenticated bool        `json:"authenticated"`
		Role          models.Role `json:"role"`
	}
	getJSON(t, ts, "/api/session", &state)
	assert.True(t, state.Authenticated)
	assert.Equal(t, models.RoleAdmin, state.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := setupServer(t)

	resp := postJSON(t, ts, "/api/session/register", map[string]string{
		"name": "Дубль", "email": seed.UserEmail, "password": "pw",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, ts, "/api/session/register", map[string]string{
		"name": "Новый", "email": "fresh@test.ru", "password": "pw",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestNotaryListAndFilters(t *testing.T) {
	ts := setupServer(t)

	var all []*models.Notary
	getJSON(t, ts, "/api/notaries/", &all)
	require.NotEmpty(t, all)

	var moscow []*models.Notary
	getJSON(t, ts, "/api/notaries/?region=Москва", &moscow)
	assert.NotEmpty(t, moscow)
	for _, n := range moscow {
		assert.Equal(t, "Москва", n.Region)
	}

	// Single record fetch.
	var one models.Notary
	resp := getJSON(t, ts, "/api/notaries/"+all[0].ID.String(), &one)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, all[0].FIO, one.FIO)

	resp, err := http.Get(ts.URL + "/api/notaries/missing-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookingEndpoint(t *testing.T) {
	ts := setupServer(t)
	login(t, ts, seed.UserEmail)

	var all []*models.Notary
	getJSON(t, ts, "/api/notaries/", &all)
	require.NotEmpty(t, all)

	resp := postJSON(t, ts, "/api/appointments/", map[string]interface{}{
		"notary_id": all[0].ID,
		"date":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var appt models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appt))
	assert.Equal(t, models.StatusPending, appt.Status)

	var mine []*models.Appointment
	getJSON(t, ts, "/api/appointments/my", &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, appt.ID, mine[0].ID)
}

func TestFavoritesEndpoint(t *testing.T) {
	ts := setupServer(t)
	login(t, ts, seed.UserEmail)

	var all []*models.Notary
	getJSON(t, ts, "/api/notaries/", &all)
	require.NotEmpty(t, all)

	var toggled map[string]bool
	resp := postJSON(t, ts, "/api/favorites/"+all[0].ID.String()+"/toggle", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	resp.Body.Close()
	assert.True(t, toggled["favorite"])

	var favs []*models.Notary
	getJSON(t, ts, "/api/favorites/", &favs)
	require.Len(t, favs, 1)
	assert.Equal(t, all[0].ID, favs[0].ID)
}

func TestArticleAdminGate(t *testing.T) {
	ts := setupServer(t)

	var before []*models.Article
	getJSON(t, ts, "/api/articles/", &before)

	// A guest's save is silently ignored.
	resp := postJSON(t, ts, "/api/articles/", map[string]string{
		"title": "Гостевая статья", "content": "...",
	})
	resp.Body.Close()

	var after []*models.Article
	getJSON(t, ts, "/api/articles/", &after)
	assert.Len(t, after, len(before))

	// An admin's save lands.
	login(t, ts, seed.AdminEmail)
	resp = postJSON(t, ts, "/api/articles/", map[string]string{
		"title": "Админская статья", "content": "...",
	})
	resp.Body.Close()

	getJSON(t, ts, "/api/articles/", &after)
	assert.Len(t, after, len(before)+1)
}

func TestSyncEndpointsUnconfigured(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/api/sync/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
