package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/eco-monitor/internal/api"
	"github.com/ukydev/eco-monitor/internal/config"
	"github.com/ukydev/eco-monitor/internal/models"
	"github.com/ukydev/eco-monitor/internal/storage"
)

// newBackend serves login, identity and a two-location fleet.
func newBackend(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req models.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(models.AuthResponse{
				User:        models.User{ID: "user-1", Email: req.Email, Role: models.RoleOwner, CompanyID: "company-1"},
				AccessToken: "access-token",
			})
		case "/api/auth/me":
			json.NewEncoder(w).Encode(models.User{
				ID:        "user-1",
				Email:     "owner@example.com",
				Role:      models.RoleOwner,
				CompanyID: "company-1",
				AccessRights: []models.AccessRights{
					{CanViewMonitoring: true, CanViewLocations: true},
				},
			})
		case "/api/locations":
			json.NewEncoder(w).Encode([]models.Location{
				{ID: "loc-1", Name: "North depot", CompanyID: "company-1", Status: models.StatusEmpty, Containers: []models.Container{
					{ID: "c-1", Number: 1, Status: models.StatusEmpty, FillLevel: 10},
				}},
				{ID: "loc-2", Name: "South depot", CompanyID: "company-1", Status: models.StatusPartial, Containers: []models.Container{
					{ID: "c-2", Number: 1, Status: models.StatusPartial, FillLevel: 40},
				}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newTestApp(t *testing.T, baseURL string) *App {
	cfg := &config.Config{
		APIBaseURL: baseURL + "/api",
		BrokerURL:  "tcp://127.0.0.1:1",
		StateDir:   t.TempDir(),
		PollEvery:  10 * time.Millisecond,
	}
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestApp_LoginLoadsFleet(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	err := a.Login(context.Background(), "owner@example.com", "secret")
	require.NoError(t, err)

	assert.True(t, a.Session.IsAuthenticated())
	assert.Equal(t, "company-1", a.Fleet.CompanyID())
	assert.Equal(t, 2, a.Fleet.Len())

	// The fuller identity with access rights replaced the login one.
	user := a.Session.User()
	require.NotNil(t, user.Rights())
	assert.True(t, a.Resolver().HasAccess(models.CanViewMonitoring))
}

func TestApp_LoginFailureLeavesSessionUntouched(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	err := a.Login(context.Background(), "owner@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.False(t, a.Session.IsAuthenticated())
	assert.Equal(t, 0, a.Fleet.Len())
}

func TestApp_PushUpdatesMergeIntoFleet(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	require.NoError(t, a.Login(context.Background(), "owner@example.com", "secret"))

	update, err := json.Marshal(models.ContainerUpdate{
		Container: models.Container{ID: "c-1", Number: 1, Status: models.StatusFull, FillLevel: 92},
		Location:  models.Location{ID: "loc-1", Status: models.StatusFull},
	})
	require.NoError(t, err)
	a.onContainerUpdated(update)

	loc, ok := a.Fleet.Location("loc-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusFull, loc.Status)
	assert.Equal(t, 92.0, loc.Containers[0].FillLevel)

	patch, err := json.Marshal(models.Location{ID: "loc-2", Name: "South depot (renamed)", Status: models.StatusPartial})
	require.NoError(t, err)
	a.onLocationUpdated(patch)

	loc, ok = a.Fleet.Location("loc-2")
	require.True(t, ok)
	assert.Equal(t, "South depot (renamed)", loc.Name)
	// The patch carried no containers, so the stored list survives.
	assert.Len(t, loc.Containers, 1)
}

func TestApp_MalformedPayloadsIgnored(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	require.NoError(t, a.Login(context.Background(), "owner@example.com", "secret"))
	before := a.Fleet.Snapshot()

	a.onContainerUpdated([]byte("not json"))
	a.onLocationUpdated([]byte("{truncated"))

	assert.Equal(t, before, a.Fleet.Snapshot())
}

func TestApp_LogoutClearsEverything(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	require.NoError(t, a.Login(context.Background(), "owner@example.com", "secret"))
	require.NoError(t, a.Logout())

	assert.False(t, a.Session.IsAuthenticated())
	assert.Equal(t, 0, a.Fleet.Len())
	assert.Empty(t, a.Session.Token())

	// Logging out twice is safe.
	assert.NoError(t, a.Logout())
}

func TestApp_RestoreReopensPersistedSession(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	stateDir := t.TempDir()
	persist, err := storage.New(stateDir)
	require.NoError(t, err)
	userJSON, _ := json.Marshal(models.User{ID: "user-1", Email: "owner@example.com", Role: models.RoleOwner, CompanyID: "company-1"})
	require.NoError(t, persist.Write("access-token", "refresh-token", string(userJSON)))

	cfg := &config.Config{
		APIBaseURL: backend.URL + "/api",
		BrokerURL:  "tcp://127.0.0.1:1",
		StateDir:   stateDir,
		PollEvery:  10 * time.Millisecond,
	}
	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Restore(context.Background()))

	assert.True(t, a.Session.IsAuthenticated())
	assert.Equal(t, "access-token", a.Session.Token())
	assert.Equal(t, 2, a.Fleet.Len())
}

func TestApp_RestoreWithoutPersistedSession(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	require.NoError(t, a.Restore(context.Background()))
	assert.False(t, a.Session.IsAuthenticated())
	assert.Equal(t, 0, a.Fleet.Len())
}

func TestApp_WatchConnectivityReportsInitialState(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	a := newTestApp(t, backend.URL)
	defer a.Close()

	states := make(chan bool, 1)
	stop := a.WatchConnectivity(func(online bool) {
		select {
		case states <- online:
		default:
		}
	})
	defer stop()

	select {
	case online := <-states:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("no initial connectivity report")
	}
}
