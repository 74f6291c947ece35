package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/eco-monitor/internal/models"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email != "owner@example.com" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{
			User:         models.User{ID: "user-1", Email: req.Email, Role: models.RoleOwner, CompanyID: "company-1"},
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
		})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)

	resp, err := client.Login(context.Background(), "owner@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "user-1", resp.User.ID)

	_, err = client.Login(context.Background(), "owner@example.com", "wrong")
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "Invalid credentials", authErr.Message)
}

func TestClient_BearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Location{})
	}))
	defer server.Close()

	client := New(server.URL+"/api", func() string { return "token-abc" })
	_, err := client.Locations(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", gotAuth)

	// Without a token callback no header is sent.
	client = New(server.URL+"/api", nil)
	_, err = client.Locations(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Locations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/locations", r.URL.Path)
		assert.Equal(t, "company-1", r.URL.Query().Get("company_id"))
		json.NewEncoder(w).Encode([]models.Location{
			{ID: "loc-1", Name: "North depot", Status: models.StatusFull},
			{ID: "loc-2", Name: "South depot", Status: models.StatusEmpty},
		})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	locations, err := client.Locations(context.Background(), "company-1")
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, models.StatusFull, locations[0].Status)
}

func TestClient_UpdateContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/containers/c-1", r.URL.Path)

		var patch ContainerPatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		require.NotNil(t, patch.FillLevel)
		assert.Equal(t, 85.0, *patch.FillLevel)
		assert.Nil(t, patch.Status)

		json.NewEncoder(w).Encode(ContainerUpdateResult{
			Message:        "Container updated",
			Container:      models.Container{ID: "c-1", Number: 1, Status: models.StatusFull, FillLevel: 85},
			LocationStatus: models.StatusFull,
		})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	fill := 85.0
	result, err := client.UpdateContainer(context.Background(), "c-1", ContainerPatch{FillLevel: &fill})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFull, result.Container.Status)
	assert.Equal(t, models.StatusFull, result.LocationStatus)
}

func TestClient_FetchErrorOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Location not found"})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	_, err := client.Location(context.Background(), "loc-404")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
	assert.Equal(t, "Location not found", fetchErr.Message)
	assert.Equal(t, "fetch location", fetchErr.Op)
}

func TestClient_CollectWaste(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"message": "Collection recorded"})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	err := client.CollectWaste(context.Background(), "loc-1", "routine pickup")
	require.NoError(t, err)
	assert.Equal(t, "/api/locations/loc-1/collect", gotPath)
	assert.Equal(t, "routine pickup", gotBody["notes"])
}

func TestClient_Users(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []models.User{
				{ID: "user-1", Email: "a@example.com", Role: models.RoleOwner},
				{ID: "user-2", Email: "b@example.com", Role: models.RoleUser},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	users, err := client.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b@example.com", users[1].Email)
}

func TestClient_RegisterCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/companies":
			var company models.Company
			require.NoError(t, json.NewDecoder(r.Body).Decode(&company))
			company.ID = "company-9"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"company": company})
		case "/api/auth/register":
			var req models.RegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "company-9", req.CompanyID)
			assert.Equal(t, models.RoleAdmin, req.Role)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.AuthResponse{
				User:        models.User{ID: "user-9", Email: req.Email, Role: req.Role, CompanyID: req.CompanyID},
				AccessToken: "access-token",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL+"/api", nil)
	resp, err := client.RegisterCompany(context.Background(), models.Company{Name: "Acme Waste"}, "admin@acme.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "company-9", resp.User.CompanyID)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}
