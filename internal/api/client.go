// Package api is the REST client for the external backend: auth, locations,
// containers, users, roles and companies. JSON in and out, bearer token on
// authenticated calls, no automatic retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukydev/eco-monitor/internal/models"
)

// Client talks to the backend under a single base path (including /api).
// The token callback supplies the current bearer token; an empty return
// sends the request unauthenticated.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// New creates a client. token may be nil for a client that only performs
// unauthenticated calls.
func New(baseURL string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   token,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, string, error) {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, "", fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		return resp.StatusCode, msg, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}

// fetch wraps do for all non-auth endpoints, converting failures into
// FetchError.
func (c *Client) fetch(ctx context.Context, op, method, path string, body, out interface{}) error {
	status, msg, err := c.do(ctx, method, path, body, out)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if msg != "" || status < 200 || status >= 300 {
		return &FetchError{Op: op, Status: status, Message: msg}
	}
	return nil
}

// --- Auth ---

// Login exchanges credentials for tokens and the identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	var resp models.AuthResponse
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	if msg != "" || status < 200 || status >= 300 {
		return nil, &AuthError{Status: status, Message: msg}
	}
	return &resp, nil
}

// Register creates a user, optionally bound to an existing company.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	if msg != "" || status < 200 || status >= 300 {
		return nil, &AuthError{Status: status, Message: msg}
	}
	return &resp, nil
}

// Me returns the current identity with its access rights attached.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.fetch(ctx, "get current user", http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Locations ---

type locationResponse struct {
	Message  string          `json:"message,omitempty"`
	Location models.Location `json:"location"`
}

// Locations fetches the full location list, optionally scoped to a company.
func (c *Client) Locations(ctx context.Context, companyID string) ([]models.Location, error) {
	path := "/locations"
	if companyID != "" {
		path += "?company_id=" + url.QueryEscape(companyID)
	}
	var locations []models.Location
	if err := c.fetch(ctx, "fetch locations", http.MethodGet, path, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Location fetches a single location with its containers.
func (c *Client) Location(ctx context.Context, id string) (*models.Location, error) {
	var loc models.Location
	if err := c.fetch(ctx, "fetch location", http.MethodGet, "/locations/"+id, nil, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// CreateLocation creates a location with its initial containers. The result
// reaches the fleet store only via a subsequent refresh, never optimistically.
func (c *Client) CreateLocation(ctx context.Context, loc models.Location) (*models.Location, error) {
	var resp locationResponse
	if err := c.fetch(ctx, "create location", http.MethodPost, "/locations", loc, &resp); err != nil {
		return nil, err
	}
	return &resp.Location, nil
}

// UpdateLocation updates a location's fields.
func (c *Client) UpdateLocation(ctx context.Context, id string, loc models.Location) (*models.Location, error) {
	var resp locationResponse
	if err := c.fetch(ctx, "update location", http.MethodPut, "/locations/"+id, loc, &resp); err != nil {
		return nil, err
	}
	return &resp.Location, nil
}

// DeleteLocation deletes a location and its containers.
func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.fetch(ctx, "delete location", http.MethodDelete, "/locations/"+id, nil, nil)
}

// CollectWaste registers a waste collection at a location, resetting its
// container fill levels server-side.
func (c *Client) CollectWaste(ctx context.Context, locationID, notes string) error {
	body := map[string]string{"notes": notes}
	return c.fetch(ctx, "collect waste", http.MethodPost, "/locations/"+locationID+"/collect", body, nil)
}

// --- Containers ---

// ContainerPatch carries the updatable container fields; nil fields are left
// unchanged by the backend.
type ContainerPatch struct {
	Status    *models.Status `json:"status,omitempty"`
	FillLevel *float64       `json:"fill_level,omitempty"`
}

// ContainerCreate is the payload to add a container to a location.
type ContainerCreate struct {
	LocationID string        `json:"location_id"`
	Number     int           `json:"number"`
	Status     models.Status `json:"status,omitempty"`
	FillLevel  float64       `json:"fill_level,omitempty"`
}

// ContainerUpdateResult is the backend's reply to a container update: the
// stored container plus the owning location's recomputed status.
type ContainerUpdateResult struct {
	Message        string           `json:"message,omitempty"`
	Container      models.Container `json:"container"`
	LocationStatus models.Status    `json:"location_status"`
}

// UpdateContainer patches a container's status or fill level.
func (c *Client) UpdateContainer(ctx context.Context, id string, patch ContainerPatch) (*ContainerUpdateResult, error) {
	var resp ContainerUpdateResult
	if err := c.fetch(ctx, "update container", http.MethodPut, "/containers/"+id, patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateContainer adds a container to an existing location.
func (c *Client) CreateContainer(ctx context.Context, req ContainerCreate) (*models.Container, error) {
	var resp struct {
		Message   string           `json:"message,omitempty"`
		Container models.Container `json:"container"`
	}
	if err := c.fetch(ctx, "create container", http.MethodPost, "/containers", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Container, nil
}

// DeleteContainer removes a container from its location.
func (c *Client) DeleteContainer(ctx context.Context, id string) error {
	return c.fetch(ctx, "delete container", http.MethodDelete, "/containers/"+id, nil, nil)
}

// --- Users ---

type usersResponse struct {
	Users []models.User `json:"users"`
}

type userResponse struct {
	Message string      `json:"message,omitempty"`
	User    models.User `json:"user"`
}

// Users lists all users visible to the caller.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var resp usersResponse
	if err := c.fetch(ctx, "fetch users", http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CompanyUsers lists the users of the caller's company.
func (c *Client) CompanyUsers(ctx context.Context) ([]models.User, error) {
	var resp usersResponse
	if err := c.fetch(ctx, "fetch company users", http.MethodGet, "/users/company", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// User fetches a single user.
func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.fetch(ctx, "fetch user", http.MethodGet, "/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user in the caller's company.
func (c *Client) CreateUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var resp userResponse
	if err := c.fetch(ctx, "create user", http.MethodPost, "/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser updates a user's fields and access rights.
func (c *Client) UpdateUser(ctx context.Context, id string, user models.User) (*models.User, error) {
	var resp userResponse
	if err := c.fetch(ctx, "update user", http.MethodPut, "/users/"+id, user, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.fetch(ctx, "delete user", http.MethodDelete, "/users/"+id, nil, nil)
}

// Roles lists the assignable roles.
func (c *Client) Roles(ctx context.Context) ([]models.RoleInfo, error) {
	var resp struct {
		Roles []models.RoleInfo `json:"roles"`
	}
	if err := c.fetch(ctx, "fetch roles", http.MethodGet, "/roles", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

// --- Companies ---

type companyResponse struct {
	Message string         `json:"message,omitempty"`
	Company models.Company `json:"company"`
}

// Companies lists all companies.
func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := c.fetch(ctx, "fetch companies", http.MethodGet, "/companies", nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Company fetches a single company.
func (c *Client) Company(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	if err := c.fetch(ctx, "fetch company", http.MethodGet, "/companies/"+id, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// CreateCompany creates a company.
func (c *Client) CreateCompany(ctx context.Context, company models.Company) (*models.Company, error) {
	var resp companyResponse
	if err := c.fetch(ctx, "create company", http.MethodPost, "/companies", company, &resp); err != nil {
		return nil, err
	}
	return &resp.Company, nil
}

// RegisterCompany creates a company and registers its first admin user.
func (c *Client) RegisterCompany(ctx context.Context, company models.Company, email, password string) (*models.AuthResponse, error) {
	created, err := c.CreateCompany(ctx, company)
	if err != nil {
		return nil, err
	}
	return c.Register(ctx, models.RegisterRequest{
		Email:     email,
		Password:  password,
		CompanyID: created.ID,
		Role:      models.RoleAdmin,
	})
}
