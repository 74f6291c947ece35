package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/eco-monitor/internal/access"
	"github.com/ukydev/eco-monitor/internal/auth"
	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/middleware"
	"github.com/ukydev/eco-monitor/internal/models"
)

// UserHandler handles user administration requests
type UserHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service, users db.UserCollection) *UserHandler {
	return &UserHandler{authService: authService, users: users}
}

// List returns all users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsers(r.Context(), bson.M{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// ListCompany returns the users of the caller's company
func (h *UserHandler) ListCompany(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user context not found")
		return
	}

	users, err := h.users.FindUsers(r.Context(), bson.M{"company_id": claims.CompanyID})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Get returns a single user
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type userRequest struct {
	Email        string                `json:"email"`
	Password     string                `json:"password"`
	Role         models.Role           `json:"role"`
	CompanyID    string                `json:"company_id"`
	AccessRights []models.AccessRights `json:"access_rights"`
}

// Create creates a user, normalizing any supplied access rights through the
// capability hierarchy
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.authService.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	companyID := req.CompanyID
	if companyID == "" {
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			companyID = claims.CompanyID
		}
	}

	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyID:    companyID,
		AccessRights: normalizeRights(req.AccessRights),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.users.InsertUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "user created",
		"user":    user,
	})
}

// Update updates a user's fields and access rights
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Email != "" {
		if err := h.authService.ValidateEmail(req.Email); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if existing, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil && existing.ID != id {
			respondError(w, http.StatusConflict, "email already exists")
			return
		}
		user.Email = req.Email
	}
	if req.Password != "" {
		if err := h.authService.ValidatePassword(req.Password); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := h.authService.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}
	if req.Role != "" {
		if !models.IsValidRole(req.Role) {
			respondError(w, http.StatusBadRequest, "invalid role")
			return
		}
		user.Role = req.Role
	}
	if req.CompanyID != "" {
		user.CompanyID = req.CompanyID
	}
	if req.AccessRights != nil {
		user.AccessRights = normalizeRights(req.AccessRights)
		for i := range user.AccessRights {
			user.AccessRights[i].UserID = id
		}
	}

	if err := h.users.UpdateUser(r.Context(), id, *user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "user updated",
		"user":    user,
	})
}

// Delete deletes a user
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Roles returns the assignable roles
func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles := []models.RoleInfo{
		{ID: string(models.RoleAdmin), Name: string(models.RoleAdmin), Description: "full access to everything"},
		{ID: string(models.RoleOwner), Name: string(models.RoleOwner), Description: "company owner, full access unless restricted"},
		{ID: string(models.RoleUser), Name: string(models.RoleUser), Description: "access defined by access rights"},
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

func normalizeRights(rights []models.AccessRights) []models.AccessRights {
	out := make([]models.AccessRights, len(rights))
	for i, r := range rights {
		out[i] = access.Normalize(r)
	}
	return out
}
