package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ukydev/eco-monitor/internal/auth"
	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/middleware"
	"github.com/ukydev/eco-monitor/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
	companies   db.CompanyCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection, companies db.CompanyCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		companies:   companies,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate refresh token")
		return
	}

	h.attachCompany(r, user)

	respondJSON(w, http.StatusOK, models.AuthResponse{
		Message:      "login successful",
		User:         *user,
		AccessToken:  token,
		RefreshToken: refreshToken,
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := registerReq.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyID:    registerReq.CompanyID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.users.InsertUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate refresh token")
		return
	}

	respondJSON(w, http.StatusCreated, models.AuthResponse{
		Message:      "registration successful",
		User:         user,
		AccessToken:  token,
		RefreshToken: refreshToken,
	})
}

// Me returns the current user with access rights and company attached
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user context not found")
		return
	}

	user, err := h.users.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	h.attachCompany(r, user)
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) attachCompany(r *http.Request, user *models.User) {
	if user.CompanyID == "" {
		return
	}
	if company, err := h.companies.FindCompanyByID(r.Context(), user.CompanyID); err == nil {
		user.Company = company
	}
}
