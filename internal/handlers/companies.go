package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/models"
)

// CompanyHandler handles company requests
type CompanyHandler struct {
	companies db.CompanyCollection
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies db.CompanyCollection) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// List returns all companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.FindCompanies(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch companies")
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}
	respondJSON(w, http.StatusOK, companies)
}

// Get returns a single company
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.FindCompanyByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "company not found")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// Create creates a company
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var company models.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if company.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	company.ID = primitive.NewObjectID().Hex()
	if err := h.companies.InsertCompany(r.Context(), company); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create company")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "company created",
		"company": company,
	})
}
