package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/eco-monitor/internal/models"
)

func TestCompanyHandler_List(t *testing.T) {
	companies := new(MockCompanyCollection)
	companies.On("FindCompanies", mock.Anything).Return([]models.Company{
		{ID: "company-1", Name: "Acme Waste"},
	}, nil)

	handler := NewCompanyHandler(companies)

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Waste", got[0].Name)
}

func TestCompanyHandler_ListEmpty(t *testing.T) {
	companies := new(MockCompanyCollection)
	companies.On("FindCompanies", mock.Anything).Return([]models.Company(nil), nil)

	handler := NewCompanyHandler(companies)

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCompanyHandler_Get(t *testing.T) {
	companies := new(MockCompanyCollection)
	companies.On("FindCompanyByID", mock.Anything, "company-1").Return(&models.Company{ID: "company-1", Name: "Acme Waste"}, nil)

	handler := NewCompanyHandler(companies)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/company-1", nil)
	req.SetPathValue("id", "company-1")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "company-1", got.ID)
}

func TestCompanyHandler_Create(t *testing.T) {
	companies := new(MockCompanyCollection)
	companies.On("InsertCompany", mock.Anything, mock.MatchedBy(func(c models.Company) bool {
		return c.Name == "Acme Waste" && c.ID != ""
	})).Return(nil)

	handler := NewCompanyHandler(companies)

	req := jsonRequest(t, http.MethodPost, "/api/companies", models.Company{Name: "Acme Waste"})
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Company models.Company `json:"company"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Company.ID)
	companies.AssertExpectations(t)
}

func TestCompanyHandler_CreateWithoutName(t *testing.T) {
	handler := NewCompanyHandler(new(MockCompanyCollection))

	req := jsonRequest(t, http.MethodPost, "/api/companies", models.Company{Description: "nameless"})
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
