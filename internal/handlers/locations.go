package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/middleware"
	"github.com/ukydev/eco-monitor/internal/models"
)

// LocationHandler handles location CRUD and waste-collection requests
type LocationHandler struct {
	locations db.LocationCollection
	publisher Publisher
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations db.LocationCollection, publisher Publisher) *LocationHandler {
	return &LocationHandler{locations: locations, publisher: publisher}
}

// List returns all locations, optionally filtered by company_id
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	locations, err := h.locations.FindLocations(r.Context(), companyID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch locations")
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	respondJSON(w, http.StatusOK, locations)
}

// Get returns a single location with its containers
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	location, err := h.locations.FindLocationByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}
	respondJSON(w, http.StatusOK, location)
}

// Create creates a location with its initial containers
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var location models.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if location.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	if location.CompanyID == "" {
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			location.CompanyID = claims.CompanyID
		}
	}

	location.ID = primitive.NewObjectID().Hex()
	for i := range location.Containers {
		location.Containers[i].ID = primitive.NewObjectID().Hex()
		if !models.IsValidStatus(location.Containers[i].Status) {
			location.Containers[i].Status = models.StatusForFillLevel(location.Containers[i].FillLevel)
		}
	}
	location.Status = locationStatus(location.Containers)

	if err := h.locations.InsertLocation(r.Context(), location); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	log.WithFields(log.Fields{
		"location_id": location.ID,
		"company_id":  location.CompanyID,
		"containers":  len(location.Containers),
	}).Info("Created location")

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "location created",
		"location": location,
	})
}

// Update replaces a location's fields and broadcasts the change
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.locations.FindLocationByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}

	var update models.Location
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// Containers are managed through the container endpoints; an update
	// without them keeps the stored list.
	if update.Containers == nil {
		update.Containers = existing.Containers
	}
	if update.CompanyID == "" {
		update.CompanyID = existing.CompanyID
	}
	update.LastCollection = existing.LastCollection
	update.CreatedAt = existing.CreatedAt
	update.Status = locationStatus(update.Containers)

	if err := h.locations.ReplaceLocation(r.Context(), id, update); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update location")
		return
	}
	update.ID = id

	h.broadcastLocation(update)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "location updated",
		"location": update,
	})
}

// Delete removes a location and its containers
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.locations.DeleteLocation(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "location deleted"})
}

// Collect registers a waste collection: all containers reset to empty
func (h *LocationHandler) Collect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	location, err := h.locations.FindLocationByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}

	now := time.Now()
	for i := range location.Containers {
		location.Containers[i].FillLevel = 0
		location.Containers[i].Status = models.StatusEmpty
	}
	location.Status = models.StatusEmpty
	location.LastCollection = &now

	if err := h.locations.ReplaceLocation(r.Context(), id, *location); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register collection")
		return
	}

	log.WithField("location_id", id).Info("Registered waste collection")

	h.broadcastLocation(*location)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "collection registered",
		"location": location,
	})
}

func (h *LocationHandler) broadcastLocation(location models.Location) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(location.CompanyID, models.EventLocationUpdated, location); err != nil {
		log.WithError(err).Error("failed to broadcast location update")
	}
}
