package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/models"
)

// ContainerHandler handles container mutations. Containers live embedded in
// their location documents, so every mutation rewrites the owning location
// and recomputes its status.
type ContainerHandler struct {
	locations db.LocationCollection
	publisher Publisher
}

// NewContainerHandler creates a new container handler
func NewContainerHandler(locations db.LocationCollection, publisher Publisher) *ContainerHandler {
	return &ContainerHandler{locations: locations, publisher: publisher}
}

type containerPatch struct {
	Status    *models.Status `json:"status"`
	FillLevel *float64       `json:"fill_level"`
}

// Update patches a container's fill level or status, recomputes the owning
// location's status and broadcasts container_updated to the company room.
func (h *ContainerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch containerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	location, err := h.locations.FindLocationByContainerID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "container not found")
		return
	}

	container := location.ContainerByID(id)
	if container == nil {
		respondError(w, http.StatusNotFound, "container not found")
		return
	}

	if patch.FillLevel != nil {
		container.FillLevel = *patch.FillLevel
		container.Status = models.StatusForFillLevel(*patch.FillLevel)
	}
	if patch.Status != nil {
		if !models.IsValidStatus(*patch.Status) {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		container.Status = *patch.Status
	}
	location.Status = locationStatus(location.Containers)

	if err := h.locations.ReplaceLocation(r.Context(), location.ID, *location); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update container")
		return
	}

	log.WithFields(log.Fields{
		"container_id":    id,
		"location_id":     location.ID,
		"fill_level":      container.FillLevel,
		"status":          container.Status,
		"location_status": location.Status,
	}).Info("Updated container")

	h.broadcastContainer(*container, *location)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "container updated",
		"container":       container,
		"location_status": location.Status,
	})
}

// Create adds a container to an existing location
func (h *ContainerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID string        `json:"location_id"`
		Number     int           `json:"number"`
		Status     models.Status `json:"status"`
		FillLevel  float64       `json:"fill_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	location, err := h.locations.FindLocationByID(r.Context(), req.LocationID)
	if err != nil {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}

	container := models.Container{
		ID:        primitive.NewObjectID().Hex(),
		Number:    req.Number,
		Status:    req.Status,
		FillLevel: req.FillLevel,
	}
	if !models.IsValidStatus(container.Status) {
		container.Status = models.StatusForFillLevel(container.FillLevel)
	}

	location.Containers = append(location.Containers, container)
	location.Status = locationStatus(location.Containers)

	if err := h.locations.ReplaceLocation(r.Context(), location.ID, *location); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create container")
		return
	}

	h.broadcastContainer(container, *location)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "container created",
		"container": container,
	})
}

// Delete removes a container from its location
func (h *ContainerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	location, err := h.locations.FindLocationByContainerID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "container not found")
		return
	}

	containers := location.Containers[:0]
	for _, c := range location.Containers {
		if c.ID != id {
			containers = append(containers, c)
		}
	}
	location.Containers = containers
	location.Status = locationStatus(location.Containers)

	if err := h.locations.ReplaceLocation(r.Context(), location.ID, *location); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete container")
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(location.CompanyID, models.EventLocationUpdated, location); err != nil {
			log.WithError(err).Error("failed to broadcast container removal")
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "container deleted"})
}

func (h *ContainerHandler) broadcastContainer(container models.Container, location models.Location) {
	if h.publisher == nil {
		return
	}
	update := models.ContainerUpdate{Container: container, Location: location}
	if err := h.publisher.Publish(location.CompanyID, models.EventContainerUpdated, update); err != nil {
		log.WithError(err).Error("failed to broadcast container update")
	}
}
