// Package handlers implements the REST surface of the dev backend: auth,
// locations, containers, users, roles and companies. Container updates
// recompute the owning location's status and broadcast the change to the
// company's event topics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/eco-monitor/internal/models"
)

// Publisher broadcasts an event to a company's room. Satisfied by
// events.Publisher.
type Publisher interface {
	Publish(companyID, event string, payload interface{}) error
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// locationStatus aggregates a location's status from its containers: full
// wins over partial, partial over empty. An empty container list means an
// empty location.
func locationStatus(containers []models.Container) models.Status {
	status := models.StatusEmpty
	for _, c := range containers {
		switch c.Status {
		case models.StatusFull:
			return models.StatusFull
		case models.StatusPartial:
			status = models.StatusPartial
		}
	}
	return status
}
