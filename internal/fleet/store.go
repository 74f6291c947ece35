// Package fleet holds the in-memory collection of locations (with nested
// containers) for the active company. The store is the single source of
// truth for every consumer; views derive from snapshots and never keep their
// own copies. Patches apply in arrival order with last write winning; there
// is no sequence numbering.
package fleet

import (
	"context"
	"sync"

	"github.com/ukydev/eco-monitor/internal/models"
)

// Fetcher fetches the full location list for a company from the backend.
type Fetcher interface {
	Locations(ctx context.Context, companyID string) ([]models.Location, error)
}

// Store is the fleet store. All mutations happen under the write lock, so a
// reader never observes a partially applied refresh or patch.
type Store struct {
	mu        sync.RWMutex
	fetcher   Fetcher
	companyID string
	locations []models.Location
}

// NewStore creates an empty store backed by the given fetcher.
func NewStore(fetcher Fetcher) *Store {
	return &Store{fetcher: fetcher}
}

// SetCompany scopes subsequent refreshes to the given company.
func (s *Store) SetCompany(companyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companyID = companyID
}

// CompanyID returns the company the store is scoped to.
func (s *Store) CompanyID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companyID
}

// Refresh fetches the full location list and replaces the collection
// atomically. On failure the previous collection is retained: stale data
// beats an empty map view.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	companyID := s.companyID
	s.mu.RUnlock()

	locations, err := s.fetcher.Locations(ctx, companyID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.locations = locations
	s.mu.Unlock()
	return nil
}

// ApplyContainerPatch replaces the matching container within the owning
// location and overwrites that location's status with the value supplied in
// the patch. A patch for an unknown location is a no-op, not an error: the
// location may belong to another company's room during a boundary race.
// Sibling locations are left untouched.
func (s *Store) ApplyContainerPatch(update models.ContainerUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.locations {
		if s.locations[i].ID != update.Location.ID {
			continue
		}
		loc := &s.locations[i]
		containers := make([]models.Container, len(loc.Containers))
		copy(containers, loc.Containers)
		for j := range containers {
			if containers[j].ID == update.Container.ID {
				containers[j] = update.Container
			}
		}
		loc.Containers = containers
		// Status recomputation happened upstream; take it as-is.
		loc.Status = update.Location.Status
		return
	}
}

// ApplyLocationPatch replaces the matching location's fields wholesale by
// id. Fields the patch leaves empty (containers, company) keep their current
// values. No-op if the location is unknown.
func (s *Store) ApplyLocationPatch(patch models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.locations {
		if s.locations[i].ID != patch.ID {
			continue
		}
		if patch.Containers == nil {
			patch.Containers = s.locations[i].Containers
		}
		if patch.Company == nil {
			patch.Company = s.locations[i].Company
		}
		if patch.CompanyID == "" {
			patch.CompanyID = s.locations[i].CompanyID
		}
		s.locations[i] = patch
		return
	}
}

// Snapshot returns a copy of the collection safe for the caller to hold
// across further mutations. Container slices are copied as well.
func (s *Store) Snapshot() []models.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Location, len(s.locations))
	copy(out, s.locations)
	for i := range out {
		containers := make([]models.Container, len(out[i].Containers))
		copy(containers, out[i].Containers)
		out[i].Containers = containers
	}
	return out
}

// Location returns a copy of the location with the given id.
func (s *Store) Location(id string) (models.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.locations {
		if s.locations[i].ID == id {
			loc := s.locations[i]
			containers := make([]models.Container, len(loc.Containers))
			copy(containers, loc.Containers)
			loc.Containers = containers
			return loc, true
		}
	}
	return models.Location{}, false
}

// Len returns the number of locations held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locations)
}

// Clear empties the collection and company scope. Called on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = nil
	s.companyID = ""
}
