package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/eco-monitor/internal/models"
)

// fakeFetcher serves canned location lists.
type fakeFetcher struct {
	locations []models.Location
	err       error
	calls     int
}

func (f *fakeFetcher) Locations(ctx context.Context, companyID string) ([]models.Location, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Location, len(f.locations))
	copy(out, f.locations)
	return out, nil
}

func twoLocations() []models.Location {
	return []models.Location{
		{
			ID:     "loc-1",
			Name:   "North depot",
			Status: models.StatusEmpty,
			Containers: []models.Container{
				{ID: "c-1", Number: 1, Status: models.StatusEmpty, FillLevel: 10},
				{ID: "c-2", Number: 2, Status: models.StatusEmpty, FillLevel: 5},
			},
		},
		{
			ID:     "loc-2",
			Name:   "South depot",
			Status: models.StatusPartial,
			Containers: []models.Container{
				{ID: "c-3", Number: 1, Status: models.StatusPartial, FillLevel: 50},
			},
		},
	}
}

func TestStore_Refresh(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")

	err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestStore_RefreshFailureRetainsPrevious(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	fetcher.err = errors.New("backend down")
	err := store.Refresh(context.Background())
	assert.Error(t, err)

	// Stale beats empty: the previous collection is still served.
	assert.Equal(t, 2, store.Len())
	snapshot := store.Snapshot()
	assert.Equal(t, "loc-1", snapshot[0].ID)
}

func TestStore_RefreshIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")

	require.NoError(t, store.Refresh(context.Background()))
	first := store.Snapshot()
	require.NoError(t, store.Refresh(context.Background()))
	second := store.Snapshot()

	assert.Equal(t, first, second)
}

func TestStore_ApplyContainerPatch(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	before := store.Snapshot()

	store.ApplyContainerPatch(models.ContainerUpdate{
		Container: models.Container{ID: "c-1", Number: 1, Status: models.StatusFull, FillLevel: 95},
		Location:  models.Location{ID: "loc-1", Status: models.StatusFull},
	})

	after := store.Snapshot()

	// The matched container and its location's status change.
	assert.Equal(t, models.StatusFull, after[0].Containers[0].Status)
	assert.Equal(t, 95.0, after[0].Containers[0].FillLevel)
	assert.Equal(t, models.StatusFull, after[0].Status)

	// The sibling container in the same location keeps its fields.
	assert.Equal(t, before[0].Containers[1], after[0].Containers[1])

	// Other locations are untouched.
	assert.Equal(t, before[1], after[1])
}

func TestStore_ApplyContainerPatchUnknownLocation(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	before := store.Snapshot()

	// Unknown location id: the patch is a no-op, not an error.
	store.ApplyContainerPatch(models.ContainerUpdate{
		Container: models.Container{ID: "c-1", Status: models.StatusFull},
		Location:  models.Location{ID: "loc-404", Status: models.StatusFull},
	})

	assert.Equal(t, before, store.Snapshot())
}

func TestStore_LastWriteWins(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	// Two patches for the same container in arrival order; the later one
	// wins regardless of content.
	store.ApplyContainerPatch(models.ContainerUpdate{
		Container: models.Container{ID: "c-3", Number: 1, Status: models.StatusPartial, FillLevel: 45},
		Location:  models.Location{ID: "loc-2", Status: models.StatusPartial},
	})
	store.ApplyContainerPatch(models.ContainerUpdate{
		Container: models.Container{ID: "c-3", Number: 1, Status: models.StatusFull, FillLevel: 90},
		Location:  models.Location{ID: "loc-2", Status: models.StatusFull},
	})

	loc, ok := store.Location("loc-2")
	require.True(t, ok)
	assert.Equal(t, models.StatusFull, loc.Containers[0].Status)
	assert.Equal(t, models.StatusFull, loc.Status)
}

func TestStore_ApplyLocationPatch(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	store.ApplyLocationPatch(models.Location{
		ID:     "loc-1",
		Name:   "North depot (renamed)",
		Status: models.StatusPartial,
	})

	loc, ok := store.Location("loc-1")
	require.True(t, ok)
	assert.Equal(t, "North depot (renamed)", loc.Name)
	assert.Equal(t, models.StatusPartial, loc.Status)
	// A patch without containers keeps the stored list.
	assert.Len(t, loc.Containers, 2)
}

func TestStore_ApplyLocationPatchUnknownID(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	before := store.Snapshot()
	store.ApplyLocationPatch(models.Location{ID: "loc-404", Name: "ghost"})
	assert.Equal(t, before, store.Snapshot())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	snapshot := store.Snapshot()
	snapshot[0].Containers[0].Status = models.StatusFull
	snapshot[0].Status = models.StatusFull

	loc, ok := store.Location("loc-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusEmpty, loc.Containers[0].Status)
	assert.Equal(t, models.StatusEmpty, loc.Status)
}

func TestStore_Clear(t *testing.T) {
	fetcher := &fakeFetcher{locations: twoLocations()}
	store := NewStore(fetcher)
	store.SetCompany("company-1")
	require.NoError(t, store.Refresh(context.Background()))

	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.CompanyID())
}
