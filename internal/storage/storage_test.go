package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	err := store.Write("access-123", "refresh-456", `{"id":"user-1"}`)
	require.NoError(t, err)

	access, refresh, user, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "access-123", access)
	assert.Equal(t, "refresh-456", refresh)
	assert.Equal(t, `{"id":"user-1"}`, user)
}

func TestStore_ReadEmpty(t *testing.T) {
	store := newTestStore(t)

	_, _, _, err := store.Read()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write("access", "refresh", "{}"))

	require.NoError(t, store.Clear())

	_, _, _, err := store.Read()
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing an already empty store is fine.
	assert.NoError(t, store.Clear())
}

func TestStore_OverwriteReplacesAllEntries(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write("old-access", "old-refresh", `{"id":"old"}`))
	require.NoError(t, store.Write("new-access", "new-refresh", `{"id":"new"}`))

	access, refresh, user, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)
	assert.Equal(t, "new-refresh", refresh)
	assert.Equal(t, `{"id":"new"}`, user)
}
