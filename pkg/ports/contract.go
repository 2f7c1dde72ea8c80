package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSelectionStoreContract runs a suite of tests to verify that a SelectionStore
// implementation adheres to the defined interface contract.
func RunSelectionStoreContract(t *testing.T, store SelectionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	v1 := &domain.Version{Version: 1, Author: &domain.Member{FirstName: "Ada"}}
	v2 := &domain.Version{Version: 2, Published: true}

	t.Run("Save and Load", func(t *testing.T) {
		sel := domain.ReduceAll(domain.CompareSelection{},
			domain.EnterCompare{Version: v1},
			domain.SelectVersion{Version: v2},
		)

		err := store.Save(ctx, sessionID, &sel)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, loaded.Active)
		require.NotNil(t, loaded.VersionFrom)
		require.NotNil(t, loaded.VersionTo)
		assert.Equal(t, 1, loaded.VersionFrom.Version)
		assert.Equal(t, "Ada", loaded.VersionFrom.Author.FirstName)
		assert.Equal(t, 2, loaded.VersionTo.Version)
		assert.Equal(t, domain.PhaseComparing, loaded.Phase())
	})

	t.Run("Save replaces snapshot", func(t *testing.T) {
		sel := domain.CompareSelection{}
		require.NoError(t, store.Save(ctx, sessionID, &sel))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, loaded.Active)
		assert.Nil(t, loaded.VersionFrom)
		assert.Nil(t, loaded.VersionTo)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &domain.CompareSelection{})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.CompareSelection{})
		_ = store.Save(ctx, id2, &domain.CompareSelection{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
