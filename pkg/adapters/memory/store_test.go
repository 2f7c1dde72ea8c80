package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSelectionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sel := domain.Reduce(domain.CompareSelection{}, domain.EnterCompare{Version: &domain.Version{Version: 3}})
	require.NoError(t, store.Save(ctx, "s1", &sel))

	sel.VersionFrom.Version = 99
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.VersionFrom.Version)

	loaded.VersionFrom.Version = 42
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.VersionFrom.Version)
}
