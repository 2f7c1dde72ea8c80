package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/historyviewer/pkg/adapters/redis"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunSelectionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"
	sel := domain.Reduce(domain.CompareSelection{}, domain.EnterCompare{Version: &domain.Version{Version: 1}})

	err = store.Save(ctx, sessionID, &sel)
	assert.NoError(t, err)

	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Key expiry is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Index pruning is driven by wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	err = store.Save(ctx, sessionID, &domain.CompareSelection{})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_PreservesVersionDetails(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	edited := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	sel := domain.ReduceAll(domain.CompareSelection{},
		domain.EnterCompare{Version: &domain.Version{Version: 4, LastEdited: edited, Publisher: &domain.Member{FirstName: "Grace"}, Published: true}},
		domain.SelectVersion{Version: &domain.Version{Version: 7, AbsoluteLink: "/about?stage=Stage"}},
	)
	require.NoError(t, store.Save(ctx, "s", &sel))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.True(t, edited.Equal(loaded.VersionFrom.LastEdited))
	assert.Equal(t, "Grace", loaded.VersionFrom.AuthorName())
	assert.Equal(t, "/about?stage=Stage", loaded.VersionTo.AbsoluteLink)
}
