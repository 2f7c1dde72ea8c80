package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardStore forgets every selection it is given.
type discardStore struct{}

func (discardStore) Save(context.Context, string, *domain.CompareSelection) error { return nil }
func (discardStore) Load(context.Context, string) (*domain.CompareSelection, error) {
	return nil, domain.ErrSessionNotFound
}
func (discardStore) Delete(context.Context, string) error   { return nil }
func (discardStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LocksAreReleased(t *testing.T) {
	mgr := NewManager(discardStore{})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("editor-%d", i)
		_, err := mgr.Dispatch(ctx, sid, domain.ShowVersion{Version: &domain.Version{Version: 1}})
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, sid))
	}

	assert.Empty(t, mgr.locks)
}

func TestManager_ConcurrentDispatchSharesLock(t *testing.T) {
	mgr := NewManager(discardStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.Dispatch(ctx, "shared", domain.EnterCompare{Version: &domain.Version{Version: 2}})
		}()
	}
	wg.Wait()

	assert.Empty(t, mgr.locks)
}
