package ports

import (
	"context"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// SelectionStore persists compare-selection snapshots per session.
// Implementations replace the whole snapshot on Save so readers never
// observe a partial write.
type SelectionStore interface {
	// Save persists the selection for a given session ID.
	Save(ctx context.Context, sessionID string, sel *domain.CompareSelection) error

	// Load retrieves the selection for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.CompareSelection, error)

	// Delete removes the selection for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
