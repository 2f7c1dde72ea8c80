package ports

import (
	"context"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// VersionSource retrieves the history of a record from the versioning layer.
type VersionSource interface {
	// ListVersions returns every version of the record, newest first.
	ListVersions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error)

	// GetVersion loads a single version including its field values.
	// Returns domain.ErrVersionNotFound if it does not exist.
	GetVersion(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error)
}
