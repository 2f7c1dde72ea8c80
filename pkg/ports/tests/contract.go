package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
)

// VersionSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.VersionSource.
// The source must hold exactly the given versions of ref.
func VersionSourceContractTest(t *testing.T, src ports.VersionSource, ref domain.RecordRef, want []*domain.Version) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetVersion_Success", func(t *testing.T) {
		for _, expected := range want {
			v, err := src.GetVersion(ctx, ref, expected.Version)
			if err != nil {
				t.Fatalf("unexpected error getting version %d: %v", expected.Version, err)
			}
			if v.Version != expected.Version {
				t.Errorf("got version %d, want %d", v.Version, expected.Version)
			}
			for name, value := range expected.Fields {
				if got := v.Fields[name]; got != value {
					t.Errorf("version %d field %s: got %v, want %v", expected.Version, name, got, value)
				}
			}
		}
	})

	t.Run("GetVersion_NotFound", func(t *testing.T) {
		_, err := src.GetVersion(ctx, ref, 9999)
		if !errors.Is(err, domain.ErrVersionNotFound) {
			t.Errorf("expected ErrVersionNotFound, got %v", err)
		}

		_, err = src.GetVersion(ctx, domain.RecordRef{Class: ref.Class, ID: "missing-" + ref.ID}, 1)
		if !errors.Is(err, domain.ErrVersionNotFound) {
			t.Errorf("expected ErrVersionNotFound for unknown record, got %v", err)
		}
	})

	t.Run("ListVersions", func(t *testing.T) {
		versions, err := src.ListVersions(ctx, ref)
		if err != nil {
			t.Fatalf("unexpected error listing versions: %v", err)
		}

		if len(versions) != len(want) {
			t.Fatalf("expected %d versions, got %d", len(want), len(versions))
		}

		for i := 1; i < len(versions); i++ {
			if versions[i-1].Version <= versions[i].Version {
				t.Errorf("versions not newest first: %d before %d", versions[i-1].Version, versions[i].Version)
			}
		}
	})

	t.Run("ListVersions_UnknownRecord", func(t *testing.T) {
		versions, err := src.ListVersions(ctx, domain.RecordRef{Class: ref.Class, ID: "missing-" + ref.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(versions) != 0 {
			t.Errorf("expected no versions, got %d", len(versions))
		}
	})
}
