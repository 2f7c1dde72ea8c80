package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/loam"
)

// DefaultContentField receives the Markdown body of a version document
// unless the frontmatter already sets it.
const DefaultContentField = "Content"

// Source adapts a Loam repository to ports.VersionSource.
// Versions live at <class>/<id>/v<N>.md.
type Source struct {
	Repo         *loam.TypedRepository[VersionMetadata]
	ContentField string
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[VersionMetadata]) *Source {
	return &Source{
		Repo:         repo,
		ContentField: DefaultContentField,
	}
}

// Open initialises a read-only Loam repository rooted at dir.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across Markdown and JSON documents.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[VersionMetadata](repo)), nil
}

func recordDir(ref domain.RecordRef) string {
	return path.Join(ref.Class, ref.ID)
}

// GetVersion loads <class>/<id>/v<N>.
func (s *Source) GetVersion(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error) {
	id := path.Join(recordDir(ref), "v"+strconv.Itoa(version))

	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrVersionNotFound, id, err)
	}

	v, err := s.toVersion(version, doc.Data, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", id, err)
	}
	return v, nil
}

// ListVersions returns every version document under <class>/<id>/, newest first.
func (s *Source) ListVersions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	prefix := recordDir(ref) + "/"
	seen := make(map[int]string)
	versions := make([]*domain.Version, 0)

	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, ok := parseVersionName(strings.TrimPrefix(id, prefix))
		if !ok {
			continue
		}

		v, err := s.toVersion(n, doc.Data, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", doc.ID, err)
		}

		if existing, dup := seen[v.Version]; dup {
			return nil, fmt.Errorf("collision detected: version %d is defined in both '%s' and '%s'", v.Version, existing, doc.ID)
		}
		seen[v.Version] = doc.ID
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	return versions, nil
}

func (s *Source) toVersion(n int, meta VersionMetadata, content string) (*domain.Version, error) {
	v := &domain.Version{
		Version:      n,
		Published:    meta.Published,
		Author:       meta.Author,
		Publisher:    meta.Publisher,
		AbsoluteLink: meta.AbsoluteLink,
		Fields:       normalizeFields(meta.Fields),
	}
	if meta.Version != 0 {
		v.Version = meta.Version
	}

	t, err := parseTime(meta.LastEdited)
	if err != nil {
		return nil, err
	}
	v.LastEdited = t

	body := strings.TrimSpace(content)
	if s.ContentField != "" && body != "" {
		if _, set := v.Fields[s.ContentField]; !set {
			v.Fields[s.ContentField] = body
		}
	}
	return v, nil
}

func parseTime(raw any) (time.Time, error) {
	switch val := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return val.UTC(), nil
	case string:
		if val == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(time.DateTime, val, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_edited %v", raw)
}

// normalizeFields turns strict-mode numbers back into plain strings so
// they diff the way they were written.
func normalizeFields(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if n, ok := v.(json.Number); ok {
			out[k] = n.String()
			continue
		}
		out[k] = v
	}
	return out
}

// parseVersionName accepts "v12".
func parseVersionName(name string) (int, bool) {
	if !strings.HasPrefix(name, "v") || strings.Contains(name, "/") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	if ext := path.Ext(id); ext != "" {
		return strings.TrimSuffix(id, ext)
	}
	return id
}
