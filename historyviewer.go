package historyviewer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/aretw0/historyviewer/pkg/adapters/loam"
	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
	"github.com/aretw0/historyviewer/pkg/session"
	"github.com/aretw0/historyviewer/pkg/transform"
	"github.com/microcosm-cc/bluemonday"
)

// Viewer is the high-level entry point for the history viewer library.
// It ties the compare-selection sessions to a version source and the diff
// transformation engine.
type Viewer struct {
	sessions *session.Manager
	versions ports.VersionSource
	store    ports.SelectionStore
	locker   ports.DistributedLocker

	protected   []string
	sanitizer   *bluemonday.Policy
	escape      bool
	forms       map[string][]domain.FieldSpec
	detailBase  string
	compareBase string

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Viewer.
type Option func(*Viewer)

// WithStore sets where compare selections are kept (default: in memory).
func WithStore(s ports.SelectionStore) Option {
	return func(v *Viewer) {
		v.store = s
	}
}

// WithVersionSource injects a custom VersionSource, bypassing the default Loam initialization.
func WithVersionSource(src ports.VersionSource) Option {
	return func(v *Viewer) {
		v.versions = src
	}
}

// WithLocker serialises dispatches across processes sharing a store.
func WithLocker(l ports.DistributedLocker) Option {
	return func(v *Viewer) {
		v.locker = l
	}
}

// WithLogger sets a custom structured logger for the viewer.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(v *Viewer) {
		v.hooks = v.hooks.Merge(hooks)
	}
}

// WithProtectedFields overrides the fields replaced by a placeholder when
// the comparison data lacks them.
func WithProtectedFields(names ...string) Option {
	return func(v *Viewer) {
		v.protected = names
	}
}

// WithSanitizer filters generated diff markup through p.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(v *Viewer) {
		v.sanitizer = p
	}
}

// WithEscape escapes field values before they are diffed.
func WithEscape() Option {
	return func(v *Viewer) {
		v.escape = true
	}
}

// WithForms sets the form layout used for each record class.
func WithForms(forms map[string][]domain.FieldSpec) Option {
	return func(v *Viewer) {
		v.forms = forms
	}
}

// WithSchemaBases sets the base URLs of the detail and compare form schemas.
func WithSchemaBases(detail, compare string) Option {
	return func(v *Viewer) {
		v.detailBase = detail
		v.compareBase = compare
	}
}

// New initializes a Viewer.
// By default, versions are read from a Loam repository at versionsDir.
// If WithVersionSource is provided, versionsDir can be empty and Loam is skipped.
// With neither, an empty in-memory source is used.
func New(versionsDir string, opts ...Option) (*Viewer, error) {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}

	if v.versions == nil {
		if versionsDir == "" {
			v.versions = memory.NewVersions()
		} else {
			src, err := loam.Open(versionsDir)
			if err != nil {
				return nil, err
			}
			v.versions = src
		}
	}
	if versionsDir != "" {
		if abs, err := filepath.Abs(versionsDir); err == nil {
			v.Name = filepath.Base(abs)
		}
	}

	if v.logger == nil {
		v.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if v.Name != "" {
		v.logger = v.logger.With("repo", v.Name)
	}
	if v.store == nil {
		v.store = memory.NewStore()
	}

	sessOpts := []session.Option{
		session.WithLogger(v.logger),
		session.WithHooks(v.hooks),
	}
	if v.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(v.locker))
	}
	v.sessions = session.NewManager(v.store, sessOpts...)

	// Fail early on bad transformer options.
	if _, err := v.transformer(); err != nil {
		return nil, err
	}
	return v, nil
}

// Sessions returns the underlying session manager.
func (v *Viewer) Sessions() *session.Manager {
	return v.sessions
}

// VersionSource returns the source versions are read from.
func (v *Viewer) VersionSource() ports.VersionSource {
	return v.versions
}

// Dispatch applies selection actions to a session and returns the new snapshot.
func (v *Viewer) Dispatch(ctx context.Context, sessionID string, actions ...domain.Action) (domain.CompareSelection, error) {
	return v.sessions.Dispatch(ctx, sessionID, actions...)
}

// Selection returns the session's current snapshot (idle when unknown).
func (v *Viewer) Selection(ctx context.Context, sessionID string) (domain.CompareSelection, error) {
	return v.sessions.Selection(ctx, sessionID)
}

// Subscribe streams selection changes of a session until cancel is called.
func (v *Viewer) Subscribe(sessionID string) (<-chan session.Update, func()) {
	return v.sessions.Subscribe(sessionID)
}

// Reset forgets the session's selection.
func (v *Viewer) Reset(ctx context.Context, sessionID string) error {
	return v.sessions.Delete(ctx, sessionID)
}

// Versions lists a record's versions, newest first.
func (v *Viewer) Versions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error) {
	return v.versions.ListVersions(ctx, ref)
}

// Version returns the descriptor of one version, without its field values.
func (v *Viewer) Version(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error) {
	ver, err := v.versions.GetVersion(ctx, ref, version)
	if err != nil {
		return nil, err
	}
	return ver.Descriptor(), nil
}

// Detail returns the read-only form of a single version.
func (v *Viewer) Detail(ctx context.Context, ref domain.RecordRef, version int) (*domain.VersionForm, error) {
	ver, err := v.versions.GetVersion(ctx, ref, version)
	if err != nil {
		return nil, err
	}
	fields, err := v.form(ref.Class, ver.Fields)
	if err != nil {
		return nil, err
	}
	domain.Walk(fields, func(l *domain.Leaf) {
		l.ReadOnly = true
	})

	form := &domain.VersionForm{Record: ref, Version: ver, Fields: fields}
	if v.detailBase != "" {
		form.SchemaURL = domain.ExpandSchemaURL(domain.SchemaURL(v.detailBase, false), domain.SchemaParams{
			Record:  ref,
			Version: version,
		})
	}
	return form, nil
}

// Compare diffs two versions of a record. The form is built from the "to"
// version and each field is compared with the "from" version's value.
func (v *Viewer) Compare(ctx context.Context, ref domain.RecordRef, from, to int) (*domain.Comparison, error) {
	fromVer, err := v.versions.GetVersion(ctx, ref, from)
	if err != nil {
		return nil, fmt.Errorf("version from: %w", err)
	}
	toVer, err := v.versions.GetVersion(ctx, ref, to)
	if err != nil {
		return nil, fmt.Errorf("version to: %w", err)
	}

	fields, err := v.form(ref.Class, toVer.Fields)
	if err != nil {
		return nil, err
	}
	diffed, err := v.Transform(ctx, fields, fromVer.Fields)
	if err != nil {
		return nil, err
	}

	cmp := &domain.Comparison{Record: ref, From: fromVer, To: toVer, Fields: diffed}
	if v.compareBase != "" {
		cmp.SchemaURL = domain.ExpandSchemaURL(domain.SchemaURL(v.compareBase, true), domain.SchemaParams{
			Record: ref,
			From:   from,
			To:     to,
		})
	}
	v.logger.Debug("versions compared", "record", ref.String(), "from", from, "to", to)
	return cmp, nil
}

// Transform diffs a caller-built form against comparison data.
func (v *Viewer) Transform(ctx context.Context, fields []domain.Field, source any) ([]domain.Field, error) {
	ds, err := domain.NewDataset(source)
	if err != nil {
		return nil, err
	}
	t, err := v.transformer(transform.WithComparisonData(ds))
	if err != nil {
		return nil, err
	}
	return t.Transform(ctx, fields)
}

func (v *Viewer) transformer(extra ...transform.Option) (*transform.Transformer, error) {
	opts := []transform.Option{
		transform.WithLogger(v.logger),
		transform.WithHooks(v.hooks),
	}
	if v.protected != nil {
		opts = append(opts, transform.WithProtectedFields(v.protected...))
	}
	if v.sanitizer != nil {
		opts = append(opts, transform.WithSanitizer(v.sanitizer))
	}
	if v.escape {
		opts = append(opts, transform.WithEscape())
	}
	return transform.New(append(opts, extra...)...)
}

// form builds the class layout filled with values. Classes without a layout
// get one text field per value, sorted by name.
func (v *Viewer) form(class string, values map[string]any) ([]domain.Field, error) {
	if layout, ok := v.forms[class]; ok {
		fields, err := domain.Populate(layout, values)
		if err != nil {
			return nil, fmt.Errorf("form layout for %q: %w", class, err)
		}
		return fields, nil
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return domain.FieldsFromValues(values, names), nil
}
