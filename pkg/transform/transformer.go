package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/htmldiff"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultProtectedFields lists the fields that may be absent from comparison
// data without failing the transform.
var DefaultProtectedFields = []string{"SecurityID"}

// Transformer renders field trees as diffs against a comparison dataset.
// Configuration methods may be called concurrently with Transform; each
// Transform call works on a snapshot of the dataset.
type Transformer struct {
	mu   sync.RWMutex
	data domain.ComparisonDataset

	protected map[string]bool
	sanitizer *bluemonday.Policy
	escape    bool
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	initial any
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithComparisonData sets the initial comparison data. The source is
// validated by New.
func WithComparisonData(source any) Option {
	return func(t *Transformer) {
		t.initial = source
	}
}

// WithProtectedFields replaces the set of fields rendered as a placeholder
// when the comparison data does not contain them.
func WithProtectedFields(names ...string) Option {
	return func(t *Transformer) {
		t.protected = make(map[string]bool, len(names))
		for _, n := range names {
			t.protected[n] = true
		}
	}
}

// WithSanitizer filters every rendered diff through the given policy.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(t *Transformer) {
		t.sanitizer = p
	}
}

// WithEscape escapes field values so markup is shown as source.
func WithEscape() Option {
	return func(t *Transformer) {
		t.escape = true
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Transformer) {
		t.hooks = hooks
	}
}

// NewSanitizer returns the policy used for diff output: user-generated
// content plus the <ins> and <del> markers.
func NewSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("ins", "del")
	return p
}

// New creates a Transformer. It fails if the initial comparison data has an
// unsupported shape.
func New(opts ...Option) (*Transformer, error) {
	t := &Transformer{data: domain.ComparisonDataset{}}
	WithProtectedFields(DefaultProtectedFields...)(t)
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if t.initial != nil {
		if err := t.SetComparisonData(t.initial, false); err != nil {
			return nil, err
		}
		t.initial = nil
	}
	return t, nil
}

// SetComparisonData replaces the comparison data, or overlays it on the
// current data when merge is true. An unsupported source is rejected and
// leaves the current data untouched.
func (t *Transformer) SetComparisonData(source any, merge bool) error {
	ds, err := domain.NewDataset(source)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if merge {
		t.data = t.data.Merge(ds)
	} else {
		t.data = ds
	}
	return nil
}

// ComparisonData returns a copy of the current comparison data.
func (t *Transformer) ComparisonData() domain.ComparisonDataset {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data.Merge(nil)
}

func (t *Transformer) snapshot() domain.ComparisonDataset {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data
}

// Transform returns a diff view of fields. The input tree is not modified.
// On error no tree is returned.
func (t *Transformer) Transform(ctx context.Context, fields []domain.Field) ([]domain.Field, error) {
	run := t.newRun()
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		nf, err := run.field(f)
		if err != nil {
			t.fail(ctx, run, err)
			return nil, err
		}
		out[i] = nf
	}
	t.emit(ctx, run)
	return out, nil
}

// TransformField transforms a single field, composite or leaf.
func (t *Transformer) TransformField(ctx context.Context, f domain.Field) (domain.Field, error) {
	run := t.newRun()
	nf, err := run.field(f)
	if err != nil {
		t.fail(ctx, run, err)
		return nil, err
	}
	t.emit(ctx, run)
	return nf, nil
}

func (t *Transformer) newRun() *run {
	return &run{t: t, data: t.snapshot()}
}

func (t *Transformer) emit(ctx context.Context, r *run) {
	t.logger.Debug("fields transformed", "diffed", len(r.events))
	if t.hooks.OnFieldDiffed == nil {
		return
	}
	for _, e := range r.events {
		t.hooks.OnFieldDiffed(ctx, e)
	}
}

func (t *Transformer) fail(ctx context.Context, r *run, err error) {
	t.logger.Warn("transform failed", "field", r.current, "error", err)
	if t.hooks.OnTransformFailed != nil {
		t.hooks.OnTransformFailed(ctx, &domain.TransformEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransformFailed},
			Field:     r.current,
			Err:       err,
		})
	}
}

// run holds the state of one Transform call. Events are only delivered once
// the whole tree succeeded.
type run struct {
	t       *Transformer
	data    domain.ComparisonDataset
	events  []*domain.FieldEvent
	current string
}

func (r *run) field(f domain.Field) (domain.Field, error) {
	switch n := f.(type) {
	case *domain.Composite:
		children := make([]domain.Field, len(n.Children))
		for i, child := range n.Children {
			c, err := r.field(child)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return &domain.Composite{Name: n.Name, Title: n.Title, Children: children}, nil
	case *domain.Leaf:
		return r.leaf(n)
	default:
		return nil, fmt.Errorf("unsupported field type %T", f)
	}
}

func (r *run) leaf(l *domain.Leaf) (domain.Field, error) {
	if !l.HasData() {
		return l.Clone(), nil
	}
	r.current = l.Name

	comparison, ok := r.data.Lookup(l.Name)
	if !ok && r.t.protected[l.Name] {
		r.record(l.Name, false, true)
		return &domain.Leaf{Name: l.Name, Kind: domain.KindLiteral, ReadOnly: true}, nil
	}
	if !ok {
		return nil, &domain.MissingComparisonDataError{Field: l.Name}
	}

	markup, custom, err := r.diff(l, comparison)
	if err != nil {
		return nil, fmt.Errorf("diff field %q: %w", l.Name, err)
	}
	if r.t.sanitizer != nil {
		markup = r.t.sanitizer.Sanitize(markup)
	}
	r.record(l.Name, custom, false)

	var classes []string
	if l.ExtraClasses != nil {
		classes = append([]string(nil), l.ExtraClasses...)
	}
	return &domain.Leaf{
		Name:         l.Name,
		Title:        l.Title,
		Kind:         domain.KindHTML,
		Value:        markup,
		ExtraClasses: classes,
		Description:  l.Description,
		ReadOnly:     true,
		Diff:         &domain.DiffState{From: comparison, To: l.Value},
	}, nil
}

func (r *run) diff(l *domain.Leaf, comparison any) (string, bool, error) {
	if l.Differ != nil {
		markup, ok, err := l.Differ.TryDiff(l.Value, comparison)
		if err != nil {
			return "", false, err
		}
		if ok {
			return markup, true, nil
		}
		r.t.logger.Debug("custom differ declined, using generic diff", "field", l.Name)
	}

	var opts []htmldiff.Option
	if r.t.escape {
		opts = append(opts, htmldiff.WithEscape())
	}
	return htmldiff.Compare(htmldiff.Stringify(l.Value), htmldiff.Stringify(comparison), opts...), false, nil
}

func (r *run) record(name string, custom, placed bool) {
	r.events = append(r.events, &domain.FieldEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFieldDiffed},
		Field:     name,
		Custom:    custom,
		Placed:    placed,
	})
}
