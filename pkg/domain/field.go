package domain

// FieldKind tells renderers how to display a leaf and whether it carries data.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindHTML     FieldKind = "html"
	KindCheckbox FieldKind = "checkbox"
	KindDropdown FieldKind = "dropdown"
	KindHidden   FieldKind = "hidden"

	// Display-only kinds never carry a value.
	KindLiteral FieldKind = "literal"
	KindHeader  FieldKind = "header"
	KindAction  FieldKind = "action"
)

// HasData reports whether fields of this kind hold a submitted value.
func (k FieldKind) HasData() bool {
	switch k {
	case KindLiteral, KindHeader, KindAction:
		return false
	default:
		return true
	}
}

// Field is a node of a form's field tree: either a *Leaf or a *Composite.
type Field interface {
	FieldName() string
	isField()
}

// Leaf is a field with a single value.
type Leaf struct {
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Kind         FieldKind `json:"kind"`
	Value        any       `json:"value,omitempty"`
	ExtraClasses []string  `json:"extra_classes,omitempty"`
	Description  string    `json:"description,omitempty"`
	ReadOnly     bool      `json:"read_only,omitempty"`

	// Diff keeps the raw values a diff leaf was built from.
	Diff *DiffState `json:"diff,omitempty"`

	// Differ optionally renders this field's diff itself.
	Differ CustomDiffer `json:"-"`
}

// DiffState holds the two raw values behind a rendered diff.
type DiffState struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Composite groups child fields and has no value of its own.
type Composite struct {
	Name     string  `json:"name"`
	Title    string  `json:"title,omitempty"`
	Children []Field `json:"children"`
}

func (l *Leaf) FieldName() string      { return l.Name }
func (c *Composite) FieldName() string { return c.Name }
func (*Leaf) isField()                 {}
func (*Composite) isField()            {}

// HasData reports whether the leaf holds a value that can be compared.
func (l *Leaf) HasData() bool {
	return l.Kind.HasData()
}

// Clone returns a copy of the leaf that shares no slices with the original.
func (l *Leaf) Clone() *Leaf {
	c := *l
	if l.ExtraClasses != nil {
		c.ExtraClasses = append([]string(nil), l.ExtraClasses...)
	}
	if l.Diff != nil {
		d := *l.Diff
		c.Diff = &d
	}
	return &c
}

// Clone returns a deep copy of the composite and all of its descendants.
func (c *Composite) Clone() *Composite {
	out := &Composite{Name: c.Name, Title: c.Title}
	out.Children = CloneFields(c.Children)
	return out
}

// CustomDiffer is implemented by fields that know how to render their own diff.
// ok=false means the field declines and the generic diff is used instead.
type CustomDiffer interface {
	TryDiff(current, comparison any) (markup string, ok bool, err error)
}

// DifferFunc adapts a function to CustomDiffer.
type DifferFunc func(current, comparison any) (string, bool, error)

// TryDiff calls f.
func (f DifferFunc) TryDiff(current, comparison any) (string, bool, error) {
	return f(current, comparison)
}

// CloneField deep-copies a single field.
func CloneField(f Field) Field {
	switch n := f.(type) {
	case *Leaf:
		return n.Clone()
	case *Composite:
		return n.Clone()
	default:
		return nil
	}
}

// CloneFields deep-copies a field list.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = CloneField(f)
	}
	return out
}

// DataLeaves flattens the tree into its data-bearing leaves, in order.
func DataLeaves(fields []Field) []*Leaf {
	var out []*Leaf
	Walk(fields, func(l *Leaf) {
		if l.HasData() {
			out = append(out, l)
		}
	})
	return out
}

// Walk visits every leaf depth-first in document order.
func Walk(fields []Field, fn func(*Leaf)) {
	for _, f := range fields {
		switch n := f.(type) {
		case *Leaf:
			fn(n)
		case *Composite:
			Walk(n.Children, fn)
		}
	}
}

// FieldsFromValues builds a flat form of text leaves, one per key, in the given order.
func FieldsFromValues(values map[string]any, order []string) []Field {
	out := make([]Field, 0, len(order))
	for _, name := range order {
		out = append(out, &Leaf{Name: name, Title: name, Kind: KindText, Value: values[name]})
	}
	return out
}
