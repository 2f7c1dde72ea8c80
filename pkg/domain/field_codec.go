package domain

import "fmt"

// FieldSpec is the serialisable description of a field tree node.
// It is used on the wire and in configuration files.
type FieldSpec struct {
	Type         string      `json:"type" yaml:"type"` // "leaf" (default) or "composite"
	Name         string      `json:"name" yaml:"name"`
	Title        string      `json:"title,omitempty" yaml:"title,omitempty"`
	Kind         FieldKind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value        any         `json:"value,omitempty" yaml:"value,omitempty"`
	ExtraClasses []string    `json:"extra_classes,omitempty" yaml:"extra_classes,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	ReadOnly     bool        `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Diff         *DiffState  `json:"diff,omitempty" yaml:"-"`
	Children     []FieldSpec `json:"children,omitempty" yaml:"children,omitempty"`
}

const (
	specLeaf      = "leaf"
	specComposite = "composite"
)

// SpecOf converts a field tree node to its serialisable form.
func SpecOf(f Field) FieldSpec {
	switch n := f.(type) {
	case *Composite:
		return FieldSpec{
			Type:     specComposite,
			Name:     n.Name,
			Title:    n.Title,
			Children: SpecsOf(n.Children),
		}
	case *Leaf:
		return FieldSpec{
			Type:         specLeaf,
			Name:         n.Name,
			Title:        n.Title,
			Kind:         n.Kind,
			Value:        n.Value,
			ExtraClasses: n.ExtraClasses,
			Description:  n.Description,
			ReadOnly:     n.ReadOnly,
			Diff:         n.Diff,
		}
	default:
		return FieldSpec{}
	}
}

// SpecsOf converts a field list.
func SpecsOf(fields []Field) []FieldSpec {
	out := make([]FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = SpecOf(f)
	}
	return out
}

// Field builds the field tree node described by the spec.
func (s FieldSpec) Field() (Field, error) {
	switch s.Type {
	case specComposite:
		children, err := FieldsOf(s.Children)
		if err != nil {
			return nil, fmt.Errorf("composite %q: %w", s.Name, err)
		}
		return &Composite{Name: s.Name, Title: s.Title, Children: children}, nil
	case specLeaf, "":
		if s.Name == "" && s.Kind.HasData() {
			return nil, fmt.Errorf("leaf field missing name")
		}
		kind := s.Kind
		if kind == "" {
			kind = KindText
		}
		return &Leaf{
			Name:         s.Name,
			Title:        s.Title,
			Kind:         kind,
			Value:        s.Value,
			ExtraClasses: s.ExtraClasses,
			Description:  s.Description,
			ReadOnly:     s.ReadOnly,
			Diff:         s.Diff,
		}, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", s.Type)
	}
}

// FieldsOf builds a field list from specs.
func FieldsOf(specs []FieldSpec) ([]Field, error) {
	out := make([]Field, 0, len(specs))
	for _, s := range specs {
		f, err := s.Field()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Populate returns a copy of the layout with each data leaf's value taken from values.
func Populate(layout []FieldSpec, values map[string]any) ([]Field, error) {
	fields, err := FieldsOf(layout)
	if err != nil {
		return nil, err
	}
	Walk(fields, func(l *Leaf) {
		if !l.HasData() {
			return
		}
		if v, ok := values[l.Name]; ok {
			l.Value = v
		}
	})
	return fields, nil
}
