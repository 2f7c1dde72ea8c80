package domain

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ComparisonDataset maps field names to the other version's values.
type ComparisonDataset map[string]any

// Mapper is implemented by record-like values that can export their fields.
type Mapper interface {
	ToMap() map[string]any
}

// NewDataset builds a dataset from a map, a Mapper, a *Version or a struct.
// Any other shape is rejected with ErrInvalidComparisonData.
func NewDataset(source any) (ComparisonDataset, error) {
	switch src := source.(type) {
	case nil:
		return nil, fmt.Errorf("%w: got nil", ErrInvalidComparisonData)
	case ComparisonDataset:
		return src.Merge(nil), nil
	case map[string]any:
		return ComparisonDataset(src).Merge(nil), nil
	case map[string]string:
		out := make(ComparisonDataset, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out, nil
	case *Version:
		if src == nil {
			return nil, fmt.Errorf("%w: got nil version", ErrInvalidComparisonData)
		}
		return ComparisonDataset(src.Fields).Merge(nil), nil
	case Mapper:
		return ComparisonDataset(src.ToMap()).Merge(nil), nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: got nil %T", ErrInvalidComparisonData, source)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidComparisonData, source)
	}

	out := make(map[string]any)
	if err := mapstructure.Decode(rv.Interface(), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComparisonData, err)
	}
	return ComparisonDataset(out), nil
}

// Lookup returns the comparison value for a field.
func (d ComparisonDataset) Lookup(name string) (any, bool) {
	v, ok := d[name]
	return v, ok
}

// Merge returns a new dataset holding d overlaid with other.
func (d ComparisonDataset) Merge(other ComparisonDataset) ComparisonDataset {
	out := make(ComparisonDataset, len(d)+len(other))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
