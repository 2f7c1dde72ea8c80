package metrics

import (
	"errors"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// Reason classifies a transform error for the failure counter.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingComparisonData):
		return "missing_comparison_data"
	case errors.Is(err, domain.ErrInvalidComparisonData):
		return "invalid_comparison_data"
	default:
		return "differ_error"
	}
}
