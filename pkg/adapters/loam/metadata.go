package loam

import "github.com/aretw0/historyviewer/pkg/domain"

// VersionMetadata is the frontmatter of a version document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type VersionMetadata struct {
	// Version overrides the number taken from the file name (v<N>.md).
	Version      int            `json:"version" mapstructure:"version"`
	Published    bool           `json:"published" mapstructure:"published"`
	Author       *domain.Member `json:"author" mapstructure:"author"`
	Publisher    *domain.Member `json:"publisher" mapstructure:"publisher"`
	AbsoluteLink string         `json:"absolute_link" mapstructure:"absolute_link"`

	// LastEdited is a YAML timestamp, RFC 3339 or "2006-01-02 15:04:05" (UTC).
	LastEdited any `json:"last_edited" mapstructure:"last_edited"`

	Fields map[string]any `json:"fields" mapstructure:"fields"`
}
