package domain

import (
	"strings"
	"time"
)

// Member identifies the person who authored or published a version.
type Member struct {
	FirstName string `json:"first_name" yaml:"first_name" mapstructure:"first_name"`
	Surname   string `json:"surname" yaml:"surname" mapstructure:"surname"`
}

// FullName returns "FirstName Surname" with surrounding blanks removed.
func (m *Member) FullName() string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.FirstName + " " + m.Surname)
}

// Version is an immutable snapshot of a record at a point in its history.
// It is supplied by the versioning layer and never modified here.
type Version struct {
	// Version is the record-scoped, monotonic version number.
	Version int `json:"version" yaml:"version" mapstructure:"version"`

	Published bool    `json:"published" yaml:"published" mapstructure:"published"`
	Author    *Member `json:"author,omitempty" yaml:"author,omitempty" mapstructure:"author"`
	Publisher *Member `json:"publisher,omitempty" yaml:"publisher,omitempty" mapstructure:"publisher"`

	AbsoluteLink string    `json:"absolute_link,omitempty" yaml:"absolute_link,omitempty" mapstructure:"absolute_link"`
	LastEdited   time.Time `json:"last_edited" yaml:"last_edited" mapstructure:"last_edited"`

	// Fields holds the record's field values keyed by field name.
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
}

// AuthorName returns the publisher's name for published versions and the
// author's name otherwise.
func (v *Version) AuthorName() string {
	if v == nil {
		return ""
	}
	if v.Published && v.Publisher != nil {
		return v.Publisher.FullName()
	}
	return v.Author.FullName()
}

// PreviewLink returns the archived preview URL for the version.
func (v *Version) PreviewLink() string {
	if v == nil || v.AbsoluteLink == "" {
		return ""
	}
	return v.AbsoluteLink + "&archiveDate=" + v.LastEdited.UTC().Format(time.DateTime)
}

// Same reports whether both descriptors refer to the same version number.
func (v *Version) Same(other *Version) bool {
	if v == nil || other == nil {
		return false
	}
	return v.Version == other.Version
}

// Clone returns a deep copy of the version descriptor.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	c := *v
	if v.Author != nil {
		a := *v.Author
		c.Author = &a
	}
	if v.Publisher != nil {
		p := *v.Publisher
		c.Publisher = &p
	}
	if v.Fields != nil {
		c.Fields = make(map[string]any, len(v.Fields))
		for k, val := range v.Fields {
			c.Fields[k] = val
		}
	}
	return &c
}

// RecordRef identifies the record whose history is being viewed.
type RecordRef struct {
	Class string `json:"class" yaml:"class"`
	ID    string `json:"id" yaml:"id"`
}

// String renders the reference as "class/id".
func (r RecordRef) String() string {
	return r.Class + "/" + r.ID
}
