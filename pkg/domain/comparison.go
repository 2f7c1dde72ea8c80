package domain

// VersionForm is the read-only form of a single version.
type VersionForm struct {
	Record    RecordRef
	Version   *Version
	Fields    []Field
	SchemaURL string
}

// Comparison is the diff view of two versions of a record.
// Fields carry the "to" version's values diffed against the "from" version.
type Comparison struct {
	Record    RecordRef
	From      *Version
	To        *Version
	Fields    []Field
	SchemaURL string
}

// Descriptor returns a copy of v without its field values, as kept in a
// compare selection.
func (v *Version) Descriptor() *Version {
	if v == nil {
		return nil
	}
	c := v.Clone()
	c.Fields = nil
	return c
}
