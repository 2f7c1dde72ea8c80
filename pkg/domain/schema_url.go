package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// SchemaURL builds the form-schema URL template for the detail or compare form.
// Placeholders (:id, :class, :version, :from, :to) are filled by ExpandSchemaURL.
func SchemaURL(base string, compare bool) string {
	query := "RecordVersion=:version"
	if compare {
		query = "RecordVersionFrom=:from&RecordVersionTo=:to"
	}
	return strings.TrimRight(base, "/") + "/:id?RecordClass=:class&RecordID=:id&" + query
}

// SchemaParams are the values substituted into a schema URL template.
type SchemaParams struct {
	Record  RecordRef
	Version int
	From    int
	To      int
}

// ExpandSchemaURL substitutes placeholders in a template built by SchemaURL.
func ExpandSchemaURL(tmpl string, p SchemaParams) string {
	r := strings.NewReplacer(
		":class", url.QueryEscape(p.Record.Class),
		":id", url.QueryEscape(p.Record.ID),
		":version", strconv.Itoa(p.Version),
		":from", strconv.Itoa(p.From),
		":to", strconv.Itoa(p.To),
	)
	return r.Replace(tmpl)
}
