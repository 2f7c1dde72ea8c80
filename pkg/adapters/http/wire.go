package http

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// SelectionResponse is the wire form of a compare selection.
type SelectionResponse struct {
	SessionID string       `json:"session_id"`
	Phase     domain.Phase `json:"phase"`
	domain.CompareSelection
}

// DispatchRequest is the body of POST /sessions/{id}/selection/actions.
// When Record is set, versions are referenced by number and resolved
// against the record's history.
type DispatchRequest struct {
	Record  *domain.RecordRef       `json:"record,omitempty"`
	Actions []domain.ActionEnvelope `json:"actions"`
}

// DiffRequest is the body of POST /diff.
type DiffRequest struct {
	Fields     []domain.FieldSpec `json:"fields"`
	Comparison any                `json:"comparison"`
}

// FieldsResponse carries a diffed field tree.
type FieldsResponse struct {
	Fields []domain.FieldSpec `json:"fields"`
}

// VersionRow is one entry of the version list.
type VersionRow struct {
	*domain.Version
	AuthorName  string `json:"author_name,omitempty"`
	PreviewLink string `json:"preview_link,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// FormResponse is the wire form of a version detail or a comparison.
type FormResponse struct {
	Record    domain.RecordRef   `json:"record"`
	Version   *domain.Version    `json:"version,omitempty"`
	From      *domain.Version    `json:"from,omitempty"`
	To        *domain.Version    `json:"to,omitempty"`
	SchemaURL string             `json:"schema_url,omitempty"`
	Fields    []domain.FieldSpec `json:"fields"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func mapSelection(sessionID string, sel domain.CompareSelection) SelectionResponse {
	return SelectionResponse{SessionID: sessionID, Phase: sel.Phase(), CompareSelection: sel}
}

func mapRows(versions []*domain.Version, sel domain.CompareSelection) []VersionRow {
	rows := make([]VersionRow, len(versions))
	for i, v := range versions {
		rows[i] = VersionRow{
			Version:     v.Descriptor(),
			AuthorName:  v.AuthorName(),
			PreviewLink: v.PreviewLink(),
			IsActive:    sel.IsActiveVersion(v),
		}
	}
	return rows
}

func mapDetail(f *domain.VersionForm) FormResponse {
	return FormResponse{
		Record:    f.Record,
		Version:   f.Version.Descriptor(),
		SchemaURL: f.SchemaURL,
		Fields:    domain.SpecsOf(f.Fields),
	}
}

func mapComparison(c *domain.Comparison) FormResponse {
	return FormResponse{
		Record:    c.Record,
		From:      c.From.Descriptor(),
		To:        c.To.Descriptor(),
		SchemaURL: c.SchemaURL,
		Fields:    domain.SpecsOf(c.Fields),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
