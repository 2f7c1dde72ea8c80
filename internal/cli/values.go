package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/historyviewer/internal/presentation/tui"
	"github.com/aretw0/historyviewer/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ReadValues loads a field-value map from a YAML or JSON file (by extension).
func ReadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &values)
	} else {
		err = yaml.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return values, nil
}

// SortedNames returns the keys of values in lexical order.
func SortedNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderDiff writes one "Title: diff" line per data field. Composite
// titles are printed as section headers.
func RenderDiff(w io.Writer, fields []domain.Field, color bool) {
	renderFields(w, fields, color, "")
}

func renderFields(w io.Writer, fields []domain.Field, color bool, indent string) {
	for _, f := range fields {
		switch n := f.(type) {
		case *domain.Composite:
			if n.Title != "" {
				fmt.Fprintf(w, "%s%s\n", indent, n.Title)
			}
			renderFields(w, n.Children, color, indent+"  ")
		case *domain.Leaf:
			if !n.HasData() {
				continue
			}
			title := n.Title
			if title == "" {
				title = n.Name
			}
			value, _ := n.Value.(string)
			fmt.Fprintf(w, "%s%s: %s\n", indent, title, tui.Colorize(value, color))
		}
	}
}

// VersionsTable renders versions as a Markdown table, newest first.
func VersionsTable(ref domain.RecordRef, versions []*domain.Version) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", ref)
	if len(versions) == 0 {
		b.WriteString("_No versions found._\n")
		return b.String()
	}

	b.WriteString("| # | Record | Author | Published |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, v := range versions {
		edited := ""
		if !v.LastEdited.IsZero() {
			edited = v.LastEdited.Format("2006-01-02 15:04")
		}
		published := "no"
		if v.Published {
			published = "yes"
		}
		author := v.AuthorName()
		if author == "" {
			author = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", v.Version, edited, escapeCell(author), published)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
