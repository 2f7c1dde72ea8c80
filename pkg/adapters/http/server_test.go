package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = domain.RecordRef{Class: "Page", ID: "7"}

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	src, err := memory.NewFromVersions(page,
		&domain.Version{
			Version:      1,
			Author:       &domain.Member{FirstName: "Ada", Surname: "Lovelace"},
			AbsoluteLink: "/about?stage=Stage",
			LastEdited:   time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
			Fields:       map[string]any{"Title": "One", "Content": "<p>Hello world</p>"},
		},
		&domain.Version{
			Version: 2,
			Author:  &domain.Member{FirstName: "Ada", Surname: "Lovelace"},
			Fields:  map[string]any{"Title": "1st", "Content": "<p>Hello <em>brave</em> world</p>"},
		},
		&domain.Version{
			Version: 3,
			Fields:  map[string]any{"Title": "Third", "Summary": "added later"},
		},
	)
	require.NoError(t, err)

	viewer, err := historyviewer.New("", historyviewer.WithVersionSource(src))
	require.NoError(t, err)
	return NewHandler(viewer, append([]Option{WithLogger(logging.NewNop())}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, &buf))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "historyviewer-http", info["app"])
	assert.Equal(t, historyviewer.Version, info["version"])
	assert.Equal(t, "1.2.0", info["api_version"])
}

func TestOpenAPI(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/records/{class}/{id}/compare"))

	w := do(t, newTestHandler(t), "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "History Viewer API")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestHandler(t), "OPTIONS", "/diff", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandler(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/metrics", nil).Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	w := do(t, newTestHandler(t, WithMetricsHandler(metrics)), "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestSelectionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/sessions/s1/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PhaseIdle, decode[SelectionResponse](t, w).Phase)

	w = do(t, h, "POST", "/sessions/s1/selection/actions", DispatchRequest{
		Record: &page,
		Actions: []domain.ActionEnvelope{
			{Type: domain.ActionEnterCompare, Version: &domain.Version{Version: 1}},
			{Type: domain.ActionSelectVersion, Version: &domain.Version{Version: 2}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sel := decode[SelectionResponse](t, w)
	assert.Equal(t, "s1", sel.SessionID)
	assert.Equal(t, domain.PhaseComparing, sel.Phase)
	// Versions were resolved against the record's history.
	assert.Equal(t, "Ada Lovelace", sel.VersionFrom.AuthorName())
	assert.Nil(t, sel.VersionFrom.Fields)
	assert.Equal(t, 2, sel.VersionTo.Version)

	w = do(t, h, "GET", "/records/Page/7/versions?session_id=s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]VersionRow](t, w)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{rows[0].Version.Version, rows[1].Version.Version, rows[2].Version.Version})
	assert.Equal(t, []bool{false, true, true}, []bool{rows[0].IsActive, rows[1].IsActive, rows[2].IsActive})
	assert.Equal(t, "/about?stage=Stage&archiveDate=2024-05-01 09:30:00", rows[2].PreviewLink)

	w = do(t, h, "DELETE", "/sessions/s1/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", "/sessions/s1/selection", nil)
	assert.Equal(t, domain.PhaseIdle, decode[SelectionResponse](t, w).Phase)
}

func TestDispatchErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"no actions", DispatchRequest{}, http.StatusBadRequest},
		{"unknown action", DispatchRequest{Actions: []domain.ActionEnvelope{{Type: "jump"}}}, http.StatusBadRequest},
		{"bad slot", DispatchRequest{Actions: []domain.ActionEnvelope{{Type: domain.ActionClearSlot, Slot: "middle"}}}, http.StatusBadRequest},
		{"unknown version", DispatchRequest{
			Record:  &page,
			Actions: []domain.ActionEnvelope{{Type: domain.ActionEnterCompare, Version: &domain.Version{Version: 42}}},
		}, http.StatusNotFound},
		{"malformed body", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/sessions/s2/selection/actions", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/records/Page/7/compare?from=1&to=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[FormResponse](t, w)
	assert.Equal(t, 1, resp.From.Version)
	assert.Equal(t, 2, resp.To.Version)
	require.Len(t, resp.Fields, 2)

	content := resp.Fields[0]
	assert.Equal(t, "Content", content.Name)
	assert.Equal(t, domain.KindHTML, content.Kind)
	assert.True(t, content.ReadOnly)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.Value.(string)))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("ins").Length())
	assert.Equal(t, "brave", strings.TrimSpace(doc.Find("ins em").Text()))
	assert.Equal(t, 0, doc.Find("del").Length())

	title := resp.Fields[1]
	assert.Equal(t, "<ins>1st</ins> <del>One</del>", title.Value)
	require.NotNil(t, title.Diff)
	assert.Equal(t, "One", title.Diff.From)
	assert.Equal(t, "1st", title.Diff.To)
}

func TestCompareVersions_Errors(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/records/Page/7/compare?from=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/records/Page/7/compare?from=1&to=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/records/Page/7/compare?from=1&to=9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Version 3 has a Summary field that version 1 never had.
	w = do(t, h, "GET", "/records/Page/7/compare?from=1&to=3", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Body.String(), `"fields"`)
	assert.Equal(t, "Summary", decode[ErrorResponse](t, w).Field)
}

func TestGetVersion(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/records/Page/7/versions/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[FormResponse](t, w)
	assert.Equal(t, 1, resp.Version.Version)
	assert.Equal(t, page, resp.Record)
	for _, f := range resp.Fields {
		assert.True(t, f.ReadOnly)
	}

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/records/Page/7/versions/8", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/records/Page/7/versions/latest", nil).Code)
}

func TestDiffFields(t *testing.T) {
	h := newTestHandler(t)

	fields := []domain.FieldSpec{
		{Name: "SecurityID", Kind: domain.KindHidden, Value: "token"},
		{Type: "composite", Name: "Root", Children: []domain.FieldSpec{
			{Name: "Title", Value: "1st"},
		}},
	}

	w := do(t, h, "POST", "/diff", DiffRequest{Fields: fields, Comparison: map[string]any{"Title": "One"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[FieldsResponse](t, w)
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, domain.KindLiteral, resp.Fields[0].Kind)
	assert.Equal(t, "<ins>1st</ins> <del>One</del>", resp.Fields[1].Children[0].Value)

	t.Run("missing comparison value", func(t *testing.T) {
		w := do(t, h, "POST", "/diff", DiffRequest{Fields: fields, Comparison: map[string]any{}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.NotContains(t, w.Body.String(), `"fields"`)
		assert.Equal(t, "Title", decode[ErrorResponse](t, w).Field)
	})

	t.Run("comparison is not a record", func(t *testing.T) {
		w := do(t, h, "POST", "/diff", DiffRequest{Fields: fields, Comparison: "One"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field type", func(t *testing.T) {
		w := do(t, h, "POST", "/diff", DiffRequest{
			Fields:     []domain.FieldSpec{{Type: "table", Name: "X"}},
			Comparison: map[string]any{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	w := do(t, newTestHandler(t), "GET", "/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?session_id=sess-1&watch=from,to", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if line := lines.Text(); line != "" {
				return line
			}
		}
		return ""
	}
	require.Equal(t, "event: ping", next())
	require.Equal(t, "data: connected", next())

	dispatch := func(env domain.ActionEnvelope) {
		w := do(t, h, "POST", "/sessions/sess-1/selection/actions", DispatchRequest{Actions: []domain.ActionEnvelope{env}})
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Viewing a version touches neither slot and is filtered out.
	dispatch(domain.ActionEnvelope{Type: domain.ActionShowVersion, Version: &domain.Version{Version: 2}})
	dispatch(domain.ActionEnvelope{Type: domain.ActionEnterCompare, Version: &domain.Version{Version: 1}})

	line := next()
	require.True(t, strings.HasPrefix(line, "data: "), line)
	var delta domain.SelectionDelta
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &delta))
	assert.Equal(t, "sess-1", delta.SessionID)
	require.NotNil(t, delta.VersionFrom)
	assert.Equal(t, 1, *delta.VersionFrom)
	assert.Nil(t, delta.Current)
}

func TestWatches(t *testing.T) {
	n := 3
	d := &domain.SelectionDelta{VersionTo: &n}

	assert.True(t, watches(nil, d))
	assert.True(t, watches([]string{"from", " to"}, d))
	assert.False(t, watches([]string{"phase", "current"}, d))
}
