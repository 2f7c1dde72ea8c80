package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = domain.RecordRef{Class: "Page", ID: "7"}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	src, err := memory.NewFromVersions(page,
		&domain.Version{Version: 1, Author: &domain.Member{FirstName: "Ada"}, Fields: map[string]any{"Title": "One"}},
		&domain.Version{Version: 2, Fields: map[string]any{"Title": "1st"}},
	)
	require.NoError(t, err)
	viewer, err := historyviewer.New("", historyviewer.WithVersionSource(src))
	require.NoError(t, err)
	return NewServer(viewer, logging.NewNop())
}

func TestServer_RegistersTools(t *testing.T) {
	s := newTestServer(t)
	tools := s.MCPServer().ListTools()
	for _, name := range []string{"compare_fields", "compare_versions", "list_versions", "dispatch_selection", "get_selection"} {
		assert.Contains(t, tools, name)
	}
}

func TestHandleCompareFields(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleCompareFields(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"fields":     `[{"name":"Title","value":"1st"},{"name":"Note","kind":"literal","value":"info"}]`,
		"comparison": `{"Title":"One"}`,
	})
	require.NoError(t, err)
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "<ins>1st</ins> <del>One</del>", resp.Fields[0].Value)
	assert.Equal(t, domain.KindHTML, resp.Fields[0].Kind)
	assert.Equal(t, "info", resp.Fields[1].Value)

	_, err = s.handleCompareFields(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"fields":     `[{"name":"Title","value":"1st"}]`,
		"comparison": `{}`,
	})
	assert.ErrorIs(t, err, domain.ErrMissingComparisonData)

	_, err = s.handleCompareFields(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"fields":     `[{"name":"Title","value":"1st"}]`,
		"comparison": `"One"`,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidComparisonData)

	_, err = s.handleCompareFields(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"fields":     `not json`,
		"comparison": `{}`,
	})
	assert.Error(t, err)
}

func TestHandleCompareVersions(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleCompareVersions(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"class": "Page", "id": "7", "from": float64(1), "to": float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.From)
	assert.Equal(t, 2, resp.To)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "<ins>1st</ins> <del>One</del>", resp.Fields[0].Value)

	_, err = s.handleCompareVersions(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"class": "Page", "id": "7", "from": float64(1), "to": float64(5),
	})
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestHandleListVersions(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleListVersions(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"class": "Page", "id": "7",
	})
	require.NoError(t, err)
	require.Len(t, resp.Versions, 2)
	assert.Equal(t, 2, resp.Versions[0].Version)
	assert.Nil(t, resp.Versions[0].Fields)
}

func TestHandleDispatchAndGetSelection(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "agent",
		"class":      "Page",
		"id":         "7",
		"actions":    `[{"type":"enter_compare","version":{"version":1}},{"type":"select_version","version":{"version":2}}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseComparing, resp.Phase)
	assert.Equal(t, "Ada", resp.Selection.VersionFrom.AuthorName())

	got, err := s.handleGetSelection(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "agent"})
	require.NoError(t, err)
	assert.Equal(t, resp.Selection, got.Selection)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "agent",
		"actions":    `[{"type":"clear_slot","slot":"middle"}]`,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "agent",
		"class":      "Page",
		"id":         "7",
		"actions":    `[{"type":"select_version","version":{"version":9}}]`,
	})
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{"a": float64(3), "b": 4, "c": "x"}
	assert.Equal(t, 3, intArg(args, "a"))
	assert.Equal(t, 4, intArg(args, "b"))
	assert.Equal(t, 0, intArg(args, "c"))
	assert.Equal(t, 0, intArg(args, "missing"))
}
