package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenedex/scenedex/internal/config"
	"github.com/scenedex/scenedex/internal/engine"
)

const testMainScene = `[gd_scene load_steps=2 format=3]

[ext_resource type="Script" path="res://scripts/player.gd" id="1"]

[node name="Main" type="Node2D"]

[node name="Player" type="CharacterBody2D" parent="."]
script = ExtResource("1")
`

const testPlayerScript = `extends CharacterBody2D

func _physics_process(delta):
	move_and_slide()
`

// newTestServer creates a server over an in-memory engine with the
// deterministic offline embedding provider
func newTestServer(t *testing.T) *Server {
	t.Helper()

	svc, err := engine.New(&config.Config{
		DatabasePath:        ":memory:",
		EmbeddingProvider:   config.ProviderLocal,
		EmbeddingDimensions: 32,
	}, nil)
	require.NoError(t, err, "failed to create test engine")
	t.Cleanup(func() { _ = svc.Close() })

	return NewServer(svc, nil)
}

// callRequest builds a tool call request with the given arguments
func callRequest(tool string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	}
}

// tenantArgsWith merges per-call arguments over the test tenant
func tenantArgsWith(extra map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{
		"user_id":    "u1",
		"project_id": "p1",
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

// decodeResult parses a tool result's JSON text into a map
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

// requireMCPError asserts the handler failed with the given error code
func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

// indexTestFiles seeds the server's engine through the index_files handler
func indexTestFiles(t *testing.T, s *Server) {
	t.Helper()

	result, err := s.handleIndexFiles(context.Background(), callRequest("index_files", tenantArgsWith(map[string]interface{}{
		"files": []interface{}{
			map[string]interface{}{"path": "main.tscn", "content": testMainScene},
			map[string]interface{}{"path": "scripts/player.gd", "content": testPlayerScript},
		},
	})))
	require.NoError(t, err)
	resp := decodeResult(t, result)
	require.Equal(t, float64(2), resp["indexed"])
}

// TestTenantValidation rejects calls without a complete tenant
func TestTenantValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		args  interface{}
		param string
	}{
		{"MissingUserID", map[string]interface{}{"project_id": "p1"}, "user_id"},
		{"MissingProjectID", map[string]interface{}{"user_id": "u1"}, "project_id"},
		{"EmptyUserID", map[string]interface{}{"user_id": "", "project_id": "p1"}, "user_id"},
		{"NonMapArguments", "not a map", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Name = "get_stats"
			req.Params.Arguments = tt.args

			_, err := s.handleGetStats(ctx, req)
			mcpErr := requireMCPError(t, err, ErrorCodeInvalidParams)

			if tt.param != "" {
				data, ok := mcpErr.Data.(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, tt.param, data["param"])
			}
		})
	}
}

// TestHandleIndexFiles indexes caller-provided files
func TestHandleIndexFiles(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	// Re-index without changes: everything skips.
	result, err := s.handleIndexFiles(ctx, callRequest("index_files", tenantArgsWith(map[string]interface{}{
		"files": []interface{}{
			map[string]interface{}{"path": "main.tscn", "content": testMainScene},
			map[string]interface{}{"path": "scripts/player.gd", "content": testPlayerScript},
		},
	})))
	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, float64(0), resp["indexed"])
	assert.Equal(t, float64(2), resp["skipped"])
}

// TestHandleIndexFiles_Validation rejects malformed file payloads
func TestHandleIndexFiles_Validation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		files interface{}
	}{
		{"MissingFiles", nil},
		{"EmptyFiles", []interface{}{}},
		{"EntryNotObject", []interface{}{"main.tscn"}},
		{"EntryWithoutPath", []interface{}{map[string]interface{}{"content": "x"}}},
		{"EntryWithoutContent", []interface{}{map[string]interface{}{"path": "a.gd"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tenantArgsWith(nil)
			if tt.files != nil {
				args["files"] = tt.files
			}

			_, err := s.handleIndexFiles(ctx, callRequest("index_files", args))
			requireMCPError(t, err, ErrorCodeInvalidParams)
		})
	}
}

// TestHandleIndexProject walks a project directory from disk
func TestHandleIndexProject(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.tscn"), []byte(testMainScene), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", "player.script"), []byte(testPlayerScript), 0644))

	result, err := s.handleIndexProject(ctx, callRequest("index_project", tenantArgsWith(map[string]interface{}{
		"root": root,
	})))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Equal(t, root, resp["root"])
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, float64(2), resp["indexed"])
	assert.Equal(t, float64(0), resp["failed"])
	assert.NotNil(t, resp["duration_ms"])
}

// TestHandleIndexProject_RootValidation rejects bad roots before indexing
func TestHandleIndexProject_RootValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	filePath := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))

	tests := []struct {
		name string
		root interface{}
	}{
		{"MissingRoot", nil},
		{"EmptyRoot", ""},
		{"RelativeRoot", "some/relative/path"},
		{"NonexistentRoot", filepath.Join(t.TempDir(), "missing")},
		{"RootIsFile", filePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tenantArgsWith(nil)
			if tt.root != nil {
				args["root"] = tt.root
			}

			_, err := s.handleIndexProject(ctx, callRequest("index_project", args))
			requireMCPError(t, err, ErrorCodeInvalidParams)
		})
	}
}

// TestHandleRemoveFile removes one file from the index
func TestHandleRemoveFile(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleRemoveFile(ctx, callRequest("remove_file", tenantArgsWith(map[string]interface{}{
		"path": "main.tscn",
	})))
	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, true, resp["removed"])
	assert.Equal(t, "main.tscn", resp["path"])

	stats, err := s.handleGetStats(ctx, callRequest("get_stats", tenantArgsWith(nil)))
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeResult(t, stats)["files_indexed"])

	_, err = s.handleRemoveFile(ctx, callRequest("remove_file", tenantArgsWith(nil)))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

// TestHandleSearch runs similarity search through the engine
func TestHandleSearch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleSearch(ctx, callRequest("search", tenantArgsWith(map[string]interface{}{
		"query": "player movement",
	})))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Equal(t, "player movement", resp["query"])
	results, ok := resp["results"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, results)

	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), first["rank"])
	assert.Contains(t, first, "file_path")
	assert.Contains(t, first, "similarity")
	assert.Contains(t, first, "start_line")
}

// TestHandleSearch_WithGraph attaches connections and central files
func TestHandleSearch_WithGraph(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleSearch(ctx, callRequest("search", tenantArgsWith(map[string]interface{}{
		"query":      "player movement",
		"with_graph": true,
	})))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Contains(t, resp, "central_files")
}

// TestHandleSearch_Validation rejects bad search parameters
func TestHandleSearch_Validation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleSearch(ctx, callRequest("search", tenantArgsWith(nil)))
	requireMCPError(t, err, ErrorCodeEmptyQuery)

	_, err = s.handleSearch(ctx, callRequest("search", tenantArgsWith(map[string]interface{}{
		"query": "x",
		"limit": float64(0),
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearch(ctx, callRequest("search", tenantArgsWith(map[string]interface{}{
		"query": "x",
		"limit": float64(500),
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleSearch(ctx, callRequest("search", tenantArgsWith(map[string]interface{}{
		"query":    "x",
		"category": "spreadsheet",
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

// TestHandleGetConnections expands a file's graph neighborhood
func TestHandleGetConnections(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleGetConnections(ctx, callRequest("get_connections", tenantArgsWith(map[string]interface{}{
		"path": "main.tscn",
	})))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Equal(t, "main.tscn", resp["path"])
	assert.Equal(t, float64(2), resp["max_depth"])

	set, ok := resp["connections"].(map[string]interface{})
	require.True(t, ok)
	uses, ok := set["uses_attaches_script"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"scripts/player.gd"}, uses)
}

// TestHandleGetConnections_Errors covers unknown files and bad depths
func TestHandleGetConnections_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	_, err := s.handleGetConnections(ctx, callRequest("get_connections", tenantArgsWith(map[string]interface{}{
		"path": "ghost.tscn",
	})))
	requireMCPError(t, err, ErrorCodeNotIndexed)

	_, err = s.handleGetConnections(ctx, callRequest("get_connections", tenantArgsWith(map[string]interface{}{
		"path":      "main.tscn",
		"max_depth": float64(0),
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleGetConnections(ctx, callRequest("get_connections", tenantArgsWith(map[string]interface{}{
		"path":      "main.tscn",
		"max_depth": float64(6),
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	_, err = s.handleGetConnections(ctx, callRequest("get_connections", tenantArgsWith(nil)))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

// TestHandleGetCentralFiles ranks files by centrality
func TestHandleGetCentralFiles(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleGetCentralFiles(ctx, callRequest("get_central_files", tenantArgsWith(map[string]interface{}{
		"top_k": float64(5),
	})))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	central, ok := resp["central_files"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(len(central)), resp["count"])
	assert.Len(t, central, 2)

	_, err = s.handleGetCentralFiles(ctx, callRequest("get_central_files", tenantArgsWith(map[string]interface{}{
		"top_k": float64(0),
	})))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

// TestHandleGetStats reports index size and backends
func TestHandleGetStats(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleGetStats(ctx, callRequest("get_stats", tenantArgsWith(nil)))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Equal(t, float64(2), resp["files_indexed"])
	assert.NotEmpty(t, resp["storage"])
	assert.Equal(t, "local-embeddings", resp["embedding_model"])
	assert.Greater(t, resp["graph_nodes"], float64(0))
}

// TestHandleClearIndex wipes the tenant
func TestHandleClearIndex(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	indexTestFiles(t, s)

	result, err := s.handleClearIndex(ctx, callRequest("clear_index", tenantArgsWith(nil)))
	require.NoError(t, err)

	resp := decodeResult(t, result)
	assert.Equal(t, true, resp["cleared"])
	assert.Equal(t, "u1", resp["user_id"])
	assert.Equal(t, "p1", resp["project_id"])

	stats, err := s.handleGetStats(ctx, callRequest("get_stats", tenantArgsWith(nil)))
	require.NoError(t, err)
	assert.Equal(t, float64(0), decodeResult(t, stats)["files_indexed"])
}

// TestErrorCodes verifies MCP error codes are defined correctly
func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"ErrorCodeInvalidParams", ErrorCodeInvalidParams},
		{"ErrorCodeInternalError", ErrorCodeInternalError},
		{"ErrorCodeIndexingInProgress", ErrorCodeIndexingInProgress},
		{"ErrorCodeNotIndexed", ErrorCodeNotIndexed},
		{"ErrorCodeEmptyQuery", ErrorCodeEmptyQuery},
	}

	seenCodes := make(map[int]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code > 0 || tt.code < -40000 {
				t.Errorf("%s has invalid code %d (should be negative and > -40000)", tt.name, tt.code)
			}
			if existing, found := seenCodes[tt.code]; found {
				t.Errorf("%s has duplicate code %d (already used by %s)", tt.name, tt.code, existing)
			}
			seenCodes[tt.code] = tt.name
		})
	}
}

// TestMCPError tests the MCPError type
func TestMCPError(t *testing.T) {
	err := &MCPError{
		Code:    ErrorCodeInvalidParams,
		Message: "invalid params",
		Data:    map[string]interface{}{"param": "query"},
	}

	assert.Equal(t, "MCP error -32602: invalid params", err.Error())

	bare := &MCPError{Code: ErrorCodeNotIndexed, Message: "file is not indexed for this tenant"}
	assert.Equal(t, "MCP error -32002: file is not indexed for this tenant", bare.Error())
}

// TestArgumentHelpers tests typed extraction with JSON-decoded values
func TestArgumentHelpers(t *testing.T) {
	args := map[string]interface{}{
		"flag":  true,
		"count": float64(7), // JSON numbers decode as float64
		"name":  "player",
	}

	assert.True(t, getBoolDefault(args, "flag", false))
	assert.False(t, getBoolDefault(args, "missing", false))
	assert.Equal(t, 7, getIntDefault(args, "count", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))
	assert.Equal(t, "player", getStringDefault(args, "name", ""))
	assert.Equal(t, "fallback", getStringDefault(args, "missing", "fallback"))

	// Wrong types fall back to defaults.
	assert.False(t, getBoolDefault(args, "name", false))
	assert.Equal(t, 1, getIntDefault(args, "name", 1))
	assert.Equal(t, "x", getStringDefault(args, "count", "x"))
}
