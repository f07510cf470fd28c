package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scenedex/scenedex/internal/indexer"
	"github.com/scenedex/scenedex/internal/searcher"
	"github.com/scenedex/scenedex/internal/storage"
	"github.com/scenedex/scenedex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32001 // Another project run is active for this tenant
	ErrorCodeNotIndexed         = -32002 // Requested file has no rows for this tenant
	ErrorCodeEmptyQuery         = -32003 // Query parameter is empty
)

// maxReportedErrors bounds how many per-file error strings a stats
// response carries back to the client.
const maxReportedErrors = 5

// handleIndexProject handles the index_project tool invocation
func (s *Server) handleIndexProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	root, ok := args["root"].(string)
	if !ok || root == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "root parameter is required", map[string]interface{}{
			"param":  "root",
			"reason": "missing or empty",
		})
	}
	if err := validateRoot(root); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid root", map[string]interface{}{
			"param":  "root",
			"reason": err.Error(),
		})
	}
	force := getBoolDefault(args, "force", false)

	start := time.Now()
	stats, err := s.svc.IndexProject(ctx, tenant, root, force)
	if err != nil {
		if errors.Is(err, indexer.ErrIndexingInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "an indexing run is already active for this tenant", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"root":        root,
		"total":       stats.Total,
		"indexed":     stats.Indexed,
		"skipped":     stats.Skipped,
		"failed":      stats.Failed,
		"removed":     stats.Removed,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	attachErrors(response, stats.Errors)

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexFiles handles the index_files tool invocation
func (s *Server) handleIndexFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	rawFiles, ok := args["files"].([]interface{})
	if !ok || len(rawFiles) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "files parameter is required", map[string]interface{}{
			"param":  "files",
			"reason": "missing or empty",
		})
	}

	files := make([]types.FileInput, 0, len(rawFiles))
	for i, raw := range rawFiles {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "files entries must be objects", map[string]interface{}{
				"param": "files",
				"index": i,
			})
		}
		path, _ := entry["path"].(string)
		content, _ := entry["content"].(string)
		if path == "" || content == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "files entries need path and content", map[string]interface{}{
				"param": "files",
				"index": i,
			})
		}
		hash, _ := entry["hash"].(string)
		files = append(files, types.FileInput{Path: path, Content: content, Hash: hash})
	}
	force := getBoolDefault(args, "force", false)

	stats, err := s.svc.IndexBatch(ctx, tenant, files, force)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "batch indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"total":   stats.Total,
		"indexed": stats.Indexed,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
	}
	attachErrors(response, stats.Errors)

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRemoveFile handles the remove_file tool invocation
func (s *Server) handleRemoveFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := s.svc.RemoveFile(ctx, tenant, path); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "remove failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"removed": true,
		"path":    path,
	})), nil
}

// handleSearch handles the search tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	category := getStringDefault(args, "category", "")
	if !types.ValidCategoryFilter(category) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid category", map[string]interface{}{
			"param":   "category",
			"value":   category,
			"allowed": []string{"scene", "script", "resource", "config", "doc", "text"},
		})
	}

	resp, err := s.svc.Search(ctx, tenant, searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		WithGraph: getBoolDefault(args, "with_graph", false),
		Category:  category,
		UseCache:  getBoolDefault(args, "use_cache", true),
	})
	if err != nil {
		if errors.Is(err, types.ErrEmptyQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be blank", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleGetConnections handles the get_connections tool invocation
func (s *Server) handleGetConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	maxDepth := getIntDefault(args, "max_depth", searcher.DefaultMaxDepth)
	if maxDepth < 1 || maxDepth > 5 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_depth must be between 1 and 5", map[string]interface{}{
			"param": "max_depth",
			"value": maxDepth,
		})
	}

	set, err := s.svc.Connections(ctx, tenant, path, maxDepth)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotIndexed, "file is not indexed for this tenant", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "connections lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"path":        path,
		"max_depth":   maxDepth,
		"connections": set,
	})), nil
}

// handleGetCentralFiles handles the get_central_files tool invocation
func (s *Server) handleGetCentralFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	topK := getIntDefault(args, "top_k", searcher.DefaultCentralK)
	if topK < 1 || topK > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("top_k must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	central, err := s.svc.CentralFiles(ctx, tenant, topK)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "centrality ranking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"central_files": central,
		"count":         len(central),
	})), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	stats, err := s.svc.Stats(ctx, tenant)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "stats lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(stats)), nil
}

// handleClearIndex handles the clear_index tool invocation
func (s *Server) handleClearIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, tenant, err := tenantArgs(request)
	if err != nil {
		return nil, err
	}

	if err := s.svc.Clear(ctx, tenant); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "clear failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"cleared":    true,
		"user_id":    tenant.UserID,
		"project_id": tenant.ProjectID,
	})), nil
}

// Helper functions

// tenantArgs extracts the argument map and the tenant every tool requires.
func tenantArgs(request mcp.CallToolRequest) (map[string]interface{}, types.Tenant, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, types.Tenant{}, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tenant := types.Tenant{
		UserID:    getStringDefault(args, "user_id", ""),
		ProjectID: getStringDefault(args, "project_id", ""),
	}
	if err := tenant.Validate(); err != nil {
		param := "user_id"
		if errors.Is(err, types.ErrMissingProjectID) {
			param = "project_id"
		}
		return nil, types.Tenant{}, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param":  param,
			"reason": "missing or empty",
		})
	}
	return args, tenant, nil
}

// attachErrors adds a bounded error list to a stats response.
func attachErrors(response map[string]interface{}, errs []string) {
	if len(errs) == 0 {
		return
	}
	if len(errs) > maxReportedErrors {
		response["errors"] = errs[:maxReportedErrors]
		response["error_count"] = len(errs)
		return
	}
	response["errors"] = errs
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateRoot checks that a project root is an absolute, readable directory
func validateRoot(root string) error {
	if !filepath.IsAbs(root) {
		return ErrRootNotAbsolute
	}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return ErrRootNotFound
	}
	if err != nil {
		return ErrRootNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(root)
	if err != nil {
		return ErrRootNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a response as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrRootNotAbsolute = errors.New("root must be an absolute path")
	ErrRootNotFound    = errors.New("root does not exist")
	ErrRootNotReadable = errors.New("root is not readable")
	ErrNotDirectory    = errors.New("root is not a directory")
)
