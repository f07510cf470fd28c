package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexProjectTool returns the tool definition for index_project
func indexProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_project",
		Description: "Walk a project tree, index every eligible file, and sweep entries for files that no longer exist",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root directory",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index all files ignoring stored content hashes (full rebuild)",
					"default":     false,
				},
			},
			Required: []string{"user_id", "project_id", "root"},
		},
	}
}

// indexFilesTool returns the tool definition for index_files
func indexFilesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_files",
		Description: "Index files whose content the caller provides directly, without touching the filesystem",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"files": map[string]interface{}{
					"type":        "array",
					"description": "Files to index",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"path": map[string]interface{}{
								"type":        "string",
								"description": "Project-relative file path",
							},
							"content": map[string]interface{}{
								"type":        "string",
								"description": "Full file content",
							},
							"hash": map[string]interface{}{
								"type":        "string",
								"description": "Optional SHA-256 content hash; computed from content when omitted",
							},
						},
						"required": []string{"path", "content"},
					},
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, replace stored chunks even when the content hash is unchanged",
					"default":     false,
				},
			},
			Required: []string{"user_id", "project_id", "files"},
		},
	}
}

// removeFileTool returns the tool definition for remove_file
func removeFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_file",
		Description: "Remove one file's chunks and graph relationships from the index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Project-relative path of the file to remove",
				},
			},
			Required: []string{"user_id", "project_id", "path"},
		},
	}
}

// searchTool returns the tool definition for search
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search",
		Description: "Search indexed project content by semantic similarity, optionally enriched with graph context",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"with_graph": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, attach connected files per hit and the project's most central files",
					"default":     false,
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one file category",
					"enum":        []string{"scene", "script", "resource", "config", "doc", "text"},
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, serve repeated identical queries from the response cache",
					"default":     true,
				},
			},
			Required: []string{"user_id", "project_id", "query"},
		},
	}
}

// getConnectionsTool returns the tool definition for get_connections
func getConnectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_connections",
		Description: "List the files connected to one file through the relationship graph, grouped by direction and kind",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Project-relative path of the file to expand",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Traversal depth in hops (1-5)",
					"default":     2,
					"minimum":     1,
					"maximum":     5,
				},
			},
			Required: []string{"user_id", "project_id", "path"},
		},
	}
}

// getCentralFilesTool returns the tool definition for get_central_files
func getCentralFilesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_central_files",
		Description: "Rank the project's files by blended degree, betweenness, and PageRank centrality",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of files to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"user_id", "project_id"},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Report indexed file and chunk counts, graph size, and the storage and embedding backends in use",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
			},
			Required: []string{"user_id", "project_id"},
		},
	}
}

// clearIndexTool returns the tool definition for clear_index
func clearIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_index",
		Description: "Delete everything indexed for one user and project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the index belongs to",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project the index belongs to",
				},
			},
			Required: []string{"user_id", "project_id"},
		},
	}
}
