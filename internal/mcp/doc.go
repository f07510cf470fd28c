// Package mcp implements the Model Context Protocol (MCP) server for scenedex.
//
// The MCP server exposes the indexing and search engine to AI coding
// assistants through eight tools:
//   - index_project: Walk a project tree and index every eligible file
//   - index_files: Index files whose content the caller provides directly
//   - remove_file: Remove one file from the index
//   - search: Semantic similarity search, optionally with graph context
//   - get_connections: Files connected to one file through the relationship graph
//   - get_central_files: Files ranked by blended centrality
//   - get_stats: Index size and backend information
//   - clear_index: Delete everything stored for one user and project
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Every tool is tenant-scoped: user_id and project_id are required
// arguments on each call, and no call can observe another tenant's data.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	scenedex serve
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: index_project
//
//	Request:
//	{
//	  "name": "index_project",
//	  "arguments": {
//	    "user_id": "u1",
//	    "project_id": "p1",
//	    "root": "/path/to/project",
//	    "force": false
//	  }
//	}
//
//	Response:
//	{
//	  "root": "/path/to/project",
//	  "total": 132,
//	  "indexed": 41,
//	  "skipped": 91,
//	  "failed": 0,
//	  "removed": 2,
//	  "duration_ms": 1840
//	}
//
// # Tool: search
//
//	Request:
//	{
//	  "name": "search",
//	  "arguments": {
//	    "user_id": "u1",
//	    "project_id": "p1",
//	    "query": "player movement and jumping",
//	    "limit": 10,
//	    "with_graph": true,
//	    "category": "script"
//	  }
//	}
//
//	Response:
//	{
//	  "query": "player movement and jumping",
//	  "results": [
//	    {
//	      "rank": 1,
//	      "file_path": "scripts/player.gd",
//	      "chunk_index": 2,
//	      "content": "func _physics_process(delta): ...",
//	      "start_line": 14,
//	      "end_line": 31,
//	      "category": "script",
//	      "similarity": 0.87
//	    }
//	  ],
//	  "connections": {
//	    "scripts/player.gd": {
//	      "used_by_attaches_script": ["scenes/main.tscn"]
//	    }
//	  },
//	  "central_files": [
//	    {"file_path": "scripts/player.gd", "score": 0.74}
//	  ]
//	}
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "scenedex": {
//	      "command": "/usr/local/bin/scenedex",
//	      "args": ["serve"],
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "invalid root",
//	    "data": {
//	      "param": "root",
//	      "reason": "root does not exist"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, provider)
//   - -32001: Indexing already in progress for this tenant
//   - -32002: File not indexed
//   - -32003: Empty query
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the MCP protocol.
// Verbosity follows SCENEDEX_LOG_LEVEL:
//
//	SCENEDEX_LOG_LEVEL=debug scenedex serve
package mcp
