// Package mcp implements the Model Context Protocol (MCP) server for
// certpage.
//
// The server exposes five tools to MCP clients:
//   - merge_records: merge certificate records into a wiki page and save it
//   - preview_merge: compute the merged text without saving anything
//   - classify_category: show which section bucket a category routes to
//   - get_history: list a page's publish history
//   - set_page_strategy: store a per-page merge strategy override
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport. The server reads
// protocol messages from stdin and writes responses to stdout, so all
// logging goes to stderr.
//
// # Tool: merge_records
//
//	Request:
//	{
//	  "name": "merge_records",
//	  "arguments": {
//	    "page_id": "12345",
//	    "records": [
//	      {
//	        "category": "Sectigo RSA Domain Validation Secure Server CA",
//	        "common_name": "www.example.com",
//	        "expires": "2026-03-01",
//	        "issuer": "Sectigo Limited",
//	        "sans": ["www.example.com", "example.com"]
//	      }
//	    ]
//	  }
//	}
//
//	Response:
//	{
//	  "page_id": "12345",
//	  "version_before": 7,
//	  "version_after": 8,
//	  "rows_added": 1,
//	  "fallback_used": false,
//	  "diagnostics": []
//	}
//
// # Error Handling
//
// Errors are standard JSON-RPC error responses:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: Page not found
//   - -32002: Version conflict persisted through every retry
//   - -32003: Page structure prevented a safe merge (nothing was changed)
//
// # Configuration
//
// The server is configured through the environment:
//   - CERTPAGE_BASE_URL: page store base URL (required)
//   - CERTPAGE_API_TOKEN: bearer token for the page store
//   - CERTPAGE_DB_PATH: local database directory (default ~/.certpage)
//   - CERTPAGE_RULES: YAML classifier rules file (optional)
//   - CERTPAGE_MERGE_STRATEGY: default strategy, rebuild_sort or append_only
package mcp
