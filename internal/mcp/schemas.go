package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// recordsSchema describes the record batch accepted by the merge tools
func recordsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Certificate records to merge",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Free-text issuer/category text, e.g. the certificate issuer CN",
				},
				"common_name": map[string]interface{}{
					"type":        "string",
					"description": "Certificate common name (identifies the row)",
				},
				"expires": map[string]interface{}{
					"type":        "string",
					"description": "Expiry date text, used for ordering within a table",
				},
				"issuer": map[string]interface{}{
					"type": "string",
				},
				"serial": map[string]interface{}{
					"type": "string",
				},
				"sans": map[string]interface{}{
					"type":        "array",
					"description": "Subject alternative names",
					"items":       map[string]interface{}{"type": "string"},
				},
				"notes": map[string]interface{}{
					"type": "string",
				},
			},
			"required": []string{"common_name"},
		},
	}
}

// mergeRecordsTool returns the tool definition for merge_records
func mergeRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "merge_records",
		Description: "Merge certificate records into a wiki page's marker-bounded sections and save the page",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page_id": map[string]interface{}{
					"type":        "string",
					"description": "Page ID in the page store",
				},
				"records": recordsSchema(),
			},
			Required: []string{"page_id", "records"},
		},
	}
}

// previewMergeTool returns the tool definition for preview_merge
func previewMergeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "preview_merge",
		Description: "Compute the merged page text without saving anything; returns the new text and diagnostics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page_id": map[string]interface{}{
					"type":        "string",
					"description": "Page ID in the page store",
				},
				"records": recordsSchema(),
			},
			Required: []string{"page_id", "records"},
		},
	}
}

// classifyCategoryTool returns the tool definition for classify_category
func classifyCategoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "classify_category",
		Description: "Show which section bucket a category string routes to",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Free-text issuer/category text to classify",
				},
			},
			Required: []string{"category"},
		},
	}
}

// getHistoryTool returns the tool definition for get_history
func getHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_history",
		Description: "List a page's publish history, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page_id": map[string]interface{}{
					"type":        "string",
					"description": "Page ID in the page store",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"page_id"},
		},
	}
}

// setPageStrategyTool returns the tool definition for set_page_strategy
func setPageStrategyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "set_page_strategy",
		Description: "Store a per-page merge strategy override",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page_id": map[string]interface{}{
					"type":        "string",
					"description": "Page ID in the page store",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Merge strategy for this page",
					"enum":        []string{"rebuild_sort", "append_only"},
				},
			},
			Required: []string{"page_id", "strategy"},
		},
	}
}
