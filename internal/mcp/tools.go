package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/certkit/certpage-mcp/internal/merge"
	"github.com/certkit/certpage-mcp/internal/publisher"
	"github.com/certkit/certpage-mcp/internal/remote"
	"github.com/certkit/certpage-mcp/internal/storage"
	"github.com/certkit/certpage-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodePageNotFound      = -32001 // Page ID unknown to the page store
	ErrorCodeVersionConflict   = -32002 // Lost the version race on every attempt
	ErrorCodeMalformedDocument = -32003 // Page structure prevented a safe merge
)

// handleMergeRecords handles the merge_records tool invocation
func (s *Server) handleMergeRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pageID, records, err := parseMergeArgs(args)
	if err != nil {
		return nil, err
	}

	res, err := s.publisher.PublishRecords(ctx, pageID, records)
	if err != nil {
		return nil, mapPublishError(err)
	}

	response := map[string]interface{}{
		"page_id":         res.PageID,
		"version_before":  res.VersionBefore,
		"version_after":   res.VersionAfter,
		"attempts":        res.Attempts,
		"rows_added":      res.Merge.RowsAdded,
		"regions_touched": res.Merge.RegionsTouched,
		"fallback_used":   res.Merge.FallbackUsed,
		"history_id":      res.HistoryID,
		"diagnostics":     diagnosticList(res.Merge.Diagnostics),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handlePreviewMerge handles the preview_merge tool invocation
func (s *Server) handlePreviewMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pageID, records, err := parseMergeArgs(args)
	if err != nil {
		return nil, err
	}

	res, err := s.publisher.Preview(ctx, pageID, records)
	if err != nil {
		return nil, mapPublishError(err)
	}

	response := map[string]interface{}{
		"page_id":         pageID,
		"rows_added":      res.RowsAdded,
		"regions_touched": res.RegionsTouched,
		"fallback_used":   res.FallbackUsed,
		"diagnostics":     diagnosticList(res.Diagnostics),
		"text":            res.Text,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClassifyCategory handles the classify_category tool invocation
func (s *Server) handleClassifyCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	category, ok := args["category"].(string)
	if !ok || category == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "category parameter is required", map[string]interface{}{
			"param":  "category",
			"reason": "missing or empty",
		})
	}

	bucket := s.cls.Classify(category)
	response := map[string]interface{}{
		"category": category,
		"bucket":   bucket,
		"label":    s.cls.Label(bucket),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetHistory handles the get_history tool invocation
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pageID, ok := args["page_id"].(string)
	if !ok || pageID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "page_id parameter is required", map[string]interface{}{
			"param":  "page_id",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 20)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	entries, err := s.storage.ListHistory(ctx, pageID, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list history", map[string]interface{}{
			"error": err.Error(),
		})
	}

	list := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]interface{}{
			"id":             e.ID,
			"version_before": e.VersionBefore,
			"version_after":  e.VersionAfter,
			"records_added":  e.RecordsAdded,
			"buckets":        e.Buckets,
			"diagnostics":    e.Diagnostics,
			"created_at":     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response := map[string]interface{}{
		"page_id": pageID,
		"entries": list,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSetPageStrategy handles the set_page_strategy tool invocation
func (s *Server) handleSetPageStrategy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pageID, ok := args["page_id"].(string)
	if !ok || pageID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "page_id parameter is required", map[string]interface{}{
			"param":  "page_id",
			"reason": "missing or empty",
		})
	}

	raw, ok := args["strategy"].(string)
	if !ok || raw == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "strategy parameter is required", map[string]interface{}{
			"param":  "strategy",
			"reason": "missing or empty",
		})
	}
	strategy, err := merge.ParseStrategy(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid strategy", map[string]interface{}{
			"param":   "strategy",
			"value":   raw,
			"allowed": []string{string(merge.StrategyRebuildSort), string(merge.StrategyAppendOnly)},
		})
	}

	err = s.storage.SetPageSettings(ctx, &storage.PageSettings{
		PageID:        pageID,
		MergeStrategy: string(strategy),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to store page settings", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"page_id":  pageID,
		"strategy": string(strategy),
		"stored":   true,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// parseMergeArgs extracts the page ID and record batch shared by
// merge_records and preview_merge
func parseMergeArgs(args map[string]interface{}) (string, []types.Record, error) {
	pageID, ok := args["page_id"].(string)
	if !ok || pageID == "" {
		return "", nil, newMCPError(ErrorCodeInvalidParams, "page_id parameter is required", map[string]interface{}{
			"param":  "page_id",
			"reason": "missing or empty",
		})
	}

	rawRecords, ok := args["records"].([]interface{})
	if !ok || len(rawRecords) == 0 {
		return "", nil, newMCPError(ErrorCodeInvalidParams, "records parameter is required and cannot be empty", map[string]interface{}{
			"param":  "records",
			"reason": "missing or empty",
		})
	}

	records := make([]types.Record, 0, len(rawRecords))
	for i, raw := range rawRecords {
		item, ok := raw.(map[string]interface{})
		if !ok {
			return "", nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("record %d is not an object", i), nil)
		}
		rec, err := parseRecord(item)
		if err != nil {
			return "", nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("record %d: %s", i, err.Error()), nil)
		}
		records = append(records, rec)
	}

	return pageID, records, nil
}

// parseRecord converts one tool argument object into a Record using the
// default column schema
func parseRecord(item map[string]interface{}) (types.Record, error) {
	name, _ := item["common_name"].(string)
	if name == "" {
		return types.Record{}, errors.New("common_name is required")
	}

	rec := types.Record{
		Category:   getStringDefault(item, "category", ""),
		PrimaryKey: name,
		SortKey:    getStringDefault(item, "expires", ""),
	}

	scalarColumns := []struct{ key, column string }{
		{"issuer", "Issuer"},
		{"serial", "Serial"},
		{"notes", "Notes"},
	}
	for _, sc := range scalarColumns {
		if val, ok := item[sc.key].(string); ok && val != "" {
			rec.Attributes = append(rec.Attributes, types.Attribute{Name: sc.column, Value: val})
		}
	}

	if rawSANs, ok := item["sans"].([]interface{}); ok {
		sans := make([]string, 0, len(rawSANs))
		for _, v := range rawSANs {
			s, ok := v.(string)
			if !ok {
				return types.Record{}, errors.New("sans must be an array of strings")
			}
			sans = append(sans, s)
		}
		rec.Attributes = append(rec.Attributes, types.Attribute{Name: "SANs", Values: sans})
	}

	return rec, rec.Validate()
}

// mapPublishError converts domain errors into MCP protocol errors
func mapPublishError(err error) error {
	switch {
	case errors.Is(err, remote.ErrPageNotFound):
		return newMCPError(ErrorCodePageNotFound, "page not found", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, publisher.ErrConflictRetriesExhausted):
		return newMCPError(ErrorCodeVersionConflict, "page kept changing during publish, try again", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrMalformedDocument):
		return newMCPError(ErrorCodeMalformedDocument, "page structure prevented a safe merge, nothing was changed", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrEmptyBatch):
		return newMCPError(ErrorCodeInvalidParams, "records cannot be empty", nil)
	default:
		return newMCPError(ErrorCodeInternalError, "publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func diagnosticList(diags []types.Diagnostic) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(diags))
	for _, d := range diags {
		list = append(list, map[string]interface{}{
			"code":    string(d.Code),
			"message": d.Message,
		})
	}
	return list
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
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

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
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
