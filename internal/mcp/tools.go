package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MikaTepe/keyscope/internal/storage"
	"github.com/MikaTepe/keyscope/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeScorerNotReady = -32001 // Candidate scorer is unreachable
	ErrorCodeEmptyText      = -32002 // Text parameter is empty
	ErrorCodeBatchTooLarge  = -32003 // Too many documents in one batch
)

// handleExtractKeywords handles the extract_keywords tool invocation
func (s *Server) handleExtractKeywords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req, err := requestFromArgs(args)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, req)
	if err != nil {
		return nil, extractionError(err)
	}

	return mcp.NewToolResultText(formatResult(result)), nil
}

// handleExtractKeywordsBatch handles the extract_keywords_batch tool invocation
func (s *Server) handleExtractKeywordsBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawTexts, ok := args["texts"].([]interface{})
	if !ok || len(rawTexts) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "texts parameter is required", map[string]interface{}{
			"param":  "texts",
			"reason": "missing or empty",
		})
	}
	if len(rawTexts) > types.MaxBatchItems {
		return nil, newMCPError(ErrorCodeBatchTooLarge,
			fmt.Sprintf("batch exceeds %d documents", types.MaxBatchItems), map[string]interface{}{
				"param": "texts",
				"count": len(rawTexts),
			})
	}

	maxKeywords := getIntDefault(args, "max_keywords", types.DefaultMaxKeywords)
	language := getStringDefault(args, "language", string(types.LanguageAuto))
	failFast := getBoolDefault(args, "fail_fast", false)

	results := make([]types.BatchItemResult, 0, len(rawTexts))
	summary := types.BatchSummary{Total: len(rawTexts)}
	for i, raw := range rawTexts {
		text, ok := raw.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "texts must be strings", map[string]interface{}{
				"param": "texts",
				"index": i,
			})
		}

		req := types.NewExtractionRequest(text)
		req.MaxKeywords = maxKeywords
		req.Language = types.Language(language)

		result, err := s.extractor.Extract(ctx, req)
		if err != nil {
			summary.Failed++
			results = append(results, types.BatchItemResult{Index: i, Success: false, Error: err.Error()})
			if failFast {
				break
			}
			continue
		}
		summary.Succeeded++
		results = append(results, types.BatchItemResult{Index: i, Success: true, Data: result})
	}

	payload, err := json.MarshalIndent(types.BatchResult{Results: results, Summary: summary}, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode batch result", nil)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// handleGetServiceStatus handles the get_service_status tool invocation
func (s *Server) handleGetServiceStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scorerReady := true
	scorerError := ""
	if err := s.scorer.Ready(ctx); err != nil {
		scorerReady = false
		scorerError = err.Error()
	}

	response := map[string]interface{}{
		"scorer": map[string]interface{}{
			"name":  s.scorer.Name(),
			"model": s.scorer.Model(),
			"ready": scorerReady,
		},
		"storage": map[string]interface{}{
			"build_mode":     storage.BuildMode,
			"schema_version": storage.CurrentSchemaVersion,
		},
	}
	if scorerError != "" {
		response["scorer"].(map[string]interface{})["error"] = scorerError
	}

	counts, err := s.storage.CountJobs(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count jobs", map[string]interface{}{
			"error": err.Error(),
		})
	}
	response["jobs"] = map[string]interface{}{
		"pending": counts.Pending,
		"running": counts.Running,
		"done":    counts.Done,
		"failed":  counts.Failed,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// requestFromArgs builds an extraction request from tool arguments
func requestFromArgs(args map[string]interface{}) (types.ExtractionRequest, error) {
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return types.ExtractionRequest{}, newMCPError(ErrorCodeEmptyText,
			"text parameter is required and cannot be empty", map[string]interface{}{
				"param":  "text",
				"reason": "missing or empty",
			})
	}

	req := types.NewExtractionRequest(text)
	req.Language = types.Language(getStringDefault(args, "language", string(types.LanguageAuto)))
	req.MaxKeywords = getIntDefault(args, "max_keywords", types.DefaultMaxKeywords)
	req.UseMMR = getBoolDefault(args, "use_mmr", true)
	req.Diversity = getFloatDefault(args, "diversity", types.DefaultDiversity)
	req.MinNgram = getIntDefault(args, "min_ngram", 1)
	req.MaxNgram = getIntDefault(args, "max_ngram", 2)
	req.IncludeMetadata = getBoolDefault(args, "include_metadata", false)

	if title, ok := args["title"].(string); ok && title != "" {
		req.TitleConfig = &types.TitleConfig{
			Text:      title,
			Weight:    getFloatDefault(args, "title_weight", types.DefaultTitleWeight),
			Normalize: true,
		}
	}

	return req, nil
}

// extractionError maps pipeline errors to MCP error codes
func extractionError(err error) error {
	if errors.Is(err, types.ErrScorerNotReady) {
		return newMCPError(ErrorCodeScorerNotReady, "candidate scorer not ready", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "extraction failed", map[string]interface{}{
		"error": err.Error(),
	})
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

// formatResult formats an extraction result as indented JSON
func formatResult(result *types.ExtractionResult) string {
	bytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(bytes)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
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

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
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
