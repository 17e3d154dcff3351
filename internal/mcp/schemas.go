package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// extractionProperties is the shared parameter schema for a single extraction
func extractionProperties() map[string]interface{} {
	return map[string]interface{}{
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Document text to extract keywords from",
		},
		"language": map[string]interface{}{
			"type":        "string",
			"description": "Document language; controls stop word filtering",
			"enum":        []string{"de", "en", "auto"},
			"default":     "auto",
		},
		"max_keywords": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of keywords to return (1-100)",
			"default":     10,
			"minimum":     1,
			"maximum":     100,
		},
		"use_mmr": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, diversify results with maximal marginal relevance",
			"default":     true,
		},
		"diversity": map[string]interface{}{
			"type":        "number",
			"description": "MMR diversity factor (0.0-1.0)",
			"default":     0.6,
			"minimum":     0.0,
			"maximum":     1.0,
		},
		"min_ngram": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum phrase length in words",
			"default":     1,
		},
		"max_ngram": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum phrase length in words",
			"default":     2,
		},
		"title": map[string]interface{}{
			"type":        "string",
			"description": "Optional document title, repeated into the text to boost title terms",
		},
		"title_weight": map[string]interface{}{
			"type":        "number",
			"description": "Title repetition weight (clamped to 1-5)",
			"default":     3.0,
		},
		"include_metadata": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, include processing metadata in the result",
			"default":     false,
		},
	}
}

// extractKeywordsTool returns the tool definition for extract_keywords
func extractKeywordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "extract_keywords",
		Description: "Extract ranked keywords and keyphrases from a document",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: extractionProperties(),
			Required:   []string{"text"},
		},
	}
}

// extractKeywordsBatchTool returns the tool definition for extract_keywords_batch
func extractKeywordsBatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "extract_keywords_batch",
		Description: "Extract keywords from multiple documents in one call",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"texts": map[string]interface{}{
					"type":        "array",
					"description": "Documents to process (1-100)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"max_keywords": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum keywords per document (1-100)",
					"default":     10,
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Document language; controls stop word filtering",
					"enum":        []string{"de", "en", "auto"},
					"default":     "auto",
				},
				"fail_fast": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, stop at the first failed document",
					"default":     false,
				},
			},
			Required: []string{"texts"},
		},
	}
}

// getServiceStatusTool returns the tool definition for get_service_status
func getServiceStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_service_status",
		Description: "Query scorer readiness and job queue statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
