package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool invokes a tool handler in-process, bypassing the stdio
// transport. Tool errors (IsError results) are returned as Go errors
// carrying the response text.
//
//	server, _ := mcp.NewServer(cfg, nil)
//	resultJSON, err := server.CallTool("find_pairs", map[string]interface{}{
//	    "dictionary": "kobuta",
//	})
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	var result *mcp.CallToolResult
	switch toolName {
	case "info":
		result, err = s.handleInfo(ctx, req)
	case "find_pairs":
		result, err = s.handleFindPairs(ctx, req)
	case "grid_to_csv":
		result, err = s.handleGridToCSV(ctx, req)
	case "csv_to_grid":
		result, err = s.handleCSVToGrid(ctx, req)
	case "list_dictionaries":
		result, err = s.handleListDictionaries(ctx, req)
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", nil
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", nil
	}
	if result.IsError {
		return textContent.Text, fmt.Errorf("MCP error: %s", textContent.Text)
	}
	return textContent.Text, nil
}
