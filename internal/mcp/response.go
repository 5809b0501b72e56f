package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	wserrors "github.com/standardbeagle/wordshift/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createResponseWithWarnings creates a JSON response with a "warnings" field
// added when there are any.
func createResponseWithWarnings(data interface{}, warnings []string) (*mcp.CallToolResult, error) {
	response, err := createJSONResponse(data)
	if err != nil {
		return nil, err
	}
	if len(warnings) == 0 {
		return response, nil
	}

	textContent := response.Content[0].(*mcp.TextContent)
	var responseData map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &responseData); err != nil {
		return response, nil
	}
	responseData["warnings"] = warnings
	return createJSONResponse(responseData)
}

// createErrorResponse creates a standardized error response for MCP tools.
// Tool errors are reported in the result with IsError set so the client sees
// them, never as protocol errors.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// lineError describes one rejected CSV or grid line.
type lineError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// createSmartErrorResponse adds suggestions and per-line details derived from
// the error chain.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}

	var srcErr *wserrors.SourceError
	if errors.As(err, &srcErr) {
		errorData["error_type"] = string(srcErr.Type)
		if len(srcErr.Suggestions) > 0 {
			errorData["did_you_mean"] = srcErr.Suggestions
		}
	}

	if lines := collectLineErrors(err); len(lines) > 0 {
		errorData["line_errors"] = lines
	}

	var cfgErr *wserrors.ConfigError
	if errors.As(err, &cfgErr) {
		errorData["field"] = cfgErr.Field
	}

	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}

	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func generateErrorSuggestions(err error) []string {
	var suggestions []string

	if errors.Is(err, wserrors.ErrNoDictionary) {
		suggestions = append(suggestions, "Pass a 'dictionary' name; call list_dictionaries to see what is available")
	}

	var srcErr *wserrors.SourceError
	if errors.As(err, &srcErr) && srcErr.NotFound() && len(srcErr.Suggestions) == 0 {
		suggestions = append(suggestions, "Call list_dictionaries with refresh=true to rediscover dictionaries")
	}

	var parseErr *wserrors.ParseError
	if errors.As(err, &parseErr) {
		suggestions = append(suggestions, "Use parse_mode 'lenient' to skip malformed lines instead of failing")
	}

	return suggestions
}

// collectLineErrors flattens ParseErrors, including those inside a MultiError.
func collectLineErrors(err error) []lineError {
	var lines []lineError

	var multi *wserrors.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi.Errors {
			var parseErr *wserrors.ParseError
			if errors.As(e, &parseErr) {
				lines = append(lines, lineError{Line: parseErr.Line, Text: parseErr.Text, Reason: parseErr.Underlying.Error()})
			}
		}
		return lines
	}

	var parseErr *wserrors.ParseError
	if errors.As(err, &parseErr) {
		lines = append(lines, lineError{Line: parseErr.Line, Text: parseErr.Text, Reason: parseErr.Underlying.Error()})
	}
	return lines
}

func getOperationHelp(operation string) string {
	switch operation {
	case "find_pairs":
		return "find_pairs {dictionary, mapping | grid, parse_mode, identity_pairs, page, page_size}"
	case "grid_to_csv":
		return "grid_to_csv {grid: [row, ...]} with up to 5 rows of 18 cells"
	case "csv_to_grid":
		return "csv_to_grid {mapping: \"src,dst\\n...\", parse_mode}"
	case "list_dictionaries":
		return "list_dictionaries {refresh}"
	}
	return ""
}
