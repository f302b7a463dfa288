package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult renders a tool response as a single JSON text block.
func jsonResult[T any](response *T) (*mcp.CallToolResult, error) {
	if response == nil {
		return nil, fmt.Errorf("empty %T response", response)
	}
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", response, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
