package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for jsonResult:
// - Responses render as one JSON text block
// - Nil and unencodable responses are errors, not tool results

func TestJSONResult(t *testing.T) {
	t.Parallel()

	result, err := jsonResult(&FileSymbolsResponse{Files: []FileSymbols{}, TotalSymbols: 0})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.JSONEq(t, `{"files":[],"total_symbols":0}`, text.Text)
}

func TestJSONResult_Errors(t *testing.T) {
	t.Parallel()

	_, err := jsonResult[FileSymbolsResponse](nil)
	assert.Error(t, err)

	_, err = jsonResult(&struct{ C chan int }{C: make(chan int)})
	assert.ErrorContains(t, err, "failed to encode")
}
