package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/search"
	"github.com/mvp-joe/sdkref/internal/symbols"
)

const (
	defaultSearchLimit = 15
	maxSearchLimit     = 100
)

// AddSymbolSearchTool registers the sdk_symbol_search tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddSymbolSearchTool(s *server.MCPServer, searcher SymbolSearcher) {
	tool := mcp.NewTool(
		"sdk_symbol_search",
		mcp.WithDescription(`Full-text search over SDK symbols (functions, types, classes and methods) using bleve query syntax.

Searches symbol names, signatures, doc comments and source.

Supports:
- Field scoping: name:Client, comments:retry, signature:context
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "rate limit"
- Wildcards: Get* (prefix matching)
- Fuzzy: Clinet~1 (edit distance)

Examples:
- name:upload - Symbols named upload
- comments:"pagination token" - Symbols documented with the phrase
- create AND -name:delete - Combine terms`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string with field scoping and boolean operators")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("language",
			mcp.Description("Only return symbols of this language"),
			mcp.Enum(extractor.LanguageGo, extractor.LanguagePython, extractor.LanguageTypeScript)),
		mcp.WithString("namespace",
			mcp.Description("Only return symbols from this configured source namespace")),
		mcp.WithString("kind",
			mcp.Description("Only return symbols of this kind"),
			mcp.Enum(string(symbols.KindFunction), string(symbols.KindType), string(symbols.KindClass), string(symbols.KindMethod))),
		mcp.WithBoolean("include_deprecated",
			mcp.Description("Include symbols marked deprecated (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSymbolSearchHandler(searcher))
}

// createSymbolSearchHandler creates the handler function for sdk_symbol_search tool.
func createSymbolSearchHandler(searcher SymbolSearcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		var args symbolSearchArgs
		if errResult := bindArguments(request, &args); errResult != nil {
			return errResult, nil
		}

		req, err := args.request()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results, err := searcher.Search(ctx, req.Query, &search.Options{
			Limit:             req.Limit,
			Language:          req.Language,
			Namespace:         req.Namespace,
			Kind:              req.Kind,
			IncludeDeprecated: req.IncludeDeprecated,
		})
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		if results == nil {
			results = []*search.Result{}
		}

		return jsonResult(&SymbolSearchResponse{
			Query:         req.Query,
			Results:       results,
			TotalReturned: len(results),
			Metadata: SearchResponseMetadata{
				TookMs: int(time.Since(startTime).Milliseconds()),
				Source: "bleve",
			},
		})
	}
}

// symbolSearchArgs holds the raw tool arguments. Pointers tell absent
// arguments from zero values.
type symbolSearchArgs struct {
	Query             string `json:"query"`
	Limit             *int   `json:"limit"`
	Language          string `json:"language"`
	Namespace         string `json:"namespace"`
	Kind              string `json:"kind"`
	IncludeDeprecated *bool  `json:"include_deprecated"`
}

// request validates the arguments and applies defaults.
func (a symbolSearchArgs) request() (*SymbolSearchRequest, error) {
	req := SymbolSearchRequest{
		Query:             strings.TrimSpace(a.Query),
		Limit:             defaultSearchLimit,
		Language:          strings.ToLower(strings.TrimSpace(a.Language)),
		Namespace:         strings.TrimSpace(a.Namespace),
		Kind:              strings.ToLower(strings.TrimSpace(a.Kind)),
		IncludeDeprecated: true,
	}

	if req.Query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if a.Limit != nil {
		req.Limit = clamp(*a.Limit, 1, maxSearchLimit)
	}
	if a.IncludeDeprecated != nil {
		req.IncludeDeprecated = *a.IncludeDeprecated
	}

	switch req.Language {
	case "", extractor.LanguageGo, extractor.LanguagePython, extractor.LanguageTypeScript:
	default:
		return nil, fmt.Errorf("unsupported language: %s", req.Language)
	}

	switch symbols.Kind(req.Kind) {
	case "", symbols.KindFunction, symbols.KindType, symbols.KindClass, symbols.KindMethod:
	default:
		return nil, fmt.Errorf("unsupported kind: %s", req.Kind)
	}

	return &req, nil
}

// SymbolSearchRequest represents the JSON request schema for the sdk_symbol_search MCP tool.
type SymbolSearchRequest struct {
	Query             string `json:"query" jsonschema:"required,description=Bleve query string"`
	Limit             int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100,default=15"`
	Language          string `json:"language,omitempty"`
	Namespace         string `json:"namespace,omitempty"`
	Kind              string `json:"kind,omitempty"`
	IncludeDeprecated bool   `json:"include_deprecated"`
}

// SymbolSearchResponse represents the JSON response schema for the sdk_symbol_search MCP tool.
type SymbolSearchResponse struct {
	Query         string                 `json:"query"`
	Results       []*search.Result       `json:"results"`
	TotalReturned int                    `json:"total_returned"`
	Metadata      SearchResponseMetadata `json:"metadata"`
}

// SearchResponseMetadata contains timing and source information.
type SearchResponseMetadata struct {
	TookMs int    `json:"took_ms"`
	Source string `json:"source"` // "bleve"
}
