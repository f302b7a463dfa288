package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

const maxFilesPerRequest = 20

// AddFileSymbolsTool registers the sdk_file_symbols tool with an MCP server.
// It returns the full stored symbols of files, including class members and
// parameter lists that search results only summarize.
func AddFileSymbolsTool(s *server.MCPServer, reader SymbolReader) {
	tool := mcp.NewTool(
		"sdk_file_symbols",
		mcp.WithDescription("List every extracted SDK symbol of one or more files, in source order, with full parameter, return type, method and property details. Use the file paths returned by sdk_symbol_search."),
		mcp.WithArray("files",
			mcp.Required(),
			mcp.Description("Project-relative file paths, as reported in search results (max 20)"),
			mcp.WithStringItems()),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFileSymbolsHandler(reader))
}

// createFileSymbolsHandler creates the handler function for sdk_file_symbols tool.
func createFileSymbolsHandler(reader SymbolReader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Files []string `json:"files"`
		}
		if errResult := bindArguments(request, &args); errResult != nil {
			return errResult, nil
		}

		files := cleanList(args.Files)
		if len(files) == 0 {
			return mcp.NewToolResultError("files parameter is required"), nil
		}
		if len(files) > maxFilesPerRequest {
			return mcp.NewToolResultError(fmt.Sprintf("at most %d files per request, got %d", maxFilesPerRequest, len(files))), nil
		}

		response := &FileSymbolsResponse{Files: make([]FileSymbols, 0, len(files))}
		for _, file := range files {
			file = filepath.ToSlash(filepath.Clean(file))
			syms, err := reader.FileSymbols(ctx, file)
			if err != nil {
				return nil, fmt.Errorf("failed to read symbols of %s: %w", file, err)
			}
			if syms == nil {
				syms = []symbols.Symbol{}
			}
			response.Files = append(response.Files, FileSymbols{File: file, Symbols: syms})
			response.TotalSymbols += len(syms)
		}

		return jsonResult(response)
	}
}

// FileSymbolsResponse represents the JSON response schema for the sdk_file_symbols MCP tool.
type FileSymbolsResponse struct {
	Files        []FileSymbols `json:"files"`
	TotalSymbols int           `json:"total_symbols"`
}

// FileSymbols holds the stored symbols of one file. Unknown files have none.
type FileSymbols struct {
	File    string           `json:"file"`
	Symbols []symbols.Symbol `json:"symbols"`
}
