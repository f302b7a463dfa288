package mcp

import (
	"context"

	"github.com/mvp-joe/sdkref/internal/search"
	"github.com/mvp-joe/sdkref/internal/symbols"
)

// SymbolSearcher runs full-text queries over indexed symbol documents.
type SymbolSearcher interface {
	Search(ctx context.Context, query string, options *search.Options) ([]*search.Result, error)
}

// SymbolReader reads stored symbols back per file.
type SymbolReader interface {
	FileSymbols(ctx context.Context, file string) ([]symbols.Symbol, error)
}
