package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// DefaultBatchSize is the number of documents written per bleve batch.
const DefaultBatchSize = 1000

// Sink accepts batches of symbol documents.
type Sink interface {
	// Index adds or replaces documents, keyed by Document.ID.
	Index(ctx context.Context, docs []Document) error

	// DeleteFiles removes every document that came from the given files.
	DeleteFiles(ctx context.Context, files []string) error
}

// Options narrows a search. Empty filters match everything.
type Options struct {
	Limit             int    `json:"limit"`
	Language          string `json:"language,omitempty"`
	Namespace         string `json:"namespace,omitempty"`
	Kind              string `json:"kind,omitempty"`
	IncludeDeprecated bool   `json:"includeDeprecated"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Limit:             15,
		IncludeDeprecated: true,
	}
}

// Result is a single search hit.
type Result struct {
	Document   Document `json:"document"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// Index is a bleve-backed symbol index.
type Index struct {
	index     bleve.Index
	batchSize int
	mu        sync.RWMutex // Protects index during updates
}

// Open opens the index at path, creating it when it does not exist.
func Open(path string, batchSize int) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bleve index %s: %w", path, err)
	}
	return newIndex(idx, batchSize), nil
}

// NewMemOnly creates an in-memory index.
func NewMemOnly(batchSize int) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return newIndex(idx, batchSize), nil
}

func newIndex(idx bleve.Index, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Index{index: idx, batchSize: batchSize}
}

// buildMapping creates the index mapping for symbol documents.
// Filter fields use the keyword analyzer for exact matching.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textField := func(termVectors bool) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		m.IncludeTermVectors = termVectors
		return m
	}
	keywordField := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = true
		return m
	}

	idMapping := bleve.NewTextFieldMapping()
	idMapping.Analyzer = "keyword"
	idMapping.Store = true
	idMapping.Index = false

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = true

	deprecatedMapping := bleve.NewBooleanFieldMapping()
	deprecatedMapping.Store = true
	deprecatedMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("id", idMapping)
	docMapping.AddFieldMappingsAt("name", textField(false))
	docMapping.AddFieldMappingsAt("signature", textField(false))
	docMapping.AddFieldMappingsAt("comments", textField(true))
	docMapping.AddFieldMappingsAt("content", textField(true))
	docMapping.AddFieldMappingsAt("kind", keywordField())
	docMapping.AddFieldMappingsAt("type_kind", keywordField())
	docMapping.AddFieldMappingsAt("parent", keywordField())
	docMapping.AddFieldMappingsAt("file", keywordField())
	docMapping.AddFieldMappingsAt("language", keywordField())
	docMapping.AddFieldMappingsAt("namespace", keywordField())
	docMapping.AddFieldMappingsAt("line", lineMapping)
	docMapping.AddFieldMappingsAt("deprecated", deprecatedMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

var storedFields = []string{
	"id", "name", "signature", "comments", "content", "kind", "type_kind",
	"parent", "file", "language", "namespace", "line", "deprecated",
}

func documentFields(doc Document) map[string]interface{} {
	return map[string]interface{}{
		"id":         doc.ID,
		"name":       doc.Name,
		"signature":  doc.Signature,
		"comments":   doc.Comments,
		"content":    doc.Content,
		"kind":       string(doc.Kind),
		"type_kind":  doc.TypeKind,
		"parent":     doc.Parent,
		"file":       doc.File,
		"language":   doc.Language,
		"namespace":  doc.Namespace,
		"line":       doc.Line,
		"deprecated": doc.Deprecated,
	}
}

// Index adds documents in batches.
func (ix *Index) Index(ctx context.Context, docs []Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for i, doc := range docs {
		if i%ix.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := batch.Index(doc.ID, documentFields(doc)); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}

		if batch.Size() >= ix.batchSize {
			if err := ix.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = ix.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := ix.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	return nil
}

// DeleteFiles removes the documents of the given files.
func (ix *Index) DeleteFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	fileQueries := make([]query.Query, 0, len(files))
	for _, f := range files {
		q := bleve.NewTermQuery(f)
		q.SetField("file")
		fileQueries = append(fileQueries, q)
	}
	match := bleve.NewDisjunctionQuery(fileQueries...)

	for {
		req := bleve.NewSearchRequestOptions(match, ix.batchSize, 0, false)
		res, err := ix.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to find documents to delete: %w", err)
		}
		if len(res.Hits) == 0 {
			return nil
		}

		batch := ix.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := ix.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute delete batch: %w", err)
		}
	}
}

// Count returns the number of indexed documents.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Search executes a bleve query-string search. An empty query matches every
// document, so filters alone can be used to browse the index.
func (ix *Index) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	if options == nil {
		options = DefaultOptions()
	}

	limit := options.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	var queries []query.Query
	if queryStr == "" {
		queries = append(queries, bleve.NewMatchAllQuery())
	} else {
		queries = append(queries, bleve.NewQueryStringQuery(queryStr))
	}

	for field, value := range map[string]string{
		"language":  options.Language,
		"namespace": options.Namespace,
		"kind":      options.Kind,
	} {
		if value == "" {
			continue
		}
		q := bleve.NewTermQuery(value)
		q.SetField(field)
		queries = append(queries, q)
	}

	var finalQuery query.Query
	if options.IncludeDeprecated {
		if len(queries) == 1 {
			finalQuery = queries[0]
		} else {
			finalQuery = bleve.NewConjunctionQuery(queries...)
		}
	} else {
		deprecated := bleve.NewBoolFieldQuery(true)
		deprecated.SetField("deprecated")
		bq := bleve.NewBooleanQuery()
		bq.AddMust(queries...)
		bq.AddMustNot(deprecated)
		finalQuery = bq
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &highlightStyle
	req.Highlight.Fields = []string{"content", "comments"}
	req.Fields = storedFields
	req.SortBy([]string{"-_score", "file", "line"})

	ix.mu.RLock()
	res, err := ix.index.SearchInContext(ctx, req)
	ix.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, &Result{
			Document:   documentFromFields(hit.Fields),
			Score:      hit.Score,
			Highlights: extractHighlights(hit.Fragments),
		})
	}
	return results, nil
}

func documentFromFields(fields map[string]interface{}) Document {
	str := func(name string) string {
		s, _ := fields[name].(string)
		return s
	}
	line, _ := fields["line"].(float64)
	deprecated, _ := fields["deprecated"].(bool)

	return Document{
		ID:         str("id"),
		Name:       str("name"),
		Kind:       symbols.Kind(str("kind")),
		TypeKind:   str("type_kind"),
		Parent:     str("parent"),
		Signature:  str("signature"),
		Comments:   str("comments"),
		Content:    str("content"),
		File:       str("file"),
		Line:       int(line),
		Language:   str("language"),
		Namespace:  str("namespace"),
		Deprecated: deprecated,
	}
}

// extractHighlights flattens bleve fragments, at most 3 per result.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, field := range []string{"content", "comments"} {
		highlights = append(highlights, fragments[field]...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}

// Close releases resources held by the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.index != nil {
		return ix.index.Close()
	}
	return nil
}
