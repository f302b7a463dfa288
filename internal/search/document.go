package search

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// idSpace seeds the name-based document IDs.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mvp-joe/sdkref/symbol"))

// Document is the flattened, searchable form of a symbol or class method.
type Document struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Kind       symbols.Kind `json:"kind"`
	TypeKind   string       `json:"typeKind,omitempty"`
	Parent     string       `json:"parent,omitempty"`
	Signature  string       `json:"signature"`
	Comments   string       `json:"comments,omitempty"`
	Content    string       `json:"content"`
	File       string       `json:"file"`
	Line       int          `json:"line"`
	Language   string       `json:"language"`
	Namespace  string       `json:"namespace"`
	Deprecated bool         `json:"deprecated"`
}

// DocumentID derives a stable ID from a document's identity, so re-indexing
// the same source replaces rather than duplicates documents.
func DocumentID(language, namespace, file string, kind symbols.Kind, parent, name string, line int) string {
	key := strings.Join([]string{language, namespace, file, string(kind), parent, name, strconv.Itoa(line)}, "\x00")
	return uuid.NewSHA1(idSpace, []byte(key)).String()
}

// Documents flattens a symbol. Functions and types yield one document;
// classes yield the class followed by one document per method.
func Documents(sym symbols.Symbol) []Document {
	doc := Document{
		Name:       sym.Name,
		Kind:       sym.Type,
		Signature:  Signature(sym),
		Comments:   sym.Comments,
		Content:    sym.Content,
		File:       sym.File,
		Line:       sym.Line,
		Language:   sym.Language,
		Namespace:  sym.Namespace,
		Deprecated: sym.Deprecated,
	}
	if meta := sym.TypeInfo(); meta != nil {
		doc.TypeKind = string(meta.Kind)
	}
	doc.ID = DocumentID(doc.Language, doc.Namespace, doc.File, doc.Kind, "", doc.Name, doc.Line)

	docs := []Document{doc}

	class := sym.Class()
	if class == nil {
		return docs
	}
	for _, m := range class.Methods {
		method := Document{
			Name:       m.Name,
			Kind:       symbols.KindMethod,
			Parent:     sym.Name,
			Signature:  MethodSignature(sym.Language, m),
			Comments:   m.Comments,
			Content:    m.Content,
			File:       sym.File,
			Line:       m.Line,
			Language:   sym.Language,
			Namespace:  sym.Namespace,
			Deprecated: m.Deprecated,
		}
		method.ID = DocumentID(method.Language, method.Namespace, method.File, method.Kind, method.Parent, method.Name, method.Line)
		docs = append(docs, method)
	}
	return docs
}

// DocumentsFor flattens symbols in order.
func DocumentsFor(syms []symbols.Symbol) []Document {
	var docs []Document
	for _, sym := range syms {
		docs = append(docs, Documents(sym)...)
	}
	return docs
}
