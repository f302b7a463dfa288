package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// NewGoExtractor creates an extractor for Go source files.
func NewGoExtractor(opts Options) *Extractor {
	lang := sitter.NewLanguage(golang.Language())
	return newExtractor(LanguageGo, lang, goVisitor{}, opts)
}

// goVisitor emits exported functions, methods and types.
type goVisitor struct{}

func (v goVisitor) Visit(f *File, node *sitter.Node) *symbols.Symbol {
	switch node.Kind() {
	case "function_declaration", "method_declaration":
		return v.function(f, node)
	case "type_spec", "type_alias":
		if parentKind(node) != "type_declaration" {
			return nil
		}
		return v.typeSpec(f, node)
	}
	return nil
}

// isExported applies Go's rule: the name starts with an upper-case letter.
func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return false
	}
	return unicode.ToLower(r) != r
}

func (v goVisitor) function(f *File, node *sitter.Node) *symbols.Symbol {
	nameNode := findChildByType(node, "identifier", "field_identifier")
	if nameNode == nil {
		return nil
	}
	name := f.Text(nameNode)
	if !isExported(name) {
		return nil
	}

	isMethod := node.Kind() == "method_declaration"
	lists := findChildrenByType(node, "parameter_list")

	paramIndex := 0
	if isMethod {
		paramIndex = 1
	}
	var params []symbols.Parameter
	if paramIndex < len(lists) {
		params = goParameters(f, lists[paramIndex])
	}

	meta := &symbols.FunctionMeta{
		Parameters: params,
		ReturnType: goReturnType(f, node, lists, isMethod),
		IsStatic:   !isMethod,
	}
	return f.newSymbol(name, symbols.KindFunction, node, node, meta)
}

// goParameters returns one parameter per declared name. Unnamed parameters
// are skipped.
func goParameters(f *File, list *sitter.Node) []symbols.Parameter {
	params := []symbols.Parameter{}
	for _, decl := range findChildrenByType(list, "parameter_declaration", "variadic_parameter_declaration") {
		typ := f.Text(decl.ChildByFieldName("type"))
		if decl.Kind() == "variadic_parameter_declaration" {
			typ = "..." + typ
		}
		for _, id := range findChildrenByType(decl, "identifier") {
			params = append(params, symbols.Parameter{
				Name: f.Text(id),
				Type: typ,
			})
		}
	}
	return params
}

// goResultTypes lists one type per declared result name, or one per
// declaration when results are unnamed.
func goResultTypes(f *File, list *sitter.Node) []string {
	var types []string
	for _, decl := range findChildrenByType(list, "parameter_declaration", "variadic_parameter_declaration") {
		typ := f.Text(decl.ChildByFieldName("type"))
		if decl.Kind() == "variadic_parameter_declaration" {
			typ = "..." + typ
		}
		n := max(len(findChildrenByType(decl, "identifier")), 1)
		for range n {
			types = append(types, typ)
		}
	}
	return types
}

var goResultTypeKinds = []string{
	"type_identifier", "pointer_type", "qualified_type", "slice_type", "array_type",
	"map_type", "channel_type", "function_type", "generic_type", "interface_type", "struct_type",
}

func goReturnType(f *File, node *sitter.Node, lists []*sitter.Node, isMethod bool) string {
	expected := 2
	if isMethod {
		expected = 3
	}

	if len(lists) == expected {
		types := goResultTypes(f, lists[len(lists)-1])
		if len(types) == 0 {
			return "void"
		}
		return "(" + strings.Join(types, ", ") + ")"
	}

	if len(lists) > 0 {
		last := lists[len(lists)-1]
		for sib := last.NextSibling(); sib != nil && sib.Kind() != "block"; sib = sib.NextSibling() {
			if hasKind(sib, goResultTypeKinds...) {
				return f.Text(sib)
			}
		}
	}
	return "void"
}

func (v goVisitor) typeSpec(f *File, spec *sitter.Node) *symbols.Symbol {
	nameNode := spec.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "type_identifier" {
		return nil
	}
	name := f.Text(nameNode)
	if !isExported(name) {
		return nil
	}

	kind := symbols.TypeKindAlias
	if spec.Kind() == "type_spec" {
		switch underlying := spec.ChildByFieldName("type"); {
		case underlying == nil:
			return nil
		case underlying.Kind() == "interface_type":
			kind = symbols.TypeKindInterface
		case underlying.Kind() == "struct_type":
			kind = symbols.TypeKindType
		}
	}

	// A declaration holding a single spec is reported as a whole, so content
	// includes the "type" keyword and doc comments sit before it.
	target := spec
	decl := spec.Parent()
	if len(findChildrenByType(decl, "type_spec", "type_alias")) == 1 {
		target = decl
	}

	content := f.Content(target)
	meta := &symbols.TypeMeta{Definition: content, Kind: kind}
	return f.newSymbol(name, symbols.KindType, target, target, meta)
}
