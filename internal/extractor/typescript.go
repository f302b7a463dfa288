package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// FunctionExportPolicy decides which top-level TypeScript functions are emitted.
type FunctionExportPolicy string

const (
	// FunctionsExported emits only functions wrapped in an export statement,
	// the same rule classes and type declarations follow.
	FunctionsExported FunctionExportPolicy = "exported"
	// FunctionsAll emits every function declaration.
	FunctionsAll FunctionExportPolicy = "all"
)

// NewTypeScriptExtractor creates an extractor for TypeScript source files.
// .tsx files are parsed with the TSX grammar so JSX is not a syntax error.
func NewTypeScriptExtractor(opts Options, policy FunctionExportPolicy) *Extractor {
	if policy == "" {
		policy = FunctionsExported
	}
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return newExtractor(LanguageTypeScript, lang, typeScriptVisitor{functions: policy}, opts).
		withDialect(".tsx", sitter.NewLanguage(typescript.LanguageTSX()))
}

type typeScriptVisitor struct {
	functions FunctionExportPolicy
}

var typeScriptTypeKinds = map[string]symbols.TypeKind{
	"interface_declaration":  symbols.TypeKindInterface,
	"type_alias_declaration": symbols.TypeKindType,
	"enum_declaration":       symbols.TypeKindEnum,
}

func (v typeScriptVisitor) Visit(f *File, node *sitter.Node) *symbols.Symbol {
	switch kind := node.Kind(); kind {
	case "class_declaration", "abstract_class_declaration":
		if !isExportWrapped(node) {
			return nil
		}
		return v.class(f, node)
	case "function_declaration":
		if v.functions != FunctionsAll && !isExportWrapped(node) {
			return nil
		}
		return v.function(f, node)
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		if !isExportWrapped(node) {
			return nil
		}
		return v.typeDecl(f, node, typeScriptTypeKinds[kind])
	}
	return nil
}

func isExportWrapped(node *sitter.Node) bool {
	return parentKind(node) == "export_statement"
}

// tsCommentAnchor returns the export wrapper when present, since comments
// precede the wrapper rather than the declaration.
func tsCommentAnchor(node *sitter.Node) *sitter.Node {
	if isExportWrapped(node) {
		return node.Parent()
	}
	return node
}

func (v typeScriptVisitor) function(f *File, node *sitter.Node) *symbols.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	meta := &symbols.FunctionMeta{
		Parameters: tsParameters(f, node.ChildByFieldName("parameters")),
		ReturnType: tsReturnType(f, node),
		IsAsync:    hasLiteralChild(node, f.Source, "async"),
		IsStatic:   hasLiteralChild(node, f.Source, "static"),
	}
	return f.newSymbol(f.Text(nameNode), symbols.KindFunction, node, tsCommentAnchor(node), meta)
}

func (v typeScriptVisitor) typeDecl(f *File, node *sitter.Node, kind symbols.TypeKind) *symbols.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	content := f.Content(node)
	meta := &symbols.TypeMeta{Definition: content, Kind: kind}
	return f.newSymbol(f.Text(nameNode), symbols.KindType, node, tsCommentAnchor(node), meta)
}

func (v typeScriptVisitor) class(f *File, node *sitter.Node) *symbols.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	meta := &symbols.ClassMeta{
		Methods:         []symbols.Method{},
		Properties:      []symbols.Property{},
		ConstructorArgs: []symbols.Parameter{},
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}

		switch member.Kind() {
		case "method_definition", "abstract_method_signature":
			memberName := member.ChildByFieldName("name")
			if memberName == nil {
				continue
			}
			params := tsParameters(f, member.ChildByFieldName("parameters"))
			if f.Text(memberName) == "constructor" {
				meta.ConstructorArgs = params
				continue
			}
			comments := commentsSkipping(member, f.Source, []string{"decorator"})
			meta.Methods = append(meta.Methods, symbols.Method{
				Name:       f.Text(memberName),
				Parameters: params,
				Visibility: tsVisibility(f, member, memberName),
				ReturnType: tsReturnType(f, member),
				IsStatic:   hasLiteralChild(member, f.Source, "static"),
				IsAsync:    hasLiteralChild(member, f.Source, "async"),
				Line:       int(member.StartPosition().Row),
				Content:    f.Content(member),
				Comments:   comments,
				Deprecated: IsDeprecated(comments),
			})

		case "public_field_definition":
			memberName := member.ChildByFieldName("name")
			if memberName == nil {
				continue
			}
			meta.Properties = append(meta.Properties, symbols.Property{
				Name:       f.Text(memberName),
				Visibility: tsVisibility(f, member, memberName),
				Type:       tsAnnotationType(f, member.ChildByFieldName("type")),
				IsStatic:   hasLiteralChild(member, f.Source, "static"),
				Line:       int(member.StartPosition().Row),
			})
		}
	}

	return f.newSymbol(f.Text(nameNode), symbols.KindClass, node, tsCommentAnchor(node), meta)
}

func tsVisibility(f *File, member, name *sitter.Node) string {
	if modifier := findChildByType(member, "accessibility_modifier"); modifier != nil {
		return strings.TrimSpace(f.Text(modifier))
	}
	if name.Kind() == "private_property_identifier" {
		return symbols.VisibilityPrivate
	}
	return symbols.VisibilityPublic
}

// tsParameters reads required and optional parameters; other shapes are
// skipped.
func tsParameters(f *File, list *sitter.Node) []symbols.Parameter {
	params := []symbols.Parameter{}
	for _, p := range findChildrenByType(list, "required_parameter", "optional_parameter") {
		name := "unknown"
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			name = f.Text(pattern)
		}
		params = append(params, symbols.Parameter{
			Name:     name,
			Type:     tsAnnotationType(f, p.ChildByFieldName("type")),
			Optional: p.Kind() == "optional_parameter",
		})
	}
	return params
}

// tsAnnotationType returns the type named by a type_annotation, preferring a
// predefined type child. It returns "" when there is no annotation.
func tsAnnotationType(f *File, annotation *sitter.Node) string {
	if annotation == nil {
		return ""
	}
	if predefined := findChildByType(annotation, "predefined_type"); predefined != nil {
		return f.Text(predefined)
	}
	text := strings.TrimPrefix(strings.TrimSpace(f.Text(annotation)), ":")
	return collapseWhitespace(text)
}

func tsReturnType(f *File, node *sitter.Node) string {
	if typ := tsAnnotationType(f, node.ChildByFieldName("return_type")); typ != "" {
		return typ
	}
	return "void"
}
