package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// NewPythonExtractor creates an extractor for Python source files.
func NewPythonExtractor(opts Options) *Extractor {
	lang := sitter.NewLanguage(python.Language())
	return newExtractor(LanguagePython, lang, pythonVisitor{}, opts)
}

// pythonVisitor emits functions at any nesting depth and classes.
type pythonVisitor struct{}

func (v pythonVisitor) Visit(f *File, node *sitter.Node) *symbols.Symbol {
	switch node.Kind() {
	case "function_definition":
		return v.function(f, node)
	case "class_definition":
		return v.class(f, node)
	}
	return nil
}

// Functions named _private are hidden; dunder names stay public.
func isPublicPythonFunction(name string) bool {
	return !strings.HasPrefix(name, "_") || strings.HasPrefix(name, "__")
}

// Any leading underscore hides a class.
func isPublicPythonClass(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// decorators returns the decorator nodes applied to a definition.
func decorators(node *sitter.Node) []*sitter.Node {
	return collectPreceding(node, []string{"decorator"}, nil, false)
}

// pythonCommentAnchor returns the node whose preceding siblings hold the comments
// of a definition: the decorated_definition wrapper when there is one.
func pythonCommentAnchor(node *sitter.Node) *sitter.Node {
	if parent := node.Parent(); parent != nil && parent.Kind() == "decorated_definition" {
		return parent
	}
	return node
}

func (v pythonVisitor) function(f *File, node *sitter.Node) *symbols.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := f.Text(nameNode)
	if !isPublicPythonFunction(name) {
		return nil
	}

	returnType := "None"
	if typ := findChildByType(node, "type"); typ != nil {
		returnType = f.Text(typ)
	}

	isStatic := false
	for _, d := range decorators(node) {
		if strings.Contains(f.Text(d), "staticmethod") {
			isStatic = true
			break
		}
	}

	meta := &symbols.FunctionMeta{
		Parameters: pythonParameters(f, node.ChildByFieldName("parameters")),
		ReturnType: returnType,
		IsAsync:    hasLiteralChild(node, f.Source, "async"),
		IsStatic:   isStatic,
	}
	return f.newSymbol(name, symbols.KindFunction, node, pythonCommentAnchor(node), meta)
}

// pythonParameters maps each recognized parameter shape; a parameter is
// optional exactly when it has a default value.
func pythonParameters(f *File, list *sitter.Node) []symbols.Parameter {
	params := []symbols.Parameter{}
	if list == nil {
		return params
	}

	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, symbols.Parameter{Name: f.Text(child), Type: "Any"})

		case "typed_parameter":
			nameNode := findChildByType(child, "identifier", "list_splat_pattern", "dictionary_splat_pattern")
			if nameNode == nil {
				continue
			}
			params = append(params, symbols.Parameter{
				Name: f.Text(nameNode),
				Type: annotationOrAny(f, child.ChildByFieldName("type")),
			})

		case "default_parameter":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			params = append(params, symbols.Parameter{
				Name:     f.Text(nameNode),
				Type:     "Any",
				Optional: true,
			})

		case "typed_default_parameter":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			params = append(params, symbols.Parameter{
				Name:     f.Text(nameNode),
				Type:     annotationOrAny(f, child.ChildByFieldName("type")),
				Optional: true,
			})
		}
	}
	return params
}

func annotationOrAny(f *File, typ *sitter.Node) string {
	if text := f.Text(typ); text != "" {
		return text
	}
	return "Any"
}

func (v pythonVisitor) class(f *File, node *sitter.Node) *symbols.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := f.Text(nameNode)
	if !isPublicPythonClass(name) {
		return nil
	}

	kind := symbols.TypeKindType
	if bases := node.ChildByFieldName("superclasses"); bases != nil {
		text := f.Text(bases)
		if strings.Contains(text, "ABC") || strings.Contains(text, "Protocol") {
			kind = symbols.TypeKindInterface
		}
	}
	for _, d := range decorators(node) {
		if strings.Contains(f.Text(d), "enum") {
			kind = symbols.TypeKindEnum
		}
	}

	content := f.Content(node)
	meta := &symbols.TypeMeta{Definition: content, Kind: kind}
	return f.newSymbol(name, symbols.KindType, node, pythonCommentAnchor(node), meta)
}
