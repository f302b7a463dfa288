package search

import (
	"strings"

	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/symbols"
)

// Signature renders a one-line declaration for a symbol in its language's
// syntax. It is a display aid; Content holds the exact source.
func Signature(sym symbols.Symbol) string {
	switch meta := sym.Meta.(type) {
	case *symbols.FunctionMeta:
		return functionSignature(sym.Language, "function", sym.Name, meta.Parameters, meta.ReturnType, meta.IsAsync, meta.IsStatic)
	case *symbols.TypeMeta:
		return string(meta.Kind) + " " + sym.Name
	case *symbols.ClassMeta:
		if len(meta.ConstructorArgs) == 0 {
			return "class " + sym.Name
		}
		return "class " + sym.Name + "(" + formatParameters(sym.Language, meta.ConstructorArgs) + ")"
	}
	return sym.Name
}

// MethodSignature renders a class method declaration.
func MethodSignature(language string, m symbols.Method) string {
	sig := functionSignature(language, "method", m.Name, m.Parameters, m.ReturnType, m.IsAsync, m.IsStatic)
	if m.Visibility != "" && m.Visibility != symbols.VisibilityPublic {
		sig = m.Visibility + " " + sig
	}
	return sig
}

func functionSignature(language, role, name string, params []symbols.Parameter, returnType string, isAsync, isStatic bool) string {
	var b strings.Builder
	args := formatParameters(language, params)

	switch language {
	case extractor.LanguageGo:
		b.WriteString("func " + name + "(" + args + ")")
		if returnType != "" && returnType != "void" {
			b.WriteString(" " + returnType)
		}

	case extractor.LanguagePython:
		if isAsync {
			b.WriteString("async ")
		}
		b.WriteString("def " + name + "(" + args + ")")
		if returnType != "" {
			b.WriteString(" -> " + returnType)
		}

	default:
		if isStatic && role == "method" {
			b.WriteString("static ")
		}
		if isAsync {
			b.WriteString("async ")
		}
		if role == "function" {
			b.WriteString("function ")
		}
		b.WriteString(name + "(" + args + ")")
		if returnType != "" {
			b.WriteString(": " + returnType)
		}
	}

	return b.String()
}

func formatParameters(language string, params []symbols.Parameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, formatParameter(language, p))
	}
	return strings.Join(parts, ", ")
}

func formatParameter(language string, p symbols.Parameter) string {
	switch language {
	case extractor.LanguageGo:
		if p.Type == "" {
			return p.Name
		}
		return p.Name + " " + p.Type

	case extractor.LanguagePython:
		s := p.Name
		if p.Type != "" && !(p.Type == "Any" && strings.HasPrefix(p.Name, "*")) {
			s += ": " + p.Type
		}
		if p.Optional {
			s += " = ..."
		}
		return s

	default:
		s := p.Name
		if p.Optional {
			s += "?"
		}
		if p.Type != "" {
			s += ": " + p.Type
		}
		return s
	}
}
