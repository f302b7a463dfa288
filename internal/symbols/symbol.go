package symbols

// Kind tags the variant carried by a Symbol.
type Kind string

const (
	KindFunction Kind = "function"
	KindType     Kind = "type"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindVariable Kind = "variable"
)

// TypeKind classifies a type-like declaration.
type TypeKind string

const (
	TypeKindInterface TypeKind = "interface"
	TypeKindType      TypeKind = "type"
	TypeKindEnum      TypeKind = "enum"
	TypeKindAlias     TypeKind = "alias"
)

// Visibility values used by class members.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
)

// Symbol is one extracted declaration.
// Symbols are built once during a traversal and never mutated afterwards.
type Symbol struct {
	Name       string `json:"name"`
	Type       Kind   `json:"type"`
	File       string `json:"file"`
	Line       int    `json:"line"` // zero-based start row
	Content    string `json:"content"`
	Comments   string `json:"comments,omitempty"` // empty means no preceding comment block
	Namespace  string `json:"namespace"`
	Language   string `json:"language"`
	Deprecated bool   `json:"deprecated"`
	Meta       Meta   `json:"meta"`
}

// Meta is the variant payload of a Symbol. It is one of *FunctionMeta,
// *TypeMeta or *ClassMeta.
type Meta interface {
	kind() Kind
}

// Parameter is one declared parameter of a function, method or constructor.
// Type is empty when the source declares none and the language has no default.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional"`
}

// FunctionMeta describes a function or method.
type FunctionMeta struct {
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returnType"`
	IsAsync    bool        `json:"isAsync"`
	IsStatic   bool        `json:"isStatic"`
}

func (*FunctionMeta) kind() Kind { return KindFunction }

// TypeMeta describes an interface, struct, enum or alias.
type TypeMeta struct {
	Definition string   `json:"definition"`
	Kind       TypeKind `json:"kind"`
}

func (*TypeMeta) kind() Kind { return KindType }

// ClassMeta describes a class body. Methods and Properties are independent
// lists, each in body order.
type ClassMeta struct {
	Methods         []Method    `json:"methods"`
	Properties      []Property  `json:"properties"`
	ConstructorArgs []Parameter `json:"constructorArgs"`
}

func (*ClassMeta) kind() Kind { return KindClass }

// Method is a class method other than the constructor.
type Method struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	Visibility string      `json:"visibility"`
	ReturnType string      `json:"returnType"`
	IsStatic   bool        `json:"isStatic"`
	IsAsync    bool        `json:"isAsync"`
	Line       int         `json:"line"`
	Content    string      `json:"content"`
	Comments   string      `json:"comments,omitempty"`
	Deprecated bool        `json:"deprecated"`
}

// Property is a class field declaration.
type Property struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	Type       string `json:"type,omitempty"`
	IsStatic   bool   `json:"isStatic"`
	Line       int    `json:"line"`
}

// Function returns the function payload, or nil when s is not a function.
func (s *Symbol) Function() *FunctionMeta {
	m, _ := s.Meta.(*FunctionMeta)
	return m
}

// TypeInfo returns the type payload, or nil when s is not a type.
func (s *Symbol) TypeInfo() *TypeMeta {
	m, _ := s.Meta.(*TypeMeta)
	return m
}

// Class returns the class payload, or nil when s is not a class.
func (s *Symbol) Class() *ClassMeta {
	m, _ := s.Meta.(*ClassMeta)
	return m
}

// Valid reports whether s satisfies the output contract: a non-empty name
// and a payload matching its declared type.
func (s *Symbol) Valid() bool {
	if s.Name == "" || s.Meta == nil {
		return false
	}
	return s.Meta.kind() == s.Type
}
