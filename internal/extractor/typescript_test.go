package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// Test Plan for the TypeScript extractor:
// - Constructor populates constructorArgs only, optional flag per parameter
// - Methods carry their own comments and deprecation, independent of the class
// - Properties: visibility, static, type preference for predefined types
// - Interfaces, type aliases and enums map to type kinds
// - Non-exported classes and types are dropped
// - Function export policy: "exported" vs "all"
// - Comments before an export statement belong to the declaration
// - Fixture file under both policies
// - Return types keep generic annotations whole; missing ones are void
// - .tsx files parse JSX without syntax errors; .ts files do not accept it

func extractTS(t *testing.T, policy FunctionExportPolicy, src string) []symbols.Symbol {
	t.Helper()
	syms, err := NewTypeScriptExtractor(Options{}, policy).ExtractFromFile("test.ts", []byte(src), "ts-sdk")
	require.NoError(t, err)
	return syms
}

func TestTypeScriptExtractor_Constructor(t *testing.T) {
	t.Parallel()

	src := `export class Example {
  constructor(param1: string, private param2?: number) {}
}
`
	syms := extractTS(t, FunctionsExported, src)
	require.Len(t, syms, 1)
	assert.Equal(t, symbols.KindClass, syms[0].Type)

	class := syms[0].Class()
	require.NotNil(t, class)
	require.Len(t, class.ConstructorArgs, 2)
	assert.Equal(t, symbols.Parameter{Name: "param1", Type: "string", Optional: false}, class.ConstructorArgs[0])
	assert.Equal(t, "param2", class.ConstructorArgs[1].Name)
	assert.Equal(t, "number", class.ConstructorArgs[1].Type)
	assert.True(t, class.ConstructorArgs[1].Optional)
	assert.Empty(t, class.Methods)
	assert.Empty(t, class.Properties)
}

func TestTypeScriptExtractor_MethodComments(t *testing.T) {
	t.Parallel()

	src := `/** Client for the API. */
export class Client {
  /**
   * @deprecated use fetch instead
   */
  lookup(id: string): string {
    return id;
  }

  fetch(id: string) {
    return id;
  }
}
`
	syms := extractTS(t, FunctionsExported, src)
	require.Len(t, syms, 1)

	client := syms[0]
	assert.Equal(t, "/** Client for the API. */", client.Comments)
	assert.False(t, client.Deprecated)
	assert.Equal(t, 1, client.Line)

	class := client.Class()
	require.Len(t, class.Methods, 2)

	lookup := class.Methods[0]
	assert.Equal(t, "lookup", lookup.Name)
	assert.Contains(t, lookup.Comments, "@deprecated")
	assert.True(t, lookup.Deprecated)
	assert.Equal(t, "string", lookup.ReturnType)
	assert.Equal(t, symbols.VisibilityPublic, lookup.Visibility)
	assert.Equal(t, 5, lookup.Line)
	assert.Equal(t, "lookup(id: string): string {\n    return id;\n  }", lookup.Content)

	fetch := class.Methods[1]
	assert.Empty(t, fetch.Comments)
	assert.False(t, fetch.Deprecated)
	assert.Equal(t, "void", fetch.ReturnType)
}

func TestTypeScriptExtractor_MembersAndModifiers(t *testing.T) {
	t.Parallel()

	src := `export class Store {
  private static count: number = 0;
  readonly items: Map<string,   Item>;
  label = "store";

  protected static create(): Store {
    return new Store();
  }

  public async load(key: string, fresh?: boolean): Promise<Item> {
    return this.items.get(key);
  }
}
`
	syms := extractTS(t, FunctionsExported, src)
	require.Len(t, syms, 1)
	class := syms[0].Class()

	require.Len(t, class.Properties, 3)
	assert.Equal(t, symbols.Property{Name: "count", Visibility: "private", Type: "number", IsStatic: true, Line: 1}, class.Properties[0])
	assert.Equal(t, symbols.Property{Name: "items", Visibility: "public", Type: "Map<string, Item>", Line: 2}, class.Properties[1])
	assert.Equal(t, symbols.Property{Name: "label", Visibility: "public", Line: 3}, class.Properties[2])

	require.Len(t, class.Methods, 2)
	create := class.Methods[0]
	assert.Equal(t, "create", create.Name)
	assert.Equal(t, "protected", create.Visibility)
	assert.True(t, create.IsStatic)
	assert.False(t, create.IsAsync)
	assert.Equal(t, "Store", create.ReturnType)

	load := class.Methods[1]
	assert.Equal(t, "public", load.Visibility)
	assert.True(t, load.IsAsync)
	assert.False(t, load.IsStatic)
	assert.Equal(t, "Promise<Item>", load.ReturnType)
	assert.Equal(t, []symbols.Parameter{
		{Name: "key", Type: "string", Optional: false},
		{Name: "fresh", Type: "boolean", Optional: true},
	}, load.Parameters)
}

func TestTypeScriptExtractor_TypeDeclarations(t *testing.T) {
	t.Parallel()

	src := `export interface User {
  id: string;
}

export type UserID = string;

export enum Role {
  Admin,
}

interface Hidden {}

type Local = number;

class Internal {}
`
	syms := extractTS(t, FunctionsExported, src)
	require.Equal(t, []string{"User", "UserID", "Role"}, names(syms))

	assert.Equal(t, symbols.TypeKindInterface, syms[0].TypeInfo().Kind)
	assert.Equal(t, symbols.TypeKindType, syms[1].TypeInfo().Kind)
	assert.Equal(t, symbols.TypeKindEnum, syms[2].TypeInfo().Kind)
	assert.Equal(t, "type UserID = string;", syms[1].Content)
	assert.Equal(t, syms[1].Content, syms[1].TypeInfo().Definition)
}

func TestTypeScriptExtractor_FunctionExportPolicy(t *testing.T) {
	t.Parallel()

	src := `// Exported helper.
export function exported(a: number): number {
  return a;
}

function local(): void {}

export async function later(): Promise<void> {}
`
	exportedOnly := extractTS(t, FunctionsExported, src)
	assert.Equal(t, []string{"exported", "later"}, names(exportedOnly))

	all := extractTS(t, FunctionsAll, src)
	require.Equal(t, []string{"exported", "local", "later"}, names(all))

	exported := all[0]
	assert.Equal(t, "// Exported helper.", exported.Comments)
	assert.Equal(t, "number", exported.Function().ReturnType)
	assert.Equal(t, []symbols.Parameter{{Name: "a", Type: "number"}}, exported.Function().Parameters)
	assert.False(t, exported.Function().IsAsync)

	assert.Equal(t, "void", all[1].Function().ReturnType)
	assert.True(t, all[2].Function().IsAsync)
}

func TestTypeScriptExtractor_DefaultPolicyIsExported(t *testing.T) {
	t.Parallel()

	syms, err := NewTypeScriptExtractor(Options{}, "").ExtractFromFile("x.ts", []byte("function local() {}\n"), "")
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestTypeScriptExtractor_Fixture(t *testing.T) {
	t.Parallel()

	entries := []Entry{{Path: "../../testdata/sdk/typescript/service.ts", Namespace: "users"}}

	syms, err := NewTypeScriptExtractor(Options{}, FunctionsExported).Extract(context.Background(), entries)
	require.NoError(t, err)
	require.Equal(t, []string{"User", "UserID", "Role", "UserService", "createService", "loadAll"}, names(syms))

	lines := make([]int, 0, len(syms))
	for _, s := range syms {
		lines = append(lines, s.Line)
		assert.True(t, s.Valid(), s.Name)
	}
	assert.Equal(t, []int{3, 8, 10, 22, 46, 52}, lines)
	assert.Equal(t, "/** A user record. */", syms[0].Comments)

	service := syms[3]
	assert.Equal(t, "/**\n * Service for users.\n */", service.Comments)
	class := service.Class()
	assert.Equal(t, []string{"getUser", "fetchUser", "create"}, methodNames(class))
	assert.Len(t, class.Properties, 2)
	assert.Len(t, class.ConstructorArgs, 2)
	assert.True(t, class.Methods[0].Deprecated)
	assert.Equal(t, 33, class.Methods[0].Line)

	all, err := NewTypeScriptExtractor(Options{}, FunctionsAll).Extract(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "UserID", "Role", "UserService", "createService", "internalHelper", "loadAll"}, names(all))
}

func methodNames(class *symbols.ClassMeta) []string {
	out := make([]string, 0, len(class.Methods))
	for _, m := range class.Methods {
		out = append(out, m.Name)
	}
	return out
}

func TestTypeScriptExtractor_TSXUsesJSXGrammar(t *testing.T) {
	t.Parallel()

	src := []byte(`export interface ButtonProps {
  label: string;
}

export function Button(props: ButtonProps): JSX.Element {
  return <div className="x">{props.label}</div>;
}
`)
	ext := NewTypeScriptExtractor(Options{SyntaxPolicy: SyntaxReject}, FunctionsExported)

	syms, err := ext.ExtractFromFile("components/Button.tsx", src, "ui")
	require.NoError(t, err)
	assert.Equal(t, []string{"ButtonProps", "Button"}, names(syms))
	assert.Equal(t, LanguageTypeScript, syms[1].Language)

	upper, err := ext.ExtractFromFile("components/Button.TSX", src, "ui")
	require.NoError(t, err)
	assert.Equal(t, names(syms), names(upper), "extension match ignores case")

	_, err = ext.ExtractFromFile("components/Button.ts", src, "ui")
	assert.ErrorIs(t, err, ErrSyntax, "plain .ts files keep the TypeScript grammar")
}

func TestTypeScriptExtractor_ReturnTypes(t *testing.T) {
	t.Parallel()

	src := `export function fetch(): Promise<User> {}
export function done(): Promise<void> {}
export function count(): number {}
export function pair(): [string,
  number] {}
export function bare() {}
`
	syms := extractTS(t, FunctionsExported, src)
	require.Equal(t, []string{"fetch", "done", "count", "pair", "bare"}, names(syms))

	returns := make([]string, 0, len(syms))
	for _, s := range syms {
		returns = append(returns, s.Function().ReturnType)
	}
	assert.Equal(t, []string{"Promise<User>", "Promise<void>", "number", "[string, number]", "void"}, returns)
}
