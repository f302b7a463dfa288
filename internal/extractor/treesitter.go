package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkTree visits node and its descendants in pre-order, children in source
// order. Returning false from visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// nodeText returns the literal source span of a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

// findChildByType finds the first direct child with the given kind.
func findChildByType(node *sitter.Node, kinds ...string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && hasKind(child, kinds...) {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all direct children with the given kind.
func findChildrenByType(node *sitter.Node, kinds ...string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && hasKind(child, kinds...) {
			results = append(results, child)
		}
	}
	return results
}

// hasLiteralChild reports whether a direct child's text equals literal.
func hasLiteralChild(node *sitter.Node, source []byte, literal string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if nodeText(node.Child(i), source) == literal {
			return true
		}
	}
	return false
}

func hasKind(node *sitter.Node, kinds ...string) bool {
	kind := node.Kind()
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func parentKind(node *sitter.Node) string {
	if parent := node.Parent(); parent != nil {
		return parent.Kind()
	}
	return ""
}

// NodeContent reconstructs the text spanned by node from the file's lines.
// Columns are byte offsets, as reported by tree-sitter.
func NodeContent(node *sitter.Node, lines []string) string {
	if node == nil {
		return ""
	}
	start, end := node.StartPosition(), node.EndPosition()
	return spanContent(lines, int(start.Row), int(start.Column), int(end.Row), int(end.Column))
}

func spanContent(lines []string, startRow, startCol, endRow, endCol int) string {
	if startRow < 0 || startRow >= len(lines) || endRow < startRow {
		return ""
	}
	if endRow >= len(lines) {
		endRow = len(lines) - 1
		endCol = len(lines[endRow])
	}

	if startRow == endRow {
		line := lines[startRow]
		return line[clamp(startCol, len(line)):clamp(endCol, len(line))]
	}

	var b strings.Builder
	first := lines[startRow]
	b.WriteString(first[clamp(startCol, len(first)):])
	for row := startRow + 1; row < endRow; row++ {
		b.WriteByte('\n')
		b.WriteString(lines[row])
	}
	last := lines[endRow]
	b.WriteByte('\n')
	b.WriteString(last[:clamp(endCol, len(last))])
	return b.String()
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// splitLines splits source on newlines; column offsets index into each line.
func splitLines(source []byte) []string {
	return strings.Split(string(source), "\n")
}

// collectPreceding walks backward over node's immediate previous siblings,
// collecting those whose kind is in match. Siblings whose kind is in skip are
// stepped over without being collected. The walk stops at the first other
// sibling, or, when contiguous is set, at a blank line between two nodes.
// Anonymous whitespace tokens are ignored.
// Results are returned in source order.
func collectPreceding(node *sitter.Node, match, skip []string, contiguous bool) []*sitter.Node {
	if node == nil {
		return nil
	}

	var found []*sitter.Node
	next := node
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if isBlank(prev) {
			continue
		}
		if contiguous && int(next.StartPosition().Row)-int(prev.EndPosition().Row) > 1 {
			break
		}
		switch {
		case hasKind(prev, match...):
			found = append(found, prev)
		case hasKind(prev, skip...):
		default:
			return reverse(found)
		}
		next = prev
	}
	return reverse(found)
}

// isBlank reports whether node is an anonymous whitespace token, such as the
// newline terminators of the Go grammar.
func isBlank(node *sitter.Node) bool {
	return !node.IsNamed() && strings.TrimSpace(node.Kind()) == ""
}

func reverse(nodes []*sitter.Node) []*sitter.Node {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// Comments returns the contiguous comment block immediately preceding node,
// joined top-to-bottom with newlines, or "" when there is none.
func Comments(node *sitter.Node, source []byte) string {
	return commentsSkipping(node, source, nil)
}

func commentsSkipping(node *sitter.Node, source []byte, skip []string) string {
	found := collectPreceding(node, []string{"comment"}, skip, true)
	if len(found) == 0 {
		return ""
	}

	parts := make([]string, 0, len(found))
	for _, c := range found {
		parts = append(parts, nodeText(c, source))
	}
	return strings.Join(parts, "\n")
}

// IsDeprecated reports whether a comment block carries a deprecation marker.
func IsDeprecated(comments string) bool {
	lower := strings.ToLower(comments)
	return strings.Contains(lower, "@deprecated") || strings.Contains(lower, "deprecated:")
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
