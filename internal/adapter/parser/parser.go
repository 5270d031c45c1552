package parser

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"semdex/internal/domain"
)

// PythonParser turns Python source into FileAnalysis values. It never
// fails outright: unreadable, oversized, non-UTF-8 or syntactically
// broken input yields an analysis with the problem recorded in Errors
// and nothing extracted. Safe for concurrent use.
type PythonParser struct {
	maxFileSize int64
}

// NewPythonParser creates a parser. maxFileSize caps accepted source
// size in bytes; zero or negative disables the check.
func NewPythonParser(maxFileSize int64) *PythonParser {
	return &PythonParser{maxFileSize: maxFileSize}
}

// Parse reads and analyzes the file at path. The path is recorded
// verbatim in the analysis and in every extracted location.
func (p *PythonParser) Parse(path string) *domain.FileAnalysis {
	src, err := os.ReadFile(path)
	if err != nil {
		fa := domain.NewFileAnalysis(path)
		fa.AddError(fmt.Sprintf("read error: %v", err))
		return fa
	}
	return p.ParseSource(path, src)
}

// ParseSource analyzes src, recording path as the file path. Callers
// that read files themselves use this to keep reported paths relative
// to a project root.
func (p *PythonParser) ParseSource(path string, src []byte) *domain.FileAnalysis {
	fa := domain.NewFileAnalysis(path)

	if p.maxFileSize > 0 && int64(len(src)) > p.maxFileSize {
		fa.AddError(fmt.Sprintf("file exceeds maximum size (%d MB)", p.maxFileSize/(1024*1024)))
		return fa
	}
	if !utf8.Valid(src) {
		fa.AddError("encoding error: invalid UTF-8")
		return fa
	}

	tsp := sitter.NewParser()
	tsp.SetLanguage(python.GetLanguage())
	tree, err := tsp.ParseCtx(context.Background(), nil, src)
	if err != nil {
		fa.AddError(fmt.Sprintf("parse error: %v", err))
		return fa
	}

	root := tree.RootNode()
	if root.HasError() {
		fa.AddError(fmt.Sprintf("syntax error at line %d", firstErrorLine(root)))
		return fa
	}

	fa.Entities = extractEntities(root, src, path)
	fa.Relationships = extractRelationships(root, src, path)
	return fa
}

// firstErrorLine locates the first ERROR or missing node, depth first.
func firstErrorLine(root *sitter.Node) int {
	var find func(n *sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			return nil
		}
		for i := uint32(0); i < n.ChildCount(); i++ {
			if hit := find(n.Child(int(i))); hit != nil {
				return hit
			}
		}
		return nil
	}
	if hit := find(root); hit != nil {
		return int(hit.StartPoint().Row) + 1
	}
	return 1
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func nodeLocation(n *sitter.Node, path string) domain.Location {
	return domain.Location{
		FilePath:    path,
		LineStart:   int(n.StartPoint().Row) + 1,
		LineEnd:     int(n.EndPoint().Row) + 1,
		ColumnStart: int(n.StartPoint().Column),
	}
}

// dottedName resolves an identifier or attribute chain to its dotted
// form. A chain rooted in something unresolvable, such as a call
// result or a subscript, collapses to the trailing attribute name.
// Any other expression yields "".
func dottedName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return nodeText(n, src)
	case "attribute":
		attr := nodeText(n.ChildByFieldName("attribute"), src)
		if obj := dottedName(n.ChildByFieldName("object"), src); obj != "" {
			return obj + "." + attr
		}
		return attr
	default:
		return ""
	}
}
