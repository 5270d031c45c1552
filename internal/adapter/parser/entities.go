package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"semdex/internal/domain"
)

// entityPass collects functions, classes and imports from a module
// tree. Methods belong to their class entity, never to the top level.
// Function bodies are not entered, so definitions nested inside them
// stay invisible. Classes nested inside classes are skipped outright.
type entityPass struct {
	src      []byte
	path     string
	entities []domain.Entity
}

func extractEntities(root *sitter.Node, src []byte, path string) []domain.Entity {
	p := &entityPass{src: src, path: path, entities: []domain.Entity{}}
	p.walk(root, nil)
	return p.entities
}

// walk dispatches definitions under n, descending through compound
// statements. class is the builder of the enclosing class, nil at
// module level.
func (p *entityPass) walk(n *sitter.Node, class *domain.ClassBuilder) {
	for i := uint32(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(int(i))
		switch child.Type() {
		case "function_definition":
			p.function(child, nil, class)
		case "class_definition":
			p.class(child, class)
		case "decorated_definition":
			p.decorated(child, class)
		case "import_statement":
			p.plainImport(child)
		case "import_from_statement":
			p.fromImport(child)
		default:
			p.walk(child, class)
		}
	}
}

func (p *entityPass) decorated(n *sitter.Node, class *domain.ClassBuilder) {
	decorators := []string{}
	for i := uint32(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(int(i))
		if child.Type() != "decorator" {
			continue
		}
		// only bare names count; @app.route(...) forms are dropped
		if expr := child.NamedChild(0); expr != nil && expr.Type() == "identifier" {
			decorators = append(decorators, nodeText(expr, p.src))
		}
	}
	def := n.ChildByFieldName("definition")
	if def == nil {
		return
	}
	switch def.Type() {
	case "function_definition":
		p.function(def, decorators, class)
	case "class_definition":
		p.class(def, class)
	}
}

func (p *entityPass) function(n *sitter.Node, decorators []string, class *domain.ClassBuilder) {
	name := nodeText(n.ChildByFieldName("name"), p.src)
	if name == "" {
		return
	}
	if decorators == nil {
		decorators = []string{}
	}
	loc := nodeLocation(n, p.path)
	meta := domain.FunctionMeta{
		IsAsync:    isAsyncDef(n),
		Decorators: decorators,
		Args:       parameterNames(n, p.src),
		LineCount:  loc.LineEnd - loc.LineStart + 1,
	}
	fn := domain.NewFunction(name, loc, p.docstring(n), meta)
	if class != nil {
		_ = class.AddMethod(fn)
		return
	}
	p.entities = append(p.entities, fn)
}

func (p *entityPass) class(n *sitter.Node, class *domain.ClassBuilder) {
	if class != nil {
		return
	}
	name := nodeText(n.ChildByFieldName("name"), p.src)
	if name == "" {
		return
	}
	b := domain.NewClassBuilder(name, nodeLocation(n, p.path), p.docstring(n))
	for _, base := range baseClassNames(n, p.src) {
		b.AddBase(base)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		p.walk(body, b)
	}
	p.entities = append(p.entities, b.Build())
}

// baseClassNames reads the superclass list. Plain and dotted names
// count; calls, subscripts and keyword arguments are ignored.
func baseClassNames(n *sitter.Node, src []byte) []string {
	args := n.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var bases []string
	for i := uint32(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(int(i))
		if child.Type() == "keyword_argument" {
			continue
		}
		if name := dottedName(child, src); name != "" {
			bases = append(bases, name)
		}
	}
	return bases
}

func isAsyncDef(n *sitter.Node) bool {
	for i := uint32(0); i < n.ChildCount(); i++ {
		if n.Child(int(i)).Type() == "async" {
			return true
		}
	}
	return false
}

// parameterNames collects positional parameter names the way Python
// itself reports them: names up to * or *args, minus positional-only
// names before /. Keyword-only parameters and splats are left out.
func parameterNames(n *sitter.Node, src []byte) []string {
	names := []string{}
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return names
	}
	for i := uint32(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(int(i))
		switch child.Type() {
		case "identifier":
			names = append(names, nodeText(child, src))
		case "typed_parameter":
			inner := child.NamedChild(0)
			if inner == nil {
				continue
			}
			if inner.Type() == "identifier" {
				names = append(names, nodeText(inner, src))
			} else if inner.Type() == "list_splat_pattern" {
				return names
			}
		case "default_parameter", "typed_default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				names = append(names, nodeText(nameNode, src))
			}
		case "positional_separator":
			names = names[:0]
		case "list_splat_pattern", "keyword_separator":
			return names
		}
	}
	return names
}

// docstring returns the cleaned docstring of a function or class
// body, or "" when the first statement is not a string literal.
func (p *entityPass) docstring(def *sitter.Node) string {
	body := def.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	lit := first.NamedChild(0)
	if lit == nil || lit.Type() != "string" {
		return ""
	}
	return cleanDocstring(stripQuotes(nodeText(lit, p.src)))
}

// stripQuotes removes string prefixes (r, b, u, f in any case) and
// the surrounding quotes from a string literal.
func stripQuotes(s string) string {
	for len(s) > 0 {
		switch s[0] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
			s = s[1:]
			continue
		}
		break
	}
	for _, q := range []string{`"""`, "'''"} {
		if len(s) >= 6 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[3 : len(s)-3]
		}
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// cleanDocstring normalizes indentation the way inspect.cleandoc
// does: the first line loses its leading whitespace, later lines
// lose their longest common indent, and blank edge lines go.
func cleanDocstring(s string) string {
	lines := strings.Split(s, "\n")
	lines[0] = strings.TrimLeft(lines[0], " \t")
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if indent := len(line) - len(trimmed); margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin > 0 {
		for i, line := range lines[1:] {
			if len(line) >= margin {
				lines[i+1] = line[margin:]
			} else {
				lines[i+1] = strings.TrimLeft(line, " \t")
			}
		}
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
