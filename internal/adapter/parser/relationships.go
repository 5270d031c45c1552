package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"semdex/internal/domain"
)

// relationshipPass builds call and inheritance edges. A call is
// attributed to the top-level function or method whose subtree holds
// it, so calls inside nested functions and lambdas count toward the
// enclosing definition. Module-level calls have no owner and are
// dropped. Method callers are qualified as "Class.method".
type relationshipPass struct {
	src  []byte
	path string
	rels []domain.Relationship
}

func extractRelationships(root *sitter.Node, src []byte, path string) []domain.Relationship {
	p := &relationshipPass{src: src, path: path, rels: []domain.Relationship{}}
	p.walk(root, "")
	return p.rels
}

func (p *relationshipPass) walk(n *sitter.Node, className string) {
	for i := uint32(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(int(i))
		switch child.Type() {
		case "function_definition":
			p.function(child, className)
		case "class_definition":
			p.class(child, className)
		case "decorated_definition":
			// decorator expressions contribute no edges
			def := child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				p.function(def, className)
			case "class_definition":
				p.class(def, className)
			}
		default:
			p.walk(child, className)
		}
	}
}

func (p *relationshipPass) class(n *sitter.Node, className string) {
	if className != "" {
		return
	}
	name := nodeText(n.ChildByFieldName("name"), p.src)
	if name == "" {
		return
	}
	loc := nodeLocation(n, p.path)
	for _, base := range baseClassNames(n, p.src) {
		p.rels = append(p.rels, domain.NewRelationship(name, base, domain.RelInherits, &loc))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		p.walk(body, name)
	}
}

func (p *relationshipPass) function(n *sitter.Node, className string) {
	name := nodeText(n.ChildByFieldName("name"), p.src)
	if name == "" {
		return
	}
	if className != "" {
		name = className + "." + name
	}
	p.calls(n, name)
}

// calls records every call under n as an edge from caller. Callees
// that cannot be reduced to a name are skipped.
func (p *relationshipPass) calls(n *sitter.Node, caller string) {
	if n.Type() == "call" {
		if target := dottedName(n.ChildByFieldName("function"), p.src); target != "" {
			loc := nodeLocation(n, p.path)
			p.rels = append(p.rels, domain.NewRelationship(caller, target, domain.RelCalls, &loc))
		}
	}
	for i := uint32(0); i < n.NamedChildCount(); i++ {
		p.calls(n.NamedChild(int(i)), caller)
	}
}
