package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"semdex/internal/domain"
)

// plainImport handles "import a.b" and "import a.b as c". One entity
// per imported name; an aliased import is recorded under its alias.
func (p *entityPass) plainImport(n *sitter.Node) {
	loc := nodeLocation(n, p.path)
	for i := uint32(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(int(i))
		switch child.Type() {
		case "dotted_name":
			module := nodeText(child, p.src)
			p.entities = append(p.entities, domain.NewImport(module, module, "", false, loc))
		case "aliased_import":
			module := nodeText(child.ChildByFieldName("name"), p.src)
			alias := nodeText(child.ChildByFieldName("alias"), p.src)
			p.entities = append(p.entities, domain.NewImport(alias, module, alias, false, loc))
		}
	}
}

// fromImport handles "from m import a, b as c" and the wildcard form.
// Relative imports keep the module name with the leading dots
// stripped, so "from . import x" has an empty module.
func (p *entityPass) fromImport(n *sitter.Node) {
	loc := nodeLocation(n, p.path)
	module := ""
	if m := n.ChildByFieldName("module_name"); m != nil {
		module = strings.TrimLeft(nodeText(m, p.src), ".")
	}
	afterImport := false
	for i := uint32(0); i < n.ChildCount(); i++ {
		child := n.Child(int(i))
		if !child.IsNamed() {
			if child.Type() == "import" {
				afterImport = true
			}
			continue
		}
		if !afterImport {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			name := nodeText(child, p.src)
			p.entities = append(p.entities, domain.NewImport(name, module, "", true, loc))
		case "aliased_import":
			alias := nodeText(child.ChildByFieldName("alias"), p.src)
			p.entities = append(p.entities, domain.NewImport(alias, module, alias, true, loc))
		case "wildcard_import":
			p.entities = append(p.entities, domain.NewImport("*", module, "", true, loc))
		}
	}
}
