package domain

import (
	"encoding/json"
	"fmt"
)

type EntityKind string

const (
	KindFunction      EntityKind = "function"
	KindAsyncFunction EntityKind = "async_function"
	KindClass         EntityKind = "class"
	KindImport        EntityKind = "import"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindFunction, KindAsyncFunction, KindClass, KindImport:
		return true
	}
	return false
}

func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid entity kind %q", s)
	}
	return k, nil
}

type RelationshipKind string

const (
	RelCalls     RelationshipKind = "calls"
	RelInherits  RelationshipKind = "inherits"
	RelImports   RelationshipKind = "imports"
	RelUses      RelationshipKind = "uses"
	RelDependsOn RelationshipKind = "depends_on"
)

// Location pins an entity or relationship to a source position.
// Lines are 1-indexed, columns 0-indexed.
type Location struct {
	FilePath    string `json:"file_path"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	ColumnStart int    `json:"column_start"`
}

// FunctionMeta is the metadata block carried by function entities.
type FunctionMeta struct {
	IsAsync    bool     `json:"is_async"`
	Decorators []string `json:"decorators"`
	Args       []string `json:"args"`
	LineCount  int      `json:"line_count"`
}

// Entity is a closed variant set: function, async function, class, or
// import, discriminated by Kind. Kind-specific fields are zero for the
// other variants. Values are frozen after construction; classes go
// through ClassBuilder.
type Entity struct {
	Name       string
	Kind       EntityKind
	Location   Location
	Docstring  string
	SourceCode string

	// function, async_function
	Meta FunctionMeta

	// class
	Methods     []Entity
	BaseClasses []string

	// import
	Module string
	Alias  string
	IsFrom bool
}

func NewFunction(name string, loc Location, docstring string, meta FunctionMeta) Entity {
	kind := KindFunction
	if meta.IsAsync {
		kind = KindAsyncFunction
	}
	// The preview holds the first 100 characters, not bytes, so a
	// multibyte rune at the cut is never split.
	preview := docstring
	if len(preview) > 100 {
		if runes := []rune(preview); len(runes) > 100 {
			preview = string(runes[:100])
		}
	}
	return Entity{
		Name:       name,
		Kind:       kind,
		Location:   loc,
		Docstring:  docstring,
		SourceCode: preview,
		Meta:       meta,
	}
}

func NewImport(name, module, alias string, isFrom bool, loc Location) Entity {
	return Entity{
		Name:     name,
		Kind:     KindImport,
		Location: loc,
		Module:   module,
		Alias:    alias,
		IsFrom:   isFrom,
	}
}

func (e Entity) IsFunction() bool {
	return e.Kind == KindFunction || e.Kind == KindAsyncFunction
}

// ClassBuilder accumulates methods during traversal and freezes the
// class entity on Build. The mutable intermediate never escapes.
type ClassBuilder struct {
	name      string
	loc       Location
	docstring string
	bases     []string
	methods   []Entity
}

func NewClassBuilder(name string, loc Location, docstring string) *ClassBuilder {
	return &ClassBuilder{name: name, loc: loc, docstring: docstring}
}

func (b *ClassBuilder) AddBase(base string) *ClassBuilder {
	b.bases = append(b.bases, base)
	return b
}

func (b *ClassBuilder) AddMethod(m Entity) error {
	if !m.IsFunction() {
		return fmt.Errorf("class %s: method %s has kind %q, want function", b.name, m.Name, m.Kind)
	}
	b.methods = append(b.methods, m)
	return nil
}

func (b *ClassBuilder) Build() Entity {
	methods := b.methods
	if methods == nil {
		methods = []Entity{}
	}
	bases := b.bases
	if bases == nil {
		bases = []string{}
	}
	return Entity{
		Name:        b.name,
		Kind:        KindClass,
		Location:    b.loc,
		Docstring:   b.docstring,
		Methods:     methods,
		BaseClasses: bases,
	}
}

// Serialized shapes differ by kind; see the marshal types below. Classes
// carry methods and base_classes, imports carry module/alias/is_from,
// functions carry the metadata block.
func (e Entity) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindClass:
		methods := e.Methods
		if methods == nil {
			methods = []Entity{}
		}
		bases := e.BaseClasses
		if bases == nil {
			bases = []string{}
		}
		return json.Marshal(classJSON{
			Name:        e.Name,
			Type:        e.Kind,
			Location:    e.Location,
			Docstring:   e.Docstring,
			SourceCode:  e.SourceCode,
			Metadata:    struct{}{},
			Methods:     methods,
			BaseClasses: bases,
		})
	case KindImport:
		return json.Marshal(importJSON{
			Name:       e.Name,
			Type:       e.Kind,
			Location:   e.Location,
			Docstring:  e.Docstring,
			SourceCode: e.SourceCode,
			Metadata:   struct{}{},
			Module:     e.Module,
			Alias:      e.Alias,
			IsFrom:     e.IsFrom,
		})
	default:
		meta := e.Meta
		if meta.Decorators == nil {
			meta.Decorators = []string{}
		}
		if meta.Args == nil {
			meta.Args = []string{}
		}
		return json.Marshal(functionJSON{
			Name:       e.Name,
			Type:       e.Kind,
			Location:   e.Location,
			Docstring:  e.Docstring,
			SourceCode: e.SourceCode,
			Metadata:   meta,
		})
	}
}

type functionJSON struct {
	Name       string       `json:"name"`
	Type       EntityKind   `json:"type"`
	Location   Location     `json:"location"`
	Docstring  string       `json:"docstring"`
	SourceCode string       `json:"source_code"`
	Metadata   FunctionMeta `json:"metadata"`
}

type classJSON struct {
	Name        string     `json:"name"`
	Type        EntityKind `json:"type"`
	Location    Location   `json:"location"`
	Docstring   string     `json:"docstring"`
	SourceCode  string     `json:"source_code"`
	Metadata    struct{}   `json:"metadata"`
	Methods     []Entity   `json:"methods"`
	BaseClasses []string   `json:"base_classes"`
}

type importJSON struct {
	Name       string     `json:"name"`
	Type       EntityKind `json:"type"`
	Location   Location   `json:"location"`
	Docstring  string     `json:"docstring"`
	SourceCode string     `json:"source_code"`
	Metadata   struct{}   `json:"metadata"`
	Module     string     `json:"module"`
	Alias      string     `json:"alias"`
	IsFrom     bool       `json:"is_from"`
}

// Relationship is a directed, name-based edge. Source and target are
// plain strings and may be unresolved; a relationship is evidence of a
// connection, not a verified binding.
type Relationship struct {
	Source   string           `json:"source"`
	Target   string           `json:"target"`
	Kind     RelationshipKind `json:"type"`
	Location *Location        `json:"source_location"`
	Metadata map[string]any   `json:"metadata"`
}

func NewRelationship(source, target string, kind RelationshipKind, loc *Location) Relationship {
	return Relationship{
		Source:   source,
		Target:   target,
		Kind:     kind,
		Location: loc,
		Metadata: map[string]any{},
	}
}
