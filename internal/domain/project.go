package domain

import "encoding/json"

// FileAnalysis is the result of parsing a single source file. Failures
// during parsing are contained here as error strings; a FileAnalysis
// with errors and no entities is a valid result.
type FileAnalysis struct {
	FilePath      string
	Entities      []Entity
	Relationships []Relationship
	Errors        []string
}

func NewFileAnalysis(path string) *FileAnalysis {
	return &FileAnalysis{FilePath: path}
}

func (fa *FileAnalysis) AddError(msg string) {
	fa.Errors = append(fa.Errors, msg)
}

func (fa *FileAnalysis) Functions() []Entity {
	var out []Entity
	for _, e := range fa.Entities {
		if e.IsFunction() {
			out = append(out, e)
		}
	}
	return out
}

func (fa *FileAnalysis) Classes() []Entity {
	var out []Entity
	for _, e := range fa.Entities {
		if e.Kind == KindClass {
			out = append(out, e)
		}
	}
	return out
}

func (fa *FileAnalysis) Imports() []Entity {
	var out []Entity
	for _, e := range fa.Entities {
		if e.Kind == KindImport {
			out = append(out, e)
		}
	}
	return out
}

type fileSummary struct {
	TotalEntities int `json:"total_entities"`
	Functions     int `json:"functions"`
	Classes       int `json:"classes"`
	Imports       int `json:"imports"`
	Relationships int `json:"relationships"`
}

func (fa *FileAnalysis) MarshalJSON() ([]byte, error) {
	entities := fa.Entities
	if entities == nil {
		entities = []Entity{}
	}
	rels := fa.Relationships
	if rels == nil {
		rels = []Relationship{}
	}
	errs := fa.Errors
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(struct {
		FilePath      string         `json:"file_path"`
		Entities      []Entity       `json:"entities"`
		Relationships []Relationship `json:"relationships"`
		Errors        []string       `json:"errors"`
		Summary       fileSummary    `json:"summary"`
	}{
		FilePath:      fa.FilePath,
		Entities:      entities,
		Relationships: rels,
		Errors:        errs,
		Summary: fileSummary{
			TotalEntities: len(fa.Entities),
			Functions:     len(fa.Functions()),
			Classes:       len(fa.Classes()),
			Imports:       len(fa.Imports()),
			Relationships: len(fa.Relationships),
		},
	})
}

// ProjectAnalysis aggregates per-file results for a whole codebase.
// FileAnalyses keeps walker order; AllRelationships holds the qualified
// cross-file set built by the finalization pass.
type ProjectAnalysis struct {
	ProjectName      string
	FileAnalyses     []*FileAnalysis
	AllRelationships []Relationship
	Errors           []string
}

func NewProjectAnalysis(name string) *ProjectAnalysis {
	return &ProjectAnalysis{ProjectName: name}
}

func (pa *ProjectAnalysis) AllEntities() []Entity {
	var out []Entity
	for _, fa := range pa.FileAnalyses {
		out = append(out, fa.Entities...)
	}
	return out
}

func (pa *ProjectAnalysis) AllFunctions() []Entity {
	var out []Entity
	for _, e := range pa.AllEntities() {
		if e.IsFunction() {
			out = append(out, e)
		}
	}
	return out
}

func (pa *ProjectAnalysis) AllClasses() []Entity {
	var out []Entity
	for _, e := range pa.AllEntities() {
		if e.Kind == KindClass {
			out = append(out, e)
		}
	}
	return out
}

func (pa *ProjectAnalysis) MarshalJSON() ([]byte, error) {
	files := pa.FileAnalyses
	if files == nil {
		files = []*FileAnalysis{}
	}
	rels := pa.AllRelationships
	if rels == nil {
		rels = []Relationship{}
	}
	errs := pa.Errors
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(struct {
		ProjectName      string          `json:"project_name"`
		FileAnalyses     []*FileAnalysis `json:"file_analyses"`
		AllRelationships []Relationship  `json:"all_relationships"`
		Errors           []string        `json:"errors"`
		Summary          projectSummary  `json:"summary"`
	}{
		ProjectName:      pa.ProjectName,
		FileAnalyses:     files,
		AllRelationships: rels,
		Errors:           errs,
		Summary: projectSummary{
			TotalFiles:         len(pa.FileAnalyses),
			TotalEntities:      len(pa.AllEntities()),
			TotalFunctions:     len(pa.AllFunctions()),
			TotalClasses:       len(pa.AllClasses()),
			TotalRelationships: len(pa.AllRelationships),
		},
	})
}

type projectSummary struct {
	TotalFiles         int `json:"total_files"`
	TotalEntities      int `json:"total_entities"`
	TotalFunctions     int `json:"total_functions"`
	TotalClasses       int `json:"total_classes"`
	TotalRelationships int `json:"total_relationships"`
}
