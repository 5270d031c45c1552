package domain

// QualityTier is the discrete quality level a context score reduces to.
type QualityTier string

const (
	TierLow    QualityTier = "LOW"
	TierMedium QualityTier = "MEDIUM"
	TierHigh   QualityTier = "HIGH"
)

// DomainTag classifies a file or entity into a business concept with a
// confidence in [0,1] and the evidence that produced it.
type DomainTag struct {
	Tag        string   `json:"tag"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
}

// DomainContext is the full tagging result. Tags are sorted by
// confidence descending; PrimaryTag is the label of the strongest one
// and empty when nothing survived the confidence cutoff.
type DomainContext struct {
	Tags                []DomainTag `json:"tags"`
	PrimaryTag          string      `json:"primary_tag"`
	IsAccountingRelated bool        `json:"is_accounting_related"`
}

// ContextScore is the four-factor quality assessment. OverallScore is
// the tier the weighted combination reduced to; the components keep
// their raw [0,1] values for explainability.
type ContextScore struct {
	OverallScore        QualityTier `json:"overall_score"`
	DomainRelevance     float64     `json:"domain_relevance"`
	RelationshipDensity float64     `json:"relationship_density"`
	DocstringQuality    float64     `json:"docstring_quality"`
	TestCoverage        float64     `json:"test_coverage"`
	Reasoning           []string    `json:"reasoning"`
}

type SemanticFile struct {
	FilePath      string        `json:"file_path"`
	DomainContext DomainContext `json:"domain_context"`
	ContextScore  ContextScore  `json:"context_score"`
	Entities      []string      `json:"entities"`
}

type SemanticEntity struct {
	Name          string        `json:"name"`
	FilePath      string        `json:"file_path"`
	DomainContext DomainContext `json:"domain_context"`
	ContextScore  ContextScore  `json:"context_score"`
	EntityType    string        `json:"entity_type"`
}

// EntityContext pairs an entity's tagging result with the file that
// defines it, keyed by bare entity name in detector input.
type EntityContext struct {
	FilePath string
	Domain   DomainContext
}

const (
	RoleInitiator = "initiator"
	RoleProcessor = "processor"
	RoleFinalizer = "finalizer"
)

type WorkflowStep struct {
	EntityName string   `json:"entity_name"`
	FilePath   string   `json:"file_path"`
	DomainTags []string `json:"domain_tags"`
	Role       string   `json:"role"`
}

// Workflow is an inferred multi-step business process reconstructed
// from a call-graph path between concept-tagged entities.
type Workflow struct {
	Name            string         `json:"name"`
	Steps           []WorkflowStep `json:"steps"`
	Confidence      float64        `json:"confidence"`
	Reasoning       []string       `json:"reasoning"`
	BusinessProcess string         `json:"business_process"`
}

type IndexMetadata struct {
	TotalFiles          int `json:"total_files"`
	TotalEntities       int `json:"total_entities"`
	TotalWorkflows      int `json:"total_workflows"`
	AccountingFiles     int `json:"accounting_files"`
	HighQualityEntities int `json:"high_quality_entities"`
}

// SemanticIndex is the persisted, queryable aggregate of tags, scores,
// and workflows for a project. Entity keys are "<file_path>::<name>".
// The index serializes to JSON and reconstructs without loss.
type SemanticIndex struct {
	ProjectName string                    `json:"project_name"`
	Files       map[string]SemanticFile   `json:"files"`
	Entities    map[string]SemanticEntity `json:"entities"`
	Workflows   []Workflow                `json:"workflows"`
	Metadata    IndexMetadata             `json:"metadata"`
}

func NewSemanticIndex(projectName string) *SemanticIndex {
	return &SemanticIndex{
		ProjectName: projectName,
		Files:       map[string]SemanticFile{},
		Entities:    map[string]SemanticEntity{},
		Workflows:   []Workflow{},
	}
}

// EntityKey builds the index key for an entity in a file.
func EntityKey(filePath, name string) string {
	return filePath + "::" + name
}
