package port

import "semdex/internal/domain"

// WorkflowDetector searches the project call graph for multi-step
// business processes. Entity contexts are precomputed by the caller and
// keyed by bare entity name.
type WorkflowDetector interface {
	Detect(pa *domain.ProjectAnalysis, contexts map[string]domain.EntityContext) []domain.Workflow
}
