package port

import "semdex/internal/domain"

// Scorer produces the four-factor quality assessment for files and
// entities in the context of a full project analysis.
type Scorer interface {
	ScoreFile(fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) domain.ContextScore
	ScoreEntity(e domain.Entity, fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) domain.ContextScore
}
