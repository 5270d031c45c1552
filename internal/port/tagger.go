package port

import "semdex/internal/domain"

// Tagger classifies files and entities into business domain concepts.
type Tagger interface {
	TagFile(fa *domain.FileAnalysis) domain.DomainContext
	TagEntity(e domain.Entity) domain.DomainContext
}
