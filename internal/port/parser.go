package port

import "semdex/internal/domain"

// CodeParser turns a source file into a FileAnalysis. Implementations
// never fail outright: read, size, encoding, and syntax problems are
// recorded as error strings on the returned analysis.
type CodeParser interface {
	Parse(path string) *domain.FileAnalysis

	// ParseSource analyzes in-memory content under the given path.
	ParseSource(path string, src []byte) *domain.FileAnalysis
}
