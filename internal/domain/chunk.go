package domain

// Chunk is a retrievable text snippet derived from a FileAnalysis,
// used by the ask pipeline.
type Chunk struct {
	ID       string   `json:"id"`
	FilePath string   `json:"file_path"`
	Text     string   `json:"text"`
	Tokens   []string `json:"tokens"`
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	Query  string  `json:"query"`
	Answer string  `json:"answer"`
	Model  string  `json:"model"`
	Chunks []Chunk `json:"chunks"`
}
