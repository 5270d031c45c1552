package usecase

import (
	"fmt"
	"log/slog"

	"semdex/internal/domain"
	"semdex/internal/logging"
	"semdex/internal/port"
)

// IndexUseCase runs the full pipeline: analyze, tag, score, detect
// workflows, chunk, and persist everything to the index store.
type IndexUseCase struct {
	analyzer *AnalyzeUseCase
	tagger   port.Tagger
	scorer   port.Scorer
	detector port.WorkflowDetector
	chunker  port.Chunker
	store    port.IndexStore
	embedder port.Embedder
	vectors  port.VectorStore
	logger   *slog.Logger
}

// NewIndexUseCase creates a new index use case. embedder and vectors
// may be nil, which skips vector generation.
func NewIndexUseCase(
	analyzer *AnalyzeUseCase,
	tagger port.Tagger,
	scorer port.Scorer,
	detector port.WorkflowDetector,
	chunker port.Chunker,
	store port.IndexStore,
	embedder port.Embedder,
	vectors port.VectorStore,
	logger *slog.Logger,
) *IndexUseCase {
	return &IndexUseCase{
		analyzer: analyzer,
		tagger:   tagger,
		scorer:   scorer,
		detector: detector,
		chunker:  chunker,
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		logger:   logging.Or(logger),
	}
}

// IndexOptions adjust a single indexing run.
type IndexOptions struct {
	ProjectName string
	Workers     int
	Progress    func(done, total int, path string)
}

// IndexResult summarizes an indexing run.
type IndexResult struct {
	Index             *domain.SemanticIndex
	FilesIndexed      int
	EntitiesIndexed   int
	WorkflowsDetected int
	ChunksCreated     int
	VectorsCreated    int
	Errors            []string
}

// Index analyzes the project under root, builds the semantic index and
// persists it. The store is rebuilt from scratch on every run: the
// semantic passes derive cross-file state, so stale per-file entries
// cannot be reused.
func (u *IndexUseCase) Index(root string, opts IndexOptions) (*IndexResult, error) {
	pa, err := u.analyzer.Analyze(root, AnalyzeOptions{
		ProjectName: opts.ProjectName,
		Workers:     opts.Workers,
		Progress:    opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	idx := u.BuildIndex(pa)

	if err := u.store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear previous index: %w", err)
	}
	if err := u.store.SaveIndex(idx); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}

	var chunks []domain.Chunk
	for _, fa := range pa.FileAnalyses {
		chunks = append(chunks, u.chunker.Chunk(fa)...)
	}
	if err := u.store.PutChunks(chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	vectors := 0
	if u.embedder != nil && u.vectors != nil {
		vectors, err = u.embedChunks(chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
	}

	u.logger.Info("index built",
		"files", len(idx.Files),
		"entities", len(idx.Entities),
		"workflows", len(idx.Workflows),
		"chunks", len(chunks),
		"vectors", vectors)

	return &IndexResult{
		Index:             idx,
		FilesIndexed:      len(idx.Files),
		EntitiesIndexed:   len(idx.Entities),
		WorkflowsDetected: len(idx.Workflows),
		ChunksCreated:     len(chunks),
		VectorsCreated:    vectors,
		Errors:            pa.Errors,
	}, nil
}

// BuildIndex runs the semantic passes over an aggregated analysis:
// domain tags and quality scores per file and per top-level entity,
// then workflow detection over the resulting entity contexts. Methods
// are not indexed separately; they live inside their class entity.
func (u *IndexUseCase) BuildIndex(pa *domain.ProjectAnalysis) *domain.SemanticIndex {
	idx := domain.NewSemanticIndex(pa.ProjectName)
	contexts := make(map[string]domain.EntityContext)

	for _, fa := range pa.FileAnalyses {
		names := make([]string, 0, len(fa.Entities))
		for _, e := range fa.Entities {
			names = append(names, e.Name)
		}
		idx.Files[fa.FilePath] = domain.SemanticFile{
			FilePath:      fa.FilePath,
			DomainContext: u.tagger.TagFile(fa),
			ContextScore:  u.scorer.ScoreFile(fa, pa),
			Entities:      names,
		}

		for _, e := range fa.Entities {
			entCtx := u.tagger.TagEntity(e)
			idx.Entities[domain.EntityKey(fa.FilePath, e.Name)] = domain.SemanticEntity{
				Name:          e.Name,
				FilePath:      fa.FilePath,
				DomainContext: entCtx,
				ContextScore:  u.scorer.ScoreEntity(e, fa, pa),
				EntityType:    string(e.Kind),
			}
			contexts[e.Name] = domain.EntityContext{FilePath: fa.FilePath, Domain: entCtx}
		}
	}

	idx.Workflows = u.detector.Detect(pa, contexts)
	idx.Metadata = computeMetadata(idx)
	return idx
}

func computeMetadata(idx *domain.SemanticIndex) domain.IndexMetadata {
	meta := domain.IndexMetadata{
		TotalFiles:     len(idx.Files),
		TotalEntities:  len(idx.Entities),
		TotalWorkflows: len(idx.Workflows),
	}
	for _, f := range idx.Files {
		if f.DomainContext.IsAccountingRelated {
			meta.AccountingFiles++
		}
	}
	for _, e := range idx.Entities {
		if e.ContextScore.OverallScore == domain.TierHigh {
			meta.HighQualityEntities++
		}
	}
	return meta
}

// embedChunks generates a vector per chunk and upserts the batch.
func (u *IndexUseCase) embedChunks(chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vecs, err := u.embedder.Embed(texts)
	if err != nil {
		return 0, err
	}
	if len(vecs) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}

	items := make([]port.VectorItem, len(chunks))
	for i := range chunks {
		items[i] = port.VectorItem{ID: chunks[i].ID, Vector: vecs[i]}
	}
	if err := u.vectors.Upsert(items); err != nil {
		return 0, err
	}
	return len(items), nil
}
