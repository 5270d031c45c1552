package usecase

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"semdex/internal/adapter/fs"
	"semdex/internal/domain"
	"semdex/internal/logging"
	"semdex/internal/port"
)

// AnalyzeOptions adjust a single analysis run.
type AnalyzeOptions struct {
	// ProjectName overrides the name recorded in the result. Empty
	// means the base name of the root directory.
	ProjectName string

	// Workers caps the parsing pool. Zero or negative means NumCPU.
	Workers int

	// Progress, when set, is called once per finished file.
	Progress func(done, total int, path string)
}

// AnalyzeUseCase walks a project tree, parses every matched file and
// aggregates the results into a ProjectAnalysis.
type AnalyzeUseCase struct {
	walker port.FileWalker
	parser port.CodeParser
	logger *slog.Logger
}

// NewAnalyzeUseCase creates a new analyze use case.
func NewAnalyzeUseCase(walker port.FileWalker, parser port.CodeParser, logger *slog.Logger) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		walker: walker,
		parser: parser,
		logger: logging.Or(logger),
	}
}

// Analyze parses every source file under root and aggregates the
// results. Parse failures are contained per file; the only fatal error
// is a root that does not exist or is not a directory.
func (u *AnalyzeUseCase) Analyze(root string, opts AnalyzeOptions) (*domain.ProjectAnalysis, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid root path: %s", root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root path: %s", root)
	}

	files, err := u.walker.Walk(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	name := opts.ProjectName
	if name == "" {
		name = filepath.Base(absRoot)
	}
	pa := domain.NewProjectAnalysis(name)

	u.logger.Info("analyzing project", "project", name, "files", len(files))

	for _, fa := range u.parseAll(absRoot, files, opts) {
		pa.FileAnalyses = append(pa.FileAnalyses, fa)
		for _, msg := range fa.Errors {
			pa.Errors = append(pa.Errors, fmt.Sprintf("%s: %s", fa.FilePath, msg))
		}
	}

	u.resolveCrossFile(pa)

	return pa, nil
}

// parseAll parses files through a bounded worker pool. The slice comes
// back in walker order regardless of which worker finished first, and
// only after every worker has exited.
func (u *AnalyzeUseCase) parseAll(root string, files []port.FileInfo, opts AnalyzeOptions) []*domain.FileAnalysis {
	if len(files) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	type parsed struct {
		idx int
		fa  *domain.FileAnalysis
	}

	jobs := make(chan int)
	results := make(chan parsed)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- parsed{idx: idx, fa: u.parseOne(root, files[idx].Path)}
			}
		}()
	}

	go func() {
		for idx := range files {
			jobs <- idx
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	analyses := make([]*domain.FileAnalysis, len(files))
	done := 0
	for res := range results {
		analyses[res.idx] = res.fa
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(files), res.fa.FilePath)
		}
	}
	return analyses
}

// parseOne reads one file and hands the source to the parser so the
// recorded paths stay relative to the root.
func (u *AnalyzeUseCase) parseOne(root, rel string) *domain.FileAnalysis {
	src, err := fs.ReadFile(root, rel)
	if err != nil {
		fa := domain.NewFileAnalysis(rel)
		fa.AddError(fmt.Sprintf("read error: %v", err))
		return fa
	}
	return u.parser.ParseSource(rel, src)
}

// resolveCrossFile builds the qualified cross-file relationship set.
// Entity names map to the file that declares them; on a bare-name
// collision the later file wins and the shadowed one is logged.
func (u *AnalyzeUseCase) resolveCrossFile(pa *domain.ProjectAnalysis) {
	entityFile := make(map[string]string)
	for _, fa := range pa.FileAnalyses {
		for _, e := range fa.Entities {
			if prev, ok := entityFile[e.Name]; ok && prev != fa.FilePath {
				u.logger.Warn("entity name collision",
					"name", e.Name, "kept", fa.FilePath, "shadowed", prev)
			}
			entityFile[e.Name] = fa.FilePath
		}
	}

	for _, fa := range pa.FileAnalyses {
		for _, rel := range fa.Relationships {
			targetFile, ok := entityFile[rel.Target]
			if !ok || targetFile == fa.FilePath {
				continue
			}

			meta := make(map[string]any, len(rel.Metadata)+3)
			for k, v := range rel.Metadata {
				meta[k] = v
			}
			meta["cross_file"] = true
			meta["source_file"] = fa.FilePath
			meta["target_file"] = targetFile

			pa.AllRelationships = append(pa.AllRelationships, domain.Relationship{
				Source:   fa.FilePath + "::" + rel.Source,
				Target:   targetFile + "::" + rel.Target,
				Kind:     rel.Kind,
				Location: rel.Location,
				Metadata: meta,
			})
		}
	}
}
