package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"semdex/internal/port"
)

// skipDirs are directories never worth descending into, applied before
// config excludes and gitignore rules. Hidden directories are skipped
// by name, so the dotted entries here are spelled out for clarity.
var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	".git":          {},
	"venv":          {},
	"env":           {},
	".venv":         {},
	".pytest_cache": {},
	".tox":          {},
	"node_modules":  {},
	".semdex":       {},
}

// Walker discovers source files under a root. Paths are reported
// relative to the root with forward slashes, in sorted order.
type Walker struct {
	includes         []string
	excludes         []string
	respectGitignore bool
}

func NewWalker(includes, excludes []string, respectGitignore bool) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.py"}
	}
	return &Walker{
		includes:         includes,
		excludes:         excludes,
		respectGitignore: respectGitignore,
	}
}

// FileInfo aliases the port type so Walker satisfies port.FileWalker.
type FileInfo = port.FileInfo

func (w *Walker) Walk(root string) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var gi *ignore.GitIgnore
	if w.respectGitignore {
		gi = loadGitignore(root)
	}

	var files []FileInfo

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()

		if info.IsDir() {
			if path == root {
				return nil
			}
			if shouldSkipDir(name) {
				return filepath.SkipDir
			}
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)
			if gi != nil && gi.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			if w.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are reported with lstat info and never followed.
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !w.shouldInclude(relPath) || w.shouldExclude(relPath) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relPath) {
			return nil
		}

		files = append(files, FileInfo{
			Path:    relPath,
			ModTime: info.ModTime().Unix(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	trimmed := strings.TrimSuffix(path, "/")
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// A pattern without glob metacharacters is an exact name,
		// matched against every path segment so "migrations"
		// excludes the directory and everything under it.
		if !strings.ContainsAny(pattern, "*?[{\\") && matchesSegment(trimmed, pattern) {
			return true
		}
	}
	return false
}

func matchesSegment(path, name string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == name {
			return true
		}
	}
	return false
}

func shouldSkipDir(name string) bool {
	if _, ok := skipDirs[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	return strings.HasSuffix(name, ".egg-info")
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// ReadFile reads one discovered file, joining the walk root with the
// relative path the walker reported.
func ReadFile(root, rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
}
