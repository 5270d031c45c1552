package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestWalkFindsPythonFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.py", "x = 1\n")
	writeFile(t, root, "pkg/a.py", "y = 2\n")
	writeFile(t, root, "README.md", "docs\n")

	files, err := NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"b.py", "pkg/a.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("paths = %v, want %v", paths(files), want)
	}
}

func TestWalkSortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.py", "")
	writeFile(t, root, "a/inner.py", "")
	writeFile(t, root, "m.py", "")

	files, err := NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a/inner.py", "m.py", "z.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("paths = %v, want %v", paths(files), want)
	}
}

func TestWalkSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", "")
	writeFile(t, root, "__pycache__/c.py", "")
	writeFile(t, root, "venv/lib/site.py", "")
	writeFile(t, root, ".git/hook.py", "")
	writeFile(t, root, "semdex.egg-info/meta.py", "")
	writeFile(t, root, ".hidden/h.py", "")
	writeFile(t, root, ".secret.py", "")

	files, err := NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"keep.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("paths = %v, want %v", paths(files), want)
	}
}

func TestWalkExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "")
	writeFile(t, root, "migrations/0001_init.py", "")

	files, err := NewWalker(nil, []string{"migrations/**"}, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"app.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("paths = %v, want %v", paths(files), want)
	}
}

func TestWalkExactNameExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "")
	writeFile(t, root, "setup.py", "")
	writeFile(t, root, "migrations/0001_init.py", "")

	files, err := NewWalker(nil, []string{"migrations", "setup.py"}, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"app.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("paths = %v, want %v", paths(files), want)
	}
}

func TestWalkGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.gen.py\n")
	writeFile(t, root, "app.py", "")
	writeFile(t, root, "models.gen.py", "")
	writeFile(t, root, "generated/stub.py", "")

	files, err := NewWalker(nil, nil, true).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("with gitignore: paths = %v, want %v", paths(files), want)
	}

	files, err = NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"app.py", "generated/stub.py", "models.gen.py"}
	if !reflect.DeepEqual(paths(files), want) {
		t.Errorf("without gitignore: paths = %v, want %v", paths(files), want)
	}
}

func TestWalkRecordsSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sized.py", "x = 1\n")

	files, err := NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %d, want 1", len(files))
	}
	if files[0].Size != int64(len("x = 1\n")) {
		t.Errorf("size = %d, want %d", files[0].Size, len("x = 1\n"))
	}
	if files[0].ModTime == 0 {
		t.Error("mod time not recorded")
	}
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil, false).Walk(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/mod.py", "value = 42\n")

	data, err := ReadFile(root, "pkg/mod.py")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "value = 42\n" {
		t.Errorf("content = %q", string(data))
	}

	if _, err := ReadFile(root, "pkg/missing.py"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
