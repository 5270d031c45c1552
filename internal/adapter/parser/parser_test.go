package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"semdex/internal/domain"
)

func parseSource(t *testing.T, src string) *domain.FileAnalysis {
	t.Helper()
	fa := NewPythonParser(0).ParseSource("test.py", []byte(src))
	if len(fa.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", fa.Errors)
	}
	return fa
}

func callEdges(fa *domain.FileAnalysis) [][2]string {
	var out [][2]string
	for _, r := range fa.Relationships {
		if r.Kind == domain.RelCalls {
			out = append(out, [2]string{r.Source, r.Target})
		}
	}
	return out
}

func TestParseFunction(t *testing.T) {
	fa := parseSource(t, `def calculate_tax(amount, rate=0.2):
    """Calculate tax for an amount."""
    return amount * rate
`)

	if len(fa.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(fa.Entities))
	}
	fn := fa.Entities[0]
	if fn.Name != "calculate_tax" || fn.Kind != domain.KindFunction {
		t.Errorf("got %s/%s, want calculate_tax/function", fn.Name, fn.Kind)
	}
	if fn.Docstring != "Calculate tax for an amount." {
		t.Errorf("docstring = %q", fn.Docstring)
	}
	if fn.SourceCode != "Calculate tax for an amount." {
		t.Errorf("source preview = %q", fn.SourceCode)
	}
	if !reflect.DeepEqual(fn.Meta.Args, []string{"amount", "rate"}) {
		t.Errorf("args = %v", fn.Meta.Args)
	}
	if fn.Meta.IsAsync {
		t.Error("IsAsync = true for plain def")
	}
	want := domain.Location{FilePath: "test.py", LineStart: 1, LineEnd: 3, ColumnStart: 0}
	if fn.Location != want {
		t.Errorf("location = %+v, want %+v", fn.Location, want)
	}
	if fn.Meta.LineCount != 3 {
		t.Errorf("line count = %d, want 3", fn.Meta.LineCount)
	}
}

func TestParseAsyncFunction(t *testing.T) {
	fa := parseSource(t, `async def fetch_data(url):
    await get(url)
`)

	if len(fa.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(fa.Entities))
	}
	fn := fa.Entities[0]
	if fn.Kind != domain.KindAsyncFunction || !fn.Meta.IsAsync {
		t.Errorf("kind = %s, IsAsync = %v", fn.Kind, fn.Meta.IsAsync)
	}
	edges := callEdges(fa)
	if !reflect.DeepEqual(edges, [][2]string{{"fetch_data", "get"}}) {
		t.Errorf("calls = %v", edges)
	}
}

func TestParseClass(t *testing.T) {
	fa := parseSource(t, `class LedgerEntry(BaseModel, abc.ABC):
    """A ledger entry."""

    def post(self, amount):
        """Post the entry."""
        return amount

    def validate(self):
        pass
`)

	if len(fa.Entities) != 1 {
		t.Fatalf("entities = %d, want 1 (methods must stay inside the class)", len(fa.Entities))
	}
	cls := fa.Entities[0]
	if cls.Kind != domain.KindClass || cls.Name != "LedgerEntry" {
		t.Fatalf("got %s/%s", cls.Name, cls.Kind)
	}
	if cls.Docstring != "A ledger entry." {
		t.Errorf("docstring = %q", cls.Docstring)
	}
	if !reflect.DeepEqual(cls.BaseClasses, []string{"BaseModel", "abc.ABC"}) {
		t.Errorf("bases = %v", cls.BaseClasses)
	}
	if len(cls.Methods) != 2 {
		t.Fatalf("methods = %d, want 2", len(cls.Methods))
	}
	post := cls.Methods[0]
	if post.Name != "post" || post.Location.LineStart != 4 {
		t.Errorf("method[0] = %s at line %d", post.Name, post.Location.LineStart)
	}
	if !reflect.DeepEqual(post.Meta.Args, []string{"self", "amount"}) {
		t.Errorf("post args = %v", post.Meta.Args)
	}

	var inherits []string
	for _, r := range fa.Relationships {
		if r.Kind == domain.RelInherits {
			if r.Source != "LedgerEntry" {
				t.Errorf("inherits source = %q", r.Source)
			}
			if r.Location == nil || r.Location.LineStart != 1 {
				t.Errorf("inherits location = %+v", r.Location)
			}
			inherits = append(inherits, r.Target)
		}
	}
	if !reflect.DeepEqual(inherits, []string{"BaseModel", "abc.ABC"}) {
		t.Errorf("inherits targets = %v", inherits)
	}
}

func TestParseDecorators(t *testing.T) {
	fa := parseSource(t, `@staticmethod
@app.route("/x")
def helper():
    pass
`)

	if len(fa.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(fa.Entities))
	}
	fn := fa.Entities[0]
	if !reflect.DeepEqual(fn.Meta.Decorators, []string{"staticmethod"}) {
		t.Errorf("decorators = %v, want bare names only", fn.Meta.Decorators)
	}
	if fn.Location.LineStart != 3 {
		t.Errorf("line = %d, want the def line", fn.Location.LineStart)
	}
	if len(callEdges(fa)) != 0 {
		t.Errorf("decorator expressions produced call edges: %v", callEdges(fa))
	}
}

func TestParseImports(t *testing.T) {
	fa := parseSource(t, `import os
import os.path
import numpy as np, sys as system
from collections import OrderedDict, defaultdict as dd
from . import sibling
from .utils import helper
from pkg.mod import *
`)

	type imp struct {
		name, module, alias string
		isFrom              bool
	}
	want := []imp{
		{"os", "os", "", false},
		{"os.path", "os.path", "", false},
		{"np", "numpy", "np", false},
		{"system", "sys", "system", false},
		{"OrderedDict", "collections", "", true},
		{"dd", "collections", "dd", true},
		{"sibling", "", "", true},
		{"helper", "utils", "", true},
		{"*", "pkg.mod", "", true},
	}
	if len(fa.Entities) != len(want) {
		t.Fatalf("entities = %d, want %d", len(fa.Entities), len(want))
	}
	for i, w := range want {
		e := fa.Entities[i]
		if e.Kind != domain.KindImport {
			t.Errorf("[%d] kind = %s", i, e.Kind)
		}
		got := imp{e.Name, e.Module, e.Alias, e.IsFrom}
		if got != w {
			t.Errorf("[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestNestedDefinitionsStayHidden(t *testing.T) {
	fa := parseSource(t, `def outer():
    def inner():
        other()
    return inner

class Top:
    class Inner:
        def m(self):
            pass

    def method(self):
        pass
`)

	var names []string
	for _, e := range fa.Entities {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, []string{"outer", "Top"}) {
		t.Fatalf("top-level entities = %v", names)
	}
	top := fa.Entities[1]
	if len(top.Methods) != 1 || top.Methods[0].Name != "method" {
		t.Errorf("Top methods = %v, nested class must not contribute", top.Methods)
	}

	// calls inside a nested def belong to the enclosing function
	edges := callEdges(fa)
	if !reflect.DeepEqual(edges, [][2]string{{"outer", "other"}}) {
		t.Errorf("calls = %v", edges)
	}
}

func TestCallAttribution(t *testing.T) {
	fa := parseSource(t, `import helpers

def process_invoice(invoice):
    total = helpers.tax.compute(invoice)
    validate(invoice)
    return post(total)

class PaymentService:
    def run(self, p):
        self.check(p)
        log("done")

startup()
`)

	want := [][2]string{
		{"process_invoice", "helpers.tax.compute"},
		{"process_invoice", "validate"},
		{"process_invoice", "post"},
		{"PaymentService.run", "self.check"},
		{"PaymentService.run", "log"},
	}
	if got := callEdges(fa); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestUnresolvableCallees(t *testing.T) {
	fa := parseSource(t, `def f():
    get_handler()()
    items[0].process()
    (lambda: 1)()
`)

	want := [][2]string{
		{"f", "get_handler"},
		{"f", "process"},
	}
	if got := callEdges(fa); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	for _, r := range fa.Relationships {
		if r.Source == "" || r.Target == "" {
			t.Errorf("empty endpoint in %+v", r)
		}
	}
}

func TestParameterNames(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"def f(a, b: int, c=1, d: str = \"x\", *args, e, **kw):\n    pass\n",
			[]string{"a", "b", "c", "d"}},
		{"def g(x, /, y, *, z):\n    pass\n",
			[]string{"y"}},
		{"def h():\n    pass\n", []string{}},
		{"def k(self, amount):\n    pass\n", []string{"self", "amount"}},
	}
	for _, tc := range cases {
		fa := parseSource(t, tc.src)
		if len(fa.Entities) != 1 {
			t.Fatalf("%q: entities = %d", tc.src, len(fa.Entities))
		}
		if got := fa.Entities[0].Meta.Args; !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%q: args = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestDocstringCleaning(t *testing.T) {
	fa := parseSource(t, "def f():\n    \"\"\"First line.\n\n    Indented body line.\n        Deeper.\n    \"\"\"\n    pass\n")

	want := "First line.\n\nIndented body line.\n    Deeper."
	if got := fa.Entities[0].Docstring; got != want {
		t.Errorf("docstring = %q, want %q", got, want)
	}
}

func TestDocstringPrefixes(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"def f():\n    r\"\"\"Raw doc.\"\"\"\n", "Raw doc."},
		{"def f():\n    'single'\n", "single"},
		{"def f():\n    x = 1\n", ""},
		{"def f():\n    pass\n", ""},
	}
	for _, tc := range cases {
		fa := parseSource(t, tc.src)
		if got := fa.Entities[0].Docstring; got != tc.want {
			t.Errorf("%q: docstring = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestEmptySource(t *testing.T) {
	fa := NewPythonParser(0).ParseSource("empty.py", nil)
	if len(fa.Errors) != 0 || len(fa.Entities) != 0 || len(fa.Relationships) != 0 {
		t.Errorf("empty source: errors=%v entities=%d rels=%d",
			fa.Errors, len(fa.Entities), len(fa.Relationships))
	}
}

func TestSyntaxErrorContained(t *testing.T) {
	fa := NewPythonParser(0).ParseSource("bad.py", []byte("def broken(:\n    pass\n"))

	if len(fa.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", fa.Errors)
	}
	if !strings.HasPrefix(fa.Errors[0], "syntax error at line ") {
		t.Errorf("error = %q", fa.Errors[0])
	}
	if len(fa.Entities) != 0 || len(fa.Relationships) != 0 {
		t.Errorf("broken file produced entities=%d rels=%d", len(fa.Entities), len(fa.Relationships))
	}
}

func TestSizeLimit(t *testing.T) {
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	fa := NewPythonParser(1024 * 1024).ParseSource("big.py", big)

	if len(fa.Errors) != 1 || fa.Errors[0] != "file exceeds maximum size (1 MB)" {
		t.Errorf("errors = %v", fa.Errors)
	}
}

func TestInvalidEncoding(t *testing.T) {
	fa := NewPythonParser(0).ParseSource("bin.py", []byte{0xff, 0xfe, 'x'})

	if len(fa.Errors) != 1 || fa.Errors[0] != "encoding error: invalid UTF-8" {
		t.Errorf("errors = %v", fa.Errors)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.py")
	src := "def post_entry(entry):\n    return entry\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	fa := NewPythonParser(0).Parse(path)
	if len(fa.Errors) != 0 {
		t.Fatalf("errors = %v", fa.Errors)
	}
	if fa.FilePath != path {
		t.Errorf("file path = %q, want %q", fa.FilePath, path)
	}
	if len(fa.Entities) != 1 || fa.Entities[0].Location.FilePath != path {
		t.Errorf("entity location path = %q", fa.Entities[0].Location.FilePath)
	}
}

func TestParseMissingFile(t *testing.T) {
	fa := NewPythonParser(0).Parse(filepath.Join(t.TempDir(), "missing.py"))

	if len(fa.Errors) != 1 || !strings.HasPrefix(fa.Errors[0], "read error:") {
		t.Errorf("errors = %v", fa.Errors)
	}
}
