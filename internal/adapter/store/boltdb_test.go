package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"semdex/internal/domain"
	"semdex/internal/port"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleIndex() *domain.SemanticIndex {
	idx := domain.NewSemanticIndex("acme-books")
	idx.Files["ledger.py"] = domain.SemanticFile{
		FilePath: "ledger.py",
		DomainContext: domain.DomainContext{
			Tags: []domain.DomainTag{{
				Tag:        "ledger",
				Confidence: 0.6,
				Reasoning:  []string{"Found 3 keyword matches in file name: ledger, posting, entry"},
			}},
			PrimaryTag:          "ledger",
			IsAccountingRelated: true,
		},
		ContextScore: domain.ContextScore{
			OverallScore:        domain.TierHigh,
			DomainRelevance:     0.8,
			RelationshipDensity: 0.5,
			DocstringQuality:    0.7,
			TestCoverage:        0.0,
			Reasoning: []string{
				"High domain relevance - appears to be core accounting logic",
				"Medium connectivity - moderately connected",
			},
		},
		Entities: []string{"post_entry"},
	}
	idx.Entities["ledger.py::post_entry"] = domain.SemanticEntity{
		Name:     "post_entry",
		FilePath: "ledger.py",
		DomainContext: domain.DomainContext{
			Tags: []domain.DomainTag{{
				Tag:        "ledger",
				Confidence: 0.4,
				Reasoning:  []string{"Found 2 keyword matches in entity name: posting, entry"},
			}},
			PrimaryTag:          "ledger",
			IsAccountingRelated: true,
		},
		ContextScore: domain.ContextScore{
			OverallScore:    domain.TierMedium,
			DomainRelevance: 0.5,
			Reasoning:       []string{"Medium domain relevance - accounting-related"},
		},
		EntityType: "function",
	}
	idx.Workflows = append(idx.Workflows, domain.Workflow{
		Name: "journal_to_ledger: post_journal -> post_entry",
		Steps: []domain.WorkflowStep{
			{EntityName: "post_journal", FilePath: "journal.py", DomainTags: []string{"journal_entry"}, Role: "initiator"},
			{EntityName: "post_entry", FilePath: "ledger.py", DomainTags: []string{"ledger"}, Role: "finalizer"},
		},
		Confidence: 0.5,
		Reasoning: []string{
			"Found call path: post_journal -> post_entry",
			"Matches journal_to_ledger pattern",
			"Business process: ledger_posting",
		},
		BusinessProcess: "ledger_posting",
	})
	idx.Metadata = domain.IndexMetadata{
		TotalFiles:          1,
		TotalEntities:       1,
		TotalWorkflows:      1,
		AccountingFiles:     1,
		HighQualityEntities: 0,
	}
	return idx
}

func TestSaveLoadIndexRoundTrip(t *testing.T) {
	s := openStore(t)

	saved := sampleIndex()
	if err := s.SaveIndex(saved); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("loaded index differs:\ngot  %+v\nwant %+v", loaded, saved)
	}
}

func TestLoadIndexEmpty(t *testing.T) {
	s := openStore(t)

	_, err := s.LoadIndex()
	if !errors.Is(err, port.ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
}

func TestSaveIndexReplaces(t *testing.T) {
	s := openStore(t)

	if err := s.SaveIndex(sampleIndex()); err != nil {
		t.Fatal(err)
	}

	next := domain.NewSemanticIndex("acme-books")
	next.Files["tax.py"] = domain.SemanticFile{FilePath: "tax.py", Entities: []string{}}
	next.Metadata = domain.IndexMetadata{TotalFiles: 1}
	if err := s.SaveIndex(next); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(loaded.Files))
	}
	if _, ok := loaded.Files["tax.py"]; !ok {
		t.Error("replacement file missing")
	}
	if len(loaded.Entities) != 0 || len(loaded.Workflows) != 0 {
		t.Errorf("stale entities/workflows survived: %d/%d", len(loaded.Entities), len(loaded.Workflows))
	}
}

func TestWorkflowOrderPreserved(t *testing.T) {
	s := openStore(t)

	idx := domain.NewSemanticIndex("flows")
	for _, name := range []string{"third", "first", "second"} {
		idx.Workflows = append(idx.Workflows, domain.Workflow{
			Name:      name,
			Steps:     []domain.WorkflowStep{},
			Reasoning: []string{},
		})
	}
	if err := s.SaveIndex(idx); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, wf := range loaded.Workflows {
		names = append(names, wf.Name)
	}
	want := []string{"third", "first", "second"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("workflow order = %v, want %v", names, want)
	}
}

func TestPutListChunks(t *testing.T) {
	s := openStore(t)

	chunks := []domain.Chunk{
		{ID: "c1", FilePath: "a.py", Text: "Function: run at line 1", Tokens: []string{"function", "run", "line"}},
		{ID: "c2", FilePath: "b.py", Text: "Imports: os", Tokens: []string{"imports"}},
	}
	if err := s.PutChunks(chunks); err != nil {
		t.Fatal(err)
	}

	listed, err := s.ListChunks()
	if err != nil {
		t.Fatal(err)
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })
	if !reflect.DeepEqual(listed, chunks) {
		t.Errorf("chunks = %+v, want %+v", listed, chunks)
	}
}

func TestClearKeepsSchema(t *testing.T) {
	s := openStore(t)

	if err := s.SaveIndex(sampleIndex()); err != nil {
		t.Fatal(err)
	}
	if err := s.PutChunks([]domain.Chunk{{ID: "c1", FilePath: "a.py", Text: "t"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion, ConfigHash: "abc"}); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadIndex(); !errors.Is(err, port.ErrNoIndex) {
		t.Errorf("after clear, err = %v, want ErrNoIndex", err)
	}
	chunks, err := s.ListChunks()
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}

	info, err := s.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion || info.ConfigHash != "abc" {
		t.Errorf("schema info lost: %+v", info)
	}
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveIndex(sampleIndex()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ProjectName != "acme-books" {
		t.Errorf("project name = %q", loaded.ProjectName)
	}
	if len(loaded.Files) != 1 || len(loaded.Entities) != 1 || len(loaded.Workflows) != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", len(loaded.Files), len(loaded.Entities), len(loaded.Workflows))
	}
}
