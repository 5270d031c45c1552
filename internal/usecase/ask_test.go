package usecase

import (
	"errors"
	"strings"
	"testing"

	"semdex/internal/adapter/memstore"
	"semdex/internal/domain"
	"semdex/internal/port"
)

type fakeRetriever struct {
	chunks   []domain.ScoredChunk
	err      error
	gotQuery string
	gotK     int
}

func (f *fakeRetriever) Retrieve(query string, k int) ([]domain.ScoredChunk, error) {
	f.gotQuery, f.gotK = query, k
	return f.chunks, f.err
}

type captureLLM struct {
	system string
	prompt string
	reply  string
	called bool
}

func (c *captureLLM) Generate(prompt string) (string, error) {
	c.called, c.prompt = true, prompt
	return c.reply, nil
}

func (c *captureLLM) GenerateWithSystem(system, prompt string) (string, error) {
	c.called, c.system, c.prompt = true, system, prompt
	return c.reply, nil
}

func (c *captureLLM) ModelName() string { return "capture" }

func storeWithIndex(t *testing.T) *memstore.MemoryStore {
	t.Helper()
	st := memstore.NewMemoryStore()
	if err := st.SaveIndex(domain.NewSemanticIndex("books")); err != nil {
		t.Fatal(err)
	}
	return st
}

func scoredChunk(id, filePath, text string) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, FilePath: filePath, Text: text},
		Score: 1.0,
	}
}

func TestAskAnswersWithContext(t *testing.T) {
	ret := &fakeRetriever{chunks: []domain.ScoredChunk{
		scoredChunk("c1", "ledger.py", "Function: post_ledger at line 1"),
		scoredChunk("c2", "tax.py", "Function: calculate_tax at line 4"),
	}}
	llm := &captureLLM{reply: "Postings are written by post_ledger."}

	u := NewAskUseCase(storeWithIndex(t), ret, llm, 4000, nil)
	ans, err := u.Ask("How are postings written?", 5)
	if err != nil {
		t.Fatal(err)
	}

	if ans.Answer != "Postings are written by post_ledger." {
		t.Errorf("answer = %q", ans.Answer)
	}
	if ans.Model != "capture" || ans.Query != "How are postings written?" {
		t.Errorf("answer meta = %+v", ans)
	}
	if len(ans.Chunks) != 2 {
		t.Fatalf("chunks = %+v", ans.Chunks)
	}

	for _, want := range []string{
		"[ledger.py]",
		"Function: post_ledger at line 1",
		"[tax.py]",
		"Question: How are postings written?",
	} {
		if !strings.Contains(llm.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, llm.prompt)
		}
	}
	if !strings.Contains(llm.system, "Cite file paths") {
		t.Errorf("system prompt = %q", llm.system)
	}
}

func TestAskEmptyRetrievalSkipsLLM(t *testing.T) {
	llm := &captureLLM{reply: "should not be used"}
	u := NewAskUseCase(storeWithIndex(t), &fakeRetriever{}, llm, 4000, nil)

	ans, err := u.Ask("anything", 5)
	if err != nil {
		t.Fatal(err)
	}
	if ans.Answer != "No relevant code found for the query." {
		t.Errorf("answer = %q", ans.Answer)
	}
	if llm.called {
		t.Error("LLM called despite empty retrieval")
	}
	if ans.Chunks == nil || len(ans.Chunks) != 0 {
		t.Errorf("chunks = %#v, want empty", ans.Chunks)
	}
}

func TestAskNoIndex(t *testing.T) {
	ret := &fakeRetriever{}
	u := NewAskUseCase(memstore.NewMemoryStore(), ret, &captureLLM{}, 4000, nil)

	if _, err := u.Ask("anything", 5); !errors.Is(err, port.ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
	if ret.gotQuery != "" {
		t.Error("retriever called without an index")
	}
}

func TestAskRetrieverError(t *testing.T) {
	ret := &fakeRetriever{err: errors.New("boom")}
	u := NewAskUseCase(storeWithIndex(t), ret, &captureLLM{}, 4000, nil)

	if _, err := u.Ask("anything", 5); err == nil || !strings.Contains(err.Error(), "retrieval failed") {
		t.Errorf("err = %v", err)
	}
}

func TestAskContextBudgetSkipsOversized(t *testing.T) {
	big := scoredChunk("c1", "big.py", strings.Repeat("x", 200))
	small := scoredChunk("c2", "small.py", "short text")
	ret := &fakeRetriever{chunks: []domain.ScoredChunk{big, small}}
	llm := &captureLLM{reply: "ok"}

	u := NewAskUseCase(storeWithIndex(t), ret, llm, 60, nil)
	ans, err := u.Ask("q", 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(ans.Chunks) != 1 || ans.Chunks[0].ID != "c2" {
		t.Errorf("chunks = %+v, want only c2", ans.Chunks)
	}
	if strings.Contains(llm.prompt, "big.py") {
		t.Error("oversized chunk leaked into the prompt")
	}
}

func TestAskContextTruncatesWhenNothingFits(t *testing.T) {
	big := scoredChunk("c1", "big.py", strings.Repeat("y", 200))
	ret := &fakeRetriever{chunks: []domain.ScoredChunk{big}}
	llm := &captureLLM{reply: "ok"}

	u := NewAskUseCase(storeWithIndex(t), ret, llm, 30, nil)
	ans, err := u.Ask("q", 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(ans.Chunks) != 1 || ans.Chunks[0].ID != "c1" {
		t.Errorf("chunks = %+v, want truncated c1", ans.Chunks)
	}
	want := ("[big.py]\n" + strings.Repeat("y", 200))[:30]
	if !strings.Contains(llm.prompt, want) {
		t.Errorf("prompt missing truncated context:\n%s", llm.prompt)
	}
	if strings.Contains(llm.prompt, strings.Repeat("y", 40)) {
		t.Error("context exceeded budget")
	}
}

func TestAskPassesQueryAndK(t *testing.T) {
	ret := &fakeRetriever{chunks: []domain.ScoredChunk{scoredChunk("c1", "a.py", "t")}}
	u := NewAskUseCase(storeWithIndex(t), ret, &captureLLM{reply: "ok"}, 4000, nil)

	if _, err := u.Ask("where is the ledger posted", 3); err != nil {
		t.Fatal(err)
	}
	if ret.gotQuery != "where is the ledger posted" || ret.gotK != 3 {
		t.Errorf("retriever got %q / %d", ret.gotQuery, ret.gotK)
	}
}
