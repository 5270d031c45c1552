package retriever

import (
	"path/filepath"
	"strings"
	"testing"

	"semdex/internal/adapter/embedding"
	"semdex/internal/adapter/memstore"
	"semdex/internal/adapter/store"
	"semdex/internal/domain"
	"semdex/internal/port"
)

func openVectorFixture(t *testing.T, chunks []domain.Chunk) *VectorRetriever {
	t.Helper()

	boltStore, err := store.NewBoltStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { boltStore.Close() })

	emb := embedding.NewMockEmbedder(64)
	vs, err := store.NewBoltVectorStore(boltStore.DB(), emb.Dimension())
	if err != nil {
		t.Fatal(err)
	}

	if err := boltStore.PutChunks(chunks); err != nil {
		t.Fatal(err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := emb.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}
	items := make([]port.VectorItem, len(chunks))
	for i, c := range chunks {
		items[i] = port.VectorItem{ID: c.ID, Vector: vecs[i]}
	}
	if err := vs.Upsert(items); err != nil {
		t.Fatal(err)
	}

	return NewVectorRetriever(vs, emb, boltStore)
}

func TestVectorRetrieveFindsClosest(t *testing.T) {
	r := openVectorFixture(t, []domain.Chunk{
		chunk("c1", "ledger.py", "ledger posting entry"),
		chunk("c2", "mail.py", "smtp delivery retries"),
	})

	got, err := r.Retrieve("ledger posting", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[0].Chunk.ID != "c1" {
		t.Errorf("top hit = %s, want c1", got[0].Chunk.ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %f then %f", got[0].Score, got[1].Score)
	}
	if got[0].Chunk.Text != "ledger posting entry" {
		t.Errorf("chunk text not resolved: %q", got[0].Chunk.Text)
	}
}

func TestVectorRetrieveNotConfigured(t *testing.T) {
	r := NewVectorRetriever(nil, nil, memstore.NewMemoryStore())
	if _, err := r.Retrieve("anything", 5); err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestVectorRetrieveSkipsOrphanVectors(t *testing.T) {
	boltStore, err := store.NewBoltStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { boltStore.Close() })

	emb := embedding.NewMockEmbedder(16)
	vs, err := store.NewBoltVectorStore(boltStore.DB(), 16)
	if err != nil {
		t.Fatal(err)
	}

	vecs, err := emb.Embed([]string{"ledger entry"})
	if err != nil {
		t.Fatal(err)
	}
	// Vector saved without its chunk.
	if err := vs.Upsert([]port.VectorItem{{ID: "ghost", Vector: vecs[0]}}); err != nil {
		t.Fatal(err)
	}

	got, err := NewVectorRetriever(vs, emb, boltStore).Retrieve("ledger entry", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d chunks, want 0 for orphan vectors", len(got))
	}
}

func TestVectorRetrieveEmptyStore(t *testing.T) {
	r := openVectorFixture(t, nil)
	got, err := r.Retrieve("ledger", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d chunks from an empty store, want 0", len(got))
	}
}
