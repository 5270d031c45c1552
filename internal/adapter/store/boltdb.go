package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"semdex/internal/domain"
	"semdex/internal/port"
)

var (
	bucketMeta      = []byte("meta")
	bucketFiles     = []byte("files")
	bucketEntities  = []byte("entities")
	bucketWorkflows = []byte("workflows")
	bucketChunks    = []byte("chunks")
	bucketVectors   = []byte("vectors")

	keyProjectName = []byte("project_name")
	keyMetadata    = []byte("index_metadata")
)

// BoltStore persists the semantic index in a single bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketMeta, bucketFiles, bucketEntities, bucketWorkflows, bucketChunks, bucketVectors}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// SaveIndex replaces the stored index with idx in one transaction.
func (s *BoltStore) SaveIndex(idx *domain.SemanticIndex) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketFiles, bucketEntities, bucketWorkflows} {
			if err := wipeBucket(tx, name); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyProjectName, []byte(idx.ProjectName)); err != nil {
			return err
		}
		metaData, err := json.Marshal(idx.Metadata)
		if err != nil {
			return err
		}
		if err := meta.Put(keyMetadata, metaData); err != nil {
			return err
		}

		files := tx.Bucket(bucketFiles)
		for path, sf := range idx.Files {
			data, err := json.Marshal(sf)
			if err != nil {
				return err
			}
			if err := files.Put([]byte(path), data); err != nil {
				return err
			}
		}

		entities := tx.Bucket(bucketEntities)
		for key, se := range idx.Entities {
			data, err := json.Marshal(se)
			if err != nil {
				return err
			}
			if err := entities.Put([]byte(key), data); err != nil {
				return err
			}
		}

		// Zero-padded keys keep detection order under bbolt's byte
		// ordering.
		workflows := tx.Bucket(bucketWorkflows)
		for i, wf := range idx.Workflows {
			data, err := json.Marshal(wf)
			if err != nil {
				return err
			}
			if err := workflows.Put([]byte(fmt.Sprintf("%08d", i)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadIndex reassembles the semantic index from the store. Returns
// port.ErrNoIndex when nothing has been saved yet.
func (s *BoltStore) LoadIndex() (*domain.SemanticIndex, error) {
	var idx *domain.SemanticIndex
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		name := meta.Get(keyProjectName)
		if name == nil {
			return port.ErrNoIndex
		}

		idx = domain.NewSemanticIndex(string(name))
		if data := meta.Get(keyMetadata); data != nil {
			if err := json.Unmarshal(data, &idx.Metadata); err != nil {
				return err
			}
		}

		if err := tx.Bucket(bucketFiles).ForEach(func(k, v []byte) error {
			var sf domain.SemanticFile
			if err := json.Unmarshal(v, &sf); err != nil {
				return err
			}
			idx.Files[string(k)] = sf
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketEntities).ForEach(func(k, v []byte) error {
			var se domain.SemanticEntity
			if err := json.Unmarshal(v, &se); err != nil {
				return err
			}
			idx.Entities[string(k)] = se
			return nil
		}); err != nil {
			return err
		}

		return tx.Bucket(bucketWorkflows).ForEach(func(k, v []byte) error {
			var wf domain.Workflow
			if err := json.Unmarshal(v, &wf); err != nil {
				return err
			}
			idx.Workflows = append(idx.Workflows, wf)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// PutChunks stores retrieval chunks in one batch transaction.
func (s *BoltStore) PutChunks(chunks []domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks)
		for _, chunk := range chunks {
			data, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) ListChunks() ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var chunk domain.Chunk
			if err := json.Unmarshal(v, &chunk); err != nil {
				return err
			}
			chunks = append(chunks, chunk)
			return nil
		})
	})
	return chunks, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func wipeBucket(tx *bbolt.Tx, name []byte) error {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
	}
	_, err := tx.CreateBucket(name)
	return err
}
