package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

const (
	compress = false
	// chromem encrypts snapshots with AES-256.
	encryptionKeyLen = 32
)

// VectorDBManager stores chunk records in a chromem-go collection, either
// persisted under dbPath or kept in memory with an optional encrypted
// snapshot file.
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	inMemory      bool
	encryptionKey string
	filePath      string
}

// NewVectorDBManager opens the database and its collection. In-memory
// managers restore the snapshot file when an encryption key is set and the
// file exists.
func NewVectorDBManager(dbPath, collectionName string, inMemory bool, encryptionKey string) (*VectorDBManager, error) {
	if encryptionKey != "" && len(encryptionKey) != encryptionKeyLen {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes", models.ErrVectorStore, encryptionKeyLen)
	}

	var db *chromem.DB
	if inMemory {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("%w: create database: %v", models.ErrVectorStore, err)
		}
	}

	m := &VectorDBManager{
		db:            db,
		dbPath:        dbPath,
		inMemory:      inMemory,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}

	if m.snapshotEnabled() {
		if err := m.Import(); err != nil {
			return nil, err
		}
	}
	if _, err := m.GetOrCreateCollection(collectionName); err != nil {
		return nil, err
	}
	return m, nil
}

// GetOrCreateCollection selects the collection all other calls operate on.
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create/get collection: %v", models.ErrVectorStore, err)
	}
	m.collection = c
	return c, nil
}

// Upsert adds records, replacing any with the same id.
func (m *VectorDBManager) Upsert(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Metadata:  r.Metadata,
			Embedding: r.Embedding,
		}
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: add documents: %v", models.ErrVectorStore, err)
	}
	log.Debug().Int("records", len(records)).Str("collection", m.collection.Name).Msg("Upserted records")
	return nil
}

// Query returns up to topK records most similar to vector. chromem rejects
// result counts above the collection size, so topK is clamped.
func (m *VectorDBManager) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	n := min(topK, m.collection.Count())
	if n <= 0 {
		return []models.Match{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query embedding must be provided", models.ErrVectorStore)
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query by similarity: %v", models.ErrVectorStore, err)
	}

	matches := make([]models.Match, len(results))
	for i, r := range results {
		matches[i] = models.Match{
			ID:       r.ID,
			Score:    r.Similarity,
			Content:  r.Content,
			Metadata: r.Metadata,
		}
	}
	return matches, nil
}

func (m *VectorDBManager) Count(context.Context) (int, error) {
	return m.collection.Count(), nil
}

// Close writes the snapshot for in-memory managers that have a key.
func (m *VectorDBManager) Close() error {
	if !m.snapshotEnabled() {
		return nil
	}
	if err := helper.CreateFolder(m.dbPath); err != nil {
		return fmt.Errorf("%w: %v", models.ErrVectorStore, err)
	}
	return m.Export()
}

// DeleteCollection drops the collection and every record in it.
func (m *VectorDBManager) DeleteCollection() error {
	name := m.collection.Name
	if err := m.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("%w: drop collection: %v", models.ErrVectorStore, err)
	}
	_, err := m.GetOrCreateCollection(name)
	return err
}

// Export writes the collection to the encrypted snapshot file.
func (m *VectorDBManager) Export() error {
	if m.encryptionKey == "" {
		return fmt.Errorf("%w: encryption key is required", models.ErrVectorStore)
	}
	if m.collection == nil {
		return fmt.Errorf("%w: collection is required", models.ErrVectorStore)
	}

	log.Debug().Str("collection", m.collection.Name).Str("file", m.filePath).Msg("Exporting collection")
	if err := m.db.ExportToFile(m.filePath, compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("%w: export database: %v", models.ErrVectorStore, err)
	}
	return nil
}

// Import restores the snapshot file. A missing file is not an error.
func (m *VectorDBManager) Import() error {
	if _, err := os.Stat(m.filePath); errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("file", m.filePath).Msg("No snapshot to import")
		return nil
	}
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey); err != nil {
		return fmt.Errorf("%w: import database: %v", models.ErrVectorStore, err)
	}
	log.Info().Str("file", m.filePath).Msg("Imported snapshot")
	return nil
}

func (m *VectorDBManager) snapshotEnabled() bool {
	return m.inMemory && m.encryptionKey != "" && m.dbPath != ""
}
