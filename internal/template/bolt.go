package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketTemplates = []byte("templates")

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at path
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, unavailable("open database", err)
	}

	store, err := NewBoltStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewBoltStoreFromDB uses an already opened database
func NewBoltStoreFromDB(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTemplates)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// List returns templates in creation order (ids are time-ordered UUIDv7)
func (s *BoltStore) List(ctx context.Context) ([]*Template, error) {
	templates := []*Template{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTemplates).ForEach(func(k, v []byte) error {
			var tmpl Template
			if err := json.Unmarshal(v, &tmpl); err != nil {
				return fmt.Errorf("decode template %s: %w", k, err)
			}
			templates = append(templates, &tmpl)
			return nil
		})
	})
	if err != nil {
		return nil, unavailable("list templates", err)
	}

	return templates, nil
}

// Create inserts a new template
func (s *BoltStore) Create(ctx context.Context, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, unavailable("generate id", err)
	}

	tmpl := &Template{
		ID:        id.String(),
		CreatedAt: time.Now().UTC(),
	}
	tmpl.apply(f)

	data, err := json.Marshal(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTemplates).Put([]byte(tmpl.ID), data)
	})
	if err != nil {
		return nil, unavailable("create template", err)
	}

	return tmpl, nil
}

// UpdateByID replaces the mutable fields of an existing template
func (s *BoltStore) UpdateByID(ctx context.Context, id string, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var tmpl Template
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)

		existing := bucket.Get([]byte(id))
		if existing == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(existing, &tmpl); err != nil {
			return err
		}

		tmpl.apply(f)

		data, err := json.Marshal(&tmpl)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), data)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("update template", err)
	}

	return &tmpl, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
