package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"
)

const entriesBktName = "entries"

// searchLimit caps the number of entries returned by Search.
const searchLimit = 50

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "entries.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{entriesBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put puts entry to storage.
func (b *Bolt) Put(_ context.Context, e Entry) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(entriesBktName))

		bts, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}

		if err := bkt.Put([]byte(e.ID), bts); err != nil {
			return fmt.Errorf("put entry to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// List returns all entries from storage, most recent first.
func (b *Bolt) List(context.Context, ListRequest) ([]Entry, error) {
	var result []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(entriesBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal entry %s: %w", k, err)
			}
			result = append(result, e)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Search returns entries whose title, summary or texts contain the query,
// case-insensitively, most recent first, capped at the search limit.
func (b *Bolt) Search(ctx context.Context, query string) ([]Entry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	entries, err := b.List(ctx, ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	var result []Entry
	for _, e := range entries {
		haystack := strings.ToLower(strings.Join([]string{
			e.Title, e.Summary, e.ChineseText, e.EnglishText,
		}, "\n"))
		if !strings.Contains(haystack, query) {
			continue
		}

		result = append(result, e)
		if len(result) >= searchLimit {
			break
		}
	}
	return result, nil
}

// FindByURL returns the first entry saved for the given URL.
func (b *Bolt) FindByURL(ctx context.Context, u string) (Entry, error) {
	if u == "" {
		return Entry{}, ErrNotFound
	}

	entries, err := b.List(ctx, ListRequest{})
	if err != nil {
		return Entry{}, fmt.Errorf("list entries: %w", err)
	}

	for _, e := range entries {
		if e.URL == u {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Get returns entry from storage.
func (b *Bolt) Get(_ context.Context, id string) (e Entry, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(entriesBktName))

		bts := bkt.Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &e); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("view storage: %w", err)
	}

	return e, nil
}

// Delete removes entry from storage.
func (b *Bolt) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(entriesBktName))

		if err := bkt.Delete([]byte(id)); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
