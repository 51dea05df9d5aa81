// Package cache memoizes chord detection per input file, keyed by a
// 64-bit FNV-1a hash of the raw bytes. Entries hold their own deep copies
// so the live document never aliases cached state. The cache itself is not
// synchronized; hosts sharing one across goroutines must lock around it.
package cache

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"os"
	"time"

	"github.com/chordforge/chordforge/model"
)

// Hash returns the cache key for a file's raw bytes as lowercase hex.
func Hash(data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

type Entry struct {
	Chords    []model.Chord
	CreatedAt time.Time
}

type Cache struct {
	entries map[string]Entry
}

func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

func (c *Cache) Get(key string) ([]model.Chord, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return model.CloneChords(entry.Chords), true
}

func (c *Cache) Put(key string, chords []model.Chord) {
	c.entries[key] = Entry{Chords: model.CloneChords(chords), CreatedAt: time.Now()}
}

func (c *Cache) Invalidate(key string) {
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.entries = make(map[string]Entry)
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Save snapshots the cache to disk with gob.
func (c *Cache) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create cache file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(c.entries); err != nil {
		return fmt.Errorf("could not encode cache: %w", err)
	}
	return nil
}

// Load replaces the cache contents with a snapshot written by Save.
func (c *Cache) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open cache file: %w", err)
	}
	defer f.Close()

	entries := make(map[string]Entry)
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("could not decode cache: %w", err)
	}
	c.entries = entries
	return nil
}
