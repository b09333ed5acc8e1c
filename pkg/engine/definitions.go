package engine

import (
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/shuru-ime/shuru/pkg/dict"
)

// Definitions resolves a text to its (weight, comment) payload. A missing
// text is a miss, not an error; errors mean the backing store failed.
type Definitions interface {
	Lookup(text string) (dict.Definition, bool, error)
	Close() error
}

// StoreDefinitions reads the bbolt definitions table compiled alongside a
// formula's prefix index. Opened read-only; the compiled artifact is an
// immutable snapshot at serve time.
type StoreDefinitions struct {
	db *bolt.DB
}

// OpenStoreDefinitions opens the definitions store at path.
func OpenStoreDefinitions(path string) (*StoreDefinitions, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", dict.ErrStorage, path, err)
	}
	return &StoreDefinitions{db: db}, nil
}

// Lookup fetches the definition stored for text.
func (s *StoreDefinitions) Lookup(text string) (dict.Definition, bool, error) {
	var def dict.Definition
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(dict.DefBucket)
		if bucket == nil {
			return nil
		}
		value := bucket.Get([]byte(text))
		if value == nil {
			return nil
		}
		decoded, err := dict.DecodeDefinition(value)
		if err != nil {
			return err
		}
		def = decoded
		found = true
		return nil
	})
	if err != nil {
		return dict.Definition{}, false, err
	}
	return def, found, nil
}

// Close releases the store handle.
func (s *StoreDefinitions) Close() error {
	return s.db.Close()
}

// HashDefinitions resolves texts through the perfect-hash definition array
// of a flat build: O(1), allocation-free, rebuild-only. The hash maps texts
// outside the construction set to arbitrary slots, so each slot also keeps
// its owning key and lookups compare it; a foreign text misses instead of
// aliasing another text's definition.
type HashDefinitions struct {
	hash *dict.Hash
	keys []string
	defs []dict.Definition
}

// NewHashDefinitions rebuilds the perfect hash over texts and pairs it with
// the definition array written at build time. texts must be the same
// distinct set the array was built from; slot assignment depends only on
// the set, not its order.
func NewHashDefinitions(texts []string, defs []dict.Definition) (*HashDefinitions, error) {
	if len(texts) != len(defs) {
		return nil, fmt.Errorf("%w: definition table has %d entries for %d texts", dict.ErrStorage, len(defs), len(texts))
	}
	hash, err := dict.BuildHash(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dict.ErrStorage, err)
	}
	keys := make([]string, len(texts))
	for _, text := range texts {
		slot, ok := hash.Slot(text)
		if !ok || slot >= uint64(len(keys)) {
			return nil, fmt.Errorf("%w: perfect hash missed construction key %q", dict.ErrStorage, text)
		}
		keys[slot] = text
	}
	return &HashDefinitions{hash: hash, keys: keys, defs: defs}, nil
}

// OpenHashDefinitions loads a flat build's artifacts from dir and rebuilds
// the hash from the index's distinct texts. Returns the index alongside the
// definitions so the caller can construct a trie engine over both.
func OpenHashDefinitions(dir string) (*dict.Index, *HashDefinitions, error) {
	index, err := dict.LoadIndex(filepath.Join(dir, dict.IndexFile))
	if err != nil {
		return nil, nil, err
	}
	defs, err := dict.LoadDefTable(filepath.Join(dir, dict.DefFile))
	if err != nil {
		return nil, nil, err
	}
	hashDefs, err := NewHashDefinitions(index.Texts(), defs)
	if err != nil {
		return nil, nil, err
	}
	return index, hashDefs, nil
}

// Lookup resolves text through the perfect hash.
func (h *HashDefinitions) Lookup(text string) (dict.Definition, bool, error) {
	slot, ok := h.hash.Slot(text)
	if !ok || slot >= uint64(len(h.keys)) || h.keys[slot] != text {
		return dict.Definition{}, false, nil
	}
	return h.defs[slot], true, nil
}

// Close is a no-op; the array lives in memory.
func (h *HashDefinitions) Close() error {
	return nil
}
