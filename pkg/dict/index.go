package dict

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
	"github.com/vmihailenco/msgpack/v5"
)

// Index is the prefix index built during compilation: a patricia trie keyed
// by the byte sequence of a code, each value the ordered texts inserted at
// that code. Immutable at query time; an engine instance owns its Index
// exclusively.
type Index struct {
	trie *patricia.Trie
}

// IndexEntry is one flattened (code, texts) pair, the unit of the
// serialized form.
type IndexEntry struct {
	Code  string   `msgpack:"c"`
	Texts []string `msgpack:"t"`
}

// NewIndex creates an empty prefix index.
func NewIndex() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// Add appends text to the list stored at code, creating the entry when the
// code is unseen. Encounter order is preserved and duplicates are kept;
// merging is a query-time concern.
func (ix *Index) Add(code, text string) {
	prefix := patricia.Prefix(code)
	if item := ix.trie.Get(prefix); item != nil {
		ix.trie.Set(prefix, append(item.([]string), text))
		return
	}
	ix.trie.Insert(prefix, []string{text})
}

// AddDistinct behaves like Add but with set semantics: a text already
// present under the code is not appended again. Used by the flat
// perfect-hash build, where same-code duplicates collapse.
func (ix *Index) AddDistinct(code, text string) {
	prefix := patricia.Prefix(code)
	item := ix.trie.Get(prefix)
	if item == nil {
		ix.trie.Insert(prefix, []string{text})
		return
	}
	texts := item.([]string)
	for _, t := range texts {
		if t == text {
			return
		}
	}
	ix.trie.Set(prefix, append(texts, text))
}

// Lookup returns the texts stored at exactly code, or nil.
func (ix *Index) Lookup(code string) []string {
	if item := ix.trie.Get(patricia.Prefix(code)); item != nil {
		return item.([]string)
	}
	return nil
}

// WalkPrefix visits every (code, texts) entry whose code has prefix as a
// prefix, in trie traversal order. Returning an error from fn stops the
// walk and propagates the error.
func (ix *Index) WalkPrefix(prefix string, fn func(code string, texts []string) error) error {
	return ix.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		return fn(string(p), item.([]string))
	})
}

// Len returns the number of distinct codes in the index.
func (ix *Index) Len() int {
	n := 0
	_ = ix.trie.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// Texts returns the distinct texts across all codes, in walk order.
func (ix *Index) Texts() []string {
	var texts []string
	seen := make(map[string]struct{})
	_ = ix.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		for _, t := range item.([]string) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			texts = append(texts, t)
		}
		return nil
	})
	return texts
}

// Entries flattens the index into (code, texts) pairs sorted by code, the
// canonical serialized order.
func (ix *Index) Entries() []IndexEntry {
	var entries []IndexEntry
	_ = ix.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		entries = append(entries, IndexEntry{Code: string(p), Texts: item.([]string)})
		return nil
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})
	return entries
}

// SaveTo serializes the index as a single msgpack blob.
func (ix *Index) SaveTo(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(ix.Entries()); err != nil {
		return fmt.Errorf("%w: failed to serialize index: %v", ErrStorage, err)
	}
	return nil
}

// Save writes the serialized index to path.
func (ix *Index) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrStorage, path, err)
	}
	defer file.Close()
	return ix.SaveTo(file)
}

// ReadIndex deserializes an index previously written with SaveTo.
func ReadIndex(r io.Reader) (*Index, error) {
	var entries []IndexEntry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: failed to deserialize index: %v", ErrStorage, err)
	}
	ix := NewIndex()
	for _, e := range entries {
		ix.trie.Insert(patricia.Prefix(e.Code), e.Texts)
	}
	return ix, nil
}

// LoadIndex reads a serialized index from path.
func LoadIndex(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open index %s: %v", ErrStorage, path, err)
	}
	defer file.Close()
	return ReadIndex(file)
}
