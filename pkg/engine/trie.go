package engine

import (
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/shuru-ime/shuru/pkg/dict"
)

// TrieEngine serves prefix search by walking the compiled prefix index and
// joining each matched text against a Definitions backend. Results come
// back in trie traversal order; callers wanting ranked output sort by
// weight (the composition layer does).
type TrieEngine struct {
	index *dict.Index
	defs  Definitions
}

// NewTrieEngine pairs an index with a definitions backend. The engine takes
// ownership of defs and closes it on Close.
func NewTrieEngine(index *dict.Index, defs Definitions) *TrieEngine {
	return &TrieEngine{index: index, defs: defs}
}

// OpenTrieEngine loads the trie/KV artifacts compiled for formulaID from
// targetDir.
func OpenTrieEngine(targetDir, formulaID string) (*TrieEngine, error) {
	index, err := dict.LoadIndex(artifactPath(targetDir, formulaID, dict.TrieExt))
	if err != nil {
		return nil, err
	}
	defs, err := OpenStoreDefinitions(artifactPath(targetDir, formulaID, dict.KVExt))
	if err != nil {
		return nil, err
	}
	return NewTrieEngine(index, defs), nil
}

// OpenFlatEngine loads a flat perfect-hash build (index.bin + def.bin)
// from dir.
func OpenFlatEngine(dir string) (*TrieEngine, error) {
	index, defs, err := OpenHashDefinitions(dir)
	if err != nil {
		return nil, err
	}
	return NewTrieEngine(index, defs), nil
}

// Search walks every code with the query as prefix and yields one result
// per associated text. The user gets completions while still typing a
// partial code. A text with no definition is skipped rather than failing
// the search; one missing definition must not blank the result set.
func (e *TrieEngine) Search(code string) ([]Result, error) {
	var results []Result
	err := e.index.WalkPrefix(code, func(matched string, texts []string) error {
		for _, text := range texts {
			def, found, err := e.defs.Lookup(text)
			if err != nil {
				return err
			}
			if !found {
				log.Debugf("No definition for text %q under code %q", text, matched)
				continue
			}
			results = append(results, Result{
				Text:    text,
				Code:    matched,
				Weight:  def.Weight,
				Comment: def.Comment,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the definitions backend.
func (e *TrieEngine) Close() error {
	return e.defs.Close()
}

// artifactPath builds the on-disk path of one formula artifact.
func artifactPath(targetDir, formulaID, ext string) string {
	return filepath.Join(targetDir, formulaID+ext)
}
