package dict

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	boomphf "github.com/dgryski/go-boomphf"
)

// PhfGamma is the over-provisioning factor for minimal-perfect-hash
// construction. Larger values trade a little space for faster builds.
const PhfGamma = 1.7

// DistinctTexts returns the distinct texts of items in first-seen order.
func DistinctTexts(items []Item) []string {
	var texts []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.Text]; ok {
			continue
		}
		seen[item.Text] = struct{}{}
		texts = append(texts, item.Text)
	}
	return texts
}

// BuildHash constructs the minimal perfect hash function over a distinct
// text set. boomphf keys on uint64, so each text is reduced to its xxhash
// first; two distinct texts colliding on the 64-bit key would make the
// construction undefined, so that fails the build.
func BuildHash(texts []string) (*Hash, error) {
	keys := make([]uint64, len(texts))
	seen := make(map[uint64]string, len(texts))
	for i, text := range texts {
		key := xxhash.Sum64String(text)
		if prev, taken := seen[key]; taken {
			return nil, fmt.Errorf("texts %q and %q collide on 64-bit key %#x", prev, text, key)
		}
		seen[key] = text
		keys[i] = key
	}
	return &Hash{phf: boomphf.New(PhfGamma, keys)}, nil
}

// Hash wraps the MPHF with the 0-based slot convention used by the
// definition array.
type Hash struct {
	phf *boomphf.H
}

// Slot maps a text from the construction set to its definition array index.
// Texts outside the set map to an arbitrary slot; callers that accept
// foreign texts must verify membership themselves.
func (h *Hash) Slot(text string) (uint64, bool) {
	// Query is 1-based over the key set, 0 when no slot exists at all.
	q := h.phf.Query(xxhash.Sum64String(text))
	if q == 0 {
		return 0, false
	}
	return q - 1, true
}

// Build runs the flat, non-formula-scoped dictionary build: all input files
// are parsed into one collection, a prefix index with set semantics per code
// is built, and definitions are laid out in an array indexed by a minimal
// perfect hash over the distinct texts. Each distinct text is written exactly
// once, with the weight and comment of its first occurrence in input order;
// later duplicates never overwrite it.
//
// Artifacts: outputDir/index.bin (prefix index) and outputDir/def.bin
// (definition array). The hash function itself is not persisted; it is
// rebuilt from the index's distinct text set at load time, which yields the
// same slot assignment since the mapping depends only on the key set.
func Build(inputs []string, outputDir string) error {
	items, err := parseAll(inputs)
	if err != nil {
		return err
	}

	texts := DistinctTexts(items)
	hash, err := BuildHash(texts)
	if err != nil {
		return err
	}
	defs := make([]Definition, len(texts))

	index := NewIndex()
	visited := make(map[string]struct{}, len(texts))
	for _, item := range items {
		index.AddDistinct(item.Code, item.Text)

		if _, ok := visited[item.Text]; ok {
			continue
		}
		visited[item.Text] = struct{}{}
		slot, ok := hash.Slot(item.Text)
		if !ok {
			// Cannot happen: item.Text is in the construction set.
			continue
		}
		defs[slot] = Definition{Weight: item.Weight, Comment: item.Comment}
	}

	if err := index.Save(filepath.Join(outputDir, IndexFile)); err != nil {
		return err
	}
	if err := SaveDefTable(defs, filepath.Join(outputDir, DefFile)); err != nil {
		return err
	}

	log.Debugf("Built flat dictionary: %d rows, %d distinct texts, %d codes", len(items), len(texts), index.Len())
	return nil
}
