/*
Package engine serves prefix search over compiled dictionary artifacts.

Every backend implements the one Searcher capability: given a typed code,
return candidate texts with their weights. Concrete engines are
interchangeable behind it — a relational engine over the sqlite table, and a
trie engine over the serialized prefix index paired with either the bbolt
definitions store or the perfect-hash definition array. Manager composes
engines; Engine binds formula ids to their loaded artifacts and supports
runtime switching.
*/
package engine

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/shuru-ime/shuru/internal/utils"
	"github.com/shuru-ime/shuru/pkg/config"
	"github.com/shuru-ime/shuru/pkg/dict"
)

var (
	// ErrFormulaNotFound is returned when switching to a formula id that was
	// never loaded. The previously active formula stays usable.
	ErrFormulaNotFound = errors.New("engine: formula not found")

	// ErrNoEngine is returned when a search has no engine to delegate to.
	ErrNoEngine = errors.New("engine: no engine available")
)

// Result is the unit returned to callers; constructed per query, never
// persisted.
type Result struct {
	Text    string
	Code    string
	Weight  uint32
	Comment string
}

// Searcher is the single capability all engines implement. An unmatched
// code yields an empty slice, not an error; errors mean the storage layer
// failed. This is also the contract a downstream phrase predictor calls
// into.
type Searcher interface {
	Search(code string) ([]Result, error)
}

// Rank orders results by weight descending, stable across equal weights.
func Rank(results []Result) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Weight > results[j].Weight
	})
	return results
}

// Engine binds formula ids to their loaded artifacts and serves search
// through the currently active formula. It owns every store handle it opens.
type Engine struct {
	searchers map[string]Searcher
	active    string
}

// New loads the compiled artifacts of every formula from targetDir.
// The trie/KV representation is preferred when both its artifacts exist;
// otherwise the relational table is used. The first formula in the list
// starts active.
func New(formulas []config.Formula, targetDir string) (*Engine, error) {
	e := &Engine{searchers: make(map[string]Searcher, len(formulas))}
	for _, formula := range formulas {
		searcher, err := openFormula(formula.ID, targetDir)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.searchers[formula.ID] = searcher
		if e.active == "" {
			e.active = formula.ID
		}
		log.Debugf("Loaded formula %s", formula.ID)
	}
	return e, nil
}

// openFormula picks the best available artifact set for one formula.
func openFormula(id, targetDir string) (Searcher, error) {
	triePath := artifactPath(targetDir, id, dict.TrieExt)
	kvPath := artifactPath(targetDir, id, dict.KVExt)
	if utils.FileExists(triePath) && utils.FileExists(kvPath) {
		return OpenTrieEngine(targetDir, id)
	}
	dbPath := artifactPath(targetDir, id, dict.DBExt)
	if utils.FileExists(dbPath) {
		return OpenRelationalEngine(dbPath)
	}
	return nil, fmt.Errorf("%w: no compiled artifacts for formula %q in %s", ErrFormulaNotFound, id, targetDir)
}

// SetActiveFormula switches search delegation to the named formula.
// Unknown ids fail with ErrFormulaNotFound and leave the active formula
// unchanged.
func (e *Engine) SetActiveFormula(id string) error {
	if _, ok := e.searchers[id]; !ok {
		return fmt.Errorf("%w: %q", ErrFormulaNotFound, id)
	}
	e.active = id
	return nil
}

// ActiveFormula returns the id of the formula currently serving searches.
func (e *Engine) ActiveFormula() string {
	return e.active
}

// Search delegates to the active formula's engine and returns candidates
// ranked by weight descending.
func (e *Engine) Search(code string) ([]Result, error) {
	searcher, ok := e.searchers[e.active]
	if !ok {
		return nil, ErrNoEngine
	}
	results, err := searcher.Search(code)
	if err != nil {
		return nil, err
	}
	return Rank(results), nil
}

// Close releases every store handle the engine owns.
func (e *Engine) Close() error {
	var firstErr error
	for id, searcher := range e.searchers {
		if closer, ok := searcher.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to close formula %s: %w", id, err)
			}
		}
	}
	return firstErr
}
