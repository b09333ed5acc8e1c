package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/shuru-ime/shuru/pkg/dict"
)

// RelationalEngine serves prefix search from the compiled sqlite table.
// Duplicate texts across source rows collapse to one result at query time;
// the row with the highest weight for a text supplies its code and comment,
// which keeps the grouping choice deterministic.
type RelationalEngine struct {
	db *sql.DB
}

// searchSQL matches codes by prefix and groups by text. MAX(weight) makes
// sqlite pick the bare code/comment columns from the max-weight row.
const searchSQL = `SELECT text, code, MAX(weight) AS weight, comment
FROM dict WHERE code LIKE ? GROUP BY text ORDER BY weight DESC`

// NewRelationalEngine wraps an already-open handle. The engine takes
// ownership and closes it on Close.
func NewRelationalEngine(db *sql.DB) *RelationalEngine {
	return &RelationalEngine{db: db}
}

// OpenRelationalEngine opens the relational artifact at path read-only.
// query_only keeps a serving handle from ever mutating the compiled table.
func OpenRelationalEngine(path string) (*RelationalEngine, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", dict.ErrStorage, path, err)
	}
	db.SetMaxOpenConns(1)
	return NewRelationalEngine(db), nil
}

// Search returns one result per distinct text whose code starts with code,
// ordered by weight descending. No match yields an empty slice.
func (e *RelationalEngine) Search(code string) ([]Result, error) {
	rows, err := e.db.Query(searchSQL, code+"%")
	if err != nil {
		return nil, fmt.Errorf("%w: query failed: %v", dict.ErrStorage, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var weight int64
		var comment sql.NullString
		if err := rows.Scan(&r.Text, &r.Code, &weight, &comment); err != nil {
			return nil, fmt.Errorf("%w: scan failed: %v", dict.ErrStorage, err)
		}
		r.Weight = uint32(weight)
		r.Comment = comment.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration failed: %v", dict.ErrStorage, err)
	}
	return results, nil
}

// Close releases the database handle.
func (e *RelationalEngine) Close() error {
	return e.db.Close()
}
