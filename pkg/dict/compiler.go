package dict

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
	_ "modernc.org/sqlite"

	"github.com/shuru-ime/shuru/pkg/config"
)

const createDictTableSQL = `CREATE TABLE IF NOT EXISTS dict (
	text TEXT NOT NULL,
	code TEXT NOT NULL,
	weight INTEGER NOT NULL,
	comment TEXT
)`

// sourcePaths resolves a formula's dictionary references against its
// per-formula source directory, preserving listed order.
func sourcePaths(formula *config.Formula, sourceDir string) []string {
	paths := make([]string, 0, len(formula.Dictionaries))
	for _, d := range formula.Dictionaries {
		paths = append(paths, filepath.Join(sourceDir, formula.ID, d))
	}
	return paths
}

// Compile builds the relational artifact for one formula: a single sqlite
// table dict(text, code, weight, comment) at target/<id>.db3 with one row
// per source row. All files are loaded inside one transaction; any parse or
// insert error rolls the whole load back, leaving no partial table visible.
// Rerunning fully replaces the prior rows for the formula.
func Compile(formula *config.Formula, sourceDir, targetDir string) error {
	if err := formula.Validate(); err != nil {
		return err
	}

	dbPath := filepath.Join(targetDir, formula.ID+DBExt)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrStorage, dbPath, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createDictTableSQL); err != nil {
		return fmt.Errorf("%w: failed to create dict table: %v", ErrStorage, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorage, err)
	}

	// Full rebuild: prior rows go away in the same transaction as the new
	// ones arrive, so readers never see a half-replaced table.
	if _, err := tx.Exec("DELETE FROM dict"); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: failed to clear dict table: %v", ErrStorage, err)
	}

	stmt, err := tx.Prepare("INSERT INTO dict (text, code, weight, comment) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: failed to prepare insert: %v", ErrStorage, err)
	}
	defer stmt.Close()

	rows := 0
	for _, path := range sourcePaths(formula, sourceDir) {
		items, err := ParseFile(path)
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, item := range items {
			if _, err := stmt.Exec(item.Text, item.Code, item.Weight, item.Comment); err != nil {
				tx.Rollback()
				return fmt.Errorf("%w: failed to insert row: %v", ErrStorage, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", ErrStorage, err)
	}

	log.Debugf("Compiled formula %s: %d rows into %s", formula.ID, rows, dbPath)
	return nil
}

// CompileTrie builds the trie/KV artifacts for one formula: a bbolt
// definitions table at target/<id>.kv mapping text -> (weight, comment),
// and a serialized prefix index at target/<id>.trie mapping code -> texts.
//
// Definitions are plain upserts, so the last write for a given text across
// all files wins. The index keeps encounter order and duplicates.
//
// The index is serialized to a temp file inside the bbolt write transaction
// and renamed into place only after the commit succeeds, so either both
// artifacts advance together or neither does.
func CompileTrie(formula *config.Formula, sourceDir, targetDir string) error {
	if err := formula.Validate(); err != nil {
		return err
	}

	kvPath := filepath.Join(targetDir, formula.ID+KVExt)
	triePath := filepath.Join(targetDir, formula.ID+TrieExt)
	tmpPath := triePath + ".tmp"

	db, err := bolt.Open(kvPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrStorage, kvPath, err)
	}
	defer db.Close()

	index := NewIndex()
	err = db.Update(func(tx *bolt.Tx) error {
		// Full rebuild of the definitions table for this formula.
		if err := tx.DeleteBucket(DefBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("%w: failed to reset definitions: %v", ErrStorage, err)
		}
		bucket, err := tx.CreateBucket(DefBucket)
		if err != nil {
			return fmt.Errorf("%w: failed to create definitions bucket: %v", ErrStorage, err)
		}

		for _, path := range sourcePaths(formula, sourceDir) {
			items, err := ParseFile(path)
			if err != nil {
				return err
			}
			for _, item := range items {
				value, err := EncodeDefinition(Definition{Weight: item.Weight, Comment: item.Comment})
				if err != nil {
					return err
				}
				if err := bucket.Put([]byte(item.Text), value); err != nil {
					return fmt.Errorf("%w: failed to store definition: %v", ErrStorage, err)
				}
				index.Add(item.Code, item.Text)
			}
		}

		// Serializing inside the transaction keeps the two artifacts
		// consistent: a serialization failure aborts the commit too.
		return index.Save(tmpPath)
	})
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, triePath); err != nil {
		return fmt.Errorf("%w: failed to move index into place: %v", ErrStorage, err)
	}

	log.Debugf("Compiled formula %s: %d codes into %s + %s", formula.ID, index.Len(), kvPath, triePath)
	return nil
}
