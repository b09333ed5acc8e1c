/*
Package dict implements the dictionary compilation pipeline.

Raw dictionaries are tab-separated text files with columns
text, code, weight, comment and #-prefixed comment lines. One compilation
pass turns the files of a formula into compact, prefix-searchable on-disk
artifacts: either a relational table (sqlite), or a serialized prefix trie
paired with a definitions table (bbolt key-value or a minimal-perfect-hash
indexed array).
*/
package dict

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrParse marks malformed dictionary input. A single bad row fails the
	// whole compilation; no partial artifact is produced.
	ErrParse = errors.New("dict: parse error")

	// ErrStorage marks failures from the underlying stores (sqlite, bbolt,
	// artifact serialization). Distinct from lookup misses, which are never
	// errors.
	ErrStorage = errors.New("dict: storage error")
)

// Item is the atomic dictionary record. Comment is optional and empty when
// the source column is missing. Multiple items may share a code (homophones)
// or a text (multiple codes for one text).
type Item struct {
	Text    string
	Code    string
	Weight  uint32
	Comment string
}

// ParseFile reads one tab-separated dictionary file into items.
// Lines starting with '#' and blank lines are skipped. Any malformed row or
// non-numeric weight fails the whole parse.
func ParseFile(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrParse, path, lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}

	log.Debugf("Parsed %d entries from %s", len(items), path)
	return items, nil
}

// parseLine splits a single tab-separated row into an Item.
// Expected columns: text, code, weight, optional comment.
func parseLine(line string) (Item, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 3 {
		return Item{}, fmt.Errorf("expected at least 3 columns, got %d", len(cols))
	}

	text := cols[0]
	code := cols[1]
	if text == "" {
		return Item{}, fmt.Errorf("empty text column")
	}
	if code == "" {
		return Item{}, fmt.Errorf("empty code column")
	}

	weight, err := strconv.ParseUint(cols[2], 10, 32)
	if err != nil {
		return Item{}, fmt.Errorf("invalid weight %q: %v", cols[2], err)
	}

	comment := ""
	if len(cols) > 3 {
		comment = cols[3]
	}

	return Item{
		Text:    text,
		Code:    code,
		Weight:  uint32(weight),
		Comment: comment,
	}, nil
}

// parseAll parses every listed file, concatenating items in file order.
func parseAll(paths []string) ([]Item, error) {
	var items []Item
	for _, path := range paths {
		parsed, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		items = append(items, parsed...)
	}
	return items, nil
}
