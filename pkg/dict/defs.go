package dict

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Compiled artifact names, per formula id for the formula-scoped paths and
// fixed for the flat perfect-hash build.
const (
	DBExt   = ".db3"  // relational table
	KVExt   = ".kv"   // bbolt definitions store
	TrieExt = ".trie" // serialized prefix index

	IndexFile = "index.bin" // flat build: prefix index, set semantics
	DefFile   = "def.bin"   // flat build: perfect-hash indexed definitions
)

// DefBucket is the bbolt bucket holding text -> definition mappings.
var DefBucket = []byte("definitions")

// Definition is the payload stored per distinct text: its ranking weight
// and optional comment.
type Definition struct {
	Weight  uint32 `msgpack:"w"`
	Comment string `msgpack:"c,omitempty"`
}

// EncodeDefinition serializes a definition into its stored value form.
func EncodeDefinition(def Definition) ([]byte, error) {
	buf, err := msgpack.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode definition: %v", ErrStorage, err)
	}
	return buf, nil
}

// DecodeDefinition deserializes a stored definition value.
func DecodeDefinition(buf []byte) (Definition, error) {
	var def Definition
	if err := msgpack.Unmarshal(buf, &def); err != nil {
		return Definition{}, fmt.Errorf("%w: failed to decode definition: %v", ErrStorage, err)
	}
	return def, nil
}

// SaveDefTable writes the perfect-hash indexed definition array to path.
func SaveDefTable(defs []Definition, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrStorage, path, err)
	}
	defer file.Close()
	if err := msgpack.NewEncoder(file).Encode(defs); err != nil {
		return fmt.Errorf("%w: failed to serialize definition table: %v", ErrStorage, err)
	}
	return nil
}

// LoadDefTable reads a definition array written by SaveDefTable.
func LoadDefTable(path string) ([]Definition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrStorage, path, err)
	}
	defer file.Close()
	var defs []Definition
	if err := msgpack.NewDecoder(file).Decode(&defs); err != nil {
		return nil, fmt.Errorf("%w: failed to deserialize definition table: %v", ErrStorage, err)
	}
	return defs, nil
}
