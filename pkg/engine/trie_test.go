package engine

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuru-ime/shuru/pkg/dict"
)

func TestTrieEngineSearch(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"base.dict": "你好\tni hao\t1\n",
	}, false)

	eng, err := OpenTrieEngine(targetDir, "sunman")
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("ni hao")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Result{Text: "你好", Code: "ni hao", Weight: 1}, results[0])

	none, err := eng.Search("hello")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTrieEnginePrefixUnion(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"base.dict": "阿\ta\t50\n吖\tab\t40\n啊\ta1\t30\n不\tb\t20\n",
	}, false)

	eng, err := OpenTrieEngine(targetDir, "sunman")
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("a")
	require.NoError(t, err)
	require.Len(t, results, 3)

	var texts []string
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	sort.Strings(texts)
	assert.Equal(t, []string{"吖", "啊", "阿"}, texts)

	// The matched code, not the query prefix, is reported per result.
	for _, r := range results {
		if r.Text == "吖" {
			assert.Equal(t, "ab", r.Code)
		}
	}
}

// missingDefs resolves nothing, standing in for a definitions table with
// holes.
type missingDefs struct{}

func (missingDefs) Lookup(string) (dict.Definition, bool, error) {
	return dict.Definition{}, false, nil
}

func (missingDefs) Close() error { return nil }

func TestTrieEngineSkipsUnresolvedTexts(t *testing.T) {
	index := dict.NewIndex()
	index.Add("ni", "你")
	index.Add("ni", "泥")

	eng := NewTrieEngine(index, missingDefs{})
	defer eng.Close()

	results, err := eng.Search("ni")
	require.NoError(t, err)
	assert.Empty(t, results, "unresolved texts are dropped, not errors")
}

func TestFlatEngineSearch(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	input := dir + "/base.dict"
	require.NoError(t, writeTestFile(input,
		"你好\tni hao\t5320\tgreeting\n"+
			"你\tni\t900\n"+
			"泥\tni\t800\n"+
			"你\tni\t5\tlate duplicate\n"))
	require.NoError(t, dict.Build([]string{input}, outDir))

	eng, err := OpenFlatEngine(outDir)
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("ni")
	require.NoError(t, err)
	results = Rank(results)
	require.Len(t, results, 3)
	assert.Equal(t, "你好", results[0].Text)
	assert.Equal(t, uint32(5320), results[0].Weight)
	// First occurrence's weight survives for the duplicated text.
	assert.Equal(t, "你", results[1].Text)
	assert.Equal(t, uint32(900), results[1].Weight)
}

func TestFlatEngineResolvesEveryText(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	input := dir + "/base.dict"
	require.NoError(t, writeTestFile(input,
		"你好\tni hao\t5320\n"+
			"你\tni\t900\n"+
			"泥\tni\t800\n"+
			"好\thao\t700\n"+
			"号\thao4\t600\n"))
	require.NoError(t, dict.Build([]string{input}, outDir))

	eng, err := OpenFlatEngine(outDir)
	require.NoError(t, err)
	defer eng.Close()

	// The empty prefix walks the whole index; every text must come back
	// through the hash-indexed definition table with its build weight.
	results, err := eng.Search("")
	require.NoError(t, err)
	require.Len(t, results, 5)

	weights := make(map[string]uint32, len(results))
	for _, r := range results {
		weights[r.Text] = r.Weight
	}
	assert.Equal(t, map[string]uint32{
		"你好": 5320,
		"你":  900,
		"泥":  800,
		"好":  700,
		"号":  600,
	}, weights)
}
