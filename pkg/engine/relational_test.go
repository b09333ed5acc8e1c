package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuru-ime/shuru/pkg/config"
	"github.com/shuru-ime/shuru/pkg/dict"
)

// compileFixture writes dictionary files under a fresh source dir and
// compiles them for one formula, returning the target dir.
func compileFixture(t *testing.T, id string, files map[string]string, relational bool) (formula *config.Formula, targetDir string) {
	t.Helper()
	sourceDir := t.TempDir()
	targetDir = t.TempDir()
	formula = &config.Formula{ID: id}
	for name, content := range files {
		path := filepath.Join(sourceDir, id, name)
		require.NoError(t, writeTestFile(path, content))
		formula.Dictionaries = append(formula.Dictionaries, name)
	}
	if relational {
		require.NoError(t, dict.Compile(formula, sourceDir, targetDir))
	} else {
		require.NoError(t, dict.CompileTrie(formula, sourceDir, targetDir))
	}
	return formula, targetDir
}

func TestRelationalEngineSearch(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"base.dict": "你好\tni hao\t1\n",
	}, true)

	eng, err := OpenRelationalEngine(filepath.Join(targetDir, "sunman"+dict.DBExt))
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("ni hao")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Result{Text: "你好", Code: "ni hao", Weight: 1}, results[0])

	// An unmatched code is an empty result, never an error.
	none, err := eng.Search("hello")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRelationalEngineGroupsByText(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"a.dict": "你好\tni hao\t100\n",
		"b.dict": "你好\tni hao\t900\tmain\n你\tni\t500\n",
	}, true)

	eng, err := OpenRelationalEngine(filepath.Join(targetDir, "sunman"+dict.DBExt))
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("ni")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// One grouped entry per distinct text, max-weight row wins, ordered by
	// weight descending.
	assert.Equal(t, "你好", results[0].Text)
	assert.Equal(t, uint32(900), results[0].Weight)
	assert.Equal(t, "main", results[0].Comment)
	assert.Equal(t, "你", results[1].Text)
}

func TestRelationalEngineHandleIsReadOnly(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"base.dict": "你好\tni hao\t1\n",
	}, true)

	eng, err := OpenRelationalEngine(filepath.Join(targetDir, "sunman"+dict.DBExt))
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.db.Exec("INSERT INTO dict (text, code, weight, comment) VALUES ('x', 'x', 1, '')")
	assert.Error(t, err, "a serving handle must not mutate the compiled table")

	results, err := eng.Search("ni hao")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRelationalEnginePrefixMatch(t *testing.T) {
	_, targetDir := compileFixture(t, "sunman", map[string]string{
		"base.dict": "阿\ta\t50\n吖\tab\t40\n啊\ta1\t30\n不\tb\t20\n",
	}, true)

	eng, err := OpenRelationalEngine(filepath.Join(targetDir, "sunman"+dict.DBExt))
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.Search("a")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "阿", results[0].Text)
	assert.Equal(t, "吖", results[1].Text)
	assert.Equal(t, "啊", results[2].Text)
}
