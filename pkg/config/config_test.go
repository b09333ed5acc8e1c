package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[engine]
result_limit = 16

[[formulas]]
id = "sunman"
name = "Sunman input method"
dictionaries = ["sunman.dict", "ext.dict"]

[[formulas]]
id = "pinyin"
dictionaries = ["pinyin.dict"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Engine.ResultLimit)
	require.Len(t, cfg.Formulas, 2)
	assert.Equal(t, "sunman", cfg.Formulas[0].ID)
	assert.Equal(t, []string{"sunman.dict", "ext.dict"}, cfg.Formulas[0].Dictionaries)

	assert.NotNil(t, cfg.Formula("pinyin"))
	assert.Nil(t, cfg.Formula("wubi"))
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[[formulas]]
id = "sunman"
dictionaries = ["sunman.dict"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Engine.ResultLimit, cfg.Engine.ResultLimit)
}

func TestLoadRejectsInvalidFormulas(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name: "empty id",
			content: `
[[formulas]]
id = ""
dictionaries = ["x.dict"]
`,
		},
		{
			name: "no dictionaries",
			content: `
[[formulas]]
id = "sunman"
dictionaries = []
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Formulas = []Formula{{ID: "sunman", Name: "Sunman", Dictionaries: []string{"a.dict"}}}

	path := filepath.Join(t.TempDir(), "main.toml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Formulas, loaded.Formulas)
	assert.Equal(t, cfg.Engine, loaded.Engine)
}
