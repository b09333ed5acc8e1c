package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine tags every result with its name so delegation is observable.
type stubEngine struct {
	name string
	err  error
}

func (s *stubEngine) Search(code string) ([]Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []Result{{Text: s.name, Code: code}}, nil
}

func TestManagerDelegatesToFront(t *testing.T) {
	m := NewManager(&stubEngine{name: "e0"}, &stubEngine{name: "e1"})

	results, err := m.Search("ni")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "e0", results[0].Text)
}

func TestManagerSetActiveEngineSwaps(t *testing.T) {
	m := NewManager(&stubEngine{name: "e0"}, &stubEngine{name: "e1"})

	require.NoError(t, m.SetActiveEngine(1))
	results, err := m.Search("ni")
	require.NoError(t, err)
	assert.Equal(t, "e1", results[0].Text)

	// A second swap with the same index restores the original front.
	require.NoError(t, m.SetActiveEngine(1))
	results, err = m.Search("ni")
	require.NoError(t, err)
	assert.Equal(t, "e0", results[0].Text)
}

func TestManagerPropagatesEngineErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(&stubEngine{name: "e0"}, &stubEngine{err: boom})

	_, err := m.Search("ni")
	require.NoError(t, err)

	require.NoError(t, m.SetActiveEngine(1))
	_, err = m.Search("ni")
	assert.ErrorIs(t, err, boom)
}

func TestManagerBounds(t *testing.T) {
	m := NewManager(&stubEngine{name: "e0"})
	assert.Error(t, m.SetActiveEngine(-1))
	assert.Error(t, m.SetActiveEngine(1))
	assert.NoError(t, m.SetActiveEngine(0))
}

func TestManagerEmpty(t *testing.T) {
	m := NewManager()
	_, err := m.Search("ni")
	assert.ErrorIs(t, err, ErrNoEngine)
}
