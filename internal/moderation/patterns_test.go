package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClassifiersCompile(t *testing.T) {
	set := DefaultClassifiers()

	_, matched := set.Toxicity.Classify("kys")
	assert.True(t, matched)

	conf, matched := set.PumpDump.Classify("next 100x gem right here")
	assert.True(t, matched)
	assert.Equal(t, 90, conf)

	_, matched = set.MaliciousLink.Classify("tinyurl.com/claim")
	assert.True(t, matched)

	_, matched = set.Toxicity.Classify("solid quarter for the banks")
	assert.False(t, matched)
}

func TestNewRegexClassifier_BadPattern(t *testing.T) {
	_, err := NewRegexClassifier(50, `(unclosed`)
	require.Error(t, err)
}

func TestLoadPatternFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
toxicity:
  - '(?i)\bclown\b'
`), 0o644))

	set, err := LoadPatternFile(path)
	require.NoError(t, err)

	_, matched := set.Toxicity.Classify("what a clown move")
	assert.True(t, matched, "file patterns replace the toxicity set")

	_, matched = set.Toxicity.Classify("what an idiot move")
	assert.False(t, matched, "built-in toxicity vocabulary is replaced, not merged")

	// Untouched sections keep the built-ins.
	_, matched = set.PumpDump.Classify("to the moon")
	assert.True(t, matched)
}

func TestLoadPatternFile_Missing(t *testing.T) {
	_, err := LoadPatternFile(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
