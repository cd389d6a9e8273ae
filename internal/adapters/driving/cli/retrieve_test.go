package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			ChunkID:  domain.ChunkID("antep.pdf", 3, 0),
			Text:     "Beyran,   kuzu eti\nve pirinçle pişirilir.",
			Metadata: domain.ChunkMetadata("antep.pdf", 3, 0),
			Distance: domain.Float64Ptr(0.125),
		},
		{
			ChunkID:  domain.ChunkID("notlar.txt", 0, 2),
			Text:     "Yuvalama bayram yemeğidir.",
			Metadata: domain.ChunkMetadata("notlar.txt", 0, 2),
		},
	}
}

func TestRetrieveCmd_Flags(t *testing.T) {
	k := retrieveCmd.Flags().Lookup("k")
	require.NotNil(t, k)
	assert.Equal(t, "4", k.DefValue)

	d := retrieveCmd.Flags().Lookup("max-distance")
	require.NotNil(t, d)
	assert.Equal(t, "0.28", d.DefValue)
}

func TestRetrieveCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retriever.results = testResults()

	out, err := execute(t, "retrieve", "beyran nasıl yapılır")

	require.NoError(t, err)
	assert.Equal(t, "beyran nasıl yapılır", ts.retriever.query)
	assert.Contains(t, out, "  [1] antep.pdf p.3 (0.125)")
	assert.Contains(t, out, "Beyran, kuzu eti ve pirinçle pişirilir.")
	assert.Contains(t, out, "  [2] notlar.txt\n")
}

func TestRetrieveCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "retrieve", "lahmacun")

	require.NoError(t, err)
	assert.Contains(t, out, "No passages found.")
}

func TestRetrieveCmd_OptionsFromSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Retrieval = domain.RetrievalSettings{TopK: 6, MaxDistance: 0.4}

	_, err := execute(t, "retrieve", "baklava")

	require.NoError(t, err)
	assert.Equal(t, domain.RetrieveOptions{K: 6, MaxDistance: 0.4}, ts.retriever.opts)
}

func TestRetrieveCmd_FlagsOverrideSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Retrieval = domain.RetrievalSettings{TopK: 6, MaxDistance: 0.4}

	_, err := execute(t, "retrieve", "-k", "2", "--max-distance", "0.5", "baklava")

	require.NoError(t, err)
	assert.Equal(t, domain.RetrieveOptions{K: 2, MaxDistance: 0.5}, ts.retriever.opts)
}

func TestRetrieveCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retriever.results = testResults()

	out, err := execute(t, "retrieve", "--json", "beyran")
	require.NoError(t, err)

	var got []passageJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "antep.pdf", got[0].Source)
	assert.Equal(t, "3", got[0].Page)
	require.NotNil(t, got[0].Distance)
	assert.InDelta(t, 0.125, *got[0].Distance, 1e-9)
	assert.Equal(t, "notlar.txt", got[1].Source)
	assert.Empty(t, got[1].Page)
	assert.Nil(t, got[1].Distance)
}

func TestRetrieveCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retriever.err = errors.New("index offline")

	_, err := execute(t, "retrieve", "beyran")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve failed: index offline")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet(" a\n\tb   c ", 10))
	assert.Equal(t, "çöğüş...", snippet("çöğüşıİ", 5))
	assert.Equal(t, strings.Repeat("x", 3), snippet("xxx", 3))
}

func TestDescribePassage(t *testing.T) {
	results := testResults()
	assert.Equal(t, "antep.pdf p.3 (0.125)", describePassage(results[0]))
	assert.Equal(t, "notlar.txt", describePassage(results[1]))
}
