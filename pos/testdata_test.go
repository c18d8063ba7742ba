package pos

import (
	"text2phenotype.com/postag/types"
	"github.com/stretchr/testify/require"
	"testing"
)

var toyWords = [][]string{
	{"the", "dog", "runs", "."},
	{"a", "cat", "sleeps", "."},
	{"the", "cat", "runs", "fast", "."},
	{"dogs", "run", "."},
	{"the", "dog", "sees", "a", "cat", "."},
	{"the", "run", "was", "fun", "."},
	{"a", "dog", "can", "run", "fast", "."},
}

var toyTags = [][]string{
	{"DET", "NOUN", "VERB", "."},
	{"DET", "NOUN", "VERB", "."},
	{"DET", "NOUN", "VERB", "ADV", "."},
	{"NOUN", "VERB", "."},
	{"DET", "NOUN", "VERB", "DET", "NOUN", "."},
	{"DET", "NOUN", "VERB", "ADJ", "."},
	{"DET", "NOUN", "AUX", "VERB", "ADV", "."},
}

var toySentences = [][]string{
	{"the", "cat", "runs", "."},
	{"the", "zebra", "runs", "."},
	{"a", "dog", "run", "fast", "."},
	{"dogs", "can", "run", "."},
	{"the", "dog", "sees", "the", "run", "."},
	{"quickly", "the", "unicorn", "sleeps", "."},
}

func testConfig(order int) types.Configuration {
	cfg := types.DefaultConfiguration()
	cfg.Order = order
	cfg.Decoding.FallbackTag = "NOUN"
	return cfg
}

func trainToy(t *testing.T, cfg types.Configuration) *Model {
	t.Helper()
	m, err := Train(toyWords, toyTags, cfg)
	require.NoError(t, err)
	return m
}

func allDecoders(t *testing.T, m *Model, beamWidth int) map[types.Strategy]Decoder {
	t.Helper()
	decoders := make(map[types.Strategy]Decoder)
	for _, st := range []types.Strategy{types.StrategyGreedy, types.StrategyBeam, types.StrategyViterbi} {
		d, err := NewDecoder(m, st, beamWidth)
		require.NoError(t, err)
		decoders[st] = d
	}
	return decoders
}
