package pos

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestBuildIndex(t *testing.T) {
	index := BuildIndex(toyWords, toyTags, "<S>")

	require.Equal(t, "<S>", index.StartTag())
	require.Equal(t, []string{"DET", "NOUN", "VERB", ".", "ADV", "ADJ", "AUX"}, index.Tags())
	require.Equal(t, 8, index.NumTags())
	require.Equal(t, "the", index.Word(0))

	seen := make(map[string]bool)
	for _, sent := range toyWords {
		for _, w := range sent {
			seen[w] = true
		}
	}
	require.Equal(t, len(seen), index.NumWords())

	for id, w := range index.Words() {
		got, ok := index.WordID(w)
		require.True(t, ok)
		require.Equal(t, id, got)
	}
	for id := 0; id < index.NumTags(); id++ {
		got, ok := index.TagID(index.Tag(id))
		require.True(t, ok)
		require.Equal(t, id, got)
	}

	_, ok := index.WordID("zebra")
	require.False(t, ok)
}

func TestBuildIndexEmpty(t *testing.T) {
	index := BuildIndex(nil, nil, "<S>")
	require.Equal(t, 0, index.NumWords())
	require.Equal(t, 1, index.NumTags())
	require.Empty(t, index.Tags())
}
