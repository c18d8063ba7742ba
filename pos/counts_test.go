package pos

import (
	"errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCountCorpus(t *testing.T) {
	index := BuildIndex(toyWords, toyTags, "<S>")
	c, err := CountCorpus(index, toyWords, toyTags)
	require.NoError(t, err)

	id := func(tag string) int {
		i, ok := index.TagID(tag)
		require.True(t, ok, tag)
		return i
	}
	wid := func(w string) int {
		i, ok := index.WordID(w)
		require.True(t, ok, w)
		return i
	}

	require.Equal(t, 33, c.N)
	require.Equal(t, len(toyWords), c.Unigram[StartID])
	require.Equal(t, 8, c.Unigram[id("NOUN")])
	require.Equal(t, 6, c.BigramCount(StartID, id("DET")))
	require.Equal(t, 7, c.BigramCount(id("DET"), id("NOUN")))
	require.Equal(t, 6, c.TrigramCount(StartID, StartID, id("DET")))
	require.Equal(t, 6, c.TrigramCount(StartID, id("DET"), id("NOUN")))
	require.Equal(t, 5, c.TrigramCount(id("DET"), id("NOUN"), id("VERB")))
	require.Equal(t, 2, c.Emission[EmissionKey{Word: wid("run"), Tag: id("VERB")}])
	require.Equal(t, 1, c.Emission[EmissionKey{Word: wid("run"), Tag: id("NOUN")}])

	total := 0
	for _, count := range c.Bigram {
		require.GreaterOrEqual(t, count, 0)
		total += count
	}
	require.Equal(t, c.N, total)
}

func TestCountCorpusMarginals(t *testing.T) {
	index := BuildIndex(toyWords, toyTags, "<S>")
	c, err := CountCorpus(index, toyWords, toyTags)
	require.NoError(t, err)

	final, _ := index.TagID(".")
	T := index.NumTags()
	for t1 := 0; t1 < T; t1++ {
		if t1 == final {
			continue
		}
		require.Equal(t, c.Unigram[t1], sum(c.Bigram[t1*T:(t1+1)*T]), index.Tag(t1))
	}
}

func TestCountCorpusRejectsMismatch(t *testing.T) {
	index := BuildIndex(toyWords, toyTags, "<S>")

	_, err := CountCorpus(index, toyWords, toyTags[:2])
	require.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = CountCorpus(index, [][]string{{"the", "dog"}}, [][]string{{"DET"}})
	require.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = CountCorpus(index, [][]string{{"the"}}, [][]string{{"PRON"}})
	require.True(t, errors.Is(err, ErrUnknownTag))
}
