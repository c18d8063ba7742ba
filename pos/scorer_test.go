package pos

import (
	"errors"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestScoreGoldSentencesIsPositive(t *testing.T) {
	for _, order := range []int{2, 3} {
		m := trainToy(t, testConfig(order))
		for i := range toyWords {
			p, err := m.Score(toyWords[i], toyTags[i])
			require.NoError(t, err)
			require.Greater(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0)

			logP, err := m.LogScore(toyWords[i], toyTags[i])
			require.NoError(t, err)
			require.InDelta(t, math.Log(p), logP, tolerance)
		}
	}
}

func TestScoreSkipsUnknownWords(t *testing.T) {
	m := trainToy(t, testConfig(3))
	the, _ := m.Index.WordID("the")
	det, _ := m.Index.TagID("DET")
	noun, _ := m.Index.TagID("NOUN")
	verb, _ := m.Index.TagID("VERB")
	runs, _ := m.Index.WordID("runs")

	p, err := m.Score([]string{"the", "zebra", "runs"}, []string{"DET", "NOUN", "VERB"})
	require.NoError(t, err)

	tb := m.Tables
	want := tb.BigramProb(StartID, det) * tb.EmissionProb(the, det) *
		tb.BigramProb(noun, verb) * tb.EmissionProb(runs, verb)
	require.InDelta(t, want, p, tolerance)
}

func TestScoreImpossibleTagging(t *testing.T) {
	m := trainToy(t, testConfig(3))
	p, err := m.Score([]string{"the", "dog"}, []string{"VERB", "NOUN"})
	require.NoError(t, err)
	require.Equal(t, 0.0, p)

	logP, err := m.LogScore([]string{"the", "dog"}, []string{"VERB", "NOUN"})
	require.NoError(t, err)
	require.True(t, math.IsInf(logP, -1))
}

func TestScoreValidatesInput(t *testing.T) {
	m := trainToy(t, testConfig(3))

	_, err := m.Score([]string{"the", "dog"}, []string{"DET"})
	require.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = m.Score([]string{"the"}, []string{"PRON"})
	require.True(t, errors.Is(err, ErrUnknownTag))

	_, err = m.PathLogProb([]string{"the"}, []string{"<S>"})
	require.True(t, errors.Is(err, ErrUnknownTag))
}

func TestPathLogProbUsesConfiguredOrder(t *testing.T) {
	sent, tags := toyWords[2], toyTags[2]
	bigram := trainToy(t, testConfig(2))
	trigram := trainToy(t, testConfig(3))

	b, err := bigram.PathLogProb(sent, tags)
	require.NoError(t, err)
	tr, err := trigram.PathLogProb(sent, tags)
	require.NoError(t, err)
	require.NotEqual(t, b, tr)

	logScore, err := bigram.LogScore(sent, tags)
	require.NoError(t, err)
	require.InDelta(t, logScore, b, tolerance)
}
