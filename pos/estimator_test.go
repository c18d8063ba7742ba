package pos

import (
	"text2phenotype.com/postag/types"
	"errors"
	"github.com/stretchr/testify/require"
	"testing"
)

const tolerance = 1e-9

func TestEstimateTotalNormalizer(t *testing.T) {
	m := trainToy(t, testConfig(3))
	c, tb := m.Counts, m.Tables
	det, _ := m.Index.TagID("DET")
	noun, _ := m.Index.TagID("NOUN")
	verb, _ := m.Index.TagID("VERB")
	N := float64(c.N)

	require.InDelta(t, float64(c.Unigram[noun])/N, tb.Unigram[noun], tolerance)
	require.Equal(t, 0.0, tb.Unigram[StartID])
	require.InDelta(t, (7.0+1)/(float64(c.Unigram[det])+N), tb.BigramProb(det, noun), tolerance)
	require.InDelta(t, (0.0+1)/(float64(c.Unigram[det])+N), tb.BigramProb(det, det), tolerance)
	require.InDelta(t, (5.0+1)/(7.0+N), tb.TrigramProb(det, noun, verb), tolerance)
	sentences := float64(c.Unigram[StartID])
	require.InDelta(t, 2/(sentences+N), tb.TrigramProb(StartID, StartID, noun), tolerance)
}

func TestTransitionsAreProbabilities(t *testing.T) {
	words := [][]string{{"a"}, {"b"}, {"c"}}
	tags := [][]string{{"NOUN"}, {"NOUN"}, {"NOUN"}}
	for _, normalizer := range []types.Normalizer{types.NormalizerTotal, types.NormalizerContext} {
		for _, k := range []float64{0, 0.01, 1} {
			cfg := testConfig(3)
			cfg.Smoothing.K = k
			cfg.Smoothing.Normalizer = normalizer
			cfg.Decoding.FallbackTag = "NOUN"
			m, err := Train(words, tags, cfg)
			require.NoError(t, err)

			noun, _ := m.Index.TagID("NOUN")
			require.LessOrEqual(t, m.Tables.TrigramProb(StartID, StartID, noun), 1.0)
			for i, p := range m.Tables.Bigram {
				require.LessOrEqualf(t, p, 1.0, "bigram %d, %s, k=%g", i, normalizer, k)
			}
			for i, p := range m.Tables.Trigram {
				require.LessOrEqualf(t, p, 1.0, "trigram %d, %s, k=%g", i, normalizer, k)
			}
		}
	}
}

func TestUnigramSumsToOne(t *testing.T) {
	m := trainToy(t, testConfig(3))
	total := 0.0
	for _, p := range m.Tables.Unigram {
		total += p
	}
	require.InDelta(t, 1.0, total, tolerance)
}

func TestTransitionRowsSumToOne(t *testing.T) {
	cfg := testConfig(3)
	cfg.Smoothing.Normalizer = types.NormalizerContext
	for _, k := range []float64{1, 0.5, 0.01} {
		cfg.Smoothing.K = k
		m := trainToy(t, cfg)
		T := m.Index.NumTags()

		for t1 := 0; t1 < T; t1++ {
			row := 0.0
			for t2 := 0; t2 < T; t2++ {
				row += m.Tables.BigramProb(t1, t2)
			}
			require.InDelta(t, 1.0, row, tolerance, "bigram row %d k=%v", t1, k)

			for t2 := 0; t2 < T; t2++ {
				row := 0.0
				for t3 := 0; t3 < T; t3++ {
					row += m.Tables.TrigramProb(t1, t2, t3)
				}
				require.InDelta(t, 1.0, row, tolerance, "trigram row %d,%d k=%v", t1, t2, k)
			}
		}
	}
}

func TestEmissionColumnsSumToOne(t *testing.T) {
	for _, normalizer := range []types.Normalizer{types.NormalizerTotal, types.NormalizerContext} {
		cfg := testConfig(2)
		cfg.Smoothing.Normalizer = normalizer
		m := trainToy(t, cfg)
		for tag := 1; tag < m.Index.NumTags(); tag++ {
			col := 0.0
			for w := 0; w < m.Index.NumWords(); w++ {
				col += m.Tables.EmissionProb(w, tag)
			}
			require.InDelta(t, 1.0, col, tolerance, m.Index.Tag(tag))
		}
	}
}

func TestEmissionsAreNotSmoothed(t *testing.T) {
	m := trainToy(t, testConfig(3))
	the, _ := m.Index.WordID("the")
	verb, _ := m.Index.TagID("VERB")
	det, _ := m.Index.TagID("DET")
	require.Equal(t, 0.0, m.Tables.EmissionProb(the, verb))
	require.InDelta(t, 4.0/7.0, m.Tables.EmissionProb(the, det), tolerance)
}

func TestEstimateWithoutSmoothing(t *testing.T) {
	cfg := testConfig(3)
	cfg.Smoothing.K = 0
	cfg.Smoothing.Normalizer = types.NormalizerContext
	m := trainToy(t, cfg)
	det, _ := m.Index.TagID("DET")
	adv, _ := m.Index.TagID("ADV")

	require.Equal(t, 0.0, m.Tables.BigramProb(det, det))
	// (DET, ADV) never occurs, its row stays empty instead of NaN
	for t3 := 0; t3 < m.Index.NumTags(); t3++ {
		require.Equal(t, 0.0, m.Tables.TrigramProb(det, adv, t3))
	}
}

func TestEstimateErrors(t *testing.T) {
	smoothing := types.SmoothingConfig{K: 1, Normalizer: types.NormalizerTotal}

	_, err := Estimate(NewCounts(3), 0, smoothing)
	require.True(t, errors.Is(err, ErrEmptyCorpus))

	c := NewCounts(3)
	c.Unigram[1] = 2
	c.N = 2
	_, err = Estimate(c, 1, smoothing)
	require.True(t, errors.Is(err, ErrZeroTagCount))

	c.Unigram[2] = 1
	c.N = 3
	_, err = Estimate(c, 1, types.SmoothingConfig{K: 1, Normalizer: "witten-bell"})
	require.Error(t, err)
}
