package pos

import (
	"text2phenotype.com/postag/types"
	"fmt"
)

// Tables are the smoothed probability tables. Bigram[t1*T+t2] = P(t2|t1),
// Trigram[(t1*T+t2)*T+t3] = P(t3|t1,t2) and Emission[w*T+t] = P(w|t).
// Tables are read-only once Estimate returns.
type Tables struct {
	NumTags  int
	NumWords int
	Unigram  []float64
	Bigram   []float64
	Trigram  []float64
	Emission []float64
}

func (tb *Tables) BigramProb(t1, t2 int) float64 {
	return tb.Bigram[t1*tb.NumTags+t2]
}

func (tb *Tables) TrigramProb(t1, t2, t3 int) float64 {
	return tb.Trigram[(t1*tb.NumTags+t2)*tb.NumTags+t3]
}

func (tb *Tables) EmissionProb(word, tag int) float64 {
	return tb.Emission[word*tb.NumTags+tag]
}

// Estimate applies add-k smoothing to the transition counts. Emissions are
// plain relative frequencies: a word never seen with a tag gets exactly 0.
//
// With the total normalizer the denominators are count(t1)+k*N and
// count(t1,t2)+k*N, N being the number of tag occurrences. The context
// (<S>,<S>) is counted once per sentence. Rows then do not
// sum to one in general. The context normalizer uses the marginal count of
// the context plus k*T instead.
func Estimate(c *Counts, numWords int, smoothing types.SmoothingConfig) (*Tables, error) {
	if c.N == 0 {
		return nil, ErrEmptyCorpus
	}
	T := c.NumTags
	for t := 1; t < T; t++ {
		if c.Unigram[t] == 0 {
			return nil, fmt.Errorf("%w: tag id %d", ErrZeroTagCount, t)
		}
	}

	tb := &Tables{
		NumTags:  T,
		NumWords: numWords,
		Unigram:  make([]float64, T),
		Bigram:   make([]float64, T*T),
		Trigram:  make([]float64, T*T*T),
		Emission: make([]float64, numWords*T),
	}

	N := float64(c.N)
	for t := 1; t < T; t++ {
		tb.Unigram[t] = float64(c.Unigram[t]) / N
	}

	k := smoothing.K
	var extra float64
	switch smoothing.Normalizer {
	case types.NormalizerTotal:
		extra = k * N
	case types.NormalizerContext:
		extra = k * float64(T)
	default:
		return nil, fmt.Errorf("unknown normalizer %q", smoothing.Normalizer)
	}

	for t1 := 0; t1 < T; t1++ {
		ctx := float64(c.Unigram[t1])
		if smoothing.Normalizer == types.NormalizerContext {
			ctx = float64(sum(c.Bigram[t1*T : (t1+1)*T]))
		}
		fillRow(tb.Bigram[t1*T:(t1+1)*T], c.Bigram[t1*T:(t1+1)*T], k, ctx+extra)
	}

	for t1 := 0; t1 < T; t1++ {
		for t2 := 0; t2 < T; t2++ {
			row := (t1*T + t2) * T
			ctx := float64(c.BigramCount(t1, t2))
			if t1 == StartID && t2 == StartID {
				// the doubled sentinel precedes every sentence once
				ctx = float64(c.Unigram[StartID])
			}
			if smoothing.Normalizer == types.NormalizerContext {
				ctx = float64(sum(c.Trigram[row : row+T]))
			}
			fillRow(tb.Trigram[row:row+T], c.Trigram[row:row+T], k, ctx+extra)
		}
	}

	for key, count := range c.Emission {
		tb.Emission[key.Word*T+key.Tag] = float64(count) / float64(c.Unigram[key.Tag])
	}

	return tb, nil
}

// fillRow leaves the row at zero when the denominator is zero, which only
// happens for an unseen context with k == 0.
func fillRow(dst []float64, counts []int, k float64, denominator float64) {
	if denominator <= 0 {
		return
	}
	for i, count := range counts {
		dst[i] = (float64(count) + k) / denominator
	}
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}
