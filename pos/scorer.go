package pos

import (
	"fmt"
	"math"
)

// Score is the product of P(tag_i|tag_i-1)*P(word_i|tag_i) over the known
// words of the sequence; unknown words contribute a factor of 1. The first
// position is conditioned on the start sentinel. Long sequences underflow,
// see LogScore.
func (m *Model) Score(words []string, tags []string) (float64, error) {
	obs, ids, err := m.prepare(words, tags)
	if err != nil {
		return 0, err
	}

	prob := 1.0
	prev := StartID
	for i, word := range obs {
		if word >= 0 {
			prob *= m.Tables.BigramProb(prev, ids[i]) * m.Tables.EmissionProb(word, ids[i])
		}
		prev = ids[i]
	}
	return prob, nil
}

// LogScore is the natural log of Score, -Inf when any factor is zero.
func (m *Model) LogScore(words []string, tags []string) (float64, error) {
	obs, ids, err := m.prepare(words, tags)
	if err != nil {
		return 0, err
	}

	logProb := 0.0
	prev := StartID
	for i, word := range obs {
		if word >= 0 {
			logProb += math.Log(m.Tables.BigramProb(prev, ids[i]))
			logProb += math.Log(m.Tables.EmissionProb(word, ids[i]))
		}
		prev = ids[i]
	}
	return logProb, nil
}

// PathLogProb scores a tag sequence the way the decoders do: transitions of
// the configured order at every position, and the unknown word emission
// policy in place of P(word|tag) for unknown words.
func (m *Model) PathLogProb(words []string, tags []string) (float64, error) {
	obs, ids, err := m.prepare(words, tags)
	if err != nil {
		return 0, err
	}

	logProb := 0.0
	ctx := startContext()
	for i, word := range obs {
		logProb += math.Log(m.transition(ctx, ids[i]))
		logProb += math.Log(m.emission(word, ids[i]))
		ctx = ctx.next(ids[i])
	}
	return logProb, nil
}

func (m *Model) prepare(words []string, tags []string) ([]int, []int, error) {
	if len(words) != len(tags) {
		return nil, nil, fmt.Errorf("%w: %d words, %d tags", ErrLengthMismatch, len(words), len(tags))
	}
	ids, err := m.tagIDs(tags)
	if err != nil {
		return nil, nil, err
	}
	return m.observe(words), ids, nil
}
