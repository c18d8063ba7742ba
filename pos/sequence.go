package pos

// Sequence is a partial tag hypothesis. Score is the sum of the per step
// log-probabilities kept in Probs.
type Sequence struct {
	Score    float64
	Outcomes []int
	Probs    []float64
	context  transitionContext
	rank     int
}

func newSequence() Sequence {
	return Sequence{context: startContext()}
}

func (seq *Sequence) ExpandFrom(src Sequence, out int, logProb float64) {
	seq.Outcomes = make([]int, len(src.Outcomes)+1)
	copy(seq.Outcomes, src.Outcomes)
	seq.Outcomes[len(seq.Outcomes)-1] = out

	seq.Probs = make([]float64, len(src.Probs)+1)
	copy(seq.Probs, src.Probs)
	seq.Probs[len(seq.Probs)-1] = logProb

	seq.Score = src.Score + logProb
	seq.context = src.context.next(out)
}

// Less orders by descending score; equal scores keep the order in which
// the hypotheses were produced.
func (seq Sequence) Less(o interface{}) bool {
	c, isOk := o.(Sequence)
	if !isOk {
		return false
	}
	if seq.Score != c.Score {
		return seq.Score > c.Score
	}
	return seq.rank < c.rank
}
