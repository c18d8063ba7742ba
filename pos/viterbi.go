package pos

import "math"

// Viterbi finds the tag sequence maximizing PathLogProb. A state is the
// (previous tag, current tag) pair; bigram models pin the previous slot to
// the start sentinel so only |tags| states are live.
type Viterbi struct {
	model *Model
}

func NewViterbi(model *Model) *Viterbi {
	return &Viterbi{model: model}
}

func (v *Viterbi) Decode(words []string) []string {
	return v.model.tagNames(v.search(v.model.observe(words)))
}

type emitFunc func(tag int) float64

func (v *Viterbi) search(observations []int) []int {
	m := v.model
	T := m.Index.NumTags()
	if len(observations) == 0 {
		return []int{}
	}

	best := newScores(T * T)
	best[StartID*T+StartID] = 0
	backPointers := make([][]int32, len(observations))

	for i, word := range observations {
		word := word
		emit := func(tag int) float64 { return m.emission(word, tag) }
		next, bp := v.step(best, emit, false)
		if bp == nil && word >= 0 {
			// the word is known but no path reaches it; keep its seen tags
			next, bp = v.step(best, emit, true)
		}
		if bp == nil {
			next, bp = v.step(best, m.unknownEmission, true)
		}
		best = next
		backPointers[i] = bp
	}

	state := 0
	for s := range best {
		if best[s] > best[state] {
			state = s
		}
	}

	outcomes := make([]int, len(observations))
	for i := len(observations) - 1; i >= 0; i-- {
		outcomes[i] = state % T
		state = int(backPointers[i][state])
	}
	return outcomes
}

// step advances the lattice by one observation. It returns nil back
// pointers when no state is reachable. With ignoreTransitions every
// transition is treated as certain, which keeps the lattice alive when all
// transitions into the word are zero.
func (v *Viterbi) step(best []float64, emit emitFunc, ignoreTransitions bool) ([]float64, []int32) {
	m := v.model
	T := m.Index.NumTags()
	next := newScores(T * T)
	bp := make([]int32, T*T)
	reached := false

	for s, score := range best {
		if math.IsInf(score, -1) {
			continue
		}
		ctx := transitionContext{prev2: s / T, prev1: s % T}
		for tag := 1; tag < T; tag++ {
			e := emit(tag)
			if e <= 0 {
				continue
			}
			logQ := 0.0
			if !ignoreTransitions {
				q := m.transition(ctx, tag)
				if q <= 0 {
					continue
				}
				logQ = math.Log(q)
			}

			ns := ctx.prev1*T + tag
			if m.Config.Order == 2 {
				ns = StartID*T + tag
			}
			cand := score + logQ + math.Log(e)
			if cand > next[ns] {
				next[ns] = cand
				bp[ns] = int32(s)
				reached = true
			}
		}
	}

	if !reached {
		return next, nil
	}
	return next, bp
}

func newScores(n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.Inf(-1)
	}
	return scores
}
