package pos

// Greedy picks, left to right, the tag maximizing P(tag|context)*P(word|tag).
// Unknown words get the fallback tag, which also becomes the new context.
type Greedy struct {
	model *Model
}

func NewGreedy(model *Model) *Greedy {
	return &Greedy{model: model}
}

func (g *Greedy) Decode(words []string) []string {
	return g.model.tagNames(g.search(g.model.observe(words)))
}

func (g *Greedy) search(observations []int) []int {
	m := g.model
	ctx := startContext()
	outcomes := make([]int, len(observations))

	for i, word := range observations {
		best := m.fallbackID
		if word >= 0 {
			maxScore := 0.0
			for tag := 1; tag < m.Index.NumTags(); tag++ {
				score := m.transition(ctx, tag) * m.Tables.EmissionProb(word, tag)
				if score > maxScore {
					maxScore = score
					best = tag
				}
			}
		}
		outcomes[i] = best
		ctx = ctx.next(best)
	}

	return outcomes
}
