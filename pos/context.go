package pos

// transitionContext is the tag history a transition is conditioned on.
// For bigram models only prev1 matters.
type transitionContext struct {
	prev2 int
	prev1 int
}

func startContext() transitionContext {
	return transitionContext{prev2: StartID, prev1: StartID}
}

func (ctx transitionContext) next(tag int) transitionContext {
	return transitionContext{prev2: ctx.prev1, prev1: tag}
}

func (m *Model) transition(ctx transitionContext, tag int) float64 {
	if m.Config.Order == 2 {
		return m.Tables.BigramProb(ctx.prev1, tag)
	}
	return m.Tables.TrigramProb(ctx.prev2, ctx.prev1, tag)
}
