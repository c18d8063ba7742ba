package pos

// SequenceValidator decides whether outcome may be assigned to observation i.
type SequenceValidator interface {
	ValidSequence(i int, observations []int, outcome int) bool
}

// emissionValidator rejects tags that never emitted the word, since their
// log-probability is undefined. Unknown words accept every tag.
type emissionValidator struct {
	tables *Tables
}

func (v emissionValidator) ValidSequence(i int, observations []int, outcome int) bool {
	if outcome == StartID {
		return false
	}
	w := observations[i]
	if w < 0 {
		return true
	}
	return v.tables.EmissionProb(w, outcome) > 0
}

func NewSequenceValidator(model *Model) SequenceValidator {
	return emissionValidator{tables: model.Tables}
}
