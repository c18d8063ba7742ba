package pos

import (
	"text2phenotype.com/postag/utils"
	"container/heap"
	"fmt"
	"math"
)

// BeamSearch keeps the size best hypotheses after every known word. Unknown
// words append the fallback tag to every hypothesis without rescoring.
// Fewer than size hypotheses survive when fewer valid expansions exist.
type BeamSearch struct {
	model     *Model
	size      int
	validator SequenceValidator
}

func NewBeamSearch(model *Model, size int) (*BeamSearch, error) {
	if size < 1 {
		return nil, fmt.Errorf("beam width must be positive, got %d", size)
	}
	return &BeamSearch{
		model:     model,
		size:      size,
		validator: NewSequenceValidator(model),
	}, nil
}

func (b *BeamSearch) Decode(words []string) []string {
	top, _ := b.Search(b.model.observe(words))
	return b.model.tagNames(top.Outcomes)
}

// Search returns the best hypothesis, or false for an empty input.
func (b *BeamSearch) Search(observations []int) (Sequence, bool) {
	m := b.model
	beam := []Sequence{newSequence()}

	for i, word := range observations {
		if word < 0 {
			beam = b.appendFallback(beam)
			continue
		}

		next := make(utils.PriorityQueue, 0, len(beam)*m.Index.NumTags())
		heap.Init(&next)
		rank := 0
		for _, top := range beam {
			for tag := 1; tag < m.Index.NumTags(); tag++ {
				if !b.validator.ValidSequence(i, observations, tag) {
					continue
				}
				q := m.transition(top.context, tag)
				if q <= 0 {
					continue
				}
				var ns Sequence
				ns.ExpandFrom(top, tag, math.Log(q)+math.Log(m.Tables.EmissionProb(word, tag)))
				ns.rank = rank
				rank++
				heap.Push(&next, ns)
			}
		}

		if len(next) == 0 {
			beam = b.appendFallback(beam)
			continue
		}

		sz := b.size
		if len(next) < sz {
			sz = len(next)
		}
		beam = make([]Sequence, sz)
		for j := 0; j < sz; j++ {
			beam[j] = heap.Pop(&next).(Sequence)
			beam[j].rank = j
		}
	}

	if len(observations) == 0 {
		return beam[0], false
	}
	return beam[0], true
}

func (b *BeamSearch) appendFallback(beam []Sequence) []Sequence {
	expanded := make([]Sequence, len(beam))
	for j, seq := range beam {
		expanded[j].ExpandFrom(seq, b.model.fallbackID, 0)
		expanded[j].rank = seq.rank
	}
	return expanded
}
