package pos

import "fmt"

type EmissionKey struct {
	Word int
	Tag  int
}

// Counts are the raw n-gram and emission counts of a training corpus.
// Every sentence is left padded with the start sentinel, once for bigrams
// and twice for trigrams, so Unigram[StartID] is the number of sentences.
type Counts struct {
	NumTags  int
	N        int
	Unigram  []int
	Bigram   []int
	Trigram  []int
	Emission map[EmissionKey]int
}

func NewCounts(numTags int) *Counts {
	return &Counts{
		NumTags:  numTags,
		Unigram:  make([]int, numTags),
		Bigram:   make([]int, numTags*numTags),
		Trigram:  make([]int, numTags*numTags*numTags),
		Emission: make(map[EmissionKey]int),
	}
}

func (c *Counts) BigramCount(t1, t2 int) int {
	return c.Bigram[t1*c.NumTags+t2]
}

func (c *Counts) TrigramCount(t1, t2, t3 int) int {
	return c.Trigram[(t1*c.NumTags+t2)*c.NumTags+t3]
}

// CountCorpus scans the corpus once. Inputs must already be validated as
// parallel and covered by index.
func CountCorpus(index *Index, words [][]string, tags [][]string) (*Counts, error) {
	if len(words) != len(tags) {
		return nil, fmt.Errorf("%w: %d sentences, %d tag sequences", ErrLengthMismatch, len(words), len(tags))
	}
	c := NewCounts(index.NumTags())
	T := c.NumTags

	for si, sent := range tags {
		if len(sent) != len(words[si]) {
			return nil, fmt.Errorf("%w: sentence %d has %d words, %d tags", ErrLengthMismatch, si, len(words[si]), len(sent))
		}
		c.Unigram[StartID]++
		prev2, prev1 := StartID, StartID
		for i, tag := range sent {
			t, ok := index.TagID(tag)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
			}
			w, ok := index.WordID(words[si][i])
			if !ok {
				return nil, fmt.Errorf("word %q missing from index", words[si][i])
			}

			c.Unigram[t]++
			c.N++
			c.Bigram[prev1*T+t]++
			c.Trigram[(prev2*T+prev1)*T+t]++
			c.Emission[EmissionKey{Word: w, Tag: t}]++

			prev2, prev1 = prev1, t
		}
	}

	return c, nil
}
