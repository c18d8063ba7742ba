package types

import "fmt"

// Sentence is one tokenized training or inference unit. Tags is nil for
// untagged input and has the same length as Words otherwise.
type Sentence struct {
	ID       int      `json:"id"`
	Words    []string `json:"words"`
	Tags     []string `json:"tags,omitempty"`
	TokenIDs []string `json:"token_ids,omitempty"`
}

func (sent Sentence) IsTagged() bool {
	return sent.Tags != nil
}

type Corpus []Sentence

// Words returns the word sequences in corpus order.
func (c Corpus) Words() [][]string {
	words := make([][]string, len(c))
	for i, sent := range c {
		words[i] = sent.Words
	}
	return words
}

// Tags returns the tag sequences in corpus order.
func (c Corpus) Tags() [][]string {
	tags := make([][]string, len(c))
	for i, sent := range c {
		tags[i] = sent.Tags
	}
	return tags
}

func (c Corpus) NumTokens() int {
	n := 0
	for _, sent := range c {
		n += len(sent.Words)
	}
	return n
}

// NewCorpus zips parallel word and tag sequences. tags may be nil.
func NewCorpus(words [][]string, tags [][]string) (Corpus, error) {
	if tags != nil && len(tags) != len(words) {
		return nil, fmt.Errorf("got %d sentences and %d tag sequences", len(words), len(tags))
	}
	corpus := make(Corpus, len(words))
	for i := range words {
		corpus[i] = Sentence{ID: i, Words: words[i]}
		if tags != nil {
			if len(tags[i]) != len(words[i]) {
				return nil, fmt.Errorf("sentence %d has %d words and %d tags", i, len(words[i]), len(tags[i]))
			}
			corpus[i].Tags = tags[i]
		}
	}
	return corpus, nil
}
