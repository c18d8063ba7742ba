package pos

// StartID is the id of the start sentinel. It is present in every index and
// is used only as transition context, never as a decoded tag.
const StartID = 0

// Index holds the word and tag bijections built from a training corpus.
// Ids are assigned in first-seen order so that the same corpus always gives
// the same ids.
type Index struct {
	word2id map[string]int
	id2word []string
	tag2id  map[string]int
	id2tag  []string
}

func BuildIndex(words [][]string, tags [][]string, startTag string) *Index {
	index := &Index{
		word2id: make(map[string]int),
		tag2id:  map[string]int{startTag: StartID},
		id2tag:  []string{startTag},
	}

	for _, sent := range words {
		for _, w := range sent {
			if _, ok := index.word2id[w]; !ok {
				index.word2id[w] = len(index.id2word)
				index.id2word = append(index.id2word, w)
			}
		}
	}

	for _, sent := range tags {
		for _, t := range sent {
			if _, ok := index.tag2id[t]; !ok {
				index.tag2id[t] = len(index.id2tag)
				index.id2tag = append(index.id2tag, t)
			}
		}
	}

	return index
}

func (index *Index) WordID(word string) (int, bool) {
	id, ok := index.word2id[word]
	return id, ok
}

func (index *Index) Word(id int) string {
	return index.id2word[id]
}

func (index *Index) TagID(tag string) (int, bool) {
	id, ok := index.tag2id[tag]
	return id, ok
}

func (index *Index) Tag(id int) string {
	return index.id2tag[id]
}

func (index *Index) NumWords() int {
	return len(index.id2word)
}

// NumTags counts the start sentinel too.
func (index *Index) NumTags() int {
	return len(index.id2tag)
}

func (index *Index) StartTag() string {
	return index.id2tag[StartID]
}

// Tags lists the observed tags without the sentinel, ordered by id.
func (index *Index) Tags() []string {
	tags := make([]string, len(index.id2tag)-1)
	copy(tags, index.id2tag[1:])
	return tags
}

func (index *Index) Words() []string {
	words := make([]string, len(index.id2word))
	copy(words, index.id2word)
	return words
}
