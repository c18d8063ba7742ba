package pos

import (
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/types"
	"text2phenotype.com/postag/utils"
	"fmt"
	"strconv"
)

// Model is a trained HMM. All of its fields are read-only after Train, so
// any number of decoders may share one Model.
type Model struct {
	Config     types.Configuration
	Index      *Index
	Counts     *Counts
	Tables     *Tables
	fallbackID int
}

// Train builds the index, counts and smoothed tables from parallel word and
// tag sequences.
func Train(words [][]string, tags [][]string, cfg types.Configuration) (*Model, error) {
	posLogger := logger.NewLogger("Train")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(words) != len(tags) {
		return nil, fmt.Errorf("%w: %d sentences, %d tag sequences", ErrLengthMismatch, len(words), len(tags))
	}
	for i := range words {
		if len(words[i]) == 0 {
			return nil, fmt.Errorf("%w: sentence %d", ErrEmptySentence, i)
		}
		if len(words[i]) != len(tags[i]) {
			return nil, fmt.Errorf("%w: sentence %d has %d words, %d tags", ErrLengthMismatch, i, len(words[i]), len(tags[i]))
		}
		for _, t := range tags[i] {
			if t == cfg.StartTag {
				return nil, fmt.Errorf("sentence %d uses reserved start tag %q", i, t)
			}
		}
	}

	index := BuildIndex(words, tags, cfg.StartTag)
	fallbackID, ok := index.TagID(cfg.Decoding.FallbackTag)
	if !ok {
		return nil, fmt.Errorf("%w: fallback tag %q was not seen in training", ErrUnknownTag, cfg.Decoding.FallbackTag)
	}

	counts, err := CountCorpus(index, words, tags)
	if err != nil {
		return nil, err
	}
	tables, err := Estimate(counts, index.NumWords(), cfg.Smoothing)
	if err != nil {
		return nil, err
	}

	posLogger.Info().
		Str("config", cfg.Name).
		Int("sentences", len(words)).
		Int("tokens", counts.N).
		Int("words", index.NumWords()).
		Int("tags", index.NumTags()-1).
		Msg("Trained model")

	return &Model{
		Config:     cfg,
		Index:      index,
		Counts:     counts,
		Tables:     tables,
		fallbackID: fallbackID,
	}, nil
}

func TrainCorpus(corpus types.Corpus, cfg types.Configuration) (*Model, error) {
	return Train(corpus.Words(), corpus.Tags(), cfg)
}

func (m *Model) FallbackTag() string {
	return m.Index.Tag(m.fallbackID)
}

// IsKnown reports whether word is in the training vocabulary.
func (m *Model) IsKnown(word string) bool {
	_, ok := m.Index.WordID(word)
	return ok
}

// observe maps words to ids, -1 standing for an unknown word.
func (m *Model) observe(words []string) []int {
	obs := make([]int, len(words))
	for i, w := range words {
		id, ok := m.Index.WordID(w)
		if !ok {
			id = -1
		}
		obs[i] = id
	}
	return obs
}

func (m *Model) tagIDs(tags []string) ([]int, error) {
	ids := make([]int, len(tags))
	for i, t := range tags {
		id, ok := m.Index.TagID(t)
		if !ok || id == StartID {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownTag, t, i)
		}
		ids[i] = id
	}
	return ids, nil
}

func (m *Model) tagNames(ids []int) []string {
	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = m.Index.Tag(id)
	}
	return tags
}

// emission is P(word|tag) for a known word and the unknown word policy for
// word == -1.
func (m *Model) emission(word int, tag int) float64 {
	if word >= 0 {
		return m.Tables.EmissionProb(word, tag)
	}
	return m.unknownEmission(tag)
}

func (m *Model) unknownEmission(tag int) float64 {
	if m.Config.Decoding.UnknownEmission == types.UnknownEmissionUniform {
		return 1 / float64(m.Index.NumTags()-1)
	}
	if tag == m.fallbackID {
		return 1
	}
	return 0
}

// Fingerprint identifies the model configuration and vocabularies. Models
// trained from the same corpus with the same configuration share it.
func (m *Model) Fingerprint() uint64 {
	cfg := m.Config
	parts := []string{
		strconv.Itoa(cfg.Order),
		cfg.StartTag,
		strconv.FormatFloat(cfg.Smoothing.K, 'g', -1, 64),
		string(cfg.Smoothing.Normalizer),
		cfg.Decoding.FallbackTag,
		string(cfg.Decoding.UnknownEmission),
		strconv.Itoa(m.Counts.N),
	}
	parts = append(parts, m.Index.id2tag...)
	parts = append(parts, m.Index.id2word...)
	return utils.HashStrings(parts...)
}
