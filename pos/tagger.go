package pos

import (
	"text2phenotype.com/postag/types"
	"fmt"
)

// Decoder tags a sentence; the result has one tag per word.
type Decoder interface {
	Decode(words []string) []string
}

func NewDecoder(model *Model, strategy types.Strategy, beamWidth int) (Decoder, error) {
	switch strategy {
	case types.StrategyGreedy:
		return NewGreedy(model), nil
	case types.StrategyBeam:
		beam, err := NewBeamSearch(model, beamWidth)
		if err != nil {
			return nil, err
		}
		return beam, nil
	case types.StrategyViterbi:
		return NewViterbi(model), nil
	}
	return nil, fmt.Errorf("%w %q", types.ErrUnknownStrategy, strategy)
}

// NewTagger builds the decoder selected by the model configuration.
func NewTagger(model *Model) (func(words []string) []string, error) {
	decoding := model.Config.Decoding
	decoder, err := NewDecoder(model, decoding.Strategy, decoding.BeamWidth)
	if err != nil {
		return nil, err
	}

	return func(words []string) []string {
		return decoder.Decode(words)
	}, nil
}
