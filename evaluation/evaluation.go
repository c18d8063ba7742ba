package evaluation

import (
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/types"
	"text2phenotype.com/postag/utils"
	"errors"
	"fmt"
	"sync"
	"time"
)

type Options struct {
	Workers   int
	DocStart  string
	EndOfSent string
}

type Report struct {
	Sentences             int              `json:"sentences"`
	Tokens                int              `json:"tokens"`
	UnknownTokens         int              `json:"unknown_tokens"`
	WholeSentences        int              `json:"whole_sentences"`
	UnscoredSentences     int              `json:"unscored_sentences"`
	TokenAccuracy         float64          `json:"token_accuracy"`
	UnknownTokenAccuracy  float64          `json:"unknown_token_accuracy"`
	WholeSentenceAccuracy float64          `json:"whole_sentence_accuracy"`
	MeanProbability       float64          `json:"mean_probability"`
	InferenceRuntime      time.Duration    `json:"inference_runtime"`
	ScoringRuntime        time.Duration    `json:"scoring_runtime"`
	Confusion             *ConfusionMatrix `json:"-"`
}

type shard struct {
	offset    int
	sentences types.Corpus
}

func split(corpus types.Corpus, workers int) []shard {
	if workers < 1 {
		workers = 1
	}
	size := (len(corpus) + workers - 1) / workers
	if size == 0 {
		size = 1
	}
	var shards []shard
	for i := 0; i < len(corpus); i += size {
		end := i + size
		if end > len(corpus) {
			end = len(corpus)
		}
		shards = append(shards, shard{offset: i, sentences: corpus[i:end]})
	}
	return shards
}

// Predict decodes the corpus on workers goroutines, one contiguous shard
// each. Results are in corpus order. A decoder panic in any shard is
// returned as an error.
func Predict(decoder pos.Decoder, corpus types.Corpus, workers int) ([][]string, error) {
	predictions := make([][]string, len(corpus))
	shards := split(corpus, workers)
	errs := make(chan error, len(shards))

	var wg sync.WaitGroup
	for _, sh := range shards {
		wg.Add(1)
		go func(sh shard) {
			defer wg.Done()
			var err error
			defer func() { errs <- err }()
			defer utils.RecoverWithError(&err)
			for i, sent := range sh.sentences {
				predictions[sh.offset+i] = decoder.Decode(sent.Words)
			}
		}(sh)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return predictions, nil
}

// Probabilities scores the gold tags of every sentence. Sentences using a
// tag the model never saw get probability 0 and are reported in unscored.
func Probabilities(model *pos.Model, corpus types.Corpus, workers int) ([]float64, int, error) {
	probs := make([]float64, len(corpus))
	type result struct {
		unscored int
		err      error
	}
	shards := split(corpus, workers)
	results := make(chan result, len(shards))

	var wg sync.WaitGroup
	for _, sh := range shards {
		wg.Add(1)
		go func(sh shard) {
			defer wg.Done()
			var res result
			for i, sent := range sh.sentences {
				p, err := model.Score(sent.Words, sent.Tags)
				if errors.Is(err, pos.ErrUnknownTag) {
					res.unscored++
					continue
				}
				if err != nil {
					res.err = fmt.Errorf("sentence %d: %w", sent.ID, err)
					break
				}
				probs[sh.offset+i] = p
			}
			results <- res
		}(sh)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	unscored := 0
	var firstErr error
	for res := range results {
		unscored += res.unscored
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
	}
	return probs, unscored, firstErr
}

func Evaluate(model *pos.Model, decoder pos.Decoder, corpus types.Corpus, opts Options) (Report, error) {
	evalLogger := logger.NewLogger("Evaluation")
	report := Report{Sentences: len(corpus), Confusion: NewConfusionMatrix()}

	if len(corpus) == 0 {
		return report, errors.New("nothing to evaluate")
	}
	for _, sent := range corpus {
		if len(sent.Tags) != len(sent.Words) {
			return report, fmt.Errorf("%w: sentence %d has %d words, %d tags", pos.ErrLengthMismatch, sent.ID, len(sent.Words), len(sent.Tags))
		}
	}

	start := time.Now()
	predictions, err := Predict(decoder, corpus, opts.Workers)
	if err != nil {
		return report, err
	}
	report.InferenceRuntime = time.Since(start)
	evalLogger.Info().Dur("runtime", report.InferenceRuntime).Int("workers", opts.Workers).Msg("Inference finished")

	start = time.Now()
	probs, unscored, err := Probabilities(model, corpus, opts.Workers)
	if err != nil {
		return report, err
	}
	report.ScoringRuntime = time.Since(start)
	report.UnscoredSentences = unscored
	evalLogger.Info().Dur("runtime", report.ScoringRuntime).Msg("Probability estimation finished")

	correct, unknownCorrect := 0, 0
	for i, sent := range corpus {
		for j, gold := range sent.Tags {
			predicted := predictions[i][j]
			report.Confusion.Add(gold, predicted)
			report.Tokens++
			known := model.IsKnown(sent.Words[j])
			if !known {
				report.UnknownTokens++
			}
			if gold == predicted {
				correct++
				if !known {
					unknownCorrect++
				}
			}
		}
	}

	wholeCorrect := 0
	for i, sent := range corpus {
		total, ok := wholeSentenceMatches(sent, predictions[i], opts)
		report.WholeSentences += total
		wholeCorrect += ok
	}

	sumProb := 0.0
	for _, p := range probs {
		sumProb += p
	}

	report.TokenAccuracy = ratio(correct, report.Tokens)
	report.UnknownTokenAccuracy = ratio(unknownCorrect, report.UnknownTokens)
	report.WholeSentenceAccuracy = ratio(wholeCorrect, report.WholeSentences)
	report.MeanProbability = sumProb / float64(len(corpus))

	evalLogger.Info().
		Float64("token_accuracy", report.TokenAccuracy).
		Float64("unknown_token_accuracy", report.UnknownTokenAccuracy).
		Float64("whole_sentence_accuracy", report.WholeSentenceAccuracy).
		Float64("mean_probability", report.MeanProbability).
		Msg("Evaluation finished")

	return report, nil
}

// wholeSentenceMatches splits a document at end of sentence tokens and
// counts the segments whose predicted tags all match. A leading document
// marker and the end of sentence tokens themselves are not compared.
func wholeSentenceMatches(sent types.Sentence, predicted []string, opts Options) (int, int) {
	begin := 0
	if len(sent.Words) > 0 && len(opts.DocStart) > 0 && sent.Words[0] == opts.DocStart {
		begin = 1
	}

	total, matches := 0, 0
	for i, w := range sent.Words {
		if w != opts.EndOfSent {
			continue
		}
		if i > begin {
			total++
			if equal(sent.Tags[begin:i], predicted[begin:i]) {
				matches++
			}
		}
		begin = i + 1
	}
	return total, matches
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
