package main

import (
	"text2phenotype.com/postag/corpus"
	"text2phenotype.com/postag/evaluation"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/types"
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
	"io"
)

type evaluateResult struct {
	Config    string                 `json:"config"`
	Strategy  types.Strategy         `json:"strategy"`
	Order     int                    `json:"order"`
	K         float64                `json:"k"`
	Report    evaluation.Report      `json:"report"`
	Confusion []evaluation.Confusion `json:"top_confusions"`
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var (
		devWords   string
		devTags    string
		compare    bool
		confusions int
		matrix     bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Train on the training corpus and report accuracy on the dev corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := opts.configurations(cmd)
			if err != nil {
				return err
			}
			src, release, err := opts.source()
			if err != nil {
				return err
			}
			defer release()

			var results []evaluateResult
			for _, cfg := range cfgs {
				model, err := opts.train(src, cfg)
				if err != nil {
					return err
				}
				dev, err := corpus.Load(src, devWords, devTags, cfg.Corpus)
				if err != nil {
					return fmt.Errorf("load dev corpus: %w", err)
				}

				strategies := []types.Strategy{cfg.Decoding.Strategy}
				if compare {
					strategies = []types.Strategy{types.StrategyGreedy, types.StrategyBeam, types.StrategyViterbi}
				}
				for _, strategy := range strategies {
					decoder, err := pos.NewDecoder(model, strategy, cfg.Decoding.BeamWidth)
					if err != nil {
						return err
					}
					report, err := evaluation.Evaluate(model, decoder, dev, evaluation.Options{
						Workers:   opts.env.Workers,
						DocStart:  cfg.Corpus.DocStart,
						EndOfSent: cfg.Corpus.EndOfSent,
					})
					if err != nil {
						return fmt.Errorf("%s/%s: %w", cfg.Name, strategy, err)
					}
					results = append(results, evaluateResult{
						Config:    cfg.Name,
						Strategy:  strategy,
						Order:     cfg.Order,
						K:         cfg.Smoothing.K,
						Report:    report,
						Confusion: report.Confusion.TopConfusions(confusions),
					})
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, res := range results {
				printReport(out, res, matrix)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&devWords, "dev-words", "dev_x.csv", "Dev words file (id,word)")
	cmd.Flags().StringVar(&devTags, "dev-tags", "dev_y.csv", "Dev tags file (id,tag)")
	cmd.Flags().BoolVar(&compare, "compare", false, "Evaluate greedy, beam and viterbi decoding side by side")
	cmd.Flags().IntVar(&confusions, "confusions", 10, "Number of most frequent tag confusions to list")
	cmd.Flags().BoolVar(&matrix, "matrix", false, "Print the full confusion matrix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reports as JSON")

	return cmd
}

func printReport(w io.Writer, res evaluateResult, matrix bool) {
	r := res.Report
	fmt.Fprintf(w, "== %s: %s, order %d, k %g\n", res.Config, res.Strategy, res.Order, res.K)
	fmt.Fprintf(w, "sentences:               %d\n", r.Sentences)
	fmt.Fprintf(w, "tokens:                  %d (%d unknown)\n", r.Tokens, r.UnknownTokens)
	fmt.Fprintf(w, "token accuracy:          %.4f\n", r.TokenAccuracy)
	fmt.Fprintf(w, "unknown token accuracy:  %.4f\n", r.UnknownTokenAccuracy)
	fmt.Fprintf(w, "whole sentence accuracy: %.4f (%d sentences)\n", r.WholeSentenceAccuracy, r.WholeSentences)
	fmt.Fprintf(w, "mean probability:        %.6g\n", r.MeanProbability)
	fmt.Fprintf(w, "inference runtime:       %s\n", r.InferenceRuntime)
	fmt.Fprintf(w, "scoring runtime:         %s\n", r.ScoringRuntime)
	if len(res.Confusion) > 0 {
		fmt.Fprintln(w, "top confusions (gold -> predicted):")
		for _, c := range res.Confusion {
			fmt.Fprintf(w, "  %s -> %s: %d\n", c.Gold, c.Predicted, c.Count)
		}
	}
	if matrix {
		fmt.Fprint(w, r.Confusion.String())
	}
}
