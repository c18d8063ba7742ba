package main

import (
	"text2phenotype.com/postag/corpus"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/types"
	"fmt"
	"github.com/spf13/cobra"
	"strings"
)

func newTagCmd(opts *options) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "tag [words...]",
		Short: "Tag the words given as arguments, or one sentence per line of --input",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sentences types.Corpus
			switch {
			case len(input) > 0:
				loaded, err := corpus.ReadSentences(input)
				if err != nil {
					return err
				}
				sentences = loaded
			case len(args) > 0:
				sentences = types.Corpus{{Words: args}}
			default:
				return fmt.Errorf("nothing to tag: pass words or --input")
			}

			cfg, err := opts.configuration(cmd)
			if err != nil {
				return err
			}
			src, release, err := opts.source()
			if err != nil {
				return err
			}
			defer release()

			model, err := opts.train(src, cfg)
			if err != nil {
				return err
			}
			decoder, err := pos.NewDecoder(model, cfg.Decoding.Strategy, cfg.Decoding.BeamWidth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, sent := range sentences {
				tags := decoder.Decode(sent.Words)
				tagged := make([]string, len(tags))
				for i := range tags {
					tagged[i] = sent.Words[i] + "/" + tags[i]
				}
				fmt.Fprintln(out, strings.Join(tagged, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "File with one whitespace tokenized sentence per line")

	return cmd
}
