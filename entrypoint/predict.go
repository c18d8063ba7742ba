package main

import (
	"text2phenotype.com/postag/corpus"
	"text2phenotype.com/postag/evaluation"
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/s3client"
	"bytes"
	"fmt"
	"github.com/spf13/cobra"
	"io/ioutil"
)

func newPredictCmd(opts *options) *cobra.Command {
	var (
		testWords string
		output    string
		uploadKey string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Tag the test corpus and write an id,tag predictions file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			predictLogger := logger.NewLogger("Predict")
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
			test, err := corpus.Load(src, testWords, "", cfg.Corpus)
			if err != nil {
				return fmt.Errorf("load test corpus: %w", err)
			}
			decoder, err := pos.NewDecoder(model, cfg.Decoding.Strategy, cfg.Decoding.BeamWidth)
			if err != nil {
				return err
			}
			predictions, err := evaluation.Predict(decoder, test, opts.env.Workers)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err = corpus.WritePredictions(&buf, test, predictions); err != nil {
				return err
			}
			if len(uploadKey) > 0 {
				client, err := s3client.New()
				if err != nil {
					return err
				}
				defer client.Close()
				location, err := client.Upload(buf.Bytes(), uploadKey)
				if err != nil {
					return fmt.Errorf("upload predictions: %w", err)
				}
				predictLogger.Info().Str("location", location).Msg("Uploaded predictions")
				return nil
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err = ioutil.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			predictLogger.Info().Str("file", output).Int("tokens", test.NumTokens()).Msg("Wrote predictions")
			return nil
		},
	}

	cmd.Flags().StringVar(&testWords, "test-words", "test_x.csv", "Test words file (id,word)")
	cmd.Flags().StringVarP(&output, "output", "o", "predictions.csv", "Predictions file, - for stdout")
	cmd.Flags().StringVar(&uploadKey, "upload-key", "", "Upload the predictions to this bucket key instead of writing a file")

	return cmd
}
