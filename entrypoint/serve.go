package main

import (
	"text2phenotype.com/postag/api"
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/worker"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"net/http"
	"time"
)

const workerRestartDelay = 5 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Train once, then serve the REST API and/or the RMQ tagging worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			serveLogger := logger.NewLogger("Main")
			if !opts.env.RestAPIActive && !opts.env.WorkerActive {
				return errors.New("nothing to serve: enable POSTAG_REST_API_ACTIVE or POSTAG_WORKER_ACTIVE")
			}
			cfg, err := opts.configuration(cmd)
			if err != nil {
				return err
			}
			src, release, err := opts.source()
			if err != nil {
				return err
			}
			model, err := opts.train(src, cfg)
			release()
			if err != nil {
				return err
			}
			decoder, err := pos.NewDecoder(model, cfg.Decoding.Strategy, cfg.Decoding.BeamWidth)
			if err != nil {
				return err
			}
			serveLogger.Info().Str("config", cfg.Name).Str("strategy", string(cfg.Decoding.Strategy)).Msg("Model trained")

			apiErrs := make(chan error, 1)
			if opts.env.RestAPIActive {
				go func() {
					host := fmt.Sprintf(":%s", opts.env.RestAPIPort)
					serveLogger.Info().Msgf("REST API on %s", host)
					srv := &api.Server{Model: model, Workers: opts.env.Workers}
					apiErrs <- http.ListenAndServe(host, srv.Handler())
				}()
			}
			if !opts.env.WorkerActive {
				err := <-apiErrs
				serveLogger.Err(err).Msg("REST API stopped with error")
				return err
			}

			serveLogger.Info().Msg("Start tagging worker")
			tagger := worker.Tagger{Model: model, Decoder: decoder, Strategy: cfg.Decoding.Strategy}
			for {
				select {
				case err := <-apiErrs:
					serveLogger.Err(err).Msg("REST API stopped with error")
					return err
				default:
				}
				rmqWorker, err := worker.New(tagger)
				if err != nil {
					return fmt.Errorf("could not initialize RMQ worker: %w", err)
				}
				if err = rmqWorker.StartWorker(); err != nil {
					serveLogger.Err(err).Msgf("Worker returned with error. Launching new in %s", workerRestartDelay)
					time.Sleep(workerRestartDelay)
				}
			}
		},
	}
	return cmd
}
