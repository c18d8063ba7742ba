package main

import (
	"text2phenotype.com/postag/corpus"
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/s3client"
	"text2phenotype.com/postag/types"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// Config holds process settings read from the environment. Flags override
// the corresponding values.
type Config struct {
	ConfigPath    string `envconfig:"POSTAG_CONFIG_PATH" default:""`
	ConfigDir     string `envconfig:"POSTAG_CONFIG_DIR" default:""`
	DataDir       string `envconfig:"POSTAG_DATA_DIR" default:"data"`
	DataSource    string `envconfig:"POSTAG_DATA_SOURCE" default:"file"`
	S3Prefix      string `envconfig:"POSTAG_DATA_S3_PREFIX" default:""`
	TrainWords    string `envconfig:"POSTAG_TRAIN_WORDS" default:"train_x.csv"`
	TrainTags     string `envconfig:"POSTAG_TRAIN_TAGS" default:"train_y.csv"`
	Workers       int    `envconfig:"POSTAG_WORKERS" default:"4"`
	RestAPIActive bool   `envconfig:"POSTAG_REST_API_ACTIVE" default:"true"`
	RestAPIPort   string `envconfig:"POSTAG_REST_API_PORT" default:"10000"`
	WorkerActive  bool   `envconfig:"POSTAG_WORKER_ACTIVE" default:"false"`
}

const (
	sourceFile = "file"
	sourceS3   = "s3"
)

type options struct {
	env             Config
	strategy        string
	order           int
	k               float64
	normalizer      string
	beamWidth       int
	unknownEmission string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}
	envErr := envconfig.Process("", &opts.env)

	cmd := &cobra.Command{
		Use:           "postag",
		Short:         "Trigram HMM part-of-speech tagger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetupLogging()
			if envErr != nil {
				return fmt.Errorf("read environment: %w", envErr)
			}
			if opts.env.DataSource != sourceFile && opts.env.DataSource != sourceS3 {
				return fmt.Errorf("--source must be %q or %q, got %q", sourceFile, sourceS3, opts.env.DataSource)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.env.ConfigPath, "config", opts.env.ConfigPath, "YAML model configuration file")
	flags.StringVar(&opts.env.ConfigDir, "config-dir", opts.env.ConfigDir, "Directory of YAML model configurations")
	flags.StringVar(&opts.env.DataDir, "data-dir", opts.env.DataDir, "Directory holding the corpus CSV files")
	flags.StringVar(&opts.env.DataSource, "source", opts.env.DataSource, "Corpus source: file|s3")
	flags.StringVar(&opts.env.S3Prefix, "s3-prefix", opts.env.S3Prefix, "Key prefix of the corpus files in the bucket")
	flags.StringVar(&opts.env.TrainWords, "train-words", opts.env.TrainWords, "Training words file (id,word)")
	flags.StringVar(&opts.env.TrainTags, "train-tags", opts.env.TrainTags, "Training tags file (id,tag)")
	flags.IntVar(&opts.env.Workers, "workers", opts.env.Workers, "Number of concurrent decoding shards")
	flags.StringVar(&opts.strategy, "strategy", "", "Decoding strategy: greedy|beam|viterbi")
	flags.IntVar(&opts.order, "order", 0, "Transition order: 2 (bigram) or 3 (trigram)")
	flags.Float64Var(&opts.k, "k", 0, "Add-k smoothing constant")
	flags.StringVar(&opts.normalizer, "normalizer", "", "Smoothing denominator: total|context")
	flags.IntVar(&opts.beamWidth, "beam-width", 0, "Beam width")
	flags.StringVar(&opts.unknownEmission, "unknown-emission", "", "Unknown word emission: fallback|uniform")

	cmd.AddCommand(newEvaluateCmd(opts))
	cmd.AddCommand(newPredictCmd(opts))
	cmd.AddCommand(newTagCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// configurations resolves the model configurations to run: every file of
// --config-dir, else --config, else the defaults. Flags set on the command
// line override all of them.
func (opts *options) configurations(cmd *cobra.Command) ([]types.Configuration, error) {
	var cfgs []types.Configuration
	switch {
	case len(opts.env.ConfigDir) > 0:
		loaded, err := types.LoadConfigurations(opts.env.ConfigDir)
		if err != nil {
			return nil, err
		}
		if len(loaded) == 0 {
			return nil, fmt.Errorf("no valid configuration in %s", opts.env.ConfigDir)
		}
		cfgs = loaded
	case len(opts.env.ConfigPath) > 0:
		cfg, err := types.LoadConfiguration(opts.env.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfgs = []types.Configuration{cfg}
	default:
		cfgs = []types.Configuration{types.DefaultConfiguration()}
	}

	for i := range cfgs {
		if err := opts.applyOverrides(cmd, &cfgs[i]); err != nil {
			return nil, err
		}
		if err := cfgs[i].Validate(); err != nil {
			return nil, fmt.Errorf("configuration %s: %w", cfgs[i].Name, err)
		}
	}
	return cfgs, nil
}

// configuration is the first resolved configuration.
func (opts *options) configuration(cmd *cobra.Command) (types.Configuration, error) {
	cfgs, err := opts.configurations(cmd)
	if err != nil {
		return types.Configuration{}, err
	}
	return cfgs[0], nil
}

func (opts *options) applyOverrides(cmd *cobra.Command, cfg *types.Configuration) error {
	changed := cmd.Flags().Changed
	if changed("strategy") {
		st, err := types.ParseStrategy(opts.strategy)
		if err != nil {
			return err
		}
		cfg.Decoding.Strategy = st
	}
	if changed("order") {
		cfg.Order = opts.order
	}
	if changed("k") {
		cfg.Smoothing.K = opts.k
	}
	if changed("normalizer") {
		cfg.Smoothing.Normalizer = types.Normalizer(opts.normalizer)
	}
	if changed("beam-width") {
		cfg.Decoding.BeamWidth = opts.beamWidth
	}
	if changed("unknown-emission") {
		cfg.Decoding.UnknownEmission = types.UnknownEmission(opts.unknownEmission)
	}
	return nil
}

// source returns the corpus source and a function releasing it.
func (opts *options) source() (corpus.Source, func(), error) {
	if opts.env.DataSource != sourceS3 {
		return corpus.FileSource{Dir: opts.env.DataDir}, func() {}, nil
	}
	client, err := s3client.New()
	if err != nil {
		return nil, nil, err
	}
	return corpus.S3Source{Client: client, Prefix: opts.env.S3Prefix}, client.Close, nil
}

func (opts *options) train(src corpus.Source, cfg types.Configuration) (*pos.Model, error) {
	train, err := corpus.Load(src, opts.env.TrainWords, opts.env.TrainTags, cfg.Corpus)
	if err != nil {
		return nil, fmt.Errorf("load training corpus: %w", err)
	}
	return pos.TrainCorpus(train, cfg)
}
