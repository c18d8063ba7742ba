package types

import (
	"text2phenotype.com/postag/logger"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownStrategy = errors.New("unknown decoding strategy")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

type Strategy string

const (
	StrategyGreedy  Strategy = "greedy"
	StrategyBeam    Strategy = "beam"
	StrategyViterbi Strategy = "viterbi"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyGreedy, StrategyBeam, StrategyViterbi:
		return st, nil
	}
	return "", fmt.Errorf("%w %q (expected greedy|beam|viterbi)", ErrUnknownStrategy, s)
}

// Normalizer selects the add-k denominator.
//   - total:   count(context) + k*N, N being the number of tag occurrences
//   - context: marginal count(context) + k*|tags|
type Normalizer string

const (
	NormalizerTotal   Normalizer = "total"
	NormalizerContext Normalizer = "context"
)

type UnknownEmission string

const (
	UnknownEmissionFallback UnknownEmission = "fallback"
	UnknownEmissionUniform  UnknownEmission = "uniform"
)

const (
	DefaultStartTag    = "<S>"
	DefaultFallbackTag = "NN"
	DefaultDocStart    = "-DOCSTART-"
	DefaultEndOfSent   = "."
)

type SmoothingConfig struct {
	K          float64    `yaml:"k" json:"k"`
	Normalizer Normalizer `yaml:"normalizer" json:"normalizer"`
}

type DecodingConfig struct {
	Strategy        Strategy        `yaml:"strategy" json:"strategy"`
	BeamWidth       int             `yaml:"beam_width" json:"beam_width"`
	FallbackTag     string          `yaml:"fallback_tag" json:"fallback_tag"`
	UnknownEmission UnknownEmission `yaml:"unknown_emission" json:"unknown_emission"`
}

type CorpusConfig struct {
	DocStart  string `yaml:"doc_start" json:"doc_start"`
	EndOfSent string `yaml:"end_of_sentence" json:"end_of_sentence"`
}

type Configuration struct {
	Name      string          `yaml:"name" json:"name"`
	FilePath  string          `yaml:"-" json:"file_path"`
	Order     int             `yaml:"order" json:"order"`
	StartTag  string          `yaml:"start_tag" json:"start_tag"`
	Smoothing SmoothingConfig `yaml:"smoothing" json:"smoothing"`
	Decoding  DecodingConfig  `yaml:"decoding" json:"decoding"`
	Corpus    CorpusConfig    `yaml:"corpus" json:"corpus"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Name:     "default",
		Order:    3,
		StartTag: DefaultStartTag,
		Smoothing: SmoothingConfig{
			K:          1,
			Normalizer: NormalizerTotal,
		},
		Decoding: DecodingConfig{
			Strategy:        StrategyViterbi,
			BeamWidth:       3,
			FallbackTag:     DefaultFallbackTag,
			UnknownEmission: UnknownEmissionFallback,
		},
		Corpus: CorpusConfig{
			DocStart:  DefaultDocStart,
			EndOfSent: DefaultEndOfSent,
		},
	}
}

func (cfg Configuration) Validate() error {
	if cfg.Order != 2 && cfg.Order != 3 {
		return fmt.Errorf("%w: order must be 2 or 3, got %d", ErrInvalidConfig, cfg.Order)
	}
	if len(cfg.StartTag) == 0 {
		return fmt.Errorf("%w: start tag must not be empty", ErrInvalidConfig)
	}
	if cfg.Smoothing.K < 0 {
		return fmt.Errorf("%w: smoothing constant must be non-negative, got %v", ErrInvalidConfig, cfg.Smoothing.K)
	}
	if cfg.Smoothing.Normalizer != NormalizerTotal && cfg.Smoothing.Normalizer != NormalizerContext {
		return fmt.Errorf("%w: unknown normalizer %q", ErrInvalidConfig, cfg.Smoothing.Normalizer)
	}
	if _, err := ParseStrategy(string(cfg.Decoding.Strategy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Decoding.BeamWidth < 1 {
		return fmt.Errorf("%w: beam width must be positive, got %d", ErrInvalidConfig, cfg.Decoding.BeamWidth)
	}
	if len(cfg.Decoding.FallbackTag) == 0 {
		return fmt.Errorf("%w: fallback tag must not be empty", ErrInvalidConfig)
	}
	if cfg.Decoding.FallbackTag == cfg.StartTag {
		return fmt.Errorf("%w: fallback tag must differ from start tag %q", ErrInvalidConfig, cfg.StartTag)
	}
	if cfg.Decoding.UnknownEmission != UnknownEmissionFallback && cfg.Decoding.UnknownEmission != UnknownEmissionUniform {
		return fmt.Errorf("%w: unknown emission policy %q", ErrInvalidConfig, cfg.Decoding.UnknownEmission)
	}
	return nil
}

// LoadConfiguration reads one YAML file. Keys missing from the file keep
// their DefaultConfiguration values.
func LoadConfiguration(filePath string) (Configuration, error) {
	cfg := DefaultConfiguration()
	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filePath, err)
	}
	cfg.FilePath = filePath
	if len(cfg.Name) == 0 || cfg.Name == "default" {
		cfg.Name = strings.TrimSuffix(path.Base(filePath), ".yaml")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration %s: %w", filePath, err)
	}
	return cfg, nil
}

// LoadConfigurations loads every *.yaml file in dirPath. Invalid files are
// logged and skipped.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	posLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			cfg, err := LoadConfiguration(path.Join(dirPath, file.Name()))
			if err != nil {
				posLogger.Err(err).Str("file", file.Name()).Msg("Skipping configuration")
				return
			}
			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs, nil
}
