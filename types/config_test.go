package types

import (
	"errors"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultConfigurationIsValid(t *testing.T) {
	cfg := DefaultConfiguration()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3, cfg.Order)
	require.Equal(t, 1.0, cfg.Smoothing.K)
	require.Equal(t, StrategyViterbi, cfg.Decoding.Strategy)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Configuration){
		"order":          func(c *Configuration) { c.Order = 4 },
		"start tag":      func(c *Configuration) { c.StartTag = "" },
		"negative k":     func(c *Configuration) { c.Smoothing.K = -1 },
		"normalizer":     func(c *Configuration) { c.Smoothing.Normalizer = "laplace" },
		"strategy":       func(c *Configuration) { c.Decoding.Strategy = "sampling" },
		"beam width":     func(c *Configuration) { c.Decoding.BeamWidth = 0 },
		"fallback":       func(c *Configuration) { c.Decoding.FallbackTag = "" },
		"fallback=start": func(c *Configuration) { c.Decoding.FallbackTag = c.StartTag },
		"unknown policy": func(c *Configuration) { c.Decoding.UnknownEmission = "zero" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfiguration()
		mutate(&cfg)
		require.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig), name)
	}
}

func TestParseStrategy(t *testing.T) {
	st, err := ParseStrategy(" Beam ")
	require.NoError(t, err)
	require.Equal(t, StrategyBeam, st)

	_, err = ParseStrategy("random")
	require.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bigram.yaml", `
order: 2
smoothing:
  k: 0.5
decoding:
  strategy: beam
  beam_width: 5
`)
	cfg, err := LoadConfiguration(p)
	require.NoError(t, err)
	require.Equal(t, "bigram", cfg.Name)
	require.Equal(t, 2, cfg.Order)
	require.Equal(t, 0.5, cfg.Smoothing.K)
	require.Equal(t, NormalizerTotal, cfg.Smoothing.Normalizer)
	require.Equal(t, StrategyBeam, cfg.Decoding.Strategy)
	require.Equal(t, 5, cfg.Decoding.BeamWidth)
	require.Equal(t, DefaultFallbackTag, cfg.Decoding.FallbackTag)
	require.Equal(t, p, cfg.FilePath)
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "order: 2\n")
	writeFile(t, dir, "a.yaml", "order: 3\n")
	writeFile(t, dir, "broken.yaml", "order: 7\n")
	writeFile(t, dir, "notes.txt", "order: 2\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	cfgs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	require.Equal(t, "a", cfgs[0].Name)
	require.Equal(t, "b", cfgs[1].Name)

	_, err = LoadConfigurations(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestNewCorpus(t *testing.T) {
	c, err := NewCorpus([][]string{{"a", "b"}, {"c"}}, [][]string{{"X", "Y"}, {"Z"}})
	require.NoError(t, err)
	require.Len(t, c, 2)
	require.Equal(t, 3, c.NumTokens())
	require.Equal(t, [][]string{{"X", "Y"}, {"Z"}}, c.Tags())
	require.True(t, c[1].IsTagged())

	_, err = NewCorpus([][]string{{"a"}}, [][]string{{"X"}, {"Y"}})
	require.Error(t, err)
	_, err = NewCorpus([][]string{{"a"}}, [][]string{{"X", "Y"}})
	require.Error(t, err)

	untagged, err := NewCorpus([][]string{{"a"}}, nil)
	require.NoError(t, err)
	require.False(t, untagged[0].IsTagged())
}
