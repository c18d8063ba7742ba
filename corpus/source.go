package corpus

import (
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/types"
	"text2phenotype.com/postag/utils"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// Source opens corpus files by name.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

type FileSource struct {
	Dir string
}

func (src FileSource) Open(name string) (io.ReadCloser, error) {
	if !filepath.IsAbs(name) && len(src.Dir) > 0 {
		name = filepath.Join(src.Dir, name)
	}
	return os.Open(name)
}

type Downloader interface {
	Download(key string) ([]byte, error)
}

// S3Source reads corpus files from a bucket; names are object keys.
type S3Source struct {
	Client Downloader
	Prefix string
}

func (src S3Source) Open(name string) (io.ReadCloser, error) {
	key := name
	if len(src.Prefix) > 0 {
		key = strings.TrimSuffix(src.Prefix, "/") + "/" + strings.TrimPrefix(name, "/")
	}
	data, err := src.Client.Download(key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

// Load reads a corpus from src. tagsName may be empty for untagged input.
func Load(src Source, wordsName string, tagsName string, cfg types.CorpusConfig) (types.Corpus, error) {
	corpusLogger := logger.NewLogger("Corpus")

	words, err := src.Open(wordsName)
	if err != nil {
		return nil, err
	}
	defer words.Close()

	var tags io.Reader
	if len(tagsName) > 0 {
		tagsFile, err := src.Open(tagsName)
		if err != nil {
			return nil, err
		}
		defer tagsFile.Close()
		tags = tagsFile
	}

	corpus, err := ReadCSV(words, tags, cfg.DocStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wordsName, err)
	}
	corpusLogger.Info().
		Str("words", wordsName).
		Str("tags", tagsName).
		Int("sentences", len(corpus)).
		Int("tokens", corpus.NumTokens()).
		Msg("Loaded corpus")
	return corpus, nil
}

// ReadSentences reads whitespace tokenized sentences, one per line.
func ReadSentences(filePath string) (types.Corpus, error) {
	lines, err := utils.ReadList(filePath)
	if err != nil {
		return nil, err
	}
	corpus := make(types.Corpus, len(lines))
	for i, line := range lines {
		corpus[i] = types.Sentence{ID: i, Words: strings.Fields(line)}
	}
	return corpus, nil
}
