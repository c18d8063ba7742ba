package corpus

import (
	"text2phenotype.com/postag/types"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformed = errors.New("malformed corpus file")

type row struct {
	id    string
	value string
}

func readRows(r io.Reader, column string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(header[0]) != "id" || strings.TrimSpace(header[1]) != column {
		return nil, fmt.Errorf("%w: expected header \"id,%s\", got %q", ErrMalformed, column, strings.Join(header, ","))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rows = append(rows, row{id: record[0], value: record[1]})
	}
	return rows, nil
}

// ReadCSV reads a word file (id,word) and an optional tag file (id,tag) and
// groups the tokens into sentences. A sentence starts at every docStart
// token. Pass a nil tags reader for untagged input.
func ReadCSV(words io.Reader, tags io.Reader, docStart string) (types.Corpus, error) {
	wordRows, err := readRows(words, "word")
	if err != nil {
		return nil, err
	}

	var tagRows []row
	if tags != nil {
		tagRows, err = readRows(tags, "tag")
		if err != nil {
			return nil, err
		}
		if len(tagRows) != len(wordRows) {
			return nil, fmt.Errorf("%w: %d words and %d tags", ErrMalformed, len(wordRows), len(tagRows))
		}
	}

	var corpus types.Corpus
	for i, wr := range wordRows {
		if i == 0 || wr.value == docStart {
			sent := types.Sentence{ID: len(corpus)}
			if tags != nil {
				sent.Tags = []string{}
			}
			corpus = append(corpus, sent)
		}
		sent := &corpus[len(corpus)-1]
		sent.Words = append(sent.Words, wr.value)
		sent.TokenIDs = append(sent.TokenIDs, wr.id)
		if tags != nil {
			if tagRows[i].id != wr.id {
				return nil, fmt.Errorf("%w: word id %q does not match tag id %q at row %d", ErrMalformed, wr.id, tagRows[i].id, i+1)
			}
			sent.Tags = append(sent.Tags, tagRows[i].value)
		}
	}

	return corpus, nil
}

// WritePredictions writes one id,tag row per token, in corpus order.
func WritePredictions(w io.Writer, corpus types.Corpus, predictions [][]string) error {
	if len(predictions) != len(corpus) {
		return fmt.Errorf("got %d predictions for %d sentences", len(predictions), len(corpus))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "tag"}); err != nil {
		return err
	}
	for i, sent := range corpus {
		if len(predictions[i]) != len(sent.Words) {
			return fmt.Errorf("sentence %d: %d predictions for %d words", i, len(predictions[i]), len(sent.Words))
		}
		for j, tag := range predictions[i] {
			id := fmt.Sprint(j)
			if j < len(sent.TokenIDs) {
				id = sent.TokenIDs[j]
			}
			if err := writer.Write([]string{id, tag}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
