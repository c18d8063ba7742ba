package pos

import "errors"

var (
	ErrEmptyCorpus    = errors.New("empty training corpus")
	ErrEmptySentence  = errors.New("empty sentence")
	ErrLengthMismatch = errors.New("words and tags are not parallel")
	ErrZeroTagCount   = errors.New("tag has zero count")
	ErrUnknownTag     = errors.New("unknown tag")
)
