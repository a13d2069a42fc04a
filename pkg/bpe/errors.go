package bpe

import "errors"

var (
	ErrIDSpaceExhausted = errors.New("bpe: symbol id space exhausted")
	ErrNegativeDepth    = errors.New("bpe: negative depth")
	ErrCyclicTable      = errors.New("bpe: cyclic pair table")
	ErrDuplicateID      = errors.New("bpe: duplicate composite id")
)
