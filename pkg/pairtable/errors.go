package pairtable

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid pair table magic")
	ErrUnsupportedMajor = errors.New("unsupported pair table major version")
	ErrCorruptTable     = errors.New("corrupt pair table")
	ErrUnsortedEntries  = errors.New("pair table entries not strictly ascending by id")
)
