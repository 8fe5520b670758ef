package dataset

import "errors"

var (
	// ErrNotFound is returned when an input path is missing or unusable.
	ErrNotFound = errors.New("not found")
	// ErrParse is returned for malformed JSON lines or catalog documents.
	ErrParse = errors.New("parse error")
	// ErrConfig is returned when the emotion catalog or session options are unusable.
	ErrConfig = errors.New("config error")
	// ErrStorage is returned when output or progress cannot be written.
	ErrStorage = errors.New("storage error")
	// ErrOutOfRange is returned for row indices outside the dataset.
	ErrOutOfRange = errors.New("row out of range")
)
