package catalog

import "errors"

var (
	ErrNotFound          = errors.New("catalog object not found")
	ErrAlreadyExists     = errors.New("catalog object already exists")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrWrongKind         = errors.New("relation has the wrong kind")
)
