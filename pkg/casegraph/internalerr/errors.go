package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrMalformedRule       = errors.New("malformed rule")
	ErrCyclicKnowledgeBase = errors.New("cyclic knowledge base")
	ErrUnknownLiteral      = errors.New("unknown literal")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
)
