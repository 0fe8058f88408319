package domain

import "github.com/pkg/errors"

var (
	// ErrSymbolNotFound price lookup for a symbol without any quotes.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrMalformedInput input row that cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidWindow window with empty name or non-positive length.
	ErrInvalidWindow = errors.New("invalid window")
)
