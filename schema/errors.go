package schema

import "errors"

// Parameter errors abort the conversion for that parameter set.
var (
	ErrInvalidParameter           = errors.New("invalid scale parameter")
	ErrInvalidWeightConfiguration = errors.New("invalid weight configuration")
)

// Input errors returned while extracting records from a sheet.
var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrNoQuestionColumns = errors.New("no question columns found")
	ErrNoRecords         = errors.New("no valid student records")
)

// ErrConversionMismatch is returned in strict mode when a soft check fails.
var ErrConversionMismatch = errors.New("conversion did not reconcile")
