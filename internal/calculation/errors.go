package calculation

import "errors"

var (
	// ErrOverlappingBands indicates two rate bands of one deduction type match the same input.
	ErrOverlappingBands = errors.New("overlapping rate bands")
	// ErrMissingBands indicates a deduction type has no band it could ever apply.
	ErrMissingBands = errors.New("missing rate bands")
	// ErrDuplicateIncomeTax indicates more than one income-tax type is configured.
	ErrDuplicateIncomeTax = errors.New("more than one income tax type configured")
	// ErrUnknownCode indicates a statutory or scheme code outside the configured catalog.
	ErrUnknownCode = errors.New("unknown code")
	// ErrInvalidInput indicates a negative or out-of-range input value.
	ErrInvalidInput = errors.New("invalid input")
)
