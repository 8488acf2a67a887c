package dice

import (
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// ErrFormulaSyntax matches every *SyntaxError via errors.Is.
var ErrFormulaSyntax = errors.New("invalid dice formula")

// SyntaxError reports a formula that does not match the grammar.
type SyntaxError struct {
	// Formula is the formula as given by the caller.
	Formula string
	// Remaining is the unconsumed input at the failure point, after
	// whitespace removal and case folding.
	Remaining string
	// Reason describes what the parser expected.
	Reason string
	// Err is an optional underlying cause, such as ErrInvalidDiceSpec.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid dice formula %q: %s (remaining %q)", e.Formula, e.Reason, e.Remaining)
}

// Unwrap exposes the underlying cause.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is matches ErrFormulaSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrFormulaSyntax
}

// ErrorCode classifies the error for callers using platform error codes.
func (e *SyntaxError) ErrorCode() apperrors.Code {
	return apperrors.CodeFormulaSyntax
}
