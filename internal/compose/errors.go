package compose

import (
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// ErrGeneratorNotFound matches every *NotFoundError via errors.Is.
var ErrGeneratorNotFound = errors.New("generator not found")

// ErrExpansionLimit matches every *LimitError via errors.Is.
var ErrExpansionLimit = errors.New("expansion limit exceeded")

// NotFoundError reports a generator id missing from the lookup, either at
// the root or in an embedded reference.
type NotFoundError struct {
	ID    string
	Depth int
}

func (e *NotFoundError) Error() string {
	if e.Depth == 0 {
		return fmt.Sprintf("generator %q not found", e.ID)
	}
	return fmt.Sprintf("generator %q not found (referenced at depth %d)", e.ID, e.Depth)
}

// Is matches ErrGeneratorNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrGeneratorNotFound
}

// ErrorCode classifies the error for callers using platform error codes.
func (e *NotFoundError) ErrorCode() apperrors.Code {
	return apperrors.CodeGeneratorNotFound
}

// Limit names the bound a LimitError exceeded.
type Limit string

const (
	LimitDepth Limit = "depth"
	LimitNodes Limit = "nodes"
)

// LimitError reports an expansion that grew past Limits.
type LimitError struct {
	Limit Limit
	Max   int
	// ID is the generator being expanded when the limit was hit.
	ID string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("expansion of %q exceeded max %s %d", e.ID, e.Limit, e.Max)
}

// Is matches ErrExpansionLimit.
func (e *LimitError) Is(target error) bool {
	return target == ErrExpansionLimit
}

// ErrorCode classifies the error for callers using platform error codes.
func (e *LimitError) ErrorCode() apperrors.Code {
	return apperrors.CodeExpansionLimit
}
