// Package errors provides structured, code-classified errors shared by the
// dice evaluator, the generator collection and the composer.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Formula errors
	CodeFormulaSyntax Code = "FORMULA_SYNTAX"
	CodeFormulaEmpty  Code = "FORMULA_EMPTY"

	// Generator errors
	CodeGeneratorNotFound    Code = "GENERATOR_NOT_FOUND"
	CodeGeneratorTypeUnknown Code = "GENERATOR_TYPE_UNKNOWN"
	CodeGeneratorSource      Code = "GENERATOR_SOURCE"
	CodeGeneratorScript      Code = "GENERATOR_SCRIPT"
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"

	// Collection errors
	CodeCollectionInvalid Code = "COLLECTION_INVALID"

	// Composition errors
	CodeExpansionLimit Code = "EXPANSION_LIMIT"
)

// UserFacing reports whether the code describes a problem in user input
// (formula, arguments, generator id) rather than in the loaded collection.
func (c Code) UserFacing() bool {
	switch c {
	case CodeFormulaSyntax,
		CodeFormulaEmpty,
		CodeGeneratorNotFound,
		CodeInvalidArgument,
		CodeExpansionLimit:
		return true
	default:
		return false
	}
}
