package config

import (
	"fmt"
	"os"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
	"github.com/louisbranch/tablegen/internal/platform/i18n/catalog"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitError reports err on stderr, tagged with its error code when it has
// one, and exits with code 1. Codes with a catalog hint for locale get a
// second line.
func ExitError(err error, locale string) {
	code := apperrors.CodeOf(err)
	if code == "" || code == apperrors.CodeUnknown {
		Exitf("Error: %v", err)
		return
	}
	if hint := Hint(locale, code); hint != "" {
		Exitf("Error [%s]: %v\n%s", code, err, hint)
		return
	}
	Exitf("Error [%s]: %v", code, err)
}

// Hint returns the hint for code in locale, falling back to the base locale,
// or "" when none is defined.
func Hint(locale string, code apperrors.Code) string {
	hint, _ := catalog.Default().Message(locale, "errors."+string(code))
	return hint
}
