package generator

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// MaxItems bounds the item count a list or table generator accepts.
const MaxItems = 1000

// parseCount reads the optional item count from args[0]. It defaults to 1.
func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	raw := strings.TrimSpace(args[0])
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 || count > MaxItems {
		return 0, apperrors.WrapWithMetadata(
			apperrors.CodeInvalidArgument,
			"item count must be an integer between 0 and "+strconv.Itoa(MaxItems),
			map[string]string{"argument": raw},
			err,
		)
	}
	return count, nil
}
