package directory

import (
	"fmt"
	"strings"

	. "github.com/weberc2/ecsfs/pkg/types"
)

// ValidateName checks that `name` fits the on-disk name buffer with its
// terminator.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("validating name: empty: %w", InvalidNameErr)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf(
			"validating name `%s`: `%d` bytes exceeds maximum `%d`: %w",
			name,
			len(name),
			MaxNameLength,
			InvalidNameErr,
		)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf(
			"validating name `%q`: contains NUL: %w",
			name,
			InvalidNameErr,
		)
	}
	return nil
}
