package finance

import (
	"errors"
	"fmt"
)

// ErrValidation marks caller mistakes that should surface as 400s.
// Wrap with validationf so handlers can errors.Is against it.
var ErrValidation = errors.New("validation failed")

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
