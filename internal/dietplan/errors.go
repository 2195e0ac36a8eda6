package dietplan

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProfile = errors.New("invalid biometric profile")
	ErrMealNotFound   = errors.New("meal not found")
	ErrItemNotFound   = errors.New("meal item not found")
	ErrUnknownFood    = errors.New("unknown food")
)

// ConfigurationError reports a food table that cannot serve the calculator.
// It is an authoring bug in the table, never a consequence of user input.
type ConfigurationError struct {
	Reason string
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("food table misconfigured: %s", err.Reason)
}

func configurationErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}
