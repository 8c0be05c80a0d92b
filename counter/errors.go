package counter

import (
	"fmt"

	"github.com/pkg/errors"
)

const InvalidArgumentKind = "InvalidArgument"

// InvalidArgumentError reports an operation argument that could not be read as
// an integer. The operation is not applied.
type InvalidArgumentError struct {
	Argument string
	Value    string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s %s", InvalidArgumentKind, e.Argument, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q %s", InvalidArgumentKind, e.Argument, e.Value, e.Reason)
}

func (*InvalidArgumentError) Kind() string { return InvalidArgumentKind }

func (*InvalidArgumentError) BadCommand() bool { return true }

func InvalidArgument(argument string, value string, reason string) error {
	return &InvalidArgumentError{Argument: argument, Value: value, Reason: reason}
}

func IsInvalidArgument(err error) bool {
	var invalid *InvalidArgumentError
	return errors.As(err, &invalid)
}
