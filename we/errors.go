package we

import (
	"fmt"

	"github.com/pkg/errors"
)

// BadCommand is implemented by errors caused by the command itself rather than
// by the store or the handler. Retrying such a command never succeeds.
type BadCommand interface {
	BadCommand() bool
}

func IsBadCommand(err error) bool {
	var bad BadCommand
	return errors.As(err, &bad) && bad.BadCommand()
}

func CommandNotFound(command CommandName) CommandNotFoundError {
	return CommandNotFoundError{Command: command}
}

type CommandNotFoundError struct {
	Command CommandName
}

func (e CommandNotFoundError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

func (CommandNotFoundError) BadCommand() bool { return true }

type InvalidEncodingError struct {
	Expected string
	Actual   string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("expected encoding %s, got %s", e.Expected, e.Actual)
}

func (*InvalidEncodingError) BadCommand() bool { return true }

func InvalidEncoding(expected string, actual string) error {
	return &InvalidEncodingError{
		Expected: expected,
		Actual:   actual,
	}
}
