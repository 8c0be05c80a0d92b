package we

import (
	"context"
)

type CommandName string

func (name CommandName) String() string {
	return string(name)
}

type Command any

// RemoteCommand is a command that arrived over the wire and has not yet been
// decoded into its domain type.
type RemoteCommand struct {
	CommandName CommandName `json:"command"`
	Payload     Data        `json:"payload"`
}

func CommandNameOf(command Command) CommandName {
	switch cmd := command.(type) {
	case RemoteCommand:
		return cmd.CommandName
	case *RemoteCommand:
		return cmd.CommandName
	default:
		return CommandName(NameOf(command))
	}
}

type CommandHandler[T any] interface {
	HandleCommand(ctx context.Context, cmd Command, state Entity[T], publish EventPublisher) error
}

type CommandHandlerFunction[T any] func(ctx context.Context, cmd Command, state Entity[T], publish EventPublisher) error

func (f CommandHandlerFunction[T]) HandleCommand(ctx context.Context, cmd Command, state Entity[T], publish EventPublisher) error {
	return f(ctx, cmd, state, publish)
}
