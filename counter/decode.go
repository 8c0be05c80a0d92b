package counter

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/we"
)

// AsOperation resolves a command received by the session service. Operations
// pass through; remote commands are decoded by name.
func AsOperation(cmd we.Command) (Operation, error) {
	switch c := cmd.(type) {
	case Operation:
		return c, nil
	case we.RemoteCommand:
		return DecodeRemote(c)
	case *we.RemoteCommand:
		return DecodeRemote(*c)
	default:
		return nil, we.CommandNotFound(we.CommandNameOf(cmd))
	}
}

func DecodeRemote(cmd we.RemoteCommand) (Operation, error) {
	op, err := decode(cmd.CommandName.String(), cmd.Payload)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, we.CommandNotFound(cmd.CommandName)
	}

	return op, nil
}

// DecodeEvent reads a recorded operation back. Events of other types decode to
// a nil Operation.
func DecodeEvent(evt *we.RecordedEvent) (Operation, error) {
	return decode(evt.EventType.String(), evt.Data)
}

func decode(name string, data we.Data) (Operation, error) {
	switch name {
	case IncrementName:
		return Increment{}, nil
	case DecrementName:
		return Decrement{}, nil
	case ResetName:
		return Reset{}, nil
	case IncrementByName:
		return decodeIncrementBy(data)
	default:
		return nil, nil
	}
}

func decodeIncrementBy(data we.Data) (Operation, error) {
	if data.Encoding == "" && len(data.Data) == 0 {
		return nil, InvalidArgument("amount", "", "is required")
	}

	var payload struct {
		Amount *json.RawMessage `json:"amount"`
	}
	if err := we.UnmarshalFromData(data, &payload); err != nil {
		if we.IsBadCommand(err) {
			return nil, err
		}
		return nil, InvalidArgument("amount", "", "payload must be an object")
	}

	if payload.Amount == nil || string(*payload.Amount) == "null" {
		return nil, InvalidArgument("amount", "", "is required")
	}

	raw := strings.TrimSpace(string(*payload.Amount))
	amount, err := strconv.Atoi(raw)
	if err != nil || raw[0] == '+' {
		return nil, errors.WithStack(InvalidArgument("amount", raw, "is not an integer"))
	}

	return IncrementBy{Amount: amount}, nil
}

// ParseOperation reads a textual operation as typed by a person:
//
//	increment | inc | +
//	decrement | dec | -
//	reset | 0
//	increment-by N | by N | +N | -N
//
// The wire names (counter:increment, ...) are accepted too.
func ParseOperation(input string) (Operation, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return nil, we.CommandNotFound("")
	}

	verb := strings.TrimPrefix(fields[0], "counter:")
	args := fields[1:]

	switch verb {
	case "increment", "inc", "+":
		return noArguments(Increment{}, args)
	case "decrement", "dec", "-":
		return noArguments(Decrement{}, args)
	case "reset", "0":
		return noArguments(Reset{}, args)
	case "increment-by", "by":
		if len(args) != 1 {
			return nil, InvalidArgument("amount", strings.Join(args, " "), "requires exactly one integer")
		}
		return parseAmount(args[0])
	}

	if verb != "" && (verb[0] == '+' || verb[0] == '-') && len(args) == 0 {
		return parseAmount(verb)
	}

	return nil, we.CommandNotFound(we.CommandName(fields[0]))
}

func noArguments(op Operation, args []string) (Operation, error) {
	if len(args) > 0 {
		return nil, InvalidArgument("arguments", strings.Join(args, " "), "are not accepted by "+op.TypeName())
	}
	return op, nil
}

func parseAmount(value string) (Operation, error) {
	amount, err := strconv.Atoi(value)
	if err != nil {
		return nil, InvalidArgument("amount", value, "is not an integer")
	}

	return IncrementBy{Amount: amount}, nil
}
