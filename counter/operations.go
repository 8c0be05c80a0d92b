package counter

import "fmt"

const (
	IncrementName   = "counter:increment"
	DecrementName   = "counter:decrement"
	ResetName       = "counter:reset"
	IncrementByName = "counter:increment-by"
)

// Operation is one of Increment, Decrement, Reset or IncrementBy. The set is
// closed; other packages cannot add variants.
type Operation interface {
	TypeName() string
	operation()
}

type Increment struct{}

type Decrement struct{}

type Reset struct{}

type IncrementBy struct {
	Amount int `json:"amount"`
}

func (Increment) TypeName() string   { return IncrementName }
func (Decrement) TypeName() string   { return DecrementName }
func (Reset) TypeName() string       { return ResetName }
func (IncrementBy) TypeName() string { return IncrementByName }

func (Increment) operation()   {}
func (Decrement) operation()   {}
func (Reset) operation()       {}
func (IncrementBy) operation() {}

// Apply returns the state that results from op. Every operation is valid in
// every state. The count is not bounded and wraps at the limits of int.
func Apply(state Counter, op Operation) Counter {
	switch op := op.(type) {
	case Increment, *Increment:
		state.Count++
	case Decrement, *Decrement:
		state.Count--
	case Reset, *Reset:
		state.Count = 0
	case IncrementBy:
		state.Count += op.Amount
	case *IncrementBy:
		state.Count += op.Amount
	default:
		panic(fmt.Sprintf("counter: unknown operation %T", op))
	}

	return state
}
