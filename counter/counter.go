// Package counter is a store for a single integer and the four operations that
// change it: increment, decrement, reset and increment by an amount.
//
// Apply is the only rule for changing a Counter. Store owns one Counter for a
// local view; NewService hosts many counters as event-sourced sessions, one
// per aggregate, replaying the same operations through Apply.
package counter

import "github.com/weegigs/wee-counter-go/we"

const EntityType = we.EntityType("counter")

type Counter struct {
	Count int `json:"count"`
}

func (Counter) EntityType() we.EntityType {
	return EntityType
}

func (state *Counter) Value() int {
	return state.Count
}
