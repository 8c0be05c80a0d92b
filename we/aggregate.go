package we

import (
	"strings"

	"github.com/pkg/errors"
)

type AggregateId struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type EncodedAggregateId string

func (id AggregateId) Encode() EncodedAggregateId {
	return EncodedAggregateId(strings.Join([]string{id.Type, id.Key}, "."))
}

func (id AggregateId) String() string {
	return id.Encode().String()
}

func (id EncodedAggregateId) String() string {
	return string(id)
}

func (id EncodedAggregateId) Decode() (AggregateId, error) {
	separated := strings.Split(string(id), ".")
	if len(separated) < 2 {
		return AggregateId{}, errors.New("expected . delimiter in aggregate id")
	}

	return AggregateId{
		Type: separated[0],
		Key:  strings.Join(separated[1:], "."),
	}, nil
}

// Aggregate is the ordered event history of a single session.
type Aggregate struct {
	Id       AggregateId     `json:"id"`
	Events   []RecordedEvent `json:"events,omitempty"`
	Revision Revision        `json:"revision"`
}
