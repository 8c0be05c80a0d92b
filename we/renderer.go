package we

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

// Reducer folds a single recorded event into state. Events the reducer does not
// recognise are expected to be ignored rather than reported.
type Reducer[T any] func(state *T, evt *RecordedEvent) error

type Renderer[T any] struct {
	Reduce Reducer[T]
}

// Render replays the aggregate onto the zero value of T, so an aggregate with
// no events renders the initial state.
func (r *Renderer[T]) Render(ctx context.Context, aggregate Aggregate) (Entity[T], error) {
	var state T

	_, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("render %s", EntityTypeOf(state)))
	defer span.End()

	for i := range aggregate.Events {
		event := &aggregate.Events[i]

		if err := r.Reduce(&state, event); err != nil {
			return Entity[T]{}, errors.Wrap(
				err,
				fmt.Sprintf("failed to process update with %s", event.EventType),
			)
		}
	}

	return Entity[T]{
		Aggregate: aggregate.Id,
		Revision:  aggregate.Revision,
		Type:      EntityTypeOf(state),
		State:     &state,
	}, nil
}
