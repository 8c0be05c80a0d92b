package counter

import (
	"context"

	"github.com/weegigs/wee-counter-go/we"
)

type Service = we.EntityService[Counter]

// Reduce replays a recorded operation onto state through Apply.
func Reduce(state *Counter, evt *we.RecordedEvent) error {
	op, err := DecodeEvent(evt)
	if err != nil {
		return err
	}
	if op == nil {
		return nil
	}

	*state = Apply(*state, op)
	return nil
}

func Loader(events we.EventLoader) *we.EntityLoader[Counter] {
	renderer := we.Renderer[Counter]{Reduce: Reduce}
	return &we.EntityLoader[Counter]{Loader: events, Renderer: &renderer}
}

// handle records the operation itself as the event; the event type is the
// operation's name.
func handle(ctx context.Context, cmd we.Command, state we.Entity[Counter], publish we.EventPublisher) error {
	op, err := AsOperation(cmd)
	if err != nil {
		return err
	}

	_, err = publish(ctx, state.Aggregate, we.Options(), op)
	return err
}

func NewService(store we.EventStore, options ...we.ServiceOption) Service {
	dispatcher := we.CommandDispatcher[Counter]{
		Publish: store.Publish,
		Handler: we.CommandHandlerFunction[Counter](handle),
	}

	return we.NewEntityService[Counter](Loader(store.Load), &dispatcher, options...)
}
