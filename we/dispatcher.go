package we

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
)

type Dispatcher[T any] interface {
	Dispatch(ctx context.Context, entity Entity[T], command Command) (bool, error)
}

// CommandDispatcher hands every command to a single handler. Publishes made by
// the handler are pinned to the revision the entity was loaded at, so two
// commands racing on the same aggregate cannot both succeed.
type CommandDispatcher[T any] struct {
	Publish EventPublisher
	Handler CommandHandler[T]
}

func (d *CommandDispatcher[T]) Dispatch(ctx context.Context, entity Entity[T], command Command) (bool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("dispatch %s", CommandNameOf(command)))
	defer span.End()

	tracking := &trackingPublisher{publish: d.Publish, expected: entity.Revision}
	if err := d.Handler.HandleCommand(ctx, command, entity, tracking.Publish); err != nil {
		return tracking.published, err
	}

	return tracking.published, nil
}

type trackingPublisher struct {
	publish   EventPublisher
	expected  Revision
	published bool
}

func (p *trackingPublisher) Publish(ctx context.Context, aggregateId AggregateId, options PublishOptions, events ...DomainEvent) (Revision, error) {
	if options.ExpectedRevision == "" {
		options.ExpectedRevision = p.expected
	}
	if id, ok := CorrelationFrom(ctx); ok && options.CorrelationId == "" {
		WithCorrelationId(id)(&options)
	}

	revision, err := p.publish(ctx, aggregateId, options, events...)
	if err != nil {
		return revision, err
	}

	p.expected = revision
	p.published = p.published || len(events) > 0

	return revision, nil
}
