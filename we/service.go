package we

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"go.opentelemetry.io/otel"
)

const tracerName = "events-service"

type EntityService[T any] interface {
	Load(ctx context.Context, id AggregateId) (Entity[T], error)
	Execute(ctx context.Context, id AggregateId, command Command) (Entity[T], error)
}

type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	attempts uint
	delay    time.Duration
}

// WithAttempts bounds how many times a command is replayed after losing a
// revision race.
func WithAttempts(attempts uint) ServiceOption {
	return func(o *serviceOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
	}
}

func WithRetryDelay(delay time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

func NewEntityService[T any](loader *EntityLoader[T], dispatcher Dispatcher[T], options ...ServiceOption) *entityService[T] {
	opts := serviceOptions{attempts: 10, delay: time.Millisecond}
	for _, option := range options {
		option(&opts)
	}

	return &entityService[T]{
		loader:     loader,
		dispatcher: dispatcher,
		options:    opts,
	}
}

type entityService[T any] struct {
	loader     *EntityLoader[T]
	dispatcher Dispatcher[T]
	options    serviceOptions
}

func (s *entityService[T]) Load(ctx context.Context, id AggregateId) (Entity[T], error) {
	return s.loader.Load(ctx, id)
}

func (s *entityService[T]) Execute(ctx context.Context, id AggregateId, command Command) (Entity[T], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "execute command")
	defer span.End()

	var result Entity[T]
	err := retry.Do(
		func() error {
			entity, err := s.Load(ctx, id)
			if err != nil {
				return err
			}

			published, err := s.dispatcher.Dispatch(ctx, entity, command)
			if err != nil {
				return err
			}

			if !published {
				result = entity
				return nil
			}

			result, err = s.Load(ctx, id)
			return err
		},
		retry.RetryIf(func(err error) bool {
			return err == RevisionConflict
		}),
		retry.Attempts(s.options.attempts),
		retry.Delay(s.options.delay),
		retry.MaxJitter(s.options.delay),
		retry.DelayType(retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return Entity[T]{}, err
	}

	return result, nil
}
