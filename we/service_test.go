package we

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tally struct {
	Total int `json:"total"`
}

type added struct {
	Amount int `json:"amount"`
}

type add struct {
	Amount int
}

type ignore struct{}

func reduceTally(state *tally, evt *RecordedEvent) error {
	if evt.EventType != EventTypeOf(added{}) {
		return nil
	}

	var event added
	if err := evt.Decode(&event); err != nil {
		return err
	}

	state.Total += event.Amount
	return nil
}

func handleTally(ctx context.Context, cmd Command, state Entity[tally], publish EventPublisher) error {
	switch c := cmd.(type) {
	case add:
		_, err := publish(ctx, state.Aggregate, Options(), added{Amount: c.Amount})
		return err
	case ignore:
		return nil
	default:
		return CommandNotFound(CommandNameOf(cmd))
	}
}

func tallyService(store EventStore, options ...ServiceOption) EntityService[tally] {
	loader := &EntityLoader[tally]{Loader: store.Load, Renderer: &Renderer[tally]{Reduce: reduceTally}}
	dispatcher := &CommandDispatcher[tally]{Publish: store.Publish, Handler: CommandHandlerFunction[tally](handleTally)}

	return NewEntityService[tally](loader, dispatcher, options...)
}

// conflictingStore loses the first n revision races it is asked to run.
type conflictingStore struct {
	EventStore
	mu        sync.Mutex
	conflicts int
}

func (s *conflictingStore) Publish(ctx context.Context, id AggregateId, options PublishOptions, events ...DomainEvent) (Revision, error) {
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return "", RevisionConflict
	}
	s.mu.Unlock()

	return s.EventStore.Publish(ctx, id, options, events...)
}

func TestEntityService(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the zero state before any events", func(t *testing.T) {
		service := tallyService(NewMemoryEventStore())
		entity, err := service.Load(ctx, AggregateId{Type: "tally", Key: "empty"})
		require.NoError(t, err)

		assert.False(t, entity.Initialized())
		assert.Equal(t, 0, entity.State.Total)
		assert.Equal(t, EntityType("we:tally"), entity.Type)
	})

	t.Run("executes and re-renders", func(t *testing.T) {
		service := tallyService(NewMemoryEventStore())
		id := AggregateId{Type: "tally", Key: "execute"}

		_, err := service.Execute(ctx, id, add{Amount: 3})
		require.NoError(t, err)
		entity, err := service.Execute(ctx, id, add{Amount: -5})
		require.NoError(t, err)

		assert.True(t, entity.Initialized())
		assert.Equal(t, -2, entity.State.Total)
	})

	t.Run("returns the loaded entity when nothing is published", func(t *testing.T) {
		service := tallyService(NewMemoryEventStore())
		id := AggregateId{Type: "tally", Key: "ignored"}

		entity, err := service.Execute(ctx, id, ignore{})
		require.NoError(t, err)
		assert.Equal(t, InitialRevision, entity.Revision)
	})

	t.Run("does not retry bad commands", func(t *testing.T) {
		service := tallyService(NewMemoryEventStore())
		_, err := service.Execute(ctx, AggregateId{Type: "tally", Key: "bad"}, "unknown")

		assert.True(t, IsBadCommand(err))
	})

	t.Run("retries lost revision races", func(t *testing.T) {
		store := &conflictingStore{EventStore: NewMemoryEventStore(), conflicts: 2}
		service := tallyService(store, WithAttempts(3))

		entity, err := service.Execute(ctx, AggregateId{Type: "tally", Key: "retry"}, add{Amount: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, entity.State.Total)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		store := &conflictingStore{EventStore: NewMemoryEventStore(), conflicts: 5}
		service := tallyService(store, WithAttempts(2))

		_, err := service.Execute(ctx, AggregateId{Type: "tally", Key: "exhausted"}, add{Amount: 1})
		assert.Equal(t, RevisionConflict, err)
	})

	t.Run("tags published events with the context correlation id", func(t *testing.T) {
		store := NewMemoryEventStore()
		service := tallyService(store)
		id := AggregateId{Type: "tally", Key: "correlated"}

		_, err := service.Execute(WithCorrelation(ctx, "request-7"), id, add{Amount: 1})
		require.NoError(t, err)
		_, err = service.Execute(ctx, id, add{Amount: 1})
		require.NoError(t, err)

		aggregate, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, aggregate.Events, 2)

		assert.Equal(t, CorrelationID("request-7"), aggregate.Events[0].Metadata.CorrelationId)
		assert.Empty(t, aggregate.Events[1].Metadata.CorrelationId)
	})

	t.Run("applies concurrent commands exactly once", func(t *testing.T) {
		service := tallyService(NewMemoryEventStore(), WithAttempts(100))
		id := AggregateId{Type: "tally", Key: "concurrent"}

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.Execute(ctx, id, add{Amount: 1})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		entity, err := service.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, workers, entity.State.Total)
	})
}
