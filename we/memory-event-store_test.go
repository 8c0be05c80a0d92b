package we

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEventStore()

	t.Run("memory event store validation", func(t *testing.T) {
		suite := NewEventStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("removes details for entities", func(t *testing.T) {
		suite := NewEventStoreValidationSuite(ctx, store)
		aggregateId := suite.MakeTestAggregateId()

		_, err := store.Publish(ctx, aggregateId, Options(), suite.MakeTestEvents(2)...)
		require.NoError(t, err)

		count, err := store.Remove(ctx, aggregateId)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		loaded, err := store.Load(ctx, aggregateId)
		require.NoError(t, err)
		assert.Equal(t, InitialRevision, loaded.Revision)
		assert.Empty(t, loaded.Events)
	})

	t.Run("notifies watchers of new revisions", func(t *testing.T) {
		suite := NewEventStoreValidationSuite(ctx, store)
		aggregateId := suite.MakeTestAggregateId()
		other := suite.MakeTestAggregateId()

		var seen []Revision
		cancel := store.Watch(aggregateId, func(revision Revision) {
			seen = append(seen, revision)
		})

		first, err := store.Publish(ctx, aggregateId, Options(), suite.MakeTestEvent())
		require.NoError(t, err)
		_, err = store.Publish(ctx, other, Options(), suite.MakeTestEvent())
		require.NoError(t, err)
		_, err = store.Remove(ctx, aggregateId)
		require.NoError(t, err)

		cancel()
		cancel()

		_, err = store.Publish(ctx, aggregateId, Options(), suite.MakeTestEvent())
		require.NoError(t, err)

		assert.Equal(t, []Revision{first, InitialRevision}, seen)
	})

	t.Run("serialises concurrent publishers on the expected revision", func(t *testing.T) {
		suite := NewEventStoreValidationSuite(ctx, store)
		aggregateId := suite.MakeTestAggregateId()

		const writers = 16
		events := suite.MakeTestEvents(writers)

		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(event DomainEvent) {
				defer wg.Done()
				_, err := store.Publish(ctx, aggregateId, Options(WithExpectedRevision(InitialRevision)), event)
				results <- err
			}(events[i])
		}
		wg.Wait()
		close(results)

		var succeeded, conflicted int
		for err := range results {
			switch err {
			case nil:
				succeeded++
			case RevisionConflict:
				conflicted++
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, writers-1, conflicted)
	})

	t.Run("honours cancelled contexts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Load(cancelled, AggregateId{Type: "go-test", Key: "cancelled"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
