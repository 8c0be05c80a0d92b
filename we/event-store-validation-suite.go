package we

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewEventStoreValidationSuite returns the behaviour every EventStore is
// expected to share, for use from a store's own tests.
func NewEventStoreValidationSuite(ctx context.Context, store EventStore) *EventStoreValidationSuite {
	return &EventStoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

type EventStoreValidationSuite struct {
	store EventStore
	ctx   context.Context
	faker faker.Faker
}

type StoreValidationEvent struct {
	TestStringValue string `json:"test_string_value"`
	TestIntValue    int    `json:"test_int_value"`
}

func (s *EventStoreValidationSuite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadInitial)
	t.Run("loads a revision with events", s.LoadsRevisionWithEvents)
	t.Run("publishes single event", s.PublishesSingleEvent)
	t.Run("publishes multiple events in a single transaction", s.PublishesMultipleEvents)
	t.Run("rejects an empty publish", s.RejectsEmptyPublish)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("accepts the current revision", s.AcceptsCurrentRevision)
	t.Run("supports causation id", s.Causation)
}

func (s *EventStoreValidationSuite) MakeTestAggregateId() AggregateId {
	return AggregateId{
		Type: "go-test",
		Key:  ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvent() StoreValidationEvent {
	return StoreValidationEvent{
		TestStringValue: s.faker.Lorem().Sentence(10),
		TestIntValue:    s.faker.IntBetween(-1000, 1000),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvents(count int) []DomainEvent {
	events := make([]DomainEvent, count)
	for i := 0; i < count; i++ {
		events[i] = s.MakeTestEvent()
	}

	return events
}

func (s *EventStoreValidationSuite) LoadInitial(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	aggregate, err := s.store.Load(s.ctx, aggregateId)
	require.NoError(t, err)

	assert.Empty(t, aggregate.Events)
	assert.Equal(t, InitialRevision, aggregate.Revision)
	assert.EqualValues(t, aggregateId, aggregate.Id)
}

func (s *EventStoreValidationSuite) PublishesSingleEvent(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	revision, err := s.store.Publish(s.ctx, aggregateId, Options(), s.MakeTestEvent())
	require.NoError(t, err)

	assert.NotEqual(t, InitialRevision, revision)
}

func (s *EventStoreValidationSuite) PublishesMultipleEvents(t *testing.T) {
	events := s.MakeTestEvents(17)

	aggregateId := s.MakeTestAggregateId()
	revision, err := s.store.Publish(s.ctx, aggregateId, Options(), events...)
	require.NoError(t, err)

	loaded, err := s.store.Load(s.ctx, aggregateId)
	require.NoError(t, err)

	assert.Len(t, loaded.Events, 17)
	assert.Equal(t, revision, loaded.Revision)
	for i := 1; i < len(loaded.Events); i++ {
		assert.Less(t, loaded.Events[i-1].Revision.String(), loaded.Events[i].Revision.String())
	}
}

func (s *EventStoreValidationSuite) RejectsEmptyPublish(t *testing.T) {
	_, err := s.store.Publish(s.ctx, s.MakeTestAggregateId(), Options())
	assert.Error(t, err)
}

func (s *EventStoreValidationSuite) LoadsRevisionWithEvents(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	event := s.MakeTestEvent()

	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	require.NoError(t, err)

	aggregate, err := s.store.Load(s.ctx, aggregateId)
	require.NoError(t, err)

	require.Len(t, aggregate.Events, 1)
	assert.EqualValues(t, aggregateId, aggregate.Id)

	var decoded StoreValidationEvent
	require.NoError(t, aggregate.Events[0].Decode(&decoded))
	assert.Equal(t, event, decoded)
	assert.Equal(t, EventTypeOf(event), aggregate.Events[0].EventType)
}

func (s *EventStoreValidationSuite) Last(id AggregateId) (*RecordedEvent, error) {
	loaded, err := s.store.Load(s.ctx, id)
	if err != nil {
		return nil, err
	}

	length := len(loaded.Events)
	if length == 0 {
		return nil, NoEvents
	}

	return &loaded.Events[length-1], nil
}

func (s *EventStoreValidationSuite) RevisionConflictOnInitialRevision(t *testing.T) {
	event := s.MakeTestEvent()

	aggregateId := s.MakeTestAggregateId()
	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	require.NoError(t, err)

	_, err = s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(InitialRevision)), event)
	assert.Equal(t, RevisionConflict, err)
}

func (s *EventStoreValidationSuite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	event := s.MakeTestEvent()

	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	require.NoError(t, err)

	first, err := s.store.Load(s.ctx, aggregateId)
	require.NoError(t, err)

	_, err = s.store.Publish(s.ctx, aggregateId, Options(), event)
	require.NoError(t, err)

	_, err = s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(first.Revision)), event)
	assert.Equal(t, RevisionConflict, err)
}

func (s *EventStoreValidationSuite) AcceptsCurrentRevision(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()

	revision, err := s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent())
	require.NoError(t, err)

	next, err := s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(revision)), s.MakeTestEvent())
	require.NoError(t, err)

	assert.Less(t, revision.String(), next.String())
}

func (s *EventStoreValidationSuite) Causation(t *testing.T) {
	event := s.MakeTestEvent()

	aggregateId := s.MakeTestAggregateId()
	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	require.NoError(t, err)

	first, err := s.Last(aggregateId)
	require.NoError(t, err)

	correlationId := CorrelationID(strings.Join([]string{"event/", first.EventID.String()}, ""))

	_, err = s.store.Publish(
		s.ctx,
		aggregateId,
		Options(WithCausationId(correlationId, first.EventID)),
		event,
	)
	require.NoError(t, err)

	second, err := s.Last(aggregateId)
	require.NoError(t, err)

	assert.Equal(t, correlationId, second.Metadata.CorrelationId)
	assert.Equal(t, first.EventID, second.Metadata.CausationId)
}
