package we

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryEventStore keeps each aggregate's events for the lifetime of the
// process. Nothing is written to disk.
type MemoryEventStore struct {
	mu       sync.Mutex
	revision *RevisionGenerator
	clock    func() time.Time
	streams  map[EncodedAggregateId][]RecordedEvent
	watchers map[EncodedAggregateId]map[uint64]func(Revision)
	next     uint64
}

type MemoryStoreOption func(*MemoryEventStore)

func WithClock(clock func() time.Time) MemoryStoreOption {
	return func(store *MemoryEventStore) {
		store.clock = clock
	}
}

func NewMemoryEventStore(options ...MemoryStoreOption) *MemoryEventStore {
	store := &MemoryEventStore{
		revision: NewRevisionGenerator(),
		clock:    time.Now,
		streams:  make(map[EncodedAggregateId][]RecordedEvent),
		watchers: make(map[EncodedAggregateId]map[uint64]func(Revision)),
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func (ms *MemoryEventStore) Load(ctx context.Context, id AggregateId) (Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return Aggregate{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	stream := ms.streams[id.Encode()]
	events := make([]RecordedEvent, len(stream))
	copy(events, stream)

	return Aggregate{
		Id:       id,
		Events:   events,
		Revision: revisionFrom(events),
	}, nil
}

func (ms *MemoryEventStore) Publish(ctx context.Context, aggregateId AggregateId, options PublishOptions, events ...DomainEvent) (Revision, error) {
	if len(events) == 0 {
		return "", NoEvents
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	recorded, err := ms.record(aggregateId, options, events)
	if err != nil {
		return "", err
	}

	key := aggregateId.Encode()

	ms.mu.Lock()
	stream := ms.streams[key]
	current := revisionFrom(stream)
	if expected := options.ExpectedRevision; expected != "" && expected != current {
		ms.mu.Unlock()
		return "", RevisionConflict
	}

	// revisions are generated before the lock is taken, so a slower writer
	// may hold an older one; restamp so the stream stays ordered
	for i := range recorded {
		if recorded[i].Revision <= current {
			recorded[i].Revision = ms.revision.NewRevision(ms.clock())
			recorded[i].EventID = EventID(recorded[i].Revision)
		}
		current = recorded[i].Revision
	}

	ms.streams[key] = append(stream, recorded...)
	notify := ms.watchersFor(key)
	ms.mu.Unlock()

	for _, fn := range notify {
		fn(current)
	}

	return current, nil
}

// Remove ends a session, discarding its events. Watchers are told the
// aggregate is back at its initial revision.
func (ms *MemoryEventStore) Remove(ctx context.Context, id AggregateId) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := id.Encode()

	ms.mu.Lock()
	count := len(ms.streams[key])
	delete(ms.streams, key)
	notify := ms.watchersFor(key)
	ms.mu.Unlock()

	if count > 0 {
		for _, fn := range notify {
			fn(InitialRevision)
		}
	}

	return count, nil
}

// Watch registers notify to be called, outside the store lock, with the new
// revision after every publish to id. notify runs on the publishing goroutine
// and must not block.
func (ms *MemoryEventStore) Watch(id AggregateId, notify func(Revision)) (cancel func()) {
	key := id.Encode()

	ms.mu.Lock()
	ms.next++
	handle := ms.next
	if ms.watchers[key] == nil {
		ms.watchers[key] = make(map[uint64]func(Revision))
	}
	ms.watchers[key][handle] = notify
	ms.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ms.mu.Lock()
			defer ms.mu.Unlock()

			delete(ms.watchers[key], handle)
			if len(ms.watchers[key]) == 0 {
				delete(ms.watchers, key)
			}
		})
	}
}

func (ms *MemoryEventStore) watchersFor(key EncodedAggregateId) []func(Revision) {
	registered := ms.watchers[key]
	notify := make([]func(Revision), 0, len(registered))
	for _, fn := range registered {
		notify = append(notify, fn)
	}

	return notify
}

func (ms *MemoryEventStore) record(aggregateId AggregateId, options PublishOptions, events []DomainEvent) ([]RecordedEvent, error) {
	now := ms.clock()
	timestamp := TimestampFromTime(now)

	recorded := make([]RecordedEvent, len(events))
	for index, event := range events {
		data, err := MarshalToData(event)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", EventTypeOf(event))
		}

		revision := ms.revision.NewRevision(now)
		recorded[index] = RecordedEvent{
			AggregateId: aggregateId,
			Revision:    revision,
			EventID:     EventID(revision),
			EventType:   EventTypeOf(event),
			Timestamp:   timestamp,
			Metadata:    options.RecordedEventMetadata,
			Data:        data,
		}
	}

	return recorded, nil
}

func revisionFrom(events []RecordedEvent) Revision {
	count := len(events)
	if count == 0 {
		return InitialRevision
	}

	return events[count-1].Revision
}
