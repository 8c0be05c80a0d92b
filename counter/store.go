package counter

// Listener is called with the new state after every operation applied by a
// Store.
type Listener func(Counter)

// Store owns a single Counter. It is not safe for concurrent use; the owning
// view applies one operation at a time.
type Store struct {
	state     Counter
	listeners []subscription
	next      uint64
}

type subscription struct {
	id     uint64
	listen Listener
}

// New returns a Store whose count is 0.
func New() *Store {
	return &Store{}
}

func (s *Store) State() Counter {
	return s.state
}

func (s *Store) Count() int {
	return s.state.Count
}

// Dispatch applies op, notifies listeners in subscription order and returns
// the new state.
func (s *Store) Dispatch(op Operation) Counter {
	s.state = Apply(s.state, op)

	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	for _, l := range listeners {
		l.listen(s.state)
	}

	return s.state
}

func (s *Store) Increment() Counter {
	return s.Dispatch(Increment{})
}

func (s *Store) Decrement() Counter {
	return s.Dispatch(Decrement{})
}

func (s *Store) Reset() Counter {
	return s.Dispatch(Reset{})
}

func (s *Store) IncrementBy(amount int) Counter {
	return s.Dispatch(IncrementBy{Amount: amount})
}

// Subscribe registers listen for change notifications. The returned function
// removes it and may be called more than once.
func (s *Store) Subscribe(listen Listener) (unsubscribe func()) {
	s.next++
	id := s.next
	s.listeners = append(s.listeners, subscription{id: id, listen: listen})

	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
