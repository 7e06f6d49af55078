package formstate

import (
	"sort"
	"sync"
)

// FieldValidity is the per-field state the store keeps.
type FieldValidity struct {
	IsValid   bool `json:"isValid"`
	IsDirty   bool `json:"isDirty"`
	ShowError bool `json:"showError"`
}

// FormValidity aggregates a form's field validity.
type FormValidity struct {
	Fields  map[string]FieldValidity `json:"fields"`
	IsValid bool                     `json:"isValid"`
	IsDirty bool                     `json:"isDirty"`
}

// State maps form id to its aggregated validity.
type State map[string]FormValidity

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for id, fv := range s {
		out[id] = fv.clone()
	}
	return out
}

func (fv FormValidity) clone() FormValidity {
	out := fv
	out.Fields = make(map[string]FieldValidity, len(fv.Fields))
	for k, v := range fv.Fields {
		out.Fields[k] = v
	}
	return out
}

// Listener receives a copy of the state after every write.
type Listener func(State)

type delivery struct {
	state     State
	listeners []Listener
}

// Store is an observable state container. Writes are serialised; listeners
// see every write in order, including writes made from inside a listener.
// The zero value is not usable; call NewStore.
type Store struct {
	mu         sync.Mutex
	state      State
	listeners  map[int]Listener
	nextID     int
	pending    []delivery
	delivering bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state:     make(State),
		listeners: make(map[int]Listener),
	}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Set replaces the whole state.
func (s *Store) Set(state State) {
	s.Update(func(State) State { return state.Clone() })
}

// Update applies fn to a copy of the current state and stores the result as
// one atomic read-modify-write. fn must not call back into the store.
func (s *Store) Update(fn func(State) State) {
	s.mu.Lock()
	next := fn(s.state.Clone())
	if next == nil {
		next = make(State)
	}
	s.state = next
	s.pending = append(s.pending, delivery{state: next, listeners: s.snapshotListeners()})
	s.flushLocked()
}

// Subscribe registers listener. It is called once immediately with the
// current state and again after every write. The returned func removes it.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.pending = append(s.pending, delivery{state: s.state.Clone(), listeners: []Listener{listener}})
	s.flushLocked()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// flushLocked delivers queued states. It is entered with s.mu held and
// returns with it released. Only one goroutine delivers at a time; a write
// made while another delivery is running is queued behind it.
func (s *Store) flushLocked() {
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		for _, l := range d.listeners {
			l(d.state.Clone())
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Store) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}
