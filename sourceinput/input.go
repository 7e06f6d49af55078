package sourceinput

import (
	"context"
	"sort"
	"sync"
)

// Input holds a value and notifies attached callbacks whenever it is set.
// It is safe for concurrent use.
type Input struct {
	mu        sync.Mutex
	value     any
	callbacks map[int]func(any)
	nextID    int
}

// NewInput returns an Input holding initial.
func NewInput(initial any) *Input {
	return &Input{value: initial, callbacks: make(map[int]func(any))}
}

// Attach registers callback and returns a func that removes it.
// The returned func may be called more than once.
func (in *Input) Attach(callback func(value any)) (detach func()) {
	in.mu.Lock()
	id := in.nextID
	in.nextID++
	in.callbacks[id] = callback
	in.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			in.mu.Lock()
			delete(in.callbacks, id)
			in.mu.Unlock()
		})
	}
}

// Set stores v and calls every attached callback with it, in attach order,
// before returning.
func (in *Input) Set(v any) {
	in.mu.Lock()
	in.value = v
	callbacks := in.snapshot()
	in.mu.Unlock()

	for _, cb := range callbacks {
		cb(v)
	}
}

// Value returns the current value.
func (in *Input) Value() any {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// Listeners reports how many callbacks are attached.
func (in *Input) Listeners() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.callbacks)
}

func (in *Input) snapshot() []func(any) {
	ids := make([]int, 0, len(in.callbacks))
	for id := range in.callbacks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(any), 0, len(ids))
	for _, id := range ids {
		out = append(out, in.callbacks[id])
	}
	return out
}

// ChanSource forwards values from a channel to attached callbacks.
type ChanSource struct {
	input *Input
	done  chan struct{}
}

// Chan starts forwarding values received on ch until ch is closed or ctx is
// done. Values received while nothing is attached are dropped.
func Chan(ctx context.Context, ch <-chan any) *ChanSource {
	cs := &ChanSource{input: NewInput(nil), done: make(chan struct{})}
	go func() {
		defer close(cs.done)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				cs.input.Set(v)
			}
		}
	}()
	return cs
}

// Attach registers callback for values received after this call.
func (cs *ChanSource) Attach(callback func(value any)) (detach func()) {
	return cs.input.Attach(callback)
}

// Done is closed once forwarding has stopped.
func (cs *ChanSource) Done() <-chan struct{} {
	return cs.done
}
