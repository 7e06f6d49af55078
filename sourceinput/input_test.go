package sourceinput

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Azhovan/formstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ formstate.ValueSource = (*Input)(nil)
	_ formstate.ValueSource = (*ChanSource)(nil)
)

func TestInput_SetNotifiesInOrder(t *testing.T) {
	input := NewInput("ab")
	assert.Equal(t, "ab", input.Value())

	var got []string
	input.Attach(func(v any) { got = append(got, "first:"+v.(string)) })
	input.Attach(func(v any) { got = append(got, "second:"+v.(string)) })

	input.Set("alice")

	assert.Equal(t, []string{"first:alice", "second:alice"}, got)
	assert.Equal(t, "alice", input.Value())
}

func TestInput_Detach(t *testing.T) {
	input := NewInput(nil)

	calls := 0
	detach := input.Attach(func(any) { calls++ })
	assert.Equal(t, 1, input.Listeners())

	input.Set("x")
	detach()
	detach()
	input.Set("y")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, input.Listeners())
}

func TestInput_ConcurrentSet(t *testing.T) {
	input := NewInput(0)

	var mu sync.Mutex
	seen := 0
	input.Attach(func(any) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input.Set(i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, seen)
}

func TestChan_ForwardsValues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan any)
	src := Chan(ctx, ch)

	received := make(chan any, 2)
	src.Attach(func(v any) { received <- v })

	ch <- "a"
	ch <- "b"

	for _, want := range []string{"a", "b"} {
		select {
		case v := <-received:
			assert.Equal(t, want, v)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	close(ch)
	select {
	case <-src.Done():
	case <-time.After(time.Second):
		t.Fatal("forwarding did not stop after channel close")
	}
}

func TestChan_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := Chan(ctx, make(chan any))

	cancel()
	select {
	case <-src.Done():
	case <-time.After(time.Second):
		t.Fatal("forwarding did not stop after cancel")
	}
}

func TestInput_DrivesBinding(t *testing.T) {
	coord := formstate.NewCoordinator(nil)
	form := formstate.NewForm(coord, "signup", formstate.FieldSpec{
		ID:         "username",
		Value:      "ab",
		Validation: formstate.RuleSet{formstate.RuleMinLength: 3},
	})

	input := NewInput("ab")
	binding, err := formstate.NewBinder(coord).BindField(input, form, "username")
	require.NoError(t, err)

	fv, _ := coord.FormValidity("signup")
	assert.False(t, fv.IsValid)

	input.Set("alice")
	fv, _ = coord.FormValidity("signup")
	assert.True(t, fv.IsValid)
	assert.True(t, fv.IsDirty)
	assert.Equal(t, "alice", form.GetValue()["username"])

	binding.Destroy()
	assert.Equal(t, 0, input.Listeners())
}
