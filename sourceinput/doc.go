// Package sourceinput provides value sources fields can be bound to.
//
// Input is a settable value, the counterpart of a text input element:
//
//	input := sourceinput.NewInput("ab")
//	binding, _ := binder.BindField(input, form, "username")
//	defer binding.Destroy()
//	input.Set("alice") // re-validates username synchronously
//
// Chan forwards values received on a channel, for values produced by other
// goroutines.
package sourceinput
