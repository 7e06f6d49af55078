// Package formstate tracks named fields grouped under forms, validates them on
// every value change, and aggregates per-field validity into whole-form validity.
//
// Quick Start:
//
//	coord := formstate.NewCoordinator(formstate.NewStore())
//	form := formstate.NewForm(coord, "signup",
//	    formstate.FieldSpec{ID: "username", Value: "ab", Validation: formstate.RuleSet{"minLength": 3}},
//	)
//
//	binder := formstate.NewBinder(coord)
//	input := sourceinput.NewInput("ab")
//	binding, err := binder.BindField(input, form, "username")
//	defer binding.Destroy()
//
//	input.Set("alice") // store["signup"].IsValid becomes true
//
// Rules: email, minLength:N, maxLength:N, length:N. Unknown rules fail open.
//
// See example_test.go for detailed usage.
package formstate
