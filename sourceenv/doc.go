// Package sourceenv loads form field specs from environment variables.
//
// Key normalization: USERNAME__VALUE → username.value,
// ADDRESS_LINE__VALIDATION → address_line.validation
//
// Example:
//
//	// SIGNUP_USERNAME__VALIDATION=minLength:3
//	// SIGNUP_USERNAME__VALUE=alice
//	source := sourceenv.New(sourceenv.Options{Prefix: "SIGNUP_"})
//	loader := formstate.NewLoader("signup").WithSource(source)
package sourceenv
