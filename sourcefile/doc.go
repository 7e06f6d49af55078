// Package sourcefile loads form field specs from YAML, JSON, or TOML files.
//
// Format is auto-detected from extension (.yaml, .json, .toml). The file maps
// field ids to their attributes:
//
//	username:
//	  value: ab
//	  validation:
//	    minLength: 3
//	email:
//	  validation: "email,maxLength:64"
//	rows:
//	  groups:
//	    - - a: {value: x}
//
// Example:
//
//	source := sourcefile.New("signup.yaml", sourcefile.Options{Required: true})
//	loader := formstate.NewLoader("signup").WithSource(source)
//
// Watch reports writes, creates, renames and removals of the file through
// fsnotify.
package sourcefile
