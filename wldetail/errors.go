// Package wldetail holds helpers shared by the wlgen packages and
// commands that are not part of the generator proper.
package wldetail

import (
	"fmt"
	"strings"
)

// An error type that groups together a bunch of errors and renders
// them separated by newlines.
type Errors []error

func (errs Errors) Error() string {
	out := strings.Builder{}
	for i := range errs {
		fmt.Fprintln(&out, errs[i].Error())
	}
	return strings.TrimRight(out.String(), "\r\n")
}

// Returns nil for an empty list and the list itself otherwise, so
// callers can return the result as an error.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
