package schema

import (
	"strings"
)

// Where in a protocol document something went wrong.  Empty
// components are omitted when rendered.
type Location struct {
	Protocol  string
	Interface string
	// Element names the message, enum, entry or argument,
	// e.g. "request make_friend/arg new_friend".
	Element string
}

func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{l.Protocol, l.Interface, l.Element} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// A structural error in a protocol document.  Any structural error
// means the document could not be turned into a Protocol.
type Error struct {
	File string
	Loc  Location
	Msg  string
}

func (err Error) Error() string {
	out := strings.Builder{}
	if err.File != "" {
		out.WriteString(err.File)
		out.WriteString(": ")
	}
	if loc := err.Loc.String(); loc != "" {
		out.WriteString(loc)
		out.WriteString(": ")
	}
	out.WriteString(err.Msg)
	return out.String()
}

// All structural errors found in one document.
type Errors []Error

func (errs Errors) Error() string {
	out := strings.Builder{}
	for i, e := range errs {
		if i != 0 {
			out.WriteByte('\n')
		}
		out.WriteString(e.Error())
	}
	return out.String()
}
