package bind

import (
	"fmt"
	"strings"

	"github.com/xdrpp/wlgen/schema"
)

type DiagKind uint8

const (
	// The argument's type tag is outside the supported set.  The
	// argument is dropped from the binding.
	UnsupportedType DiagKind = iota + 1
	// The enum attribute names no known enum.  The argument keeps
	// its integer base type.
	UnresolvedEnum
	// The interface attribute names no known interface.  The
	// argument falls back to a bare object id.
	UnresolvedInterface
)

func (k DiagKind) String() string {
	switch k {
	case UnsupportedType:
		return "unsupported type"
	case UnresolvedEnum:
		return "unresolved enum"
	case UnresolvedInterface:
		return "unresolved interface"
	}
	return fmt.Sprintf("DiagKind#%d", uint8(k))
}

// A recoverable problem found while mapping one argument.
// Diagnostics never stop generation; they are reported next to the
// generated code.
type Diagnostic struct {
	Kind DiagKind
	Loc  schema.Location
	Arg  string
	// The offending tag, enum reference or interface reference.
	Ref string
}

func (d Diagnostic) String() string {
	var msg string
	switch d.Kind {
	case UnsupportedType:
		msg = fmt.Sprintf("argument %s has unsupported type %q; dropped",
			d.Arg, d.Ref)
	case UnresolvedEnum:
		msg = fmt.Sprintf("argument %s refers to unknown enum %q",
			d.Arg, d.Ref)
	case UnresolvedInterface:
		msg = fmt.Sprintf("argument %s refers to unknown interface %q",
			d.Arg, d.Ref)
	default:
		msg = fmt.Sprintf("argument %s: %s %q", d.Arg, d.Kind, d.Ref)
	}
	if loc := d.Loc.String(); loc != "" {
		return loc + ": " + msg
	}
	return msg
}

type Diagnostics []Diagnostic

func (ds Diagnostics) String() string {
	out := strings.Builder{}
	for _, d := range ds {
		out.WriteString(d.String())
		out.WriteByte('\n')
	}
	return out.String()
}

// Returns the diagnostics of the given kind.
func (ds Diagnostics) Kind(k DiagKind) Diagnostics {
	var ret Diagnostics
	for _, d := range ds {
		if d.Kind == k {
			ret = append(ret, d)
		}
	}
	return ret
}
