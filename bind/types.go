package bind

import (
	"fmt"

	"github.com/xdrpp/wlgen/schema"
)

// Whether an argument is being mapped as something the caller passes
// in (a request parameter) or something the caller gets back (an
// event payload field).
type Position uint8

const (
	ParamPos Position = iota
	FieldPos
)

func (p Position) String() string {
	if p == FieldPos {
		return "field"
	}
	return "param"
}

// The representation chosen for one argument.
type Kind uint8

const (
	Invalid Kind = iota
	Int32
	Uint32
	// 24.8 fixed point, wire.Fixed.
	Fixed
	// File descriptor passed out of band, wire.Fd.
	Fd
	Bytes
	// A string borrowed from the caller for the duration of a send.
	String
	// A string owned by a decoded payload, wire.String.
	OwnedString
	ObjectID
	// The generated handle type of Type.Interface.
	Object
	// A new_id whose interface the caller supplies as a type
	// argument together with a version.
	TypeParam
	// A new_id of a statically known interface.  No parameter is
	// emitted; the id is allocated by the binding.  An empty
	// Type.Interface means the interface did not resolve and the
	// caller gets back a bare object id.
	Omitted
	// A named enum type; Type.Base is its wire representation.
	EnumKind
)

var kindNames = [...]string{
	Invalid:     "invalid",
	Int32:       "int32",
	Uint32:      "uint32",
	Fixed:       "fixed",
	Fd:          "fd",
	Bytes:       "bytes",
	String:      "string",
	OwnedString: "owned-string",
	ObjectID:    "object-id",
	Object:      "object",
	TypeParam:   "type-param",
	Omitted:     "omitted",
	EnumKind:    "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind#%d", uint8(k))
}

type Type struct {
	Kind     Kind
	Nullable bool
	// Interface for Object and Omitted.
	Interface string
	// Interface and name of the enum for EnumKind.
	EnumOwner string
	EnumName  string
	// Int32 or Uint32 for EnumKind.
	Base Kind
}

func (t Type) String() string {
	var s string
	switch t.Kind {
	case Object:
		s = fmt.Sprintf("object<%s>", t.Interface)
	case Omitted:
		if t.Interface == "" {
			s = "omitted<object-id>"
		} else {
			s = fmt.Sprintf("omitted<%s>", t.Interface)
		}
	case EnumKind:
		s = fmt.Sprintf("enum<%s.%s:%s>", t.EnumOwner, t.EnumName, t.Base)
	default:
		s = t.Kind.String()
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// Maps one argument of interface iface to its representation at
// position pos.  References are resolved through r.  On a mapping
// problem, a Diagnostic is returned alongside the fallback type; for
// UnsupportedType the returned type is Invalid and the argument must
// be dropped.  The diagnostic's Loc is left for the caller to fill
// in.
func MapType(r *schema.Resolver, iface *schema.Interface, arg *schema.Arg,
	pos Position) (Type, *Diagnostic) {
	t := Type{Nullable: arg.Nullable}
	var diag *Diagnostic
	problem := func(k DiagKind, ref string) {
		diag = &Diagnostic{Kind: k, Arg: arg.Name, Ref: ref}
	}

	switch arg.Type {
	case schema.Int, schema.Uint:
		t.Kind = Int32
		if arg.Type == schema.Uint {
			t.Kind = Uint32
		}
		if arg.Enum != "" {
			if owner, e, ok := r.Enum(iface, arg.Enum); ok {
				t.Base = t.Kind
				t.Kind = EnumKind
				t.EnumOwner = owner.Name
				t.EnumName = e.Name
			} else {
				problem(UnresolvedEnum, arg.Enum)
			}
		}
	case schema.Fixed:
		t.Kind = Fixed
	case schema.Fd:
		t.Kind = Fd
	case schema.Array:
		t.Kind = Bytes
	case schema.String:
		if pos == ParamPos {
			t.Kind = String
		} else {
			t.Kind = OwnedString
		}
	case schema.Object:
		t.Kind = ObjectID
		if arg.Interface != "" {
			if _, ok := r.Interface(arg.Interface); ok {
				t.Kind = Object
				t.Interface = arg.Interface
			} else {
				problem(UnresolvedInterface, arg.Interface)
			}
		}
	case schema.NewID:
		switch {
		case pos == FieldPos:
			// The receiving side cannot tell the new object's
			// interface without protocol-specific context.
			t.Kind = ObjectID
		case arg.Interface == "":
			t.Kind = TypeParam
		default:
			t.Kind = Omitted
			if _, ok := r.Interface(arg.Interface); ok {
				t.Interface = arg.Interface
			} else {
				problem(UnresolvedInterface, arg.Interface)
			}
		}
	case schema.Invalid:
		problem(UnsupportedType, arg.TypeName)
		return Type{}, diag
	default:
		panic(fmt.Sprintf("MapType: unhandled wire type %v", arg.Type))
	}
	return t, diag
}
