// Package schema holds the in-memory model of a Wayland protocol
// description and the loaders that build it from XML or YAML.
//
// A Protocol is read-only once loaded.  Declaration order of
// interfaces, messages, arguments, enums and entries is kept exactly
// as written, since message opcodes and wire argument positions are
// derived from it.
package schema

import (
	"fmt"
	"strconv"
)

// The abstract type tag of a message argument.  The set is closed;
// Invalid stands for any tag outside of it.
type WireType uint8

const (
	Invalid WireType = iota
	Int
	Uint
	Fixed
	String
	Object
	NewID
	Array
	Fd
)

var wireTypeNames = [...]string{
	Invalid: "invalid",
	Int:     "int",
	Uint:    "uint",
	Fixed:   "fixed",
	String:  "string",
	Object:  "object",
	NewID:   "new_id",
	Array:   "array",
	Fd:      "fd",
}

var wireTypeValues = map[string]WireType{
	"int":    Int,
	"uint":   Uint,
	"fixed":  Fixed,
	"string": String,
	"object": Object,
	"new_id": NewID,
	"array":  Array,
	"fd":     Fd,
}

// Returns the WireType for a schema type tag, or Invalid.
func ParseWireType(tag string) WireType {
	return wireTypeValues[tag]
}

func (t WireType) String() string {
	if int(t) < len(wireTypeNames) {
		return wireTypeNames[t]
	}
	return fmt.Sprintf("WireType#%d", uint8(t))
}

func (t WireType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Free-form documentation attached to protocols, interfaces,
// messages and enums.
type Description struct {
	Summary string
	Text    string
}

type Protocol struct {
	Name        string
	Copyright   string
	Description *Description
	Interfaces  []*Interface
}

type Interface struct {
	Name        string
	Version     int
	Description *Description
	Enums       []*Enum
	Requests    []*Message
	Events      []*Message
}

type Enum struct {
	Name        string
	Since       int
	Bitfield    bool
	Description *Description
	Entries     []*Entry
}

// One enumeration constant.  Value is the literal text from the
// schema (e.g., "0x8"); it is validated as an unsigned 32-bit integer
// literal at load time but never rewritten.
type Entry struct {
	Name    string
	Value   string
	Summary string
	Since   int
}

// Parses Value.  Entries returned by the loaders always parse.
func (e *Entry) Uint32() (uint32, error) {
	v, err := strconv.ParseUint(e.Value, 0, 32)
	return uint32(v), err
}

// A request or an event.
type Message struct {
	Name        string
	Type        string
	Since       int
	Description *Description
	Args        []*Arg
}

func (m *Message) Destructor() bool {
	return m.Type == "destructor"
}

type Arg struct {
	Name string
	Type WireType
	// The tag as written in the schema, kept so that diagnostics can
	// name tags that are not in the supported set.
	TypeName  string
	Nullable  bool
	Enum      string
	Interface string
	Summary   string
}

// Finds an interface of the protocol by name.
func (p *Protocol) Interface(name string) *Interface {
	for _, iface := range p.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// Finds an enum of the interface by name.
func (iface *Interface) Enum(name string) *Enum {
	for _, e := range iface.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}
