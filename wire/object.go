// Package wire is the runtime used by generated Wayland bindings.  It
// defines the transport contract bindings call into, the Wayland
// argument types, the wire codec, and a Unix-socket transport.
//
// Argument and payload types implement the marshaling interfaces of
// github.com/xdrpp/goxdr/xdr, so the same values can be encoded to
// the wire, decoded from it, or printed with xdr.XdrPrint.
package wire

import (
	"fmt"

	"github.com/xdrpp/goxdr/xdr"
)

// What generated bindings need from the connection they run over.
type Transport interface {
	// Returns a fresh client-side object id.  Fails only when ids
	// are exhausted.
	AllocateID() (ObjectID, error)

	// Sends one request from object owner.  Requests sent on the
	// same transport are delivered in the order sent.
	SendRequest(owner ObjectID, opcode uint16, args ...xdr.XdrType) error

	// Decodes into payload the oldest queued event that object
	// owner received with opcode.  Returns false with a nil error
	// when no such event is queued.  Any error means the event (or
	// the transport) was bad, never that nothing was queued.
	NextEvent(owner ObjectID, opcode uint16, payload xdr.XdrType) (bool, error)
}

// A handle on a protocol object.
type Proxy interface {
	ID() ObjectID
	Transport() Transport
}

// The constraint satisfied by pointers to generated interface types.
// It lets generic code create handles of a caller-chosen interface.
type Object[T any] interface {
	*T
	Proxy
	InitObject(id ObjectID, t Transport)
	InterfaceName() string
	InterfaceVersion() uint32
}

// Returns the id to send for an object argument.  A nil Proxy (or a
// nil handle) is sent as the null object.
func ObjectOf(p Proxy) *ObjectID {
	var id ObjectID
	if p != nil {
		id = p.ID()
	}
	return &id
}

// Creates a handle of type T for id, sharing transport t.
func NewHandle[T any, P Object[T]](id ObjectID, t Transport) *T {
	obj := P(new(T))
	obj.InitObject(id, t)
	return (*T)(obj)
}

type ref[T any, P Object[T]] struct {
	p **T
	t Transport
}

// Adapts a typed handle field of an event payload for decoding.  The
// decoded id becomes a handle bound to the receiving transport; the
// null object becomes nil.
func Ref[T any, P Object[T]](p **T) xdr.XdrNum32 {
	return &ref[T, P]{p: p}
}

func (r *ref[T, P]) SetTransport(t Transport) { r.t = t }

func (r *ref[T, P]) XdrTypeName() string {
	var zero P
	return zero.InterfaceName()
}

func (r *ref[T, P]) String() string {
	return fmt.Sprintf("%s@%d", r.XdrTypeName(), r.GetU32())
}

func (r *ref[T, P]) Scan(ss fmt.ScanState, _ rune) error {
	var id uint32
	if _, err := fmt.Fscan(ss, &id); err != nil {
		return err
	}
	r.SetU32(id)
	return nil
}

func (r *ref[T, P]) GetU32() uint32 {
	if *r.p == nil {
		return 0
	}
	return uint32(P(*r.p).ID())
}

func (r *ref[T, P]) SetU32(id uint32) {
	if id == 0 {
		*r.p = nil
		return
	}
	*r.p = NewHandle[T, P](ObjectID(id), r.t)
}

func (r *ref[T, P]) XdrPointer() interface{} { return r.p }
func (r *ref[T, P]) XdrValue() interface{} { return *r.p }
func (r *ref[T, P]) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, r) }

// Describes a generated protocol.  Generated packages list theirs in
// a Protocols variable.
type ProtocolInfo struct {
	Name       string
	Interfaces []InterfaceInfo
}

type InterfaceInfo struct {
	Name    string
	Version uint32
}
