package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/xdrpp/goxdr/xdr"
)

// Wayland messages use the host's byte order.
var order = binary.NativeEndian

type nullable interface {
	IsNull() bool
}

type stringGetter interface {
	GetString() string
}

type stringSetter interface {
	SetString(string)
}

// Implemented by typed object references in event payloads, which
// need the transport to build their handles.
type transportSetter interface {
	SetTransport(Transport)
}

// An xdr.XDR that appends values in Wayland wire format.  Values
// that cannot be represented panic with xdr.XdrError.
type encoder struct {
	buf []byte
	fds []int
}

func (e *encoder) Sprintf(f string, args ...interface{}) string {
	return fmt.Sprintf(f, args...)
}

func (e *encoder) put32(v uint32) {
	e.buf = order.AppendUint32(e.buf, v)
}

func (e *encoder) putBytes(b []byte) {
	e.buf = append(e.buf, b...)
	for len(e.buf)&3 != 0 {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) Marshal(name string, val xdr.XdrType) {
	if n, ok := val.(nullable); ok && n.IsNull() {
		e.put32(0)
		return
	}
	switch v := val.(type) {
	case *Fd:
		e.fds = append(e.fds, int(*v))
	case stringGetter:
		s := v.GetString()
		e.put32(uint32(len(s) + 1))
		e.putBytes(append([]byte(s), 0))
	case xdr.XdrVarBytes:
		b := v.GetByteSlice()
		if uint(len(b)) > uint(v.XdrBound()) {
			xdr.XdrPanic("%s: %d bytes exceed bound %d", name, len(b),
				v.XdrBound())
		}
		e.put32(uint32(len(b)))
		e.putBytes(b)
	case xdr.XdrNum32:
		e.put32(v.GetU32())
	case xdr.XdrAggregate:
		v.XdrRecurse(e, name)
	default:
		xdr.XdrPanic("%s: cannot marshal %T", name, val)
	}
}

// An xdr.XDR that fills in values from a Wayland message body.
type decoder struct {
	data []byte
	fds  []int
	t    Transport
}

func (d *decoder) Sprintf(f string, args ...interface{}) string {
	return fmt.Sprintf(f, args...)
}

func (d *decoder) get32(name string) uint32 {
	if len(d.data) < 4 {
		xdr.XdrPanic("%s: message truncated", name)
	}
	v := order.Uint32(d.data)
	d.data = d.data[4:]
	return v
}

func (d *decoder) getBytes(name string, n uint32) []byte {
	padded := (uint64(n) + 3) &^ 3
	if uint64(len(d.data)) < padded {
		xdr.XdrPanic("%s: message truncated", name)
	}
	b := d.data[:n]
	d.data = d.data[padded:]
	return b
}

func (d *decoder) Marshal(name string, val xdr.XdrType) {
	if ts, ok := val.(transportSetter); ok {
		ts.SetTransport(d.t)
	}
	switch v := val.(type) {
	case *Fd:
		if len(d.fds) == 0 {
			xdr.XdrPanic("%s: missing file descriptor", name)
		}
		*v = Fd(d.fds[0])
		d.fds = d.fds[1:]
	case stringSetter:
		n := d.get32(name)
		if n == 0 {
			v.SetString("")
			return
		}
		b := d.getBytes(name, n)
		if b[n-1] != 0 {
			xdr.XdrPanic("%s: string not NUL-terminated", name)
		}
		v.SetString(string(b[:n-1]))
	case xdr.XdrVarBytes:
		n := d.get32(name)
		if n > v.XdrBound() {
			xdr.XdrPanic("%s: %d bytes exceed bound %d", name, n,
				v.XdrBound())
		}
		v.SetByteSlice(append([]byte(nil), d.getBytes(name, n)...))
	case xdr.XdrNum32:
		v.SetU32(d.get32(name))
	case xdr.XdrAggregate:
		v.XdrRecurse(d, name)
	default:
		xdr.XdrPanic("%s: cannot unmarshal %T", name, val)
	}
}

func recoverXdr(err *error) {
	if i := recover(); i != nil {
		if xe, ok := i.(xdr.XdrError); ok {
			*err = xe
			return
		}
		panic(i)
	}
}

// Encodes request arguments into a message body and the list of
// file descriptors to pass alongside it.
func Marshal(args ...xdr.XdrType) (data []byte, fds []int, err error) {
	defer recoverXdr(&err)
	var e encoder
	for i, arg := range args {
		arg.XdrMarshal(&e, fmt.Sprintf("arg%d", i))
	}
	return e.buf, e.fds, nil
}

// Decodes a message body into payload.  Typed object references in
// the payload get handles bound to t.  Every byte and every file
// descriptor must be consumed.
func Unmarshal(data []byte, fds []int, t Transport, payload xdr.XdrType) (err error) {
	defer recoverXdr(&err)
	d := decoder{data: data, fds: fds, t: t}
	payload.XdrMarshal(&d, "")
	if len(d.data) != 0 {
		return fmt.Errorf("%d trailing bytes after %s", len(d.data),
			payload.XdrTypeName())
	} else if len(d.fds) != 0 {
		return fmt.Errorf("%d unused file descriptors after %s",
			len(d.fds), payload.XdrTypeName())
	}
	return nil
}

// Renders a payload or argument as text, one field per line.
func Dump(v xdr.XdrType) string {
	return xdr.XdrToString(v)
}
