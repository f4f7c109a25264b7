package wire

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xdrpp/goxdr/xdr"
)

// Largest array payload that fits in a message.
const MaxArray = maxMessageSize - headerSize - 4

// The protocol-level identifier of an object.  Zero is the null
// object.
type ObjectID uint32

func (ObjectID) XdrTypeName() string { return "object" }
func (v ObjectID) String() string { return fmt.Sprintf("%d", uint32(v)) }
func (v *ObjectID) Scan(ss fmt.ScanState, r rune) error {
	_, err := fmt.Fscanf(ss, string([]rune{'%', r}), (*uint32)(v))
	return err
}
func (v ObjectID) GetU32() uint32 { return uint32(v) }
func (v *ObjectID) SetU32(n uint32) { *v = ObjectID(n) }
func (v *ObjectID) XdrPointer() interface{} { return v }
func (v ObjectID) XdrValue() interface{} { return v }
func (v *ObjectID) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }

// A signed 24.8 fixed-point number.
type Fixed int32

// Converts using the same rounding trick as libwayland.
func FixedFromFloat(d float64) Fixed {
	u := d + (3 << (51 - 8))
	return Fixed(int64(math.Float64bits(u)))
}

func FixedFromInt(i int) Fixed {
	return Fixed(i * 256)
}

func (v Fixed) Float() float64 {
	u := (1023+44)<<52 + (1 << 51) + int64(v)
	return math.Float64frombits(uint64(u)) - (3 << 43)
}

// Truncates toward zero.
func (v Fixed) Int() int {
	return int(v / 256)
}

func (Fixed) XdrTypeName() string { return "fixed" }
func (v Fixed) String() string {
	return strconv.FormatFloat(v.Float(), 'f', -1, 64)
}
func (v *Fixed) Scan(ss fmt.ScanState, _ rune) error {
	var d float64
	if _, err := fmt.Fscan(ss, &d); err != nil {
		return err
	}
	*v = FixedFromFloat(d)
	return nil
}
func (v Fixed) GetU32() uint32 { return uint32(v) }
func (v *Fixed) SetU32(n uint32) { *v = Fixed(n) }
func (v *Fixed) XdrPointer() interface{} { return v }
func (v Fixed) XdrValue() interface{} { return v }
func (v *Fixed) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }

// A file descriptor.  Descriptors travel out of band, so they take
// no space in the message body.  Sending does not close the
// descriptor; a received descriptor belongs to whoever decoded it.
type Fd int

func (Fd) XdrTypeName() string { return "fd" }
func (v Fd) String() string { return fmt.Sprintf("fd:%d", int(v)) }
func (v *Fd) XdrPointer() interface{} { return v }
func (v Fd) XdrValue() interface{} { return v }
func (v *Fd) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }

// A string owned by a decoded event payload.  A null string decodes
// as "".
type String string

func (String) XdrTypeName() string { return "string" }
func (v String) String() string { return fmt.Sprintf("%q", string(v)) }
func (v String) GetString() string { return string(v) }
func (v *String) SetString(s string) { *v = String(s) }
func (v *String) XdrPointer() interface{} { return v }
func (v String) XdrValue() interface{} { return string(v) }
func (v *String) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }

// Wraps a borrowed string argument for sending.
func Str(s string) *String {
	return (*String)(&s)
}

// A nullable string argument.  A nil Str is sent as the null string.
type OptString struct {
	Str *string
}

// Wraps a borrowed, possibly nil, string argument for sending.
func OptStr(s *string) OptString {
	return OptString{s}
}

func (OptString) XdrTypeName() string { return "string?" }
func (v OptString) String() string {
	if v.Str == nil {
		return "nil"
	}
	return fmt.Sprintf("%q", *v.Str)
}
func (v OptString) IsNull() bool { return v.Str == nil }
func (v OptString) GetString() string {
	if v.Str == nil {
		return ""
	}
	return *v.Str
}
func (v OptString) XdrPointer() interface{} { return v.Str }
func (v OptString) XdrValue() interface{} { return v.Str }
func (v OptString) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }

// Wraps a byte slice argument or field for the wire.
func Bytes(b *[]byte) xdr.XdrVecOpaque {
	return xdr.XdrVecOpaque{Bytes: b, Bound: MaxArray}
}

// The wire form of a new_id argument whose interface is chosen by
// the caller: interface name, version and the freshly allocated id.
type NewObject struct {
	Interface string
	Version   uint32
	ID        ObjectID
}

func (NewObject) XdrTypeName() string { return "new_id" }
func (v *NewObject) XdrPointer() interface{} { return v }
func (v NewObject) XdrValue() interface{} { return v }
func (v *NewObject) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }
func (v *NewObject) XdrRecurse(x xdr.XDR, name string) {
	if name != "" {
		name = x.Sprintf("%s.", name)
	}
	x.Marshal(x.Sprintf("%sinterface", name), (*String)(&v.Interface))
	x.Marshal(x.Sprintf("%sversion", name), xdr.XDR_uint32(&v.Version))
	x.Marshal(x.Sprintf("%sid", name), &v.ID)
}
