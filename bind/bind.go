// Package bind turns a schema.Protocol into a binding description
// that is independent of any target language: each request and event
// gets its opcode, its typed parameters or payload fields, and for
// requests, the exact wire argument tuple and the objects it
// creates.
package bind

import (
	"github.com/xdrpp/wlgen/schema"
)

// The bound form of one protocol.  A File is what a renderer needs
// to emit one source file.
type File struct {
	Name        string              `yaml:"name"`
	Copyright   string              `yaml:"copyright,omitempty"`
	Description *schema.Description `yaml:"description,omitempty"`
	Interfaces  []*Interface        `yaml:"interfaces"`
}

type Interface struct {
	Name        string              `yaml:"name"`
	Version     int                 `yaml:"version"`
	Description *schema.Description `yaml:"description,omitempty"`
	Enums       []*Enum             `yaml:"enums,omitempty"`
	Requests    []*Request          `yaml:"requests,omitempty"`
	Events      []*Event            `yaml:"events,omitempty"`
}

type Enum struct {
	Name        string              `yaml:"name"`
	Since       int                 `yaml:"since"`
	Bitfield    bool                `yaml:"bitfield,omitempty"`
	Description *schema.Description `yaml:"description,omitempty"`
	Entries     []*schema.Entry     `yaml:"entries"`
}

// A request parameter or an event payload field.
type Param struct {
	Name    string `yaml:"name"`
	Type    Type   `yaml:"type"`
	Summary string `yaml:"summary,omitempty"`
}

// How one position of a request's wire tuple is produced.
type WireKind uint8

const (
	// The parameter value itself.
	WirePlain WireKind = iota
	// A string parameter wrapped for the wire.
	WireString
	// The bare id allocated for a new object of known interface.
	WireNewID
	// A descriptor of interface name, version and allocated id
	// for a new object whose interface the caller chose.
	WireNewObject
)

func (k WireKind) String() string {
	switch k {
	case WireString:
		return "string"
	case WireNewID:
		return "new-id"
	case WireNewObject:
		return "new-object"
	}
	return "plain"
}

func (k WireKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

type WireArg struct {
	Kind WireKind `yaml:"kind"`
	// Index into Request.Params for WirePlain and WireString, or
	// into Request.NewObjects for WireNewID and WireNewObject.
	Index int `yaml:"index"`
}

// An object created by a request.
type NewObject struct {
	Name string `yaml:"name"`
	// Omitted or TypeParam.
	Type Type `yaml:"type"`
}

func (n *NewObject) Polymorphic() bool {
	return n.Type.Kind == TypeParam
}

type Request struct {
	Name        string              `yaml:"name"`
	Opcode      uint16              `yaml:"opcode"`
	Since       int                 `yaml:"since"`
	Destructor  bool                `yaml:"destructor,omitempty"`
	Description *schema.Description `yaml:"description,omitempty"`
	// Caller-supplied values in declaration order.  Known-interface
	// new_id arguments have no entry here.
	Params []*Param `yaml:"params,omitempty"`
	// The wire tuple in declaration order.
	Args []WireArg `yaml:"args,omitempty"`
	// Objects created, in declaration order.  Ids are allocated in
	// this order before the request is sent.
	NewObjects []*NewObject `yaml:"new-objects,omitempty"`
}

type Event struct {
	Name        string              `yaml:"name"`
	Opcode      uint16              `yaml:"opcode"`
	Since       int                 `yaml:"since"`
	Description *schema.Description `yaml:"description,omitempty"`
	Fields      []*Param            `yaml:"fields,omitempty"`
}

// Opcode counters of one interface.  A fresh value is used for every
// interface, so numbering is a pure function of declaration order.
type opcodes struct {
	requests, events uint16
}

func (o *opcodes) request() uint16 {
	n := o.requests
	o.requests++
	return n
}

func (o *opcodes) event() uint16 {
	n := o.events
	o.events++
	return n
}

type binder struct {
	res   *schema.Resolver
	proto string
	diags Diagnostics
}

func (b *binder) mapType(iface *schema.Interface, elem string,
	arg *schema.Arg, pos Position) (Type, bool) {
	t, diag := MapType(b.res, iface, arg, pos)
	if diag != nil {
		diag.Loc = schema.Location{
			Protocol:  b.proto,
			Interface: iface.Name,
			Element:   elem,
		}
		b.diags = append(b.diags, *diag)
	}
	return t, t.Kind != Invalid
}

// Binds every interface of p.  Interface and enum references are
// resolved through r, which should index every protocol of the batch
// p belongs to; a nil r resolves references within p only.  Mapping
// problems do not stop binding and are returned as diagnostics.
func Bind(p *schema.Protocol, r *schema.Resolver) (*File, Diagnostics) {
	if r == nil {
		r = schema.NewResolver(p)
	}
	b := binder{res: r, proto: p.Name}
	f := &File{
		Name:        p.Name,
		Copyright:   p.Copyright,
		Description: p.Description,
	}
	for _, iface := range p.Interfaces {
		f.Interfaces = append(f.Interfaces, b.bindInterface(iface))
	}
	return f, b.diags
}

func (b *binder) bindInterface(iface *schema.Interface) *Interface {
	var ops opcodes
	bi := &Interface{
		Name:        iface.Name,
		Version:     iface.Version,
		Description: iface.Description,
	}
	for _, e := range iface.Enums {
		bi.Enums = append(bi.Enums, bindEnum(e))
	}
	for _, m := range iface.Requests {
		bi.Requests = append(bi.Requests, b.bindRequest(iface, m, ops.request()))
	}
	for _, m := range iface.Events {
		bi.Events = append(bi.Events, b.bindEvent(iface, m, ops.event()))
	}
	return bi
}

func bindEnum(e *schema.Enum) *Enum {
	return &Enum{
		Name:        e.Name,
		Since:       e.Since,
		Bitfield:    e.Bitfield,
		Description: e.Description,
		Entries:     e.Entries,
	}
}

func (b *binder) bindRequest(iface *schema.Interface, m *schema.Message,
	opcode uint16) *Request {
	req := &Request{
		Name:        m.Name,
		Opcode:      opcode,
		Since:       m.Since,
		Destructor:  m.Destructor(),
		Description: m.Description,
	}
	for _, arg := range m.Args {
		t, ok := b.mapType(iface, "request "+m.Name, arg, ParamPos)
		if !ok {
			continue
		}
		switch t.Kind {
		case Omitted, TypeParam:
			kind := WireNewID
			if t.Kind == TypeParam {
				kind = WireNewObject
			}
			req.Args = append(req.Args, WireArg{
				Kind:  kind,
				Index: len(req.NewObjects),
			})
			req.NewObjects = append(req.NewObjects, &NewObject{
				Name: arg.Name,
				Type: t,
			})
			if t.Kind == Omitted {
				continue
			}
		default:
			kind := WirePlain
			if t.Kind == String {
				kind = WireString
			}
			req.Args = append(req.Args, WireArg{
				Kind:  kind,
				Index: len(req.Params),
			})
		}
		req.Params = append(req.Params, &Param{
			Name:    arg.Name,
			Type:    t,
			Summary: arg.Summary,
		})
	}
	return req
}

func (b *binder) bindEvent(iface *schema.Interface, m *schema.Message,
	opcode uint16) *Event {
	ev := &Event{
		Name:        m.Name,
		Opcode:      opcode,
		Since:       m.Since,
		Description: m.Description,
	}
	for _, arg := range m.Args {
		t, ok := b.mapType(iface, "event "+m.Name, arg, FieldPos)
		if !ok {
			continue
		}
		ev.Fields = append(ev.Fields, &Param{
			Name:    arg.Name,
			Type:    t,
			Summary: arg.Summary,
		})
	}
	return ev
}
