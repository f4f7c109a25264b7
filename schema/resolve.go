package schema

import (
	"strings"
)

// Index of the interfaces of a batch of protocols, used to resolve
// the interface and enum references of arguments.  When two
// protocols define the same interface name, the first one wins.  A
// nil *Resolver resolves nothing.
type Resolver struct {
	ifaces map[string]*Interface
	owners map[string]string
}

func NewResolver(protocols ...*Protocol) *Resolver {
	r := &Resolver{
		ifaces: map[string]*Interface{},
		owners: map[string]string{},
	}
	for _, p := range protocols {
		r.Add(p)
	}
	return r
}

// Adds the interfaces of p to the index.
func (r *Resolver) Add(p *Protocol) {
	if p == nil {
		return
	}
	for _, iface := range p.Interfaces {
		if _, ok := r.ifaces[iface.Name]; !ok {
			r.ifaces[iface.Name] = iface
			r.owners[iface.Name] = p.Name
		}
	}
}

func (r *Resolver) Interface(name string) (*Interface, bool) {
	if r == nil {
		return nil, false
	}
	iface, ok := r.ifaces[name]
	return iface, ok
}

// Returns the name of the protocol defining interface name, or "".
func (r *Resolver) Owner(name string) string {
	if r == nil {
		return ""
	}
	return r.owners[name]
}

// Resolves an enum reference as written in an argument's enum
// attribute.  A qualified reference "iface.enum" names an enum of
// another interface; an unqualified one names an enum of from.
func (r *Resolver) Enum(from *Interface, ref string) (*Interface, *Enum, bool) {
	owner := from
	name := ref
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		var ok bool
		if owner, ok = r.Interface(ref[:i]); !ok {
			return nil, nil, false
		}
		name = ref[i+1:]
	}
	if owner == nil {
		return nil, nil, false
	}
	if e := owner.Enum(name); e != nil {
		return owner, e, true
	}
	return nil, nil, false
}
