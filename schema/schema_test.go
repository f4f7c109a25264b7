package schema

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/txtar"
)

func loadGreeter(t *testing.T) *Protocol {
	t.Helper()
	p, err := Load(filepath.Join("..", "example", "greeter", "greeter.xml"))
	qt.Assert(t, qt.IsNil(err))
	return p
}

func TestLoadGreeter(t *testing.T) {
	p := loadGreeter(t)
	qt.Assert(t, qt.Equals(p.Name, "greeter"))
	qt.Assert(t, qt.Equals(p.Description.Summary,
		"a toy protocol for trying out bindings"))
	qt.Assert(t, qt.HasLen(p.Interfaces, 3))

	g := p.Interface("greeter")
	qt.Assert(t, qt.IsNotNil(g))
	qt.Check(t, qt.Equals(g.Version, 1))
	qt.Check(t, qt.Equals(g.Requests[0].Name, "greet"))
	qt.Check(t, qt.Equals(g.Requests[1].Name, "make_friend"))
	qt.Check(t, qt.DeepEquals(g.Requests[1].Args[0], &Arg{
		Name:      "new_friend",
		Type:      NewID,
		TypeName:  "new_id",
		Interface: "friend",
	}))
	qt.Check(t, qt.Equals(g.Events[0].Args[0].Type, String))

	f := p.Interface("friend")
	qt.Check(t, qt.Equals(f.Version, 2))
	qt.Check(t, qt.IsTrue(f.Requests[0].Destructor()))
	qt.Check(t, qt.Equals(f.Requests[1].Since, 2))
	qt.Check(t, qt.Equals(f.Requests[1].Args[1].Enum, "greeter.mood"))
	qt.Check(t, qt.IsTrue(f.Requests[2].Args[0].Nullable))
	qt.Check(t, qt.HasLen(f.Events[1].Args, 0))

	var values []string
	for _, e := range f.Enum("gesture").Entries {
		values = append(values, e.Value)
	}
	qt.Check(t, qt.DeepEquals(values, []string{"0", "1", "1", "0x10"}))
	qt.Check(t, qt.Equals(f.Enum("gesture").Entries[3].Since, 2))
}

func TestYAMLMatchesXML(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "yaml.txtar"))
	qt.Assert(t, qt.IsNil(err))
	files := map[string][]byte{}
	for _, f := range ar.Files {
		files[f.Name] = f.Data
	}
	px, err := LoadXML("greeter.xml", files["greeter.xml"])
	qt.Assert(t, qt.IsNil(err))
	py, err := LoadYAML("greeter.yaml", files["greeter.yaml"])
	qt.Assert(t, qt.IsNil(err))
	if diff := cmp.Diff(px, py); diff != "" {
		t.Errorf("XML and YAML models differ (-xml +yaml):\n%s", diff)
	}
	qt.Check(t, qt.Equals(py.Interfaces[0].Enums[0].Entries[2].Value, "0x1"))
}

func TestUnsupportedTagLoads(t *testing.T) {
	p, err := LoadXML("", []byte(`<protocol name="p">
  <interface name="i" version="1">
    <request name="r"><arg name="x" type="float"/></request>
  </interface>
</protocol>`))
	qt.Assert(t, qt.IsNil(err))
	arg := p.Interfaces[0].Requests[0].Args[0]
	qt.Check(t, qt.Equals(arg.Type, Invalid))
	qt.Check(t, qt.Equals(arg.TypeName, "float"))
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{{
		name:  "NoProtocolName",
		input: `<protocol><interface name="i" version="1"/></protocol>`,
		err:   `x.xml: missing required attribute protocol name`,
	}, {
		name:  "NoVersion",
		input: `<protocol name="p"><interface name="i"/></protocol>`,
		err:   `x.xml: p/i: missing required attribute version`,
	}, {
		name:  "BadVersion",
		input: `<protocol name="p"><interface name="i" version="zero"/></protocol>`,
		err:   `x.xml: p/i: version must be a positive integer, not "zero"`,
	}, {
		name: "BadEntry",
		input: `<protocol name="p"><interface name="i" version="1">
<enum name="e"><entry name="a" value="-1"/></enum>
</interface></protocol>`,
		err: `x.xml: p/i/enum e/entry a: value "-1" is not an unsigned 32-bit integer`,
	}, {
		name: "NoArgType",
		input: `<protocol name="p"><interface name="i" version="1">
<event name="ev"><arg name="a"/></event>
</interface></protocol>`,
		err: `x.xml: p/i/event ev/arg a: missing required attribute type`,
	}, {
		name: "BadAllowNull",
		input: `<protocol name="p"><interface name="i" version="1">
<request name="r"><arg name="a" type="string" allow-null="yes"/></request>
</interface></protocol>`,
		err: `x.xml: p/i/request r/arg a: allow-null must be true or false, not "yes"`,
	}, {
		name: "DuplicateInterface",
		input: `<protocol name="p"><interface name="i" version="1"/>
<interface name="i" version="2"/></protocol>`,
		err: `x.xml: p/i: duplicate interface`,
	}, {
		name:  "NotAProtocol",
		input: `<interface name="i" version="1"/>`,
		err:   `x.xml: expected element type <protocol> but have <interface>`,
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := LoadXML("x.xml", []byte(test.input))
			qt.Assert(t, qt.IsNil(p))
			qt.Assert(t, qt.ErrorMatches(err, regexp.QuoteMeta(test.err)))
			qt.Check(t, qt.ErrorAs(err, new(Errors)))
		})
	}
}

func TestYAMLUnknownKey(t *testing.T) {
	_, err := LoadYAML("x.yaml", []byte("name: p\ninterfacez: []\n"))
	qt.Assert(t, qt.ErrorMatches(err, `(?s)x.yaml: yaml: .*interfacez.*`))
}

func TestResolver(t *testing.T) {
	p := loadGreeter(t)
	r := NewResolver(p)
	friend, _ := r.Interface("friend")

	owner, e, ok := r.Enum(friend, "greeter.mood")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Check(t, qt.Equals(owner.Name, "greeter"))
	qt.Check(t, qt.Equals(e.Name, "mood"))

	_, e, ok = r.Enum(friend, "gesture")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Check(t, qt.Equals(e.Name, "gesture"))

	_, _, ok = r.Enum(friend, "mood")
	qt.Check(t, qt.IsFalse(ok))
	_, _, ok = r.Enum(friend, "nobody.mood")
	qt.Check(t, qt.IsFalse(ok))

	qt.Check(t, qt.Equals(r.Owner("matchmaker"), "greeter"))
	qt.Check(t, qt.Equals(r.Owner("wl_surface"), ""))

	var nilr *Resolver
	_, ok = nilr.Interface("friend")
	qt.Check(t, qt.IsFalse(ok))
}

func TestWireTypeNames(t *testing.T) {
	for tag := Int; tag <= Fd; tag++ {
		qt.Check(t, qt.Equals(ParseWireType(tag.String()), tag))
	}
	qt.Check(t, qt.Equals(ParseWireType("invalid"), Invalid))
}
