// Package gogen renders bound protocols as Go source.  Each protocol
// becomes one file holding, per interface, a handle type, its enums,
// one method per request and one accessor per queued event type.
// Generated code calls into package wire at run time.
package gogen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/xdrpp/wlgen/bind"
	"github.com/xdrpp/wlgen/schema"
)

// Import path of the runtime package generated code depends on.
const WirePackage = "github.com/xdrpp/wlgen/wire"

// Name of the generated protocol index file.
const IndexFile = "protocols.go"

var DefaultTrimPrefixes = []string{"wl_"}

type Config struct {
	// Package clause of the generated files.
	Package string
	// Prefixes removed from interface names to form Go type names.
	// Nil means DefaultTrimPrefixes; an empty slice trims nothing.
	TrimPrefixes []string
}

// A set of bound protocols generated into one Go package.  Names are
// assigned once, up front and in protocol order, so that references
// across protocols agree and rendering any file is a pure function
// of the package.  Render may be called concurrently.
type Package struct {
	cfg     Config
	files   []*bind.File
	top     *namer
	methods map[string]*namer
}

// Names every handle method uses.
var handleMethods = []string{
	"ID", "Transport", "InitObject", "InterfaceName", "InterfaceVersion",
}

// Names every payload method uses.
var payloadMethods = []string{
	"XdrTypeName", "XdrPointer", "XdrValue", "XdrMarshal", "XdrRecurse",
}

func NewPackage(cfg Config, files ...*bind.File) *Package {
	if cfg.TrimPrefixes == nil {
		cfg.TrimPrefixes = DefaultTrimPrefixes
	}
	if cfg.Package == "" {
		cfg.Package = "protocol"
	}
	pkg := &Package{
		cfg:     cfg,
		files:   files,
		top:     newNamer("Protocols"),
		methods: make(map[string]*namer),
	}
	for _, f := range files {
		for _, iface := range f.Interfaces {
			pkg.top.claim("iface:"+iface.Name, pkg.typeName(iface.Name))
		}
	}
	for _, f := range files {
		for _, iface := range f.Interfaces {
			pkg.nameInterface(iface)
		}
	}
	return pkg
}

func (pkg *Package) typeName(iface string) string {
	name := iface
	for _, pre := range pkg.cfg.TrimPrefixes {
		if t := strings.TrimPrefix(iface, pre); t != iface && t != "" {
			name = t
			break
		}
	}
	ret := pascalCase(name)
	if ret == "" || (ret[0] >= '0' && ret[0] <= '9') {
		ret = "I" + ret
	}
	return ret
}

func (pkg *Package) nameInterface(iface *bind.Interface) {
	top := pkg.top
	typ, _ := top.lookup("iface:" + iface.Name)
	key := iface.Name + "."
	top.claim("new:"+iface.Name, "New"+typ)
	top.claim("name:"+iface.Name, typ+"Name", typ+"InterfaceName")
	top.claim("version:"+iface.Name, typ+"Version", typ+"InterfaceVersion")
	for _, e := range iface.Enums {
		et := top.claim("enum:"+key+e.Name,
			typ+pascalCase(e.Name), typ+pascalCase(e.Name)+"Enum")
		for _, entry := range e.Entries {
			top.claim("entry:"+key+e.Name+"."+entry.Name,
				et+pascalCase(entry.Name))
		}
	}
	methods := newNamer(handleMethods...)
	pkg.methods[iface.Name] = methods
	for _, r := range iface.Requests {
		n := pascalCase(r.Name)
		top.claim("reqop:"+key+r.Name, typ+n+"Opcode", typ+n+"RequestOpcode")
		if len(r.NewObjects) > 0 {
			top.claim("result:"+key+r.Name, typ+n+"Result")
		}
		if polymorphic(r) {
			top.claim("poly:"+key+r.Name, typ+n)
		} else {
			methods.claim("req:"+r.Name, n)
		}
	}
	for _, ev := range iface.Events {
		n := pascalCase(ev.Name)
		top.claim("evop:"+key+ev.Name, typ+n+"Opcode", typ+n+"EventOpcode")
		top.claim("event:"+key+ev.Name, typ+n+"Event")
		methods.claim("next:"+ev.Name, "Next"+n)
	}
}

func polymorphic(r *bind.Request) bool {
	for _, no := range r.NewObjects {
		if no.Polymorphic() {
			return true
		}
	}
	return false
}

func (pkg *Package) name(key string) string {
	name, ok := pkg.top.lookup(key)
	if !ok {
		panic(fmt.Sprintf("gogen: no name for %s", key))
	}
	return name
}

// Returns the handle type of interface iface, if it belongs to the
// package.
func (pkg *Package) handle(iface string) (string, bool) {
	return pkg.top.lookup("iface:" + iface)
}

// Returns the name of the file f is rendered to.
func FileName(f *bind.File) string {
	return strings.Join(words(f.Name), "_") + "_protocol.go"
}

type emitter struct {
	pkg    *Package
	output strings.Builder
	footer strings.Builder
}

func (e *emitter) printf(str string, args ...interface{}) {
	fmt.Fprintf(&e.output, str, args...)
}

func (e *emitter) xprintf(str string, args ...interface{}) {
	fmt.Fprintf(&e.footer, str, args...)
}

func commentLines(out *strings.Builder, text string) {
	blank := false
	started := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = started
			continue
		}
		if blank {
			out.WriteString("//\n")
			blank = false
		}
		fmt.Fprintf(out, "// %s\n", line)
		started = true
	}
}

// Renders a doc comment.  The first line names the identifier and
// carries the summary; the description text and any notes follow as
// separate paragraphs.
func docComment(ident string, d *schema.Description, notes ...string) string {
	out := &strings.Builder{}
	if d != nil && strings.TrimSpace(d.Summary) != "" {
		fmt.Fprintf(out, "// %s: %s\n", ident,
			strings.Join(strings.Fields(d.Summary), " "))
	} else {
		fmt.Fprintf(out, "// %s\n", ident)
	}
	if d != nil && strings.TrimSpace(d.Text) != "" {
		out.WriteString("//\n")
		commentLines(out, d.Text)
	}
	if len(notes) > 0 {
		out.WriteString("//\n")
		for _, n := range notes {
			commentLines(out, n)
		}
	}
	return out.String()
}

func sinceNote(since int) []string {
	if since > 1 {
		return []string{fmt.Sprintf("Since version %d.", since)}
	}
	return nil
}

// Renders f as a formatted Go source file.  f must be one of the
// files the package was created with.
func (pkg *Package) Render(f *bind.File) ([]byte, error) {
	e := &emitter{pkg: pkg}
	e.printf("// Code generated by wlgen from protocol %s; DO NOT EDIT.\n\n",
		f.Name)
	if f.Copyright != "" {
		commentLines(&e.output, f.Copyright)
		e.printf("\n")
	}
	e.printf(`package %s

import (
	"fmt"

	"github.com/xdrpp/goxdr/xdr"

	%q
)

var _ = fmt.Sprintf
var _ xdr.XdrType
var _ wire.Transport

`, pkg.cfg.Package, WirePackage)
	if f.Description != nil {
		e.printf("%s\n", docComment("Protocol "+f.Name, f.Description))
	}
	for _, iface := range f.Interfaces {
		e.emitInterface(iface)
	}
	e.output.WriteString(e.footer.String())
	src, err := format.Source([]byte(e.output.String()))
	if err != nil {
		return nil, fmt.Errorf("gogen: formatting protocol %s: %w", f.Name, err)
	}
	return src, nil
}

// Renders the index file listing every protocol of the package.
func (pkg *Package) RenderIndex() ([]byte, error) {
	out := &strings.Builder{}
	fmt.Fprintf(out, "// Code generated by wlgen; DO NOT EDIT.\n\n")
	var names []string
	for _, f := range pkg.files {
		names = append(names, f.Name)
	}
	fmt.Fprintf(out, "// Package %s holds generated bindings for the "+
		"Wayland protocols %s.\n", pkg.cfg.Package, strings.Join(names, ", "))
	fmt.Fprintf(out, "package %s\n\nimport %q\n\n", pkg.cfg.Package,
		WirePackage)
	fmt.Fprintf(out, "// Every protocol in this package with its interfaces.\n")
	fmt.Fprintf(out, "var Protocols = []wire.ProtocolInfo{\n")
	for _, f := range pkg.files {
		fmt.Fprintf(out, "\t{\n\t\tName: %q,\n", f.Name)
		fmt.Fprintf(out, "\t\tInterfaces: []wire.InterfaceInfo{\n")
		for _, iface := range f.Interfaces {
			fmt.Fprintf(out, "\t\t\t{Name: %s, Version: %s},\n",
				pkg.name("name:"+iface.Name), pkg.name("version:"+iface.Name))
		}
		fmt.Fprintf(out, "\t\t},\n\t},\n")
	}
	fmt.Fprintf(out, "}\n")
	src, err := format.Source([]byte(out.String()))
	if err != nil {
		return nil, fmt.Errorf("gogen: formatting index: %w", err)
	}
	return src, nil
}

func (e *emitter) emitInterface(iface *bind.Interface) {
	pkg := e.pkg
	typ := pkg.name("iface:" + iface.Name)
	e.printf("%s", docComment(typ, iface.Description,
		fmt.Sprintf("Interface %s, version %d.", iface.Name, iface.Version)))
	e.printf(`type %[1]s struct {
	id wire.ObjectID
	t  wire.Transport
}

const (
	%[2]s = %[3]q
	%[4]s = %[5]d
)

`, typ, pkg.name("name:"+iface.Name), iface.Name,
		pkg.name("version:"+iface.Name), iface.Version)

	if len(iface.Requests) > 0 {
		e.printf("// Request opcodes of %s.\nconst (\n", iface.Name)
		for _, r := range iface.Requests {
			e.printf("\t%s uint16 = %d\n",
				pkg.name("reqop:"+iface.Name+"."+r.Name), r.Opcode)
		}
		e.printf(")\n\n")
	}
	if len(iface.Events) > 0 {
		e.printf("// Event opcodes of %s.\nconst (\n", iface.Name)
		for _, ev := range iface.Events {
			e.printf("\t%s uint16 = %d\n",
				pkg.name("evop:"+iface.Name+"."+ev.Name), ev.Opcode)
		}
		e.printf(")\n\n")
	}

	e.printf(`// Returns a handle for object id on transport t.
func %[2]s(id wire.ObjectID, t wire.Transport) *%[1]s {
	return &%[1]s{id: id, t: t}
}

// Returns the object id, or 0 for a nil handle.
func (p *%[1]s) ID() wire.ObjectID {
	if p == nil {
		return 0
	}
	return p.id
}

func (p *%[1]s) Transport() wire.Transport {
	return p.t
}

func (p *%[1]s) InitObject(id wire.ObjectID, t wire.Transport) {
	p.id, p.t = id, t
}

func (*%[1]s) InterfaceName() string {
	return %[3]s
}

func (*%[1]s) InterfaceVersion() uint32 {
	return %[4]s
}

`, typ, pkg.name("new:"+iface.Name), pkg.name("name:"+iface.Name),
		pkg.name("version:"+iface.Name))

	for _, en := range iface.Enums {
		e.emitEnum(iface, en)
	}
	for _, r := range iface.Requests {
		e.emitRequest(iface, typ, r)
	}
	for _, ev := range iface.Events {
		e.emitEvent(iface, typ, ev)
	}
}

func (e *emitter) emitEnum(iface *bind.Interface, en *bind.Enum) {
	key := iface.Name + "." + en.Name
	typ := e.pkg.name("enum:" + key)
	var notes []string
	if en.Bitfield {
		notes = append(notes, "A bitfield.")
	}
	notes = append(notes, sinceNote(en.Since)...)
	e.printf("%s", docComment(typ, en.Description, notes...))
	e.printf("type %s uint32\n\nconst (\n", typ)
	for _, entry := range en.Entries {
		var doc []string
		if entry.Summary != "" {
			doc = append(doc, strings.Join(strings.Fields(entry.Summary), " "))
		}
		doc = append(doc, sinceNote(entry.Since)...)
		for _, d := range doc {
			e.printf("\t// %s\n", d)
		}
		e.printf("\t%s %s = %s\n", e.pkg.name("entry:"+key+"."+entry.Name),
			typ, entry.Value)
	}
	e.printf(")\n\n")
	if en.Bitfield {
		e.printf(`// Reports whether every bit of f is set in v.
func (v %[1]s) Has(f %[1]s) bool {
	return v&f == f
}

`, typ)
	}

	// Several entries may share a value; the first one names it.
	e.xprintf("var _XdrNames_%s = map[int32]string{\n", typ)
	seen := make(map[uint32]bool)
	for _, entry := range en.Entries {
		v, err := entry.Uint32()
		if err != nil || seen[v] {
			continue
		}
		seen[v] = true
		e.xprintf("\t%d: %q,\n", int32(v), entry.Name)
	}
	e.xprintf("}\n\n")
	e.xprintf("var _XdrValues_%s = map[string]int32{\n", typ)
	seenName := make(map[string]bool)
	for _, entry := range en.Entries {
		v, err := entry.Uint32()
		if err != nil || seenName[entry.Name] {
			continue
		}
		seenName[entry.Name] = true
		e.xprintf("\t%q: %d,\n", entry.Name, int32(v))
	}
	e.xprintf("}\n\n")
	e.xprintf(`func (%[1]s) XdrEnumNames() map[int32]string {
	return _XdrNames_%[1]s
}

func (v %[1]s) String() string {
	if s, ok := _XdrNames_%[1]s[int32(v)]; ok {
		return s
	}
	return fmt.Sprintf("%[1]s#%%d", uint32(v))
}

func (v *%[1]s) Scan(ss fmt.ScanState, _ rune) error {
	tok, err := ss.Token(true, xdr.XdrSymChar)
	if err != nil {
		return err
	}
	stok := string(tok)
	if val, ok := _XdrValues_%[1]s[stok]; ok {
		*v = %[1]s(val)
		return nil
	}
	return xdr.XdrError(fmt.Sprintf("%%s is not a valid %[1]s.", stok))
}

func (v %[1]s) GetU32() uint32 {
	return uint32(v)
}

func (v *%[1]s) SetU32(n uint32) {
	*v = %[1]s(n)
}

func (%[1]s) XdrTypeName() string {
	return %[2]q
}

func (v *%[1]s) XdrPointer() interface{} {
	return v
}

func (v %[1]s) XdrValue() interface{} {
	return v
}

func (v *%[1]s) XdrMarshal(x xdr.XDR, name string) {
	x.Marshal(name, v)
}

type XdrType_%[1]s = *%[1]s

func XDR_%[1]s(v *%[1]s) *%[1]s {
	return v
}

`, typ, key)
}

// Returns the Go type of a parameter or field.  Enum and object
// references to types outside the package fall back to their wire
// representation.
func (e *emitter) goType(t bind.Type) string {
	switch t.Kind {
	case bind.Int32:
		return "int32"
	case bind.Uint32:
		return "uint32"
	case bind.Fixed:
		return "wire.Fixed"
	case bind.Fd:
		return "wire.Fd"
	case bind.Bytes:
		return "[]byte"
	case bind.String:
		if t.Nullable {
			return "*string"
		}
		return "string"
	case bind.OwnedString:
		return "wire.String"
	case bind.ObjectID:
		return "wire.ObjectID"
	case bind.Object, bind.Omitted:
		if h, ok := e.pkg.handle(t.Interface); ok && t.Interface != "" {
			return "*" + h
		}
		return "wire.ObjectID"
	case bind.TypeParam:
		return "*T"
	case bind.EnumKind:
		if et, ok := e.enumType(t); ok {
			return et
		}
		return e.goType(bind.Type{Kind: t.Base})
	}
	panic(fmt.Sprintf("gogen: no Go type for %s", t))
}

func (e *emitter) enumType(t bind.Type) (string, bool) {
	return e.pkg.top.lookup("enum:" + t.EnumOwner + "." + t.EnumName)
}

// The expression handing parameter name of type t to SendRequest.
func (e *emitter) paramArg(name string, t bind.Type) string {
	switch t.Kind {
	case bind.Int32:
		return fmt.Sprintf("xdr.XDR_int32(&%s)", name)
	case bind.Uint32:
		return fmt.Sprintf("xdr.XDR_uint32(&%s)", name)
	case bind.Fixed, bind.Fd, bind.ObjectID:
		return "&" + name
	case bind.Bytes:
		return fmt.Sprintf("wire.Bytes(&%s)", name)
	case bind.String:
		if t.Nullable {
			return fmt.Sprintf("wire.OptStr(%s)", name)
		}
		return fmt.Sprintf("wire.Str(%s)", name)
	case bind.Object:
		if _, ok := e.pkg.handle(t.Interface); ok {
			return fmt.Sprintf("wire.ObjectOf(%s)", name)
		}
		return "&" + name
	case bind.EnumKind:
		if _, ok := e.enumType(t); ok {
			return "&" + name
		}
		return e.paramArg(name, bind.Type{Kind: t.Base})
	}
	panic(fmt.Sprintf("gogen: cannot send %s", t))
}

// The marshal expression for payload field v.name of type t.
func (e *emitter) fieldArg(name string, t bind.Type) string {
	field := "v." + name
	switch t.Kind {
	case bind.Int32:
		return fmt.Sprintf("xdr.XDR_int32(&%s)", field)
	case bind.Uint32:
		return fmt.Sprintf("xdr.XDR_uint32(&%s)", field)
	case bind.Fixed, bind.Fd, bind.OwnedString, bind.ObjectID:
		return "&" + field
	case bind.Bytes:
		return fmt.Sprintf("wire.Bytes(&%s)", field)
	case bind.Object:
		if h, ok := e.pkg.handle(t.Interface); ok {
			return fmt.Sprintf("wire.Ref[%s](&%s)", h, field)
		}
		return "&" + field
	case bind.EnumKind:
		if _, ok := e.enumType(t); ok {
			return "&" + field
		}
		return e.fieldArg(name, bind.Type{Kind: t.Base})
	}
	panic(fmt.Sprintf("gogen: cannot receive %s", t))
}

func paramNotes(ps []*bind.Param, names []string) []string {
	var notes []string
	for i, p := range ps {
		if p.Summary != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", names[i],
				strings.Join(strings.Fields(p.Summary), " ")))
		}
	}
	return notes
}

func (e *emitter) emitRequest(iface *bind.Interface, typ string,
	r *bind.Request) {
	pkg := e.pkg
	key := iface.Name + "." + r.Name
	opcode := pkg.name("reqop:" + key)
	poly := polymorphic(r)

	taken := make(map[string]bool)
	params := make([]string, len(r.Params))
	var sig []string
	if poly {
		sig = append(sig, "p *"+typ)
	}
	for i, p := range r.Params {
		if p.Type.Kind == bind.TypeParam {
			params[i] = escapeLocal(camelCase(p.Name)+"Version", taken)
			sig = append(sig, params[i]+" uint32")
			continue
		}
		params[i] = escapeLocal(camelCase(p.Name), taken)
		sig = append(sig, params[i]+" "+e.goType(p.Type))
	}
	ids := make([]string, len(r.NewObjects))
	for i, no := range r.NewObjects {
		ids[i] = escapeLocal(camelCase(no.Name)+"ID", taken)
	}
	// The version parameter of each polymorphic new object.
	versions := make(map[int]string)
	for i, p := range r.Params {
		if p.Type.Kind != bind.TypeParam {
			continue
		}
		for j, no := range r.NewObjects {
			if no.Name == p.Name && no.Polymorphic() {
				versions[j] = params[i]
			}
		}
	}

	var result string
	fields := make([]string, len(r.NewObjects))
	if len(r.NewObjects) > 0 {
		result = pkg.name("result:" + key)
		fn := newNamer()
		for i, no := range r.NewObjects {
			fields[i] = fn.claim(no.Name, pascalCase(no.Name))
		}
		tparams := ""
		if poly {
			tparams = "[T any]"
		}
		e.printf("// The objects created by %s.%s.\n", iface.Name, r.Name)
		e.printf("type %s%s struct {\n", result, tparams)
		for i, no := range r.NewObjects {
			e.printf("\t%s %s\n", fields[i], e.goType(no.Type))
		}
		e.printf("}\n\n")
		if poly {
			result += "[T]"
		}
	}

	var notes []string
	if r.Destructor {
		notes = append(notes, "Destroys the object.")
	}
	notes = append(notes, sinceNote(r.Since)...)
	notes = append(notes, paramNotes(r.Params, params)...)

	var ret string
	switch {
	case result != "":
		ret = fmt.Sprintf("(*%s, error)", result)
	default:
		ret = "error"
	}
	if poly {
		name := pkg.name("poly:" + key)
		e.printf("%s", docComment(name, r.Description, notes...))
		e.printf("func %s[T any, P wire.Object[T]](%s) %s {\n", name,
			strings.Join(sig, ", "), ret)
		e.printf("\tvar zero P\n")
	} else {
		name := pkg.methods[iface.Name].names["req:"+r.Name]
		e.printf("%s", docComment(name, r.Description, notes...))
		e.printf("func (p *%s) %s(%s) %s {\n", typ, name,
			strings.Join(sig, ", "), ret)
	}

	for _, id := range ids {
		e.printf("\t%s, err := p.t.AllocateID()\n", id)
		e.printf("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	}

	args := []string{"p.id", opcode}
	for _, wa := range r.Args {
		switch wa.Kind {
		case bind.WirePlain, bind.WireString:
			p := r.Params[wa.Index]
			args = append(args, e.paramArg(params[wa.Index], p.Type))
		case bind.WireNewID:
			args = append(args, "&"+ids[wa.Index])
		case bind.WireNewObject:
			args = append(args, fmt.Sprintf(
				"&wire.NewObject{Interface: zero.InterfaceName(), "+
					"Version: %s, ID: %s}", versions[wa.Index], ids[wa.Index]))
		}
	}
	send := fmt.Sprintf("p.t.SendRequest(%s)", strings.Join(args, ", "))

	if result == "" {
		e.printf("\treturn %s\n}\n\n", send)
		return
	}
	e.printf("\tif err := %s; err != nil {\n\t\treturn nil, err\n\t}\n", send)
	e.printf("\treturn &%s{\n", result)
	for i, no := range r.NewObjects {
		var val string
		switch {
		case no.Polymorphic():
			val = fmt.Sprintf("wire.NewHandle[T, P](%s, p.t)", ids[i])
		case e.goType(no.Type) == "wire.ObjectID":
			val = ids[i]
		default:
			val = fmt.Sprintf("%s(%s, p.t)", pkg.name("new:"+no.Type.Interface),
				ids[i])
		}
		e.printf("\t\t%s: %s,\n", fields[i], val)
	}
	e.printf("\t}, nil\n}\n\n")
}

func (e *emitter) emitEvent(iface *bind.Interface, typ string, ev *bind.Event) {
	pkg := e.pkg
	key := iface.Name + "." + ev.Name
	payload := pkg.name("event:" + key)
	opcode := pkg.name("evop:" + key)
	accessor := pkg.methods[iface.Name].names["next:"+ev.Name]

	fn := newNamer(payloadMethods...)
	fields := make([]string, len(ev.Fields))
	for i, f := range ev.Fields {
		fields[i] = fn.claim(f.Name, pascalCase(f.Name), "Arg"+pascalCase(f.Name))
	}

	e.printf("%s", docComment(payload, ev.Description, sinceNote(ev.Since)...))
	e.printf("type %s struct {\n", payload)
	for i, f := range ev.Fields {
		if f.Summary != "" {
			e.printf("\t// %s\n", strings.Join(strings.Fields(f.Summary), " "))
		}
		e.printf("\t%s %s\n", fields[i], e.goType(f.Type))
	}
	e.printf("}\n\n")

	e.printf(`// Returns the oldest queued %[4]s event, or false if none is queued.
func (p *%[1]s) %[2]s() (*%[3]s, bool, error) {
	var ev %[3]s
	if ok, err := p.t.NextEvent(p.id, %[5]s, &ev); !ok || err != nil {
		return nil, false, err
	}
	return &ev, true, nil
}

`, typ, accessor, payload, ev.Name, opcode)

	e.xprintf(`func (%[1]s) XdrTypeName() string {
	return %[2]q
}

func (v *%[1]s) XdrPointer() interface{} {
	return v
}

func (v %[1]s) XdrValue() interface{} {
	return v
}

func (v *%[1]s) XdrMarshal(x xdr.XDR, name string) {
	x.Marshal(name, v)
}

func (v *%[1]s) XdrRecurse(x xdr.XDR, name string) {
`, payload, key)
	if len(ev.Fields) > 0 {
		e.xprintf("\tif name != \"\" {\n\t\tname = x.Sprintf(\"%%s.\", name)\n\t}\n")
	}
	for i, f := range ev.Fields {
		e.xprintf("\tx.Marshal(x.Sprintf(\"%%s%s\", name), %s)\n", f.Name,
			e.fieldArg(fields[i], f.Type))
	}
	e.xprintf("}\n\n")
}
