package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The document shapes shared by the XML and YAML front ends.  Every
// attribute is read as a string so that missing and malformed values
// can be reported with a location instead of a decoder error.

type docDescription struct {
	Summary string `xml:"summary,attr" yaml:"summary"`
	Text    string `xml:",chardata" yaml:"text"`
}

type docArg struct {
	Name      string `xml:"name,attr" yaml:"name"`
	Type      string `xml:"type,attr" yaml:"type"`
	Summary   string `xml:"summary,attr" yaml:"summary"`
	Interface string `xml:"interface,attr" yaml:"interface"`
	AllowNull string `xml:"allow-null,attr" yaml:"allow-null"`
	Enum      string `xml:"enum,attr" yaml:"enum"`
}

type docMessage struct {
	Name        string          `xml:"name,attr" yaml:"name"`
	Type        string          `xml:"type,attr" yaml:"type"`
	Since       string          `xml:"since,attr" yaml:"since"`
	Description *docDescription `xml:"description" yaml:"description"`
	Args        []docArg        `xml:"arg" yaml:"args"`
}

type docEntry struct {
	Name    string `xml:"name,attr" yaml:"name"`
	Value   string `xml:"value,attr" yaml:"value"`
	Summary string `xml:"summary,attr" yaml:"summary"`
	Since   string `xml:"since,attr" yaml:"since"`
}

type docEnum struct {
	Name        string          `xml:"name,attr" yaml:"name"`
	Since       string          `xml:"since,attr" yaml:"since"`
	Bitfield    string          `xml:"bitfield,attr" yaml:"bitfield"`
	Description *docDescription `xml:"description" yaml:"description"`
	Entries     []docEntry      `xml:"entry" yaml:"entries"`
}

type docInterface struct {
	Name        string          `xml:"name,attr" yaml:"name"`
	Version     string          `xml:"version,attr" yaml:"version"`
	Description *docDescription `xml:"description" yaml:"description"`
	Requests    []docMessage    `xml:"request" yaml:"requests"`
	Events      []docMessage    `xml:"event" yaml:"events"`
	Enums       []docEnum       `xml:"enum" yaml:"enums"`
}

type docProtocol struct {
	XMLName     xml.Name        `xml:"protocol" yaml:"-"`
	Name        string          `xml:"name,attr" yaml:"name"`
	Copyright   string          `xml:"copyright" yaml:"copyright"`
	Description *docDescription `xml:"description" yaml:"description"`
	Interfaces  []docInterface  `xml:"interface" yaml:"interfaces"`
}

// Parses a Wayland XML protocol document.  The file argument is used
// only for error messages.  On failure the error is of type Errors.
func LoadXML(file string, data []byte) (*Protocol, error) {
	var doc docProtocol
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, Errors{{File: file, Msg: err.Error()}}
	}
	return build(file, &doc)
}

// Parses the YAML rendition of a protocol document, which uses the
// XML attribute names as keys and plural keys (interfaces, requests,
// events, enums, entries, args) for child elements.  Unknown keys
// are structural errors.
func LoadYAML(file string, data []byte) (*Protocol, error) {
	var doc docProtocol
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, Errors{{File: file, Msg: err.Error()}}
	}
	return build(file, &doc)
}

// Reads and parses a protocol document, choosing the front end from
// the file extension (.yaml and .yml select YAML, anything else XML).
func Load(path string) (*Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, data)
	default:
		return LoadXML(path, data)
	}
}

type builder struct {
	file string
	errs Errors
}

func (b *builder) errorf(loc Location, format string, args ...interface{}) {
	b.errs = append(b.errs, Error{
		File: b.file,
		Loc:  loc,
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (b *builder) required(loc Location, attr, val string) string {
	if val == "" {
		b.errorf(loc, "missing required attribute %s", attr)
	}
	return val
}

func (b *builder) boolean(loc Location, attr, val string) bool {
	switch val {
	case "", "false":
		return false
	case "true":
		return true
	}
	b.errorf(loc, "%s must be true or false, not %q", attr, val)
	return false
}

// Parses an optional positive integer attribute such as since or
// version.  Absent values yield def.
func (b *builder) positive(loc Location, attr, val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		b.errorf(loc, "%s must be a positive integer, not %q", attr, val)
		return def
	}
	return n
}

func description(d *docDescription) *Description {
	if d == nil {
		return nil
	}
	return &Description{Summary: d.Summary, Text: d.Text}
}

func build(file string, doc *docProtocol) (*Protocol, error) {
	b := builder{file: file}
	p := &Protocol{
		Name:        doc.Name,
		Copyright:   doc.Copyright,
		Description: description(doc.Description),
	}
	b.required(Location{}, "protocol name", doc.Name)

	seen := map[string]bool{}
	for i := range doc.Interfaces {
		di := &doc.Interfaces[i]
		loc := Location{Protocol: p.Name, Interface: di.Name}
		if di.Name == "" {
			loc.Interface = fmt.Sprintf("interface #%d", i)
		}
		b.required(loc, "name", di.Name)
		if di.Name != "" && seen[di.Name] {
			b.errorf(loc, "duplicate interface")
		}
		seen[di.Name] = true
		iface := &Interface{
			Name:        di.Name,
			Description: description(di.Description),
		}
		if b.required(loc, "version", di.Version) != "" {
			iface.Version = b.positive(loc, "version", di.Version, 1)
		}
		for j := range di.Enums {
			iface.Enums = append(iface.Enums, b.enum(loc, &di.Enums[j]))
		}
		for j := range di.Requests {
			iface.Requests = append(iface.Requests,
				b.message(loc, "request", &di.Requests[j]))
		}
		for j := range di.Events {
			iface.Events = append(iface.Events,
				b.message(loc, "event", &di.Events[j]))
		}
		p.Interfaces = append(p.Interfaces, iface)
	}

	if b.errs != nil {
		return nil, b.errs
	}
	return p, nil
}

func (b *builder) enum(iloc Location, de *docEnum) *Enum {
	loc := iloc
	loc.Element = "enum " + de.Name
	b.required(loc, "name", de.Name)
	e := &Enum{
		Name:        de.Name,
		Since:       b.positive(loc, "since", de.Since, 1),
		Bitfield:    b.boolean(loc, "bitfield", de.Bitfield),
		Description: description(de.Description),
	}
	for _, dent := range de.Entries {
		eloc := loc
		eloc.Element += "/entry " + dent.Name
		b.required(eloc, "name", dent.Name)
		ent := &Entry{
			Name:    dent.Name,
			Value:   dent.Value,
			Summary: dent.Summary,
			Since:   b.positive(eloc, "since", dent.Since, e.Since),
		}
		if b.required(eloc, "value", dent.Value) != "" {
			if _, err := ent.Uint32(); err != nil {
				b.errorf(eloc, "value %q is not an unsigned 32-bit integer",
					dent.Value)
			}
		}
		e.Entries = append(e.Entries, ent)
	}
	return e
}

func (b *builder) message(iloc Location, kind string, dm *docMessage) *Message {
	loc := iloc
	loc.Element = kind + " " + dm.Name
	b.required(loc, "name", dm.Name)
	switch dm.Type {
	case "", "destructor":
	default:
		b.errorf(loc, "unknown %s type %q", kind, dm.Type)
	}
	m := &Message{
		Name:        dm.Name,
		Type:        dm.Type,
		Since:       b.positive(loc, "since", dm.Since, 1),
		Description: description(dm.Description),
	}
	for _, da := range dm.Args {
		aloc := loc
		aloc.Element += "/arg " + da.Name
		b.required(aloc, "name", da.Name)
		b.required(aloc, "type", da.Type)
		m.Args = append(m.Args, &Arg{
			Name:      da.Name,
			Type:      ParseWireType(da.Type),
			TypeName:  da.Type,
			Nullable:  b.boolean(aloc, "allow-null", da.AllowNull),
			Enum:      da.Enum,
			Interface: da.Interface,
			Summary:   da.Summary,
		})
	}
	return m
}
