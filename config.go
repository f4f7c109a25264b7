package wlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xdrpp/wlgen/gogen"
	"github.com/xdrpp/wlgen/ini"
)

const ConfigFileName = "wlgen.conf"

// When no configuration file is named, wlgen searches for one in
// $WLGENDIR/wlgen.conf, then /etc/wlgen.conf, then ../share/wlgen.conf
// (relative to the executable path).  If none of those paths exists,
// it uses the built-in contents specified by this variable.
var DefaultConfigContents = []byte(
	`# The protocols wlgen generates when no wlgen.conf is found.

[generate]
package = protocol
output = .
trim-prefix = wl_

[protocol "wayland"]
path = /usr/share/wayland/wayland.xml

[protocol "xdg-shell"]
path = /usr/share/wayland-protocols/stable/xdg-shell/xdg-shell.xml

[protocol "xdg-decoration-unstable-v1"]
path = /usr/share/wayland-protocols/unstable/xdg-decoration/xdg-decoration-unstable-v1.xml
`)

// Settings of the [generate] section.
type GenerateConfig struct {
	// Package clause of the generated files.
	Package string
	// Directory the generated files go to.
	Output string
	// Prefixes trimmed from interface names; may repeat.
	TrimPrefix []string `ini:"trim-prefix"`
	// Maximum number of protocols processed at once; 0 means no limit.
	Parallel int
}

// One [protocol "name"] section.
type ProtocolConfig struct {
	Name string
	// Schema document, XML or YAML.
	Path string
	// Output file name, overriding the one derived from the
	// protocol name.
	File string
	// Listed but not generated.
	Skip bool
}

type Config struct {
	// The file the configuration came from, or "" for the built-in
	// defaults.
	File      string
	Generate  GenerateConfig
	Protocols []*ProtocolConfig

	generate *ini.GenericSink
	cur      *ProtocolConfig
}

func ValidProtocolName(name string) bool {
	return len(name) > 0 && name[0] != '.' &&
		ini.ValidSubsection(name) && strings.IndexByte(name, '/') == -1
}

// Returns the configured protocol called name, or nil.
func (c *Config) Protocol(name string) *ProtocolConfig {
	for _, p := range c.Protocols {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Replaces the configured protocols with one per schema file, named
// after the file without its extension.
func (c *Config) UseFiles(paths ...string) {
	c.Protocols = nil
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if c.Protocol(name) != nil {
			name = p
		}
		c.Protocols = append(c.Protocols, &ProtocolConfig{Name: name, Path: p})
	}
}

// The generator settings the configuration selects.
func (c *Config) GogenConfig() gogen.Config {
	ret := gogen.Config{Package: c.Generate.Package}
	for _, pre := range c.Generate.TrimPrefix {
		if pre = strings.TrimSpace(pre); pre != "" {
			ret.TrimPrefixes = append(ret.TrimPrefixes, pre)
		} else if ret.TrimPrefixes == nil {
			// "trim-prefix =" turns trimming off
			ret.TrimPrefixes = []string{}
		}
	}
	return ret
}

var generateSection = ini.Section{Section: "generate"}

// The sinks a configuration file is parsed into: [generate] goes
// through a strict GenericSink over c.Generate, everything else
// through c itself.
func (c *Config) sinks() ini.Sinks {
	c.generate = &ini.GenericSink{Sec: &generateSection, Strict: true}
	c.generate.AddStruct(&c.Generate)
	var s ini.Sinks
	s.Push(c.generate)
	s.Push(c)
	return s
}

func (c *Config) StartSection(sec *ini.Section) error {
	c.cur = nil
	switch {
	case sec.Eq(&generateSection):
	case sec.Section == "protocol" && sec.Subsection != nil:
		name := sec.Sub()
		if !ValidProtocolName(name) {
			return ini.BadKey(fmt.Sprintf("invalid protocol name %q", name))
		}
		if c.cur = c.Protocol(name); c.cur == nil {
			c.cur = &ProtocolConfig{Name: name}
			c.Protocols = append(c.Protocols, c.cur)
		}
	default:
		return ini.BadKey(fmt.Sprintf("unknown section %s", sec))
	}
	return nil
}

func (c *Config) Item(ii ini.Item) error {
	if ii.Section == nil {
		return ini.BadKey(fmt.Sprintf("key %s outside any section", ii.Key))
	} else if c.cur == nil {
		// [generate], already handled by c.generate
		return nil
	}
	switch ii.Key {
	case "path":
		c.cur.Path = ii.Val()
	case "file":
		if f := ii.Val(); f != "" && f != filepath.Base(f) {
			return ini.BadValue(fmt.Sprintf("%s: must be a plain file name",
				ii.QKey()))
		}
		c.cur.File = ii.Val()
	case "skip":
		c.cur.Skip = ii.Value == nil || ii.Val() == "true"
	default:
		return ini.BadKey(fmt.Sprintf("unknown key %s", ii.QKey()))
	}
	return nil
}

// Fills in defaults.  Relative schema paths are taken relative to the
// configuration file; a relative output directory stays relative to
// the working directory, so a system-wide wlgen.conf generates into
// the directory wlgen runs in.
func (c *Config) Done() {
	if c.Generate.Package == "" {
		c.Generate.Package = "protocol"
	}
	if c.Generate.Output == "" {
		c.Generate.Output = "."
	}
	if c.File == "" {
		return
	}
	dir := filepath.Dir(c.File)
	for _, p := range c.Protocols {
		if p.Path != "" && !filepath.IsAbs(p.Path) {
			p.Path = filepath.Join(dir, p.Path)
		}
	}
}

// Renders the configuration in wlgen.conf syntax, with paths as
// resolved and values quoted where needed.
func (c *Config) String() string {
	out := strings.Builder{}
	g := &ini.GenericSink{Sec: &generateSection}
	g.AddStruct(&c.Generate)
	out.WriteString(g.String())
	for _, p := range c.Protocols {
		name := p.Name
		sec := ini.Section{Section: "protocol", Subsection: &name}
		fmt.Fprintf(&out, "\n%s\n", sec.String())
		if p.Path != "" {
			fmt.Fprintf(&out, "\tpath = %s\n", ini.EscapeValue(p.Path))
		}
		if p.File != "" {
			fmt.Fprintf(&out, "\tfile = %s\n", ini.EscapeValue(p.File))
		}
		if p.Skip {
			out.WriteString("\tskip = true\n")
		}
	}
	return out.String()
}

// Parses configuration contents.  Relative paths are taken relative
// to the directory of file, unless file is "".
func ParseConfig(file string, contents []byte) (*Config, error) {
	c := &Config{File: file}
	return c.check(ini.ParseContents(c.sinks(), file, contents))
}

func (c *Config) check(err error) (*Config, error) {
	if err != nil {
		return nil, err
	}
	var errs []string
	for _, p := range c.Protocols {
		if p.Path == "" && !p.Skip {
			errs = append(errs, fmt.Sprintf("protocol %s: no path", p.Name))
		}
	}
	if errs != nil {
		name := c.File
		if name == "" {
			name = "(built-in)"
		}
		return nil, fmt.Errorf("%s: %s", name, strings.Join(errs, "; "))
	}
	return c, nil
}

func readConfig(file string) (*Config, error) {
	c := &Config{File: file}
	return c.check(ini.Parse(c.sinks(), file))
}

// The configuration files searched, in order, when none is named.
func ConfigSearchPath() []string {
	var ret []string
	if d, ok := os.LookupEnv("WLGENDIR"); ok && d != "" {
		ret = append(ret, filepath.Join(d, ConfigFileName))
	}
	ret = append(ret, filepath.FromSlash("/etc/"+ConfigFileName))
	if exe, err := os.Executable(); err == nil {
		ret = append(ret, filepath.Join(filepath.Dir(filepath.Dir(exe)),
			"share", ConfigFileName))
	}
	return ret
}

// Loads the configuration in file, or if file is "", the first file
// of ConfigSearchPath that exists, falling back to
// DefaultConfigContents.
func LoadConfig(file string) (*Config, error) {
	if file != "" {
		return readConfig(file)
	}
	for _, conf := range ConfigSearchPath() {
		if fi, err := os.Stat(conf); err == nil && !fi.IsDir() {
			return readConfig(conf)
		}
	}
	return ParseConfig("", DefaultConfigContents)
}
