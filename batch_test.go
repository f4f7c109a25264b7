package wlgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/rogpeppe/go-internal/txtar"

	"github.com/xdrpp/wlgen/gogen"
)

func greeterPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("example", "greeter", "greeter.xml"))
	qt.Assert(t, qt.IsNil(err))
	return p
}

// Writes a wlgen.conf into a fresh directory and loads it.  Output
// goes to the same directory unless the file says otherwise.
func writeConfig(t *testing.T, format string, args ...interface{}) *Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	qt.Assert(t, qt.IsNil(os.WriteFile(path,
		[]byte(fmt.Sprintf(format, args...)), 0666)))
	c, err := LoadConfig(path)
	qt.Assert(t, qt.IsNil(err))
	if c.Generate.Output == "." {
		c.Generate.Output = dir
	}
	return c
}

func TestBatchRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := writeConfig(t, `[generate]
package = greeter
output = %s
parallel = 2

[protocol "greeter"]
path = %s

[protocol "broken"]
path = broken.xml

[protocol "later"]
path = later.xml
skip
`, out, greeterPath(t))
	dir := filepath.Dir(c.File)
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "broken.xml"),
		[]byte(`<protocol name="broken"><interface name="x">`), 0666)))

	var mu sync.Mutex
	var log []string
	b := &Batch{Config: c, Logf: func(f string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		log = append(log, fmt.Sprintf(f, args...))
	}}
	rep, err := b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(rep.Results, 2))
	qt.Check(t, qt.Equals(rep.Failed(), 1))
	qt.Check(t, qt.IsNotNil(rep.Results[1].Err))
	qt.Check(t, qt.Equals(rep.Results[1].Output, ""))

	greeter := rep.Results[0]
	qt.Assert(t, qt.IsNil(greeter.Err))
	qt.Check(t, qt.HasLen(greeter.Diagnostics, 0))
	qt.Check(t, qt.Equals(greeter.Output,
		filepath.Join(out, "greeter_protocol.go")))
	qt.Check(t, qt.DeepEquals(rep.Changed(), []string{
		greeter.Output, filepath.Join(out, gogen.IndexFile),
	}))
	qt.Check(t, qt.SliceContains(log, "later: skipped"))

	src, err := os.ReadFile(greeter.Output)
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.StringContains(string(src), "package greeter\n"))
	qt.Check(t, qt.StringContains(string(src),
		"func (p *Greeter) Greet(name string) error {"))
	index, err := os.ReadFile(filepath.Join(out, gogen.IndexFile))
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.StringContains(string(index), `"greeter"`))

	// A second run leaves identical files alone.
	rep, err = b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.HasLen(rep.Changed(), 0))
}

func TestBatchCheck(t *testing.T) {
	c := writeConfig(t, "[generate]\npackage = greeter\n"+
		"[protocol \"greeter\"]\npath = %s\n", greeterPath(t))
	b := &Batch{Config: c, Check: true}
	rep, err := b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.HasLen(rep.Changed(), 2))
	_, err = os.Stat(rep.Results[0].Output)
	qt.Check(t, qt.ErrorIs(err, os.ErrNotExist))

	b.Check = false
	_, err = b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	b.Check = true
	rep, err = b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.HasLen(rep.Changed(), 0))

	out := rep.Results[0].Output
	qt.Assert(t, qt.IsNil(os.WriteFile(out, []byte("package greeter\n"), 0666)))
	rep, err = b.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.DeepEquals(rep.Changed(), []string{out}))
}

func TestBatchRedefinition(t *testing.T) {
	path := greeterPath(t)
	c := writeConfig(t, "[protocol \"first\"]\npath = %s\n"+
		"[protocol \"second\"]\npath = %s\nfile = again.go\n", path, path)
	results, err := (&Batch{Config: c}).Bind(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(results, 2))
	qt.Check(t, qt.IsNil(results[0].Err))
	qt.Check(t, qt.IsNotNil(results[0].File))
	qt.Check(t, qt.ErrorMatches(results[1].Err, `(?s).*greeter/greeter: `+
		`interface already defined by protocol greeter.*`))
	qt.Check(t, qt.IsNil(results[1].File))
}

func TestBatchCrossProtocol(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("gogen", "testdata", "cross.txtar"))
	qt.Assert(t, qt.IsNil(err))
	var conf strings.Builder
	conf.WriteString("[generate]\npackage = proto\n")
	for _, f := range ar.Files {
		name := strings.TrimSuffix(f.Name, ".xml")
		fmt.Fprintf(&conf, "[protocol %q]\npath = %s\n", name, f.Name)
	}
	c := writeConfig(t, "%s", conf.String())
	dir := filepath.Dir(c.File)
	for _, f := range ar.Files {
		qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, f.Name),
			f.Data, 0666)))
	}

	rep, err := (&Batch{Config: c}).Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(rep.Failed(), 0))
	for _, r := range rep.Results {
		qt.Check(t, qt.HasLen(r.Diagnostics, 0), qt.Commentf("%s", r.Name))
	}
	src, err := os.ReadFile(rep.Results[0].Output)
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.StringContains(string(src),
		"func (p *Shape) Paint(color *Palette, mode PaletteMode) error {"))
}

func TestBatchCanceled(t *testing.T) {
	c := writeConfig(t, "[protocol \"greeter\"]\npath = %s\n", greeterPath(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Batch{Config: c}).Run(ctx)
	qt.Check(t, qt.ErrorIs(err, context.Canceled))
}
