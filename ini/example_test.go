package ini_test

import (
	"fmt"

	"github.com/xdrpp/wlgen/ini"
)

type dumper struct{}

func (dumper) Item(item ini.Item) error {
	if item.Value == nil {
		fmt.Printf("%s\n", item.QKey())
	} else {
		fmt.Printf("%s = %s\n", item.QKey(), *item.Value)
	}
	return nil
}

var contents = []byte(`
# keys before the first section have no section
bare-key = bare value
[generate]
package = proto
[protocol "xdg-shell"]
path = /usr/share/wayland-protocols/stable/xdg-shell/xdg-shell.xml
skip # a bare key
file = " xdg.go"   ; this one started with a space
`)

func ExampleParseContents() {
	ini.ParseContents(dumper{}, "(test)", contents)
	// Output:
	// bare-key = bare value
	// generate.package = proto
	// protocol.xdg-shell.path = /usr/share/wayland-protocols/stable/xdg-shell/xdg-shell.xml
	// protocol.xdg-shell.skip
	// protocol.xdg-shell.file =  xdg.go
}

type settings struct {
	Package    string
	Parallel   int
	Verbose    bool
	TrimPrefix []string `ini:"trim-prefix"`
	Scratch    string   `ini:"-"`
}

func ExampleGenericSink() {
	conf := []byte(`
[generate]
	package = proto
	parallel = 4
	verbose
	trim-prefix = wl_
	trim-prefix = xdg_
`)
	var s settings
	gs := &ini.GenericSink{Sec: &ini.Section{Section: "generate"}}
	gs.AddStruct(&s)
	if err := ini.ParseContents(gs, "(test)", conf); err != nil {
		fmt.Println(err)
	}
	fmt.Print(gs)
	// Output:
	// [generate]
	// 	package = proto
	// 	parallel = 4
	// 	trim-prefix = wl_
	// 	trim-prefix = xdg_
	// 	verbose = true
}
