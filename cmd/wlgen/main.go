// Command wlgen generates Go bindings from Wayland protocol
// descriptions.
//
//	wlgen [flags] generate [schema.xml ...]
//	wlgen [flags] check [schema.xml ...]
//	wlgen [flags] dump [schema.xml ...]
//	wlgen [flags] config [schema.xml ...]
//
// Without schema arguments the protocols come from wlgen.conf, which
// is looked for in $WLGENDIR, /etc and ../share next to the
// executable, in that order.  generate writes one file per protocol
// plus protocols.go, check exits non-zero if those files are out of
// date, dump prints the bound form of each protocol as YAML, and config
// prints the configuration the other subcommands would use.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/xdrpp/wlgen"
	"github.com/xdrpp/wlgen/bind"
)

var progname = "wlgen"

// Returned once the reason for failing has been printed.
var errPrinted = errors.New("terminating because of errors")

type options struct {
	config   string
	pkg      string
	output   string
	parallel int
	verbose  bool
}

func (o *options) addFlags(f *pflag.FlagSet) {
	f.StringVarP(&o.config, "config", "c", "",
		"read `file` instead of searching for "+wlgen.ConfigFileName)
	f.StringVarP(&o.pkg, "package", "p", "",
		"package clause of the generated files")
	f.StringVarP(&o.output, "output", "o", "",
		"write generated files to `dir`")
	f.IntVarP(&o.parallel, "parallel", "j", -1,
		"process at most `n` protocols at once (0 for no limit)")
	f.BoolVarP(&o.verbose, "verbose", "v", false,
		"report progress on standard error")
}

// Writes diagnostics to standard error, in color when it is a
// terminal.  Safe for concurrent use.
type console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func (c *console) line(color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color && color != "" {
		fmt.Fprintf(c.w, "%s%s%s\n", color, msg, colorReset)
	} else {
		fmt.Fprintln(c.w, msg)
	}
}

func (c *console) error(err error) {
	for _, l := range strings.Split(err.Error(), "\n") {
		c.line(colorRed, "%s: %s", progname, l)
	}
}

func (c *console) warn(source string, d bind.Diagnostic) {
	c.line(colorYellow, "%s: warning: %s", source, d)
}

type app struct {
	opts options
	con  *console
	out  io.Writer
}

func (a *app) config(args []string) (*wlgen.Config, error) {
	conf, err := wlgen.LoadConfig(a.opts.config)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		conf.UseFiles(args...)
	}
	if a.opts.pkg != "" {
		conf.Generate.Package = a.opts.pkg
	}
	if a.opts.output != "" {
		conf.Generate.Output = a.opts.output
	}
	if a.opts.parallel >= 0 {
		conf.Generate.Parallel = a.opts.parallel
	}
	return conf, nil
}

func (a *app) batch(args []string, check bool) (*wlgen.Batch, error) {
	conf, err := a.config(args)
	if err != nil {
		return nil, err
	}
	b := &wlgen.Batch{Config: conf, Check: check}
	if a.opts.verbose {
		b.Logf = func(format string, args ...interface{}) {
			a.con.line("", "%s: %s", progname, fmt.Sprintf(format, args...))
		}
	}
	if conf.File != "" && b.Logf != nil {
		b.Logf("using %s", conf.File)
	}
	return b, nil
}

// Prints structural errors and diagnostics.  Reports whether any
// protocol failed.
func (a *app) report(results []*wlgen.Result) bool {
	failed := false
	for _, r := range results {
		if r.Err != nil {
			a.con.error(r.Err)
			failed = true
		}
		for _, d := range r.Diagnostics {
			a.con.warn(r.Source, d)
		}
	}
	return failed
}

func (a *app) run(ctx context.Context, args []string, check bool) error {
	b, err := a.batch(args, check)
	if err != nil {
		return err
	}
	rep, err := b.Run(ctx)
	if rep == nil {
		return err
	}
	failed := a.report(rep.Results)
	if err != nil {
		a.con.error(err)
		failed = true
	}
	if check {
		for _, path := range rep.Changed() {
			a.con.line(colorRed, "%s: %s is out of date", progname, path)
			failed = true
		}
	}
	if failed {
		return errPrinted
	}
	return nil
}

func (a *app) dump(ctx context.Context, args []string) error {
	b, err := a.batch(args, false)
	if err != nil {
		return err
	}
	results, err := b.Bind(ctx)
	if err != nil {
		return err
	}
	failed := a.report(results)
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	for _, r := range results {
		if r.File == nil {
			continue
		}
		if err := enc.Encode(r.File); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if failed {
		return errPrinted
	}
	return nil
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   progname,
		Short: "wlgen generates Go bindings for Wayland protocols.",
		Long: `wlgen translates Wayland protocol descriptions into Go code that
marshals requests and unmarshals events for the wire runtime.

Protocols are listed in wlgen.conf:

	[generate]
	package = protocol
	output = internal/protocol

	[protocol "xdg-shell"]
	path = /usr/share/wayland-protocols/stable/xdg-shell/xdg-shell.xml

or given as arguments to the subcommands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.opts.addFlags(root.PersistentFlags())
	root.AddCommand(&cobra.Command{
		Use:   "generate [schema ...]",
		Short: "write the generated files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, false)
		},
	}, &cobra.Command{
		Use:   "check [schema ...]",
		Short: "fail if the generated files are out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, true)
		},
	}, &cobra.Command{
		Use:   "dump [schema ...]",
		Short: "print the bound protocols as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(cmd.Context(), args)
		},
	}, &cobra.Command{
		Use:   "config [schema ...]",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.config(args)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.out, conf.String())
			return err
		},
	})
	return root
}

func mainErr(ctx context.Context, args []string, a *app) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.con.w)
	return root.ExecuteContext(ctx)
}

// Runs wlgen on os.Args and returns the exit status.
func Main() int {
	if len(os.Args) > 0 {
		progname = os.Args[0]
		if pos := strings.LastIndexByte(progname, '/'); pos >= 0 {
			progname = progname[pos+1:]
		}
	}
	a := &app{
		con: &console{
			w:     os.Stderr,
			color: term.IsTerminal(int(os.Stderr.Fd())),
		},
		out: os.Stdout,
	}
	if err := mainErr(context.Background(), os.Args[1:], a); err != nil {
		if err != errPrinted {
			a.con.error(err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
