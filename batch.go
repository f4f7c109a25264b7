// Package wlgen generates Go bindings for Wayland protocols.  A Batch
// loads the protocol schemas a Config names, binds them against each
// other, renders one Go file per protocol plus an index, and writes
// or checks the results.
package wlgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/xdrpp/wlgen/bind"
	"github.com/xdrpp/wlgen/gogen"
	"github.com/xdrpp/wlgen/schema"
	"github.com/xdrpp/wlgen/wldetail"
)

// What happened to one protocol of a batch.
type Result struct {
	Name string
	// Schema document the protocol was loaded from.
	Source string
	// Where the generated file goes; "" if nothing was rendered.
	Output string

	Protocol    *schema.Protocol
	File        *bind.File
	Diagnostics bind.Diagnostics

	// A structural error that kept this protocol out of the batch.
	Err error

	// The generated file differs from what is on disk.  In check
	// mode nothing is written; otherwise the file was rewritten.
	Changed bool
}

type Batch struct {
	Config *Config
	// Compare against the files on disk instead of writing them.
	Check bool
	// If non-nil, receives progress messages.  Called concurrently.
	Logf func(format string, args ...interface{})
}

func (b *Batch) logf(format string, args ...interface{}) {
	if b.Logf != nil {
		b.Logf(format, args...)
	}
}

func (b *Batch) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	if n := b.Config.Generate.Parallel; n > 0 {
		g.SetLimit(n)
	}
	return g, ctx
}

// Loads and binds every protocol the configuration does not skip.
// Protocols that fail to load carry their error in Result.Err; the
// rest are bound against each other.  The returned error is non-nil
// only if ctx is canceled.
func (b *Batch) Bind(ctx context.Context) ([]*Result, error) {
	var results []*Result
	for _, pc := range b.Config.Protocols {
		if pc.Skip {
			b.logf("%s: skipped", pc.Name)
			continue
		}
		results = append(results, &Result{Name: pc.Name, Source: pc.Path})
	}

	g, gctx := b.group(ctx)
	for _, r := range results {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Protocol, r.Err = schema.Load(r.Source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolver := schema.NewResolver()
	defined := make(map[string]string)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		r.Err = redefinitions(r, defined)
		if r.Err == nil {
			resolver.Add(r.Protocol)
		}
	}

	g, gctx = b.group(ctx)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.File, r.Diagnostics = bind.Bind(r.Protocol, resolver)
			b.logf("%s: bound %d interfaces, %d diagnostics", r.Name,
				len(r.File.Interfaces), len(r.Diagnostics))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Reports interfaces of r that an earlier protocol of the batch
// already defines, and records the ones it defines.
func redefinitions(r *Result, defined map[string]string) error {
	var errs schema.Errors
	for _, iface := range r.Protocol.Interfaces {
		if other, ok := defined[iface.Name]; ok {
			errs = append(errs, schema.Error{
				File: r.Source,
				Loc: schema.Location{
					Protocol:  r.Protocol.Name,
					Interface: iface.Name,
				},
				Msg: fmt.Sprintf("interface already defined by protocol %s",
					other),
			})
		}
	}
	if errs != nil {
		return errs
	}
	for _, iface := range r.Protocol.Interfaces {
		defined[iface.Name] = r.Protocol.Name
	}
	return nil
}

// The outcome of Run: one Result per protocol, plus the index file.
type Report struct {
	Results []*Result
	// Path of the index file, and whether it changed.
	Index        string
	IndexChanged bool
}

// Number of protocols with structural errors.
func (rep *Report) Failed() int {
	n := 0
	for _, r := range rep.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Paths of generated files that differ from the disk.
func (rep *Report) Changed() []string {
	var ret []string
	for _, r := range rep.Results {
		if r.Changed {
			ret = append(ret, r.Output)
		}
	}
	if rep.IndexChanged {
		ret = append(ret, rep.Index)
	}
	return ret
}

// Binds, renders and writes (or in check mode compares) every
// protocol.  Structural errors and diagnostics are reported per
// protocol in the Report; the returned error covers only failures to
// render or write output, and cancellation.
func (b *Batch) Run(ctx context.Context) (*Report, error) {
	results, err := b.Bind(ctx)
	if err != nil {
		return nil, err
	}
	var files []*bind.File
	for _, r := range results {
		if r.Err == nil {
			files = append(files, r.File)
		}
	}
	pkg := gogen.NewPackage(b.Config.GogenConfig(), files...)
	outdir := b.Config.Generate.Output
	if !b.Check && len(files) > 0 {
		if err := os.MkdirAll(outdir, 0777); err != nil {
			return nil, err
		}
	}

	errs := make([]error, len(results)+1)
	g, gctx := b.group(ctx)
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		i, r := i, r
		name := gogen.FileName(r.File)
		if pc := b.Config.Protocol(r.Name); pc != nil && pc.File != "" {
			name = pc.File
		}
		r.Output = filepath.Join(outdir, name)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := pkg.Render(r.File)
			if err == nil {
				r.Changed, err = b.emit(r.Output, src)
			}
			errs[i] = err
			return nil
		})
	}
	rep := &Report{Results: results}
	if len(files) > 0 {
		rep.Index = filepath.Join(outdir, gogen.IndexFile)
		g.Go(func() error {
			src, err := pkg.RenderIndex()
			if err == nil {
				rep.IndexChanged, err = b.emit(rep.Index, src)
			}
			errs[len(results)] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var failed wldetail.Errors
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return rep, failed.Err()
}

// Writes src to path, or in check mode compares it with path.
// Reports whether path differs (or differed) from src.
func (b *Batch) emit(path string, src []byte) (bool, error) {
	if b.Check {
		old, err := wldetail.DigestFile(path)
		if os.IsNotExist(err) {
			b.logf("%s: missing", path)
			return true, nil
		} else if err != nil {
			return false, err
		}
		stale := old != wldetail.DigestOf(src)
		if stale {
			b.logf("%s: out of date", path)
		}
		return stale, nil
	}
	written, err := wldetail.WriteFileIfChanged(path, src, 0666)
	if err != nil {
		return false, err
	} else if written {
		b.logf("%s: written", path)
	} else {
		b.logf("%s: unchanged", path)
	}
	return written, nil
}
