package ini

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// A Sink that stores the keys of one section into Go variables.
// String fields take the value verbatim, []string fields accumulate
// one element per occurrence of the key, bool fields accept a bare
// key as true, and anything else is parsed with fmt.Sscan.
type GenericSink struct {
	// If non-nil, only match this specific section (otherwise match
	// keys before the first section header).
	Sec *Section

	// Pointers to the fields that should be parsed.
	Fields map[string]interface{}

	// Reject keys of Sec that are not in Fields.
	Strict bool
}

func (s *GenericSink) AddField(name string, ptr interface{}) {
	if s.Fields == nil {
		s.Fields = make(map[string]interface{})
	}
	s.Fields[name] = ptr
}

var errNotStructPtr = errors.New("argument must be pointer to struct")

// Adds every exported field of the structure i points to, keyed by
// the `ini:"key-name"` tag or else the field name lowercased with
// underscores turned into dashes.  Tag `ini:"-"` skips a field.
// Panics if i is not a pointer to a struct.
func (s *GenericSink) AddStruct(i interface{}) {
	v := reflect.ValueOf(i)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		panic(errNotStructPtr)
	}
	v = v.Elem()
	t := v.Type()
	for i, n := 0, t.NumField(); i < n; i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("ini")
		if name == "-" {
			continue
		} else if name == "" {
			name = strings.ToLower(strings.ReplaceAll(f.Name, "_", "-"))
		}
		s.AddField(name, v.Field(i).Addr().Interface())
	}
}

// Renders the current field values in the file syntax, keys sorted.
func (s *GenericSink) String() string {
	out := strings.Builder{}
	if s.Sec != nil {
		fmt.Fprintf(&out, "%s\n", s.Sec.String())
	}
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := reflect.ValueOf(s.Fields[name]).Elem()
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
			for _, e := range v.Interface().([]string) {
				fmt.Fprintf(&out, "\t%s = %s\n", name, EscapeValue(e))
			}
			continue
		}
		fmt.Fprintf(&out, "\t%s = %s\n", name,
			EscapeValue(fmt.Sprint(v.Interface())))
	}
	return out.String()
}

func (s *GenericSink) Item(ii Item) error {
	if !s.Sec.Eq(ii.Section) {
		return nil
	}
	i, ok := s.Fields[ii.Key]
	if !ok {
		if s.Strict {
			return BadKey(fmt.Sprintf("unknown key %s", ii.QKey()))
		}
		return nil
	}
	v := reflect.ValueOf(i).Elem()
	switch {
	case v.Kind() == reflect.Bool && ii.Value == nil:
		v.SetBool(true)
	case ii.Value == nil:
		v.Set(reflect.Zero(v.Type()))
	case v.Kind() == reflect.String:
		v.SetString(*ii.Value)
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String:
		v.Set(reflect.Append(v, reflect.ValueOf(*ii.Value)))
	case v.Kind() == reflect.Bool:
		switch strings.ToLower(*ii.Value) {
		case "true", "yes", "on", "1":
			v.SetBool(true)
		case "false", "no", "off", "0", "":
			v.SetBool(false)
		default:
			return BadValue(fmt.Sprintf("%s: invalid boolean %q",
				ii.QKey(), *ii.Value))
		}
	default:
		if _, err := fmt.Sscan(*ii.Value, i); err != nil {
			return BadValue(fmt.Sprintf("%s: %s", ii.QKey(), err))
		}
	}
	return nil
}

// A list of sinks that all see every item.  The first error stops the
// item from reaching later sinks.
type Sinks []Sink

func (s *Sinks) Push(i Sink) {
	*s = append(*s, i)
}

func (s Sinks) Init() {
	for i := range s {
		if init, ok := s[i].(interface{ Init() }); ok {
			init.Init()
		}
	}
}

func (s Sinks) Item(ii Item) error {
	for i := range s {
		if err := s[i].Item(ii); err != nil {
			return err
		}
	}
	return nil
}

func (s Sinks) StartSection(sec *Section) error {
	for i := range s {
		if ss, ok := s[i].(interface{ StartSection(*Section) error }); ok {
			if err := ss.StartSection(sec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Sinks) Done() {
	for i := range s {
		if done, ok := s[i].(interface{ Done() }); ok {
			done.Done()
		}
	}
}
