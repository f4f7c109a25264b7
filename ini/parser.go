// Package ini parses configuration files in the syntax of
// git-config: [section] and [section "subsection"] headers followed
// by key = value lines, with # and ; comments and quoted values.
package ini

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

const tabwidth = 8
const eofRune rune = -1

// Reports whether s is a valid section name: non-empty, alphanumeric
// characters and '-' only.
func ValidSection(s string) bool {
	return len(s) > 0 && strings.IndexFunc(s, func(r rune) bool {
		return !isKeyChar(r)
	}) == -1
}

// Subsection names may not contain a newline or NUL byte.
func ValidSubsection(s string) bool {
	return strings.IndexAny(s, "\n\000") == -1
}

// Reports whether s is a valid key: a letter followed by zero or more
// alphanumeric characters or '-'.
func ValidKey(s string) bool {
	return s != "" && isAlpha(rune(s[0])) &&
		strings.IndexFunc(s, func(r rune) bool {
			return !isKeyChar(r)
		}) == -1
}

// A section header.  A nil *Section stands for the part of the file
// before the first header.
type Section struct {
	Section    string
	Subsection *string
}

// Returns false if either the section or subsection is illegal.
// Returns true for a nil *Section.
func (s *Section) Valid() bool {
	if s == nil {
		return true
	} else if !ValidSection(s.Section) {
		return false
	}
	return s.Subsection == nil || ValidSubsection(*s.Subsection)
}

// Renders as [section] or [section "subsection"], or "" for nil.
func (s *Section) String() string {
	if s == nil {
		return ""
	} else if s.Subsection == nil {
		return fmt.Sprintf("[%s]", s.Section)
	}
	ret := strings.Builder{}
	fmt.Fprintf(&ret, "[%s \"", s.Section)
	for _, b := range []byte(*s.Subsection) {
		if b == '\\' || b == '"' {
			ret.WriteByte('\\')
		}
		ret.WriteByte(b)
	}
	ret.WriteString("\"]")
	return ret.String()
}

// True if two *Section have the same contents.
func (s *Section) Eq(s2 *Section) bool {
	switch {
	case s == nil || s2 == nil:
		return s == s2
	case s.Section != s2.Section:
		return false
	case s.Subsection == nil || s2.Subsection == nil:
		return s.Subsection == s2.Subsection
	}
	return *s.Subsection == *s2.Subsection
}

// Returns the subsection name, or "" if there is none.
func (s *Section) Sub() string {
	if s == nil || s.Subsection == nil {
		return ""
	}
	return *s.Subsection
}

// Produces the qualified key "section.subsection.key" as understood
// by git-config.
func QKey(s *Section, key string) string {
	if s == nil {
		return key
	} else if s.Subsection == nil {
		return s.Section + "." + key
	}
	return s.Section + "." + *s.Subsection + "." + key
}

// One key in a file.  Value is nil for a bare key with no '='.
type Item struct {
	*Section
	Key   string
	Value *string
	// Line number of the key, counting from 1.
	Line int
}

// Returns Value or an empty string if Value is nil.
func (ii *Item) Val() string {
	if ii.Value == nil {
		return ""
	}
	return *ii.Value
}

func (ii *Item) QKey() string {
	return QKey(ii.Section, ii.Key)
}

// Receives the items of a parsed file.  A Sink may also implement
// Init(), called before parsing, StartSection(*Section) error, called
// at each header, and Done(), called at the end of the file.
type Sink interface {
	Item(Item) error
}

// Error that a Sink should return when there is a problem with the
// key rather than the value.  The error is then reported at the key's
// position instead of the value's.
type BadKey string

func (err BadKey) Error() string {
	return string(err)
}

type BadValue string

func (err BadValue) Error() string {
	return string(err)
}

// A single parse error.
type ParseError struct {
	File          string
	Lineno, Colno int
	Msg           string
}

func (err ParseError) Error() string {
	if err.File == "" {
		return fmt.Sprintf("%d:%d: %s", err.Lineno, err.Colno, err.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", err.File, err.Lineno, err.Colno, err.Msg)
}

// All the parse errors of one file.
type ParseErrors []ParseError

func (err ParseErrors) Error() string {
	ret := &strings.Builder{}
	for i, e := range err {
		if i != 0 {
			ret.WriteByte('\n')
		}
		ret.WriteString(e.Error())
	}
	return ret.String()
}

type position struct {
	index, lineno, colno int
}

type parser struct {
	position
	input   []byte
	file    string
	sec     *Section
	eol     bool
	item    func(Item) error
	section func(*Section) error
}

func (l *parser) throwAt(pos position, msg string) {
	panic(ParseError{
		File:   l.file,
		Lineno: pos.lineno + 1,
		Colno:  pos.colno + 1,
		Msg:    msg,
	})
}

func (l *parser) throw(msg string, args ...interface{}) {
	l.throwAt(l.position, fmt.Sprintf(msg, args...))
}

func (l *parser) peek() rune {
	return l.at(0)
}

func (l *parser) at(n int) rune {
	n += l.index
	if n >= len(l.input) || n < 0 {
		return eofRune
	}
	return rune(l.input[n])
}

func (l *parser) remaining() int {
	return len(l.input) - l.index
}

func (l *parser) skip(n int) {
	if n < 0 || n > l.remaining() {
		n = l.remaining()
	}
	stop := l.index + n
	for ; l.index < stop; l.index++ {
		switch l.input[l.index] {
		case '\n':
			l.lineno++
			l.colno = 0
		case '\t':
			l.colno += tabwidth - (l.colno % tabwidth)
		default:
			l.colno++
		}
	}
}

func (l *parser) match(text string) bool {
	if bytes.HasPrefix(l.input[l.index:], []byte(text)) {
		l.skip(len(text))
		return true
	}
	return false
}

func (l *parser) skipWhile(fn func(rune) bool) bool {
	i := l.index
	for i < len(l.input) && fn(rune(l.input[i])) {
		i++
	}
	n := i - l.index
	l.skip(n)
	return n > 0
}

// Skips to the next c, or to the end of input.  Reports whether c
// was found.
func (l *parser) skipTo(c byte) bool {
	if i := bytes.IndexByte(l.input[l.index:], c); i >= 0 {
		l.skip(i)
		return true
	}
	l.skip(l.remaining())
	return false
}

// Skips the rest of the line, including the newline.
func (l *parser) skipLine() {
	if l.skipTo('\n') {
		l.skip(1)
	}
	l.eol = true
}

func (l *parser) takeWhile(fn func(rune) bool) string {
	i := l.index
	l.skipWhile(fn)
	return string(l.input[i:l.index])
}

func (l *parser) skipWS() bool {
	start := l.index
	l.skipWhile(func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r'
	})
	return l.index > start
}

func isAlpha(c rune) bool {
	c &^= 0x20
	return c >= 'A' && c <= 'Z'
}

func isKeyChar(c rune) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '-'
}

func (l *parser) getKey() string {
	return l.takeWhile(isKeyChar)
}

func (l *parser) getSubsection() *string {
	if l.peek() != '"' {
		return nil
	}
	ret := &strings.Builder{}
	for i := l.index + 1; i < len(l.input); i++ {
		switch c := l.input[i]; c {
		case '"':
			l.skip(i + 1 - l.index)
			s := ret.String()
			return &s
		case '\000', '\n':
			return nil
		case '\\':
			if i+1 < len(l.input) {
				i++
				ret.WriteByte(l.input[i])
			}
		default:
			ret.WriteByte(c)
		}
	}
	return nil
}

func (l *parser) getSection() *Section {
	if !l.match("[") {
		return nil
	}
	var ret Section
	if ret.Section = l.getKey(); ret.Section == "" {
		l.throw("expected section name after '['")
	}
	if l.match("]") {
		return &ret
	}
	if !l.skipWS() {
		l.throw("expected ']' or space followed by quoted subsection")
	}
	if ret.Subsection = l.getSubsection(); ret.Subsection == nil {
		l.throw("expected quoted subsection after space")
	}
	if !l.match("]") {
		l.throw("expected ']'")
	}
	return &ret
}

func needQuotes(val string) bool {
	if val == "" {
		return false
	} else if val[0] == ' ' || val[0] == '\t' ||
		val[len(val)-1] == ' ' || val[len(val)-1] == '\t' {
		return true
	}
	for _, c := range []byte(val) {
		if c < ' ' || c >= 0x7f || strings.IndexByte("\"#;\\", c) != -1 {
			return true
		}
	}
	return false
}

// Quotes and escapes val if it could not otherwise be read back as
// the same value.
func EscapeValue(val string) string {
	if !needQuotes(val) {
		return val
	}
	ret := strings.Builder{}
	ret.WriteByte('"')
	for _, b := range []byte(val) {
		switch b {
		case '"', '\\':
			ret.WriteByte('\\')
			ret.WriteByte(b)
		case '\b':
			ret.WriteString("\\b")
		case '\n':
			ret.WriteString("\\n")
		case '\t':
			ret.WriteString("\\t")
		default:
			ret.WriteByte(b)
		}
	}
	ret.WriteByte('"')
	return ret.String()
}

// Reads a value up to the end of the line.  Unquoted trailing blanks
// are dropped.
func (l *parser) getValue() string {
	ret := strings.Builder{}
	escape, inquote := false, false
	keep := 0
	for {
		c := l.peek()
		switch {
		case escape:
			escape = false
			switch c {
			case '"', '\\':
				ret.WriteByte(byte(c))
			case 'n':
				ret.WriteByte('\n')
			case 't':
				ret.WriteByte('\t')
			case 'b':
				ret.WriteByte('\b')
			case '\n':
				// line continuation
			case eofRune:
				l.throw("incomplete escape sequence at EOF")
			default:
				l.throw("invalid escape sequence \\%c", c)
			}
			keep = ret.Len()
		case c == '\\':
			escape = true
		case c == '"':
			inquote = !inquote
			keep = ret.Len()
		case c == '\n' || c == eofRune || (c == '\r' && l.at(1) == '\n'):
			if inquote {
				l.throw("missing close quotes")
			}
			l.skipLine()
			return ret.String()[:keep]
		case !inquote && (c == '#' || c == ';'):
			l.skipTo('\n')
			continue
		default:
			ret.WriteByte(byte(c))
			if inquote || (c != ' ' && c != '\t' && c != '\r') {
				keep = ret.Len()
			}
		}
		l.skip(1)
	}
}

func (l *parser) parseLine() (err *ParseError) {
	defer func() {
		if i := recover(); i != nil {
			pe, ok := i.(ParseError)
			if !ok {
				panic(i)
			}
			err = &pe
			if !l.eol {
				l.skipLine()
			}
		}
	}()
	l.eol = false
	l.skipWS()
	keypos := l.position
	if sec := l.getSection(); sec != nil {
		l.skipWS()
		if c := l.peek(); c == '#' || c == ';' || c == '\n' || c == eofRune {
			l.skipLine()
		} else {
			l.throw("unexpected text after section header")
		}
		l.sec = sec
		if err := l.section(sec); err != nil {
			l.throwAt(keypos, err.Error())
		}
	} else if isAlpha(l.peek()) {
		k := l.getKey()
		l.skipWS()
		var v *string
		var valpos position
		if l.match("=") {
			l.skipWS()
			valpos = l.position
			val := l.getValue()
			v = &val
		} else if c := l.peek(); c == '\n' || c == '#' || c == ';' ||
			c == eofRune {
			valpos = l.position
			l.skipLine()
		} else {
			l.throw("expected '=' after %s", k)
		}
		if err := l.item(Item{
			Section: l.sec,
			Key:     k,
			Value:   v,
			Line:    keypos.lineno + 1,
		}); err != nil {
			if ke, ok := err.(BadKey); ok {
				l.throwAt(keypos, string(ke))
			}
			l.throwAt(valpos, err.Error())
		}
	} else if c := l.peek(); c == '#' || c == ';' || c == '\n' ||
		c == eofRune {
		l.skipLine()
	} else {
		l.throw("expected section or key")
	}
	return
}

func (l *parser) parse() error {
	var errs ParseErrors
	for l.remaining() > 0 {
		if e := l.parseLine(); e != nil {
			errs = append(errs, *e)
		}
	}
	if errs != nil {
		return errs
	}
	return nil
}

// Parses the contents of a file.  The filename is used only for error
// messages.  Syntax errors and errors returned by sink are collected
// into a ParseErrors; parsing continues on the next line.
func ParseContents(sink Sink, filename string, contents []byte) error {
	l := &parser{
		file:    filename,
		input:   contents,
		item:    sink.Item,
		section: func(*Section) error { return nil },
	}
	if s, ok := sink.(interface{ StartSection(*Section) error }); ok {
		l.section = s.StartSection
	}
	if init, ok := sink.(interface{ Init() }); ok {
		init.Init()
	}
	err := l.parse()
	if done, ok := sink.(interface{ Done() }); ok {
		done.Done()
	}
	return err
}

// Reads and parses a file.
func Parse(sink Sink, filename string) error {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return ParseContents(sink, filename, contents)
}
