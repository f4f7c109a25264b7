package gogen

import (
	"go/token"
	"strings"
	"unicode"
)

var initialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uuid": "UUID",
	"json": "JSON",
	"xml":  "XML",
}

// Splits a schema name into words on underscores and any other
// character that cannot appear in a Go identifier.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func capitalize(s string) string {
	if i, ok := initialisms[s]; ok {
		return i
	}
	if len(s) > 0 && s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]&^0x20) + s[1:]
	}
	return s
}

func uncapitalize(s string) string {
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		return string(s[0]|0x20) + s[1:]
	}
	return s
}

// "make_friend" -> "MakeFriend", "surface_id" -> "SurfaceID".
func pascalCase(s string) string {
	var out strings.Builder
	for _, w := range words(s) {
		out.WriteString(capitalize(w))
	}
	return out.String()
}

// "new_friend" -> "newFriend".  Names that would start with a digit
// get an "arg" prefix.
func camelCase(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return "arg"
	}
	var out strings.Builder
	out.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		out.WriteString(capitalize(w))
	}
	ret := out.String()
	if ret[0] >= '0' && ret[0] <= '9' {
		ret = "arg" + capitalize(ret)
	}
	return ret
}

// Identifiers the bodies of generated functions refer to, which
// parameters must not shadow.
var bodyIdents = map[string]bool{
	"p":    true,
	"err":  true,
	"ok":   true,
	"ev":   true,
	"zero": true,
	"fmt":  true,
	"xdr":  true,
	"wire": true,
}

// Makes a local identifier safe by appending underscores until it is
// neither a keyword nor taken.
func escapeLocal(name string, taken map[string]bool) string {
	for token.IsKeyword(name) || bodyIdents[name] || taken[name] {
		name += "_"
	}
	taken[name] = true
	return name
}

// Hands out unique identifiers within one scope.  Each key maps to
// the first free candidate; when every candidate is taken, the last
// one is extended with underscores.
type namer struct {
	used  map[string]bool
	names map[string]string
}

func newNamer(reserved ...string) *namer {
	n := &namer{
		used:  make(map[string]bool),
		names: make(map[string]string),
	}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

func (n *namer) claim(key string, candidates ...string) string {
	if name, ok := n.names[key]; ok {
		return name
	}
	var name string
	for _, c := range candidates {
		if !n.used[c] {
			name = c
			break
		}
	}
	if name == "" {
		name = candidates[len(candidates)-1]
		for n.used[name] {
			name += "_"
		}
	}
	n.used[name] = true
	n.names[key] = name
	return name
}

func (n *namer) lookup(key string) (string, bool) {
	name, ok := n.names[key]
	return name, ok
}
