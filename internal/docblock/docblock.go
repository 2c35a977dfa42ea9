// Package docblock extracts @property annotations from documentation comments.
//
// Parsing is best-effort: lines that do not match are ignored and nothing
// here returns an error.
package docblock

import (
	"regexp"
	"strings"
)

// Tags recognised by Parse.
const (
	TagProperty      = "property"
	TagPropertyRead  = "property-read"
	TagPropertyWrite = "property-write"
)

// typeToken matches a type expression without whitespace, except inside
// generic brackets such as Collection<int, \App\Models\Tag>.
const typeToken = `((?:[^\s$<]|<[^>]*>)+)`

var annotationPattern = regexp.MustCompile(`(?m)@(property(?:-read|-write)?)\s+` + typeToken + `\s+\$(\w+)`)

// Annotation is one @property, @property-read or @property-write line.
type Annotation struct {
	Tag  string
	Type string
	Name string
}

// Parse returns every property annotation in doc, in document order.
func Parse(doc string) []Annotation {
	matches := annotationPattern.FindAllStringSubmatch(doc, -1)
	out := make([]Annotation, 0, len(matches))
	for _, m := range matches {
		out = append(out, Annotation{Tag: m[1], Type: m[2], Name: m[3]})
	}
	return out
}

// ReadOnly returns the @property-read annotations in document order.
func ReadOnly(doc string) []Annotation {
	var out []Annotation
	for _, a := range Parse(doc) {
		if a.Tag == TagPropertyRead {
			out = append(out, a)
		}
	}
	return out
}

// Property returns the type token of the first "@property <Type> $<name>"
// annotation for name. Later duplicates are ignored.
func Property(doc, name string) (string, bool) {
	for _, a := range Parse(doc) {
		if a.Tag == TagProperty && a.Name == name {
			return a.Type, true
		}
	}
	return "", false
}

// SplitUnion splits a type token on top-level "|" separators, leaving
// generic arguments intact.
func SplitUnion(token string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range token {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(token[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(token[start:]))
	return parts
}
