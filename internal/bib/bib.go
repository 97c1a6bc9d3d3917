// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib reads and writes single BibTeX entries. It covers the
// subset of the format Zenodo emits: one @type{key, ...} entry with
// brace-, quote-, or bare-delimited field values.
package bib

import (
	"fmt"
	"strings"
)

// Entry is one BibTeX entry. Field order is preserved from parse time
// and on through rendering.
type Entry struct {
	Type string
	Key  string

	names  []string
	values map[string]string
}

// NewEntry creates an empty entry of the given type and key.
func NewEntry(typ, key string) *Entry {
	return &Entry{Type: typ, Key: key, values: make(map[string]string)}
}

// Get returns a field value. Field names are case-insensitive.
func (e *Entry) Get(name string) (string, bool) {
	v, ok := e.values[strings.ToLower(name)]
	return v, ok
}

// Set assigns a field value, appending the field if it is new.
func (e *Entry) Set(name, value string) {
	k := strings.ToLower(name)
	if _, ok := e.values[k]; !ok {
		e.names = append(e.names, k)
	}
	e.values[k] = value
}

// Delete removes a field if present.
func (e *Entry) Delete(name string) {
	k := strings.ToLower(name)
	if _, ok := e.values[k]; !ok {
		return
	}
	delete(e.values, k)
	for i, n := range e.names {
		if n == k {
			e.names = append(e.names[:i], e.names[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in order.
func (e *Entry) Fields() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// String renders the entry in conventional layout.
func (e *Entry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s{%s,\n", e.Type, e.Key)
	for i, n := range e.names {
		fmt.Fprintf(&sb, "  %s = {%s}", n, e.values[n])
		if i < len(e.names)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Parse reads the first BibTeX entry in the input.
func Parse(s string) (*Entry, error) {
	i := strings.IndexByte(s, '@')
	if i < 0 {
		return nil, fmt.Errorf("no BibTeX entry found")
	}
	s = s[i+1:]

	open := strings.IndexByte(s, '{')
	if open < 0 {
		return nil, fmt.Errorf("malformed entry: missing '{'")
	}
	typ := strings.TrimSpace(s[:open])
	if typ == "" {
		return nil, fmt.Errorf("malformed entry: empty type")
	}
	s = s[open+1:]

	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed entry: missing key")
	}
	e := NewEntry(strings.ToLower(typ), strings.TrimSpace(s[:comma]))
	s = s[comma+1:]

	for {
		s = strings.TrimLeft(s, " \t\r\n,")
		if s == "" {
			return nil, fmt.Errorf("malformed entry: unterminated")
		}
		if s[0] == '}' {
			return e, nil
		}

		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return nil, fmt.Errorf("malformed field near %q", head(s))
		}
		name := strings.TrimSpace(s[:eq])
		s = strings.TrimLeft(s[eq+1:], " \t\r\n")
		if s == "" {
			return nil, fmt.Errorf("missing value for field %q", name)
		}

		var value string
		var err error
		switch s[0] {
		case '{':
			value, s, err = braced(s)
		case '"':
			value, s, err = quoted(s)
		default:
			value, s = bare(s)
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		e.Set(name, value)
	}
}

// braced consumes a {...} value with balanced inner braces.
func braced(s string) (value, rest string, err error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unbalanced braces")
}

// quoted consumes a "..." value.
func quoted(s string) (value, rest string, err error) {
	for i := 1; i < len(s); i++ {
		if s[i] == '"' {
			return s[1:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("unterminated quote")
}

// bare consumes an undelimited value up to the next comma or closing
// brace.
func bare(s string) (value, rest string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' || s[i] == '}' {
			return strings.TrimSpace(s[:i]), s[i:]
		}
	}
	return strings.TrimSpace(s), ""
}

func head(s string) string {
	if len(s) > 20 {
		return s[:20]
	}
	return s
}
