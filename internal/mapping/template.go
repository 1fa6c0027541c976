package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

// templatePart is either a literal run or a 1-based capture reference.
// ref == 0 means literal.
type templatePart struct {
	literal string
	ref     int
}

// Template is a compiled string template interleaving literal text with
// positional references to topic captures.
//
// Reference syntax: '$' followed by one or more decimal digits ($1,
// $23). A backslash immediately before '$' escapes it: "\$1" renders as
// the literal text "$1" and the backslash is stripped. An unescaped '$'
// not followed by digits is literal text. Templates are immutable once
// compiled and safe for concurrent use.
type Template struct {
	raw    string
	parts  []templatePart
	maxRef int
}

// CompileTemplate scans raw left to right into literal and reference
// parts. Reference $0 is rejected (ErrInvalidReferenceIndex): references
// are 1-based.
func CompileTemplate(raw string) (*Template, error) {
	t := &Template{raw: raw}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, templatePart{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); {
		switch {
		case raw[i] == '\\' && i+1 < len(raw) && raw[i+1] == '$':
			// Strip the backslash, keep the dollar as literal text.
			lit.WriteByte('$')
			i += 2
		case raw[i] == '$':
			j := i + 1
			for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
				j++
			}
			if j == i+1 {
				// '$' with no digits is literal.
				lit.WriteByte('$')
				i++
				continue
			}
			num, err := strconv.Atoi(raw[i+1 : j])
			if err != nil || num == 0 {
				return nil, fmt.Errorf("%w: $%s in %q", ErrInvalidReferenceIndex, raw[i+1:j], raw)
			}
			flush()
			t.parts = append(t.parts, templatePart{ref: num})
			if num > t.maxRef {
				t.maxRef = num
			}
			i = j
		default:
			lit.WriteByte(raw[i])
			i++
		}
	}
	flush()

	return t, nil
}

// Render substitutes captures into the template, left to right. A
// reference $N resolves to captures[N-1]; if that index is out of range
// the render fails with ErrUnresolvedReference and no partial output is
// returned.
func (t *Template) Render(captures []string) (string, error) {
	var out strings.Builder
	for _, part := range t.parts {
		if part.ref == 0 {
			out.WriteString(part.literal)
			continue
		}
		if part.ref > len(captures) {
			return "", fmt.Errorf("%w: $%d with %d capture(s) in %q",
				ErrUnresolvedReference, part.ref, len(captures), t.raw)
		}
		out.WriteString(captures[part.ref-1])
	}
	return out.String(), nil
}

// MaxReference returns the highest reference index used by the
// template, or 0 if the template is purely literal. Rule compilation
// checks it against the pattern's wildcard count.
func (t *Template) MaxReference() int {
	return t.maxRef
}

// LiteralOnly reports whether the template contains no references, and
// if so returns its rendered literal text. Tag compilation uses this to
// fold constant text tags into plain literals.
func (t *Template) LiteralOnly() (string, bool) {
	if t.maxRef != 0 {
		return "", false
	}
	var out strings.Builder
	for _, part := range t.parts {
		out.WriteString(part.literal)
	}
	return out.String(), true
}
