// Package member models property paths: a rooted identifier read off the
// implicit root, or an identifier read off the result of a qualifying path.
// Paths are immutable trees; qualification runs strictly outer to inner, so
// a path and its prefixes can be shared by any number of declarations.
package member

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"jsbind/pkg/mid"
)

// Path is a rooted or qualified member reference. A nil *Path is not a
// valid path.
type Path struct {
	qualifier *Path
	id        mid.Mid
	depth     int
}

// Rooted returns the path of id on the implicit root object.
func Rooted(id mid.Mid) *Path {
	return &Path{id: id, depth: 1}
}

// Qualified returns the path of id on the value qualifier resolves to.
func Qualified(qualifier *Path, id mid.Mid) *Path {
	if qualifier == nil {
		panic("member: Qualified called with a nil qualifier")
	}
	return &Path{qualifier: qualifier, id: id, depth: qualifier.depth + 1}
}

// Root is shorthand for Rooted(mid.Intern(name)).
func Root(name string) *Path { return Rooted(mid.Intern(name)) }

// Member is shorthand for Qualified(p, mid.Intern(name)).
func (p *Path) Member(name string) *Path { return Qualified(p, mid.Intern(name)) }

// ID returns the last identifier of the path.
func (p *Path) ID() mid.Mid { return p.id }

// Name returns the property name read by the last step.
func (p *Path) Name() string { return p.id.Name() }

// Qualifier returns the qualifying path, or nil for a rooted path.
func (p *Path) Qualifier() *Path { return p.qualifier }

func (p *Path) IsRooted() bool { return p.qualifier == nil }

// Depth is the number of identifiers in the chain.
func (p *Path) Depth() int { return p.depth }

// Segments returns the identifiers from the root outward.
func (p *Path) Segments() []mid.Mid {
	segs := make([]mid.Mid, p.depth)
	for cur, i := p, p.depth-1; cur != nil; cur, i = cur.qualifier, i-1 {
		segs[i] = cur.id
	}
	return segs
}

// Equal reports structural equality. Identifiers compare by value, so paths
// built independently from the same names are equal.
func (p *Path) Equal(other *Path) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil || p.depth != other.depth {
		return false
	}
	for a, b := p, other; a != nil; a, b = a.qualifier, b.qualifier {
		if a.id != b.id {
			return false
		}
	}
	return true
}

// String renders the path as it would be written against the root, e.g.
// `Array.prototype.slice`, `obj["a b"]` or `["a b"].c`. Parse reads it back
// to an equal path, so distinct paths render distinctly.
func (p *Path) String() string { return p.Expr("") }

// Key is the canonical registry key of the path.
func (p *Path) Key() string { return p.String() }

// Expr renders the access expression of the path against base. An empty
// base means the implicit root: the first segment is written bare, either
// as an identifier or as a bracketed name.
func (p *Path) Expr(base string) string {
	var sb strings.Builder
	for i, seg := range p.Segments() {
		name := seg.Name()
		switch {
		case i == 0 && base == "" && IsIdentifierName(name):
			sb.WriteString(name)
		case IsIdentifierName(name):
			if i == 0 {
				sb.WriteString(base)
			}
			sb.WriteString("." + name)
		default:
			if i == 0 {
				sb.WriteString(base)
			}
			sb.WriteString("[" + strconv.Quote(name) + "]")
		}
	}
	return sb.String()
}

// IsIdentifierName reports whether name can follow a dot.
func IsIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// --- Parsing ---

// Parse reads the form String produces: identifiers separated by dots, with
// bracketed double-quoted names for anything else, e.g.
// `Array.prototype["@@iterator"]`. A leading bracketed name is the root
// segment.
func Parse(s string) (*Path, error) {
	var p *Path
	push := func(name string) {
		if p == nil {
			p = Root(name)
		} else {
			p = p.Member(name)
		}
	}

	rest := s
	for first := true; rest != "" || first; first = false {
		switch {
		case strings.HasPrefix(rest, "["):
			quoted, err := strconv.QuotedPrefix(rest[1:])
			if err != nil || !strings.HasPrefix(quoted, `"`) {
				return nil, fmt.Errorf("member: bad bracketed name in %q", s)
			}
			name, _ := strconv.Unquote(quoted)
			rest = rest[1+len(quoted):]
			if !strings.HasPrefix(rest, "]") {
				return nil, fmt.Errorf("member: missing ']' in %q", s)
			}
			rest = rest[1:]
			push(name)
		case first || strings.HasPrefix(rest, "."):
			if !first {
				rest = rest[1:]
			}
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			if !IsIdentifierName(name) {
				return nil, fmt.Errorf("member: %q is not an identifier in %q", name, s)
			}
			rest = rest[end:]
			push(name)
		default:
			return nil, fmt.Errorf("member: unexpected %q in %q", rest, s)
		}
	}
	return p, nil
}

// MustParse is Parse for static declarations; it panics on malformed input.
func MustParse(s string) *Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
