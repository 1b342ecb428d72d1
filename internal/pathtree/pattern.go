// Package pathtree implements route patterns and the segment trie that
// resolves request paths against them.
package pathtree

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrEmptyPattern     = errors.New("empty pattern")
	ErrNoLeadingSlash   = errors.New("pattern must start with '/'")
	ErrEmptyParamName   = errors.New("empty parameter name")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrCatchAllPosition = errors.New("catch-all must be the last segment")
	ErrParamConflict    = errors.New("conflicting parameter name")
	ErrDuplicate        = errors.New("duplicate pattern")
)

// SegmentKind tells how a pattern segment matches.
type SegmentKind uint8

const (
	Literal  SegmentKind = iota // users
	Param                       // :id
	CatchAll                    // *rest
)

// Segment is one slash-separated element of a pattern. Value holds the
// literal text or the parameter name.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Pattern is a parsed route pattern.
type Pattern struct {
	str  string
	segs []Segment
}

// ParsePattern parses s into a pattern. Segments starting with ':' capture a
// single non-empty path segment, a final segment starting with '*' captures
// the remainder of the path.
func ParsePattern(s string) (*Pattern, error) {
	if s == "" {
		return nil, ErrEmptyPattern
	}

	if s[0] != '/' {
		return nil, errors.Wrapf(ErrNoLeadingSlash, "%q", s)
	}

	raw := SplitPath(s)
	segs := make([]Segment, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, part := range raw {
		seg := Segment{Kind: Literal, Value: part}
		switch {
		case strings.HasPrefix(part, ":"):
			seg = Segment{Kind: Param, Value: part[1:]}
		case strings.HasPrefix(part, "*"):
			if i != len(raw)-1 {
				return nil, errors.Wrapf(ErrCatchAllPosition, "%q", s)
			}
			seg = Segment{Kind: CatchAll, Value: part[1:]}
		}

		if seg.Kind != Literal {
			if seg.Value == "" {
				return nil, errors.Wrapf(ErrEmptyParamName, "%q", s)
			}
			if _, ok := seen[seg.Value]; ok {
				return nil, errors.Wrapf(ErrDuplicateParam, "%q in %q", seg.Value, s)
			}
			seen[seg.Value] = struct{}{}
		}

		segs = append(segs, seg)
	}

	return &Pattern{str: s, segs: segs}, nil
}

// String returns the pattern as it was parsed.
func (p *Pattern) String() string { return p.str }

// Segments returns the parsed segments.
func (p *Pattern) Segments() []Segment { return p.segs }

// ParamNames returns the names of all captures in order of appearance.
func (p *Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.segs {
		if seg.Kind != Literal {
			names = append(names, seg.Value)
		}
	}

	return names
}

// Build substitutes vals for the captures of p, in order. Parameter values are
// path-escaped, catch-all values are inserted as is.
func Build(p *Pattern, vals ...string) (string, error) {
	names := p.ParamNames()
	if len(vals) < len(names) {
		return "", errors.Newf("not enough values, pattern %q needs %d, got %d", p.str, len(names), len(vals))
	}

	if len(vals) > len(names) {
		return "", errors.Newf("too many values, pattern %q needs %d, got %d", p.str, len(names), len(vals))
	}

	parts := make([]string, 0, len(p.segs))
	next := 0

	for _, seg := range p.segs {
		switch seg.Kind {
		case Literal:
			parts = append(parts, seg.Value)
		case Param:
			parts = append(parts, url.PathEscape(vals[next]))
			next++
		case CatchAll:
			parts = append(parts, strings.TrimPrefix(vals[next], "/"))
			next++
		}
	}

	return "/" + strings.Join(parts, "/"), nil
}

// SplitPath splits a slash-rooted path into its segments. The root path has
// no segments, a trailing slash yields a trailing empty segment.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}
