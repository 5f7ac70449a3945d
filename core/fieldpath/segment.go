package fieldpath

import (
	"strconv"
	"strings"
)

// Delimiter separates segments of an external path.
const Delimiter = "."

// TraversalKeyword forces routing into the referenced entity.
const TraversalKeyword = "entity"

// SegmentKind classifies a path segment. Only pure syntax is classified here;
// whether a name is a field or a property depends on where it appears.
type SegmentKind int

const (
	// SegmentName is an identifier: a field or property name.
	SegmentName SegmentKind = iota

	// SegmentDelta is an all-digit list index.
	SegmentDelta

	// SegmentKeyword is the reserved traversal keyword.
	SegmentKeyword

	// SegmentInvalid violates the identifier and integer grammar.
	SegmentInvalid
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentName:
		return "name"
	case SegmentDelta:
		return "delta"
	case SegmentKeyword:
		return "keyword"
	case SegmentInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Segment is one classified token of an external path.
type Segment struct {
	Kind  SegmentKind
	Raw   string
	Delta int
}

// Split breaks path on Delimiter and classifies every segment. Grammar
// violations are kept as SegmentInvalid so the resolver can report failures
// in left-to-right order. Only an empty path is rejected here.
func Split(path string) ([]Segment, error) {
	if path == "" {
		return nil, &Error{Kind: KindInvalidPathSyntax, Path: path, Index: 0, Detail: "empty path"}
	}

	parts := strings.Split(path, Delimiter)
	segments := make([]Segment, len(parts))
	for i, raw := range parts {
		segments[i] = classify(raw)
	}
	return segments, nil
}

// Tokenize is Split with eager validation: the first invalid segment fails
// the whole path with KindInvalidPathSyntax.
func Tokenize(path string) ([]Segment, error) {
	segments, err := Split(path)
	if err != nil {
		return nil, err
	}
	for i, seg := range segments {
		if seg.Kind == SegmentInvalid {
			return nil, syntaxError(path, i, seg)
		}
	}
	return segments, nil
}

// Join renders segments back into an external path.
func Join(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Raw
	}
	return strings.Join(parts, Delimiter)
}

func classify(raw string) Segment {
	switch {
	case raw == TraversalKeyword:
		return Segment{Kind: SegmentKeyword, Raw: raw}
	case isDigits(raw):
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Segment{Kind: SegmentInvalid, Raw: raw}
		}
		return Segment{Kind: SegmentDelta, Raw: raw, Delta: n}
	case isIdentifier(raw):
		return Segment{Kind: SegmentName, Raw: raw}
	default:
		return Segment{Kind: SegmentInvalid, Raw: raw}
	}
}

func syntaxError(path string, index int, seg Segment) *Error {
	detail := "segment is neither an identifier nor a list index"
	if seg.Raw == "" {
		detail = "empty segment"
	}
	return &Error{Kind: KindInvalidPathSyntax, Path: path, Index: index, Segment: seg.Raw, Detail: detail}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if i == 0 && !letter {
			return false
		}
		if !letter && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
