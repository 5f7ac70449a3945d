package fieldpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies why a path failed to resolve.
type ErrorKind int

const (
	KindInvalidPathSyntax ErrorKind = iota + 1
	KindUnknownField
	KindAmbiguousOrMissingField
	KindUnknownProperty
	KindTrailingSegments
	KindMisplacedDeltaOrKeyword
	KindUnknownResourceType
	KindNotARelationship
)

// Sentinels for errors.Is. Every *Error unwraps to the sentinel of its kind.
var (
	ErrInvalidPathSyntax       = errors.New("invalid path syntax")
	ErrUnknownField            = errors.New("unknown field")
	ErrAmbiguousOrMissingField = errors.New("field ambiguous or missing in some bundles")
	ErrUnknownProperty         = errors.New("unknown property")
	ErrTrailingSegments        = errors.New("trailing segments after primitive field")
	ErrMisplacedDeltaOrKeyword = errors.New("misplaced delta or traversal keyword")
	ErrUnknownResourceType     = errors.New("unknown resource type")
	ErrNotARelationship        = errors.New("path does not address a relationship")
	errUnknownKind             = errors.New("unknown resolution error")
)

// String returns the snake_case code of the kind, used in API error codes.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPathSyntax:
		return "invalid_path_syntax"
	case KindUnknownField:
		return "unknown_field"
	case KindAmbiguousOrMissingField:
		return "ambiguous_or_missing_field"
	case KindUnknownProperty:
		return "unknown_property"
	case KindTrailingSegments:
		return "trailing_segments"
	case KindMisplacedDeltaOrKeyword:
		return "misplaced_delta_or_keyword"
	case KindUnknownResourceType:
		return "unknown_resource_type"
	case KindNotARelationship:
		return "not_a_relationship"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidPathSyntax:
		return ErrInvalidPathSyntax
	case KindUnknownField:
		return ErrUnknownField
	case KindAmbiguousOrMissingField:
		return ErrAmbiguousOrMissingField
	case KindUnknownProperty:
		return ErrUnknownProperty
	case KindTrailingSegments:
		return ErrTrailingSegments
	case KindMisplacedDeltaOrKeyword:
		return ErrMisplacedDeltaOrKeyword
	case KindUnknownResourceType:
		return ErrUnknownResourceType
	case KindNotARelationship:
		return ErrNotARelationship
	default:
		return errUnknownKind
	}
}

// Error is a failed resolution. Index is the offending segment, or -1 when the
// failure is not tied to a segment (unknown starting resource type).
type Error struct {
	Kind       ErrorKind
	Path       string
	Index      int
	Segment    string
	EntityType string
	Bundles    []string
	Field      string
	Detail     string
}

// Error returns a message naming the path, the segment and the context.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at segment %d", e.Index)
		if e.Segment != "" {
			fmt.Fprintf(&b, " (%q)", e.Segment)
		}
	}
	fmt.Fprintf(&b, " of path %q", e.Path)
	if e.EntityType != "" {
		fmt.Fprintf(&b, " on %s", e.EntityType)
		if len(e.Bundles) > 0 && !(len(e.Bundles) == 1 && e.Bundles[0] == "") {
			fmt.Fprintf(&b, " [%s]", strings.Join(e.Bundles, ", "))
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap returns the sentinel of the error kind.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the kind of a resolution error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
