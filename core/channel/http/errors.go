package http

import (
	"errors"
	"net/http"

	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/query"
	"github.com/artpar/fieldresolver/pkg/jsonapi"
)

var errorTitles = map[fieldpath.ErrorKind]string{
	fieldpath.KindInvalidPathSyntax:       "Invalid Path Syntax",
	fieldpath.KindUnknownField:            "Unknown Field",
	fieldpath.KindAmbiguousOrMissingField: "Field Ambiguous Or Missing",
	fieldpath.KindUnknownProperty:         "Unknown Property",
	fieldpath.KindTrailingSegments:        "Trailing Segments",
	fieldpath.KindMisplacedDeltaOrKeyword: "Misplaced Delta Or Keyword",
	fieldpath.KindUnknownResourceType:     "Unknown Resource Type",
	fieldpath.KindNotARelationship:        "Not A Relationship",
}

// resolutionError converts a failed resolution into a 400 error object
// pointing at the query parameter that carried the path.
func resolutionError(param string, err error) jsonapi.Error {
	var perr *fieldpath.Error
	if !errors.As(err, &perr) {
		return jsonapi.ErrInvalidParameter(param, err.Error())
	}

	b := jsonapi.NewError(http.StatusBadRequest, perr.Kind.String(), errorTitles[perr.Kind]).
		Detail(perr.Error()).
		Parameter(param).
		Meta("kind", perr.Kind.String()).
		Meta("path", perr.Path).
		Meta("segment_index", perr.Index)
	if perr.Segment != "" {
		b.Meta("segment", perr.Segment)
	}
	if perr.EntityType != "" {
		b.Meta("entity_type", perr.EntityType)
	}
	return b.Build()
}

// queryErrors converts parse and translation failures, one error object per
// offending parameter.
func queryErrors(err error) []jsonapi.Error {
	var errs query.Errors
	if !errors.As(err, &errs) {
		return []jsonapi.Error{jsonapi.ErrBadRequest(err.Error())}
	}

	out := make([]jsonapi.Error, 0, len(errs))
	for _, e := range errs {
		out = append(out, resolutionError(e.Param, e))
	}
	return out
}
