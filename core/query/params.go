// Package query turns JSON:API filter, sort, include and sparse fieldset
// parameters into resolved field paths.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Query parameter names.
const (
	ParamFilter  = "filter"
	ParamSort    = "sort"
	ParamInclude = "include"
	ParamFields  = "fields"
)

// DefaultOperator is used when a filter names no operator.
const DefaultOperator = "="

var operators = map[string]bool{
	"=": true, "<>": true, ">": true, ">=": true, "<": true, "<=": true,
	"STARTS_WITH": true, "CONTAINS": true, "ENDS_WITH": true,
	"IN": true, "NOT IN": true, "BETWEEN": true, "NOT BETWEEN": true,
	"IS NULL": true, "IS NOT NULL": true,
}

var (
	ErrMalformedParam = errors.New("malformed query parameter")
	ErrMissingPath    = errors.New("filter condition has no path")
	ErrBadOperator    = errors.New("unsupported filter operator")
	ErrEmptyItem      = errors.New("empty list item")
	ErrBadFieldName   = errors.New("fieldset entries must be field names")
)

// Filter is one filter condition. Shorthand filters (filter[title]=x) use the
// path as their ID.
type Filter struct {
	ID       string
	Param    string
	Path     string
	Operator string
	Value    string
}

// SortField is one entry of the sort parameter.
type SortField struct {
	Path       string
	Descending bool
}

// Fieldset is one fields[<resource type>] parameter. An empty Fields list
// requests no fields of that type.
type Fieldset struct {
	ResourceType string
	Param        string
	Fields       []string
}

// Params are the parsed filter, sort, include and fieldset parameters.
type Params struct {
	Filters   []Filter
	Sorts     []SortField
	Includes  []string
	Fieldsets []Fieldset
}

// IsEmpty reports whether no parameter was given.
func (p Params) IsEmpty() bool {
	return len(p.Filters) == 0 && len(p.Sorts) == 0 && len(p.Includes) == 0 && len(p.Fieldsets) == 0
}

// ParamError ties an error to the query parameter that caused it.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Errors collects every parameter error of one request.
type Errors []*ParamError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("query errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// Parse extracts filters, sorts, includes and sparse fieldsets from a query
// string. Other parameters are ignored. Filters are returned ordered by ID and
// fieldsets by resource type.
func Parse(values url.Values) (Params, error) {
	var (
		params Params
		errs   Errors
	)

	conditions := make(map[string]*Filter)
	for key, vals := range values {
		if !strings.HasPrefix(key, ParamFilter+"[") {
			continue
		}
		if err := parseFilter(conditions, key, vals); err != nil {
			errs = append(errs, err)
		}
	}

	ids := make([]string, 0, len(conditions))
	for id := range conditions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		f := conditions[id]
		if f.Path == "" {
			errs = append(errs, &ParamError{Param: f.Param, Err: ErrMissingPath})
			continue
		}
		if f.Operator == "" {
			f.Operator = DefaultOperator
		}
		if !operators[f.Operator] {
			errs = append(errs, &ParamError{
				Param: filterParam(id, "operator"),
				Err:   fmt.Errorf("%w: %q", ErrBadOperator, f.Operator),
			})
			continue
		}
		params.Filters = append(params.Filters, *f)
	}

	if raw, ok := values[ParamSort]; ok {
		items, err := splitList(ParamSort, raw)
		if err != nil {
			errs = append(errs, err)
		}
		for _, item := range items {
			field := SortField{Path: item}
			if rest, ok := strings.CutPrefix(item, "-"); ok {
				field = SortField{Path: rest, Descending: true}
			}
			if field.Path == "" {
				errs = append(errs, &ParamError{Param: ParamSort, Err: ErrEmptyItem})
				continue
			}
			params.Sorts = append(params.Sorts, field)
		}
	}

	if raw, ok := values[ParamInclude]; ok {
		items, err := splitList(ParamInclude, raw)
		if err != nil {
			errs = append(errs, err)
		}
		params.Includes = items
	}

	fieldsets, fieldErrs := parseFieldsets(values)
	params.Fieldsets = fieldsets
	errs = append(errs, fieldErrs...)

	if len(errs) > 0 {
		return params, errs
	}
	return params, nil
}

// parseFieldsets handles fields[<resource type>]=a,b.
func parseFieldsets(values url.Values) ([]Fieldset, Errors) {
	var (
		fieldsets []Fieldset
		errs      Errors
	)
	for key, vals := range values {
		if !strings.HasPrefix(key, ParamFields+"[") {
			continue
		}
		parts, ok := brackets(strings.TrimPrefix(key, ParamFields))
		if !ok || len(parts) != 1 {
			errs = append(errs, &ParamError{Param: key, Err: ErrMalformedParam})
			continue
		}

		fs := Fieldset{ResourceType: parts[0], Param: key, Fields: []string{}}
		if len(vals) > 0 && vals[len(vals)-1] != "" {
			items, err := splitList(key, vals[len(vals)-1:])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fs.Fields = items
		}
		fieldsets = append(fieldsets, fs)
	}

	sort.Slice(fieldsets, func(i, j int) bool {
		return fieldsets[i].ResourceType < fieldsets[j].ResourceType
	})
	sort.Slice(errs, func(i, j int) bool { return errs[i].Param < errs[j].Param })
	return fieldsets, errs
}

// parseFilter handles filter[path]=value and
// filter[id][condition][path|operator|value]=x.
func parseFilter(conditions map[string]*Filter, key string, vals []string) *ParamError {
	parts, ok := brackets(strings.TrimPrefix(key, ParamFilter))
	if !ok {
		return &ParamError{Param: key, Err: ErrMalformedParam}
	}
	value := ""
	if len(vals) > 0 {
		value = vals[len(vals)-1]
	}

	id := parts[0]
	f, seen := conditions[id]
	if !seen {
		f = &Filter{ID: id}
	}

	switch {
	case len(parts) == 1:
		f.Param = key
		f.Path = id
		f.Value = value
	case len(parts) == 3 && parts[1] == "condition":
		f.Param = filterParam(id, "path")
		switch parts[2] {
		case "path":
			f.Path = value
		case "operator":
			f.Operator = strings.ToUpper(strings.TrimSpace(value))
		case "value":
			f.Value = value
		default:
			return &ParamError{Param: key, Err: ErrMalformedParam}
		}
	default:
		return &ParamError{Param: key, Err: ErrMalformedParam}
	}

	conditions[id] = f
	return nil
}

func filterParam(id, member string) string {
	return fmt.Sprintf("%s[%s][condition][%s]", ParamFilter, id, member)
}

// brackets splits "[a][b][c]" into its parts. Every part must be nonempty.
func brackets(s string) ([]string, bool) {
	var parts []string
	for s != "" {
		if s[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(s, ']')
		if end <= 1 {
			return nil, false
		}
		parts = append(parts, s[1:end])
		s = s[end+1:]
	}
	return parts, len(parts) > 0
}

func splitList(param string, raw []string) ([]string, *ParamError) {
	var items []string
	for _, v := range raw {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				return items, &ParamError{Param: param, Err: ErrEmptyItem}
			}
			items = append(items, item)
		}
	}
	return items, nil
}
