package query

import (
	"fmt"

	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/schema"
)

// PathResolver is the part of the field path resolver the translator needs.
type PathResolver interface {
	Resolve(entityType, bundle, path string) (fieldpath.ResolvedPath, error)
	ResolveInclude(entityType, bundle, path string) (fieldpath.ResolvedPath, error)
}

// FilterPlan is a filter whose path has been resolved.
type FilterPlan struct {
	ID       string                 `json:"id"`
	Field    string                 `json:"field"`
	Path     fieldpath.ResolvedPath `json:"path"`
	Internal string                 `json:"internal"`
	Operator string                 `json:"operator"`
	Value    string                 `json:"value,omitempty"`
}

// SortPlan is a resolved sort field.
type SortPlan struct {
	Field      string                 `json:"field"`
	Path       fieldpath.ResolvedPath `json:"path"`
	Internal   string                 `json:"internal"`
	Descending bool                   `json:"descending"`
}

// IncludePlan is a resolved include path.
type IncludePlan struct {
	Field    string                 `json:"field"`
	Path     fieldpath.ResolvedPath `json:"path"`
	Internal string                 `json:"internal"`
}

// FieldsetPlan is a sparse fieldset whose field names exist on its resource type.
type FieldsetPlan struct {
	ResourceType string   `json:"resource_type"`
	Fields       []string `json:"fields"`
}

// Plan is the translated form of one request's query parameters.
type Plan struct {
	EntityType string         `json:"entity_type"`
	Bundle     string         `json:"bundle"`
	Filters    []FilterPlan   `json:"filters"`
	Sorts      []SortPlan     `json:"sorts"`
	Includes   []IncludePlan  `json:"includes"`
	Fieldsets  []FieldsetPlan `json:"fieldsets"`
}

// Translator resolves every path in Params against one resource type.
type Translator struct {
	resolver PathResolver
}

// NewTranslator creates a translator.
func NewTranslator(resolver PathResolver) *Translator {
	return &Translator{resolver: resolver}
}

// Translate resolves all filter, sort and include paths and checks every
// sparse fieldset against its own resource type. All failures are
// collected; the returned error is an Errors value whose entries wrap the
// resolution errors.
func (t *Translator) Translate(entityType, bundle string, params Params) (Plan, error) {
	plan := Plan{
		EntityType: entityType,
		Bundle:     bundle,
		Filters:    []FilterPlan{},
		Sorts:      []SortPlan{},
		Includes:   []IncludePlan{},
		Fieldsets:  []FieldsetPlan{},
	}
	var errs Errors

	for _, f := range params.Filters {
		resolved, err := t.resolver.Resolve(entityType, bundle, f.Path)
		if err != nil {
			errs = append(errs, &ParamError{Param: f.Param, Err: err})
			continue
		}
		plan.Filters = append(plan.Filters, FilterPlan{
			ID:       f.ID,
			Field:    f.Path,
			Path:     resolved,
			Internal: resolved.String(),
			Operator: f.Operator,
			Value:    f.Value,
		})
	}

	for _, s := range params.Sorts {
		resolved, err := t.resolver.Resolve(entityType, bundle, s.Path)
		if err != nil {
			errs = append(errs, &ParamError{Param: ParamSort, Err: err})
			continue
		}
		plan.Sorts = append(plan.Sorts, SortPlan{
			Field:      s.Path,
			Path:       resolved,
			Internal:   resolved.String(),
			Descending: s.Descending,
		})
	}

	for _, inc := range params.Includes {
		resolved, err := t.resolver.ResolveInclude(entityType, bundle, inc)
		if err != nil {
			errs = append(errs, &ParamError{Param: ParamInclude, Err: err})
			continue
		}
		plan.Includes = append(plan.Includes, IncludePlan{
			Field:    inc,
			Path:     resolved,
			Internal: resolved.String(),
		})
	}

	for _, fs := range params.Fieldsets {
		planned, fsErrs := t.fieldset(fs)
		if len(fsErrs) > 0 {
			errs = append(errs, fsErrs...)
			continue
		}
		plan.Fieldsets = append(plan.Fieldsets, planned)
	}

	if len(errs) > 0 {
		return Plan{}, errs
	}
	return plan, nil
}

// fieldset checks that every name is a single field (or config property) of
// the fieldset's resource type.
func (t *Translator) fieldset(fs Fieldset) (FieldsetPlan, Errors) {
	entityType, bundle, err := schema.ParseResourceTypeName(fs.ResourceType)
	if err != nil {
		return FieldsetPlan{}, Errors{{Param: fs.Param, Err: err}}
	}

	var errs Errors
	for _, name := range fs.Fields {
		if !schema.IsValidIdentifier(name) {
			errs = append(errs, &ParamError{Param: fs.Param, Err: fmt.Errorf("%w: %q", ErrBadFieldName, name)})
			continue
		}
		if _, err := t.resolver.Resolve(entityType, bundle, name); err != nil {
			errs = append(errs, &ParamError{Param: fs.Param, Err: err})
		}
	}
	if len(errs) > 0 {
		return FieldsetPlan{}, errs
	}
	return FieldsetPlan{ResourceType: fs.ResourceType, Fields: fs.Fields}, nil
}
