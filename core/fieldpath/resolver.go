package fieldpath

import (
	"fmt"
	"slices"
	"strings"

	"github.com/artpar/fieldresolver/core/schema"
	"github.com/rs/zerolog"
)

// Catalog is the read-only schema lookup the resolver consumes.
// *schema.Catalog implements it.
type Catalog interface {
	FieldDefinition(entityType, bundle, name string) (schema.FieldDefinition, bool)
	BundlesOf(entityType string) []string
	IsConfigEntity(entityType string) bool
	Properties(entityType string) []string
	HasBundle(entityType, bundle string) bool
}

// Resolver translates external dotted paths into ResolvedPaths.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog Catalog
	logger  zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output on failed resolutions.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver over a catalog.
func NewResolver(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: catalog,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve translates path, starting at (entityType, bundle). Failures are
// reported left to right: the first offending segment determines the error.
func (r *Resolver) Resolve(entityType, bundle, path string) (ResolvedPath, error) {
	segments, err := Split(path)
	if err != nil {
		return ResolvedPath{}, r.failed(entityType, bundle, err)
	}
	return r.resolve(path, entityType, bundle, segments)
}

// ResolveSegments resolves an already split path.
func (r *Resolver) ResolveSegments(entityType, bundle string, segments []Segment) (ResolvedPath, error) {
	return r.resolve(Join(segments), entityType, bundle, segments)
}

// ResolveInclude resolves a path used to include related resources. The path
// must end on a reference field.
func (r *Resolver) ResolveInclude(entityType, bundle, path string) (ResolvedPath, error) {
	resolved, err := r.Resolve(entityType, bundle, path)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !resolved.EndsOnReference() {
		segments := strings.Split(path, Delimiter)
		last := len(segments) - 1
		return ResolvedPath{}, r.failed(entityType, bundle, &Error{
			Kind:       KindNotARelationship,
			Path:       path,
			Index:      last,
			Segment:    segments[last],
			EntityType: entityType,
			Detail:     "include paths must end on a reference field",
		})
	}
	return resolved, nil
}

func (r *Resolver) resolve(path, entityType, bundle string, segments []Segment) (ResolvedPath, error) {
	res := &resolution{catalog: r.catalog, path: path, segments: segments}

	resolved, err := res.run(entityType, bundle)
	if err != nil {
		return ResolvedPath{}, r.failed(entityType, bundle, err)
	}
	return resolved, nil
}

func (r *Resolver) failed(entityType, bundle string, err error) error {
	if e, ok := err.(*Error); ok {
		r.logger.Debug().
			Str("entity_type", entityType).
			Str("bundle", bundle).
			Str("path", e.Path).
			Str("kind", e.Kind.String()).
			Int("segment", e.Index).
			Msg("path resolution failed")
	}
	return err
}

// resolution is the state of one Resolve call: a cursor over an immutable
// segment slice.
type resolution struct {
	catalog  Catalog
	path     string
	segments []Segment
}

func (res *resolution) run(entityType, bundle string) (ResolvedPath, error) {
	if len(res.segments) == 0 {
		return ResolvedPath{}, &Error{Kind: KindInvalidPathSyntax, Path: res.path, Index: 0, Detail: "empty path"}
	}

	if !res.catalog.HasBundle(entityType, bundle) {
		return ResolvedPath{}, &Error{
			Kind:       KindUnknownResourceType,
			Path:       res.path,
			Index:      -1,
			EntityType: entityType,
			Bundles:    []string{bundle},
		}
	}
	if res.catalog.IsConfigEntity(entityType) {
		bundle = ""
	}

	var ctx resolutionContext = singleBundle{entityType: entityType, bundle: bundle}
	var steps []FieldStep
	cur := 0

	for {
		if err := res.expectName(ctx, cur); err != nil {
			return ResolvedPath{}, err
		}

		if res.catalog.IsConfigEntity(ctx.entity()) {
			return res.configProperty(ctx, steps, cur)
		}

		def, err := res.matchField(ctx, cur)
		if err != nil {
			return ResolvedPath{}, err
		}
		step := FieldStep{Name: def.Name}
		cur++

		if def.Kind == schema.KindPrimitive {
			return res.primitive(ctx, steps, step, def, cur)
		}

		// Reference: optional delta, then optional keyword.
		step.TargetType = def.TargetType
		if cur < len(res.segments) && res.segments[cur].Kind == SegmentDelta {
			step.Delta = res.segments[cur].Delta
			step.HasDelta = true
			cur++
		}
		explicit := false
		if cur < len(res.segments) && res.segments[cur].Kind == SegmentKeyword {
			explicit = true
			cur++
		}
		if cur < len(res.segments) {
			switch res.segments[cur].Kind {
			case SegmentDelta, SegmentKeyword:
				return ResolvedPath{}, res.misplaced(ctx, cur, "at most one delta followed by at most one traversal keyword per reference")
			}
		}

		// Nothing left after the delta or keyword: the path addresses the
		// reference's own default value.
		remaining := len(res.segments) - cur
		if remaining == 0 {
			steps = append(steps, step)
			return newResolvedPath(steps, PropertyStep{Name: def.DefaultProperty, Implicit: true}), nil
		}

		next := res.segments[cur]
		ownsNext := remaining == 1 && next.Kind == SegmentName && def.HasProperty(next.Raw)
		if ownsNext && !explicit {
			steps = append(steps, step)
			return newResolvedPath(steps, PropertyStep{Name: next.Raw}), nil
		}

		// The keyword only changes the result when it overrode a
		// reference-owned property; otherwise it is sugar.
		step.Traversal = TraversalImplicit
		if explicit && ownsNext {
			step.Traversal = TraversalExplicit
		}
		steps = append(steps, step)
		ctx = targetContext(def.TargetType, def.TargetBundles)
	}
}

// expectName fails unless the segment at cur can be a field or property name.
func (res *resolution) expectName(ctx resolutionContext, cur int) error {
	seg := res.segments[cur]
	switch seg.Kind {
	case SegmentName:
		return nil
	case SegmentInvalid:
		err := syntaxError(res.path, cur, seg)
		err.EntityType = ctx.entity()
		err.Bundles = ctx.bundleSet()
		return err
	default:
		return res.misplaced(ctx, cur, "list index and traversal keyword may only follow a reference field")
	}
}

// configProperty is the base case of a config entity: the remaining segment
// must be one of its top-level properties and the last one of the path.
func (res *resolution) configProperty(ctx resolutionContext, steps []FieldStep, cur int) (ResolvedPath, error) {
	name := res.segments[cur].Raw
	if !slices.Contains(res.catalog.Properties(ctx.entity()), name) {
		return ResolvedPath{}, &Error{
			Kind:       KindUnknownProperty,
			Path:       res.path,
			Index:      cur,
			Segment:    name,
			EntityType: ctx.entity(),
			Detail:     fmt.Sprintf("config entity properties are [%s]", strings.Join(res.catalog.Properties(ctx.entity()), ", ")),
		}
	}
	if cur != len(res.segments)-1 {
		return ResolvedPath{}, &Error{
			Kind:       KindTrailingSegments,
			Path:       res.path,
			Index:      cur + 1,
			Segment:    res.segments[cur+1].Raw,
			EntityType: ctx.entity(),
			Detail:     fmt.Sprintf("property %q of a config entity cannot be traversed", name),
		}
	}
	return newResolvedPath(steps, PropertyStep{Name: name}), nil
}

// primitive finishes the path on a primitive field.
func (res *resolution) primitive(ctx resolutionContext, steps []FieldStep, step FieldStep, def schema.FieldDefinition, cur int) (ResolvedPath, error) {
	steps = append(steps, step)
	remaining := len(res.segments) - cur

	if remaining == 0 {
		return newResolvedPath(steps, PropertyStep{Name: def.DefaultProperty, Implicit: true}), nil
	}

	next := res.segments[cur]
	switch next.Kind {
	case SegmentInvalid:
		err := syntaxError(res.path, cur, next)
		err.EntityType = ctx.entity()
		err.Bundles = ctx.bundleSet()
		err.Field = def.Name
		return ResolvedPath{}, err
	case SegmentDelta, SegmentKeyword:
		return ResolvedPath{}, res.misplaced(ctx, cur, fmt.Sprintf("%q is a primitive field", def.Name))
	}

	if remaining > 1 {
		index := cur
		if def.HasProperty(next.Raw) {
			index = cur + 1
		}
		return ResolvedPath{}, &Error{
			Kind:       KindTrailingSegments,
			Path:       res.path,
			Index:      index,
			Segment:    res.segments[index].Raw,
			EntityType: ctx.entity(),
			Bundles:    ctx.bundleSet(),
			Field:      def.Name,
			Detail:     fmt.Sprintf("primitive field %q cannot be traversed", def.Name),
		}
	}

	if !def.HasProperty(next.Raw) {
		return ResolvedPath{}, &Error{
			Kind:       KindUnknownProperty,
			Path:       res.path,
			Index:      cur,
			Segment:    next.Raw,
			EntityType: ctx.entity(),
			Bundles:    ctx.bundleSet(),
			Field:      def.Name,
			Detail:     fmt.Sprintf("field %q has properties [%s]", def.Name, strings.Join(def.Properties, ", ")),
		}
	}

	return newResolvedPath(steps, PropertyStep{Name: next.Raw}), nil
}

// matchField looks the segment at cur up in every bundle of the context.
func (res *resolution) matchField(ctx resolutionContext, cur int) (schema.FieldDefinition, error) {
	name := res.segments[cur].Raw

	switch c := ctx.(type) {
	case singleBundle:
		def, ok := res.catalog.FieldDefinition(c.entityType, c.bundle, name)
		if !ok {
			return schema.FieldDefinition{}, res.unknownField(ctx, cur)
		}
		return def, nil

	case multiBundle:
		var found []schema.FieldDefinition
		var missing []string
		for _, bundle := range c.bundles {
			def, ok := res.catalog.FieldDefinition(c.entityType, bundle, name)
			if !ok {
				missing = append(missing, bundle)
				continue
			}
			found = append(found, def)
		}

		if len(found) == 0 {
			return schema.FieldDefinition{}, res.unknownField(ctx, cur)
		}
		if len(missing) > 0 {
			return schema.FieldDefinition{}, res.ambiguous(ctx, cur,
				fmt.Sprintf("missing from bundles [%s]", strings.Join(missing, ", ")))
		}
		return res.merge(ctx, cur, found)

	default:
		panic(fmt.Sprintf("fieldpath: unhandled resolution context %T", ctx))
	}
}

// merge checks that a field is defined uniformly and unions reference targets.
func (res *resolution) merge(ctx resolutionContext, cur int, defs []schema.FieldDefinition) (schema.FieldDefinition, error) {
	merged := defs[0]
	merged.Properties = append([]string(nil), merged.Properties...)
	targets := append([]string(nil), merged.TargetBundles...)

	for _, def := range defs[1:] {
		switch {
		case def.Kind != merged.Kind:
			return schema.FieldDefinition{}, res.ambiguous(ctx, cur,
				fmt.Sprintf("kind differs between bundles (%s, %s)", merged.Kind, def.Kind))
		case def.TargetType != merged.TargetType:
			return schema.FieldDefinition{}, res.ambiguous(ctx, cur,
				fmt.Sprintf("target type differs between bundles (%s, %s)", merged.TargetType, def.TargetType))
		case !slices.Equal(def.Properties, merged.Properties) || def.DefaultProperty != merged.DefaultProperty:
			return schema.FieldDefinition{}, res.ambiguous(ctx, cur, "properties differ between bundles")
		}
		for _, b := range def.TargetBundles {
			if !slices.Contains(targets, b) {
				targets = append(targets, b)
			}
		}
	}

	slices.Sort(targets)
	merged.TargetBundles = targets
	return merged, nil
}

func (res *resolution) unknownField(ctx resolutionContext, cur int) *Error {
	return &Error{
		Kind:       KindUnknownField,
		Path:       res.path,
		Index:      cur,
		Segment:    res.segments[cur].Raw,
		EntityType: ctx.entity(),
		Bundles:    ctx.bundleSet(),
		Field:      res.segments[cur].Raw,
	}
}

func (res *resolution) ambiguous(ctx resolutionContext, cur int, detail string) *Error {
	return &Error{
		Kind:       KindAmbiguousOrMissingField,
		Path:       res.path,
		Index:      cur,
		Segment:    res.segments[cur].Raw,
		EntityType: ctx.entity(),
		Bundles:    ctx.bundleSet(),
		Field:      res.segments[cur].Raw,
		Detail:     detail,
	}
}

func (res *resolution) misplaced(ctx resolutionContext, cur int, detail string) *Error {
	return &Error{
		Kind:       KindMisplacedDeltaOrKeyword,
		Path:       res.path,
		Index:      cur,
		Segment:    res.segments[cur].Raw,
		EntityType: ctx.entity(),
		Bundles:    ctx.bundleSet(),
		Detail:     detail,
	}
}
