package schema

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ResourceTypeSeparator joins entity type and bundle in public resource type names.
const ResourceTypeSeparator = "--"

// Catalog is the flattened, read-only schema lookup keyed by (entity type, bundle).
// A Catalog is never mutated after Build returns, so it can be shared between
// goroutines without locking.
type Catalog struct {
	types   map[string]*entityEntry
	ordered []string
}

type entityEntry struct {
	id         string
	config     bool
	properties []string
	bundles    map[string]BundleSchema
	bundleIDs  []string
	meta       EntityMeta
}

// NewCatalog validates the given definitions and flattens them into a Catalog.
func NewCatalog(types ...EntityType) (*Catalog, error) {
	b := NewBuilder()
	for _, et := range types {
		b.AddEntityType(et)
	}
	return b.Build()
}

// FieldDefinition returns the definition of a field on (entityType, bundle).
func (c *Catalog) FieldDefinition(entityType, bundle, name string) (FieldDefinition, bool) {
	bs, ok := c.Bundle(entityType, bundle)
	if !ok {
		return FieldDefinition{}, false
	}
	def, ok := bs.Fields[name]
	return def, ok
}

// Bundle returns the bundle schema of (entityType, bundle).
// For config entities, both "" and the entity type id address the null bundle.
func (c *Catalog) Bundle(entityType, bundle string) (BundleSchema, bool) {
	e, ok := c.types[entityType]
	if !ok {
		return BundleSchema{}, false
	}
	if e.config && bundle == entityType {
		bundle = ""
	}
	bs, ok := e.bundles[bundle]
	return bs, ok
}

// HasBundle reports whether (entityType, bundle) exists.
func (c *Catalog) HasBundle(entityType, bundle string) bool {
	_, ok := c.Bundle(entityType, bundle)
	return ok
}

// BundlesOf returns the sorted bundle ids of an entity type.
// Config entities return a single empty bundle id.
func (c *Catalog) BundlesOf(entityType string) []string {
	e, ok := c.types[entityType]
	if !ok {
		return nil
	}
	return append([]string(nil), e.bundleIDs...)
}

// IsConfigEntity reports whether entityType is a bundle-less config entity.
func (c *Catalog) IsConfigEntity(entityType string) bool {
	e, ok := c.types[entityType]
	return ok && e.config
}

// Properties returns the top-level properties of a config entity.
func (c *Catalog) Properties(entityType string) []string {
	e, ok := c.types[entityType]
	if !ok {
		return nil
	}
	return append([]string(nil), e.properties...)
}

// EntityTypes returns all entity type ids in sorted order.
func (c *Catalog) EntityTypes() []string {
	return append([]string(nil), c.ordered...)
}

// Meta returns the metadata of an entity type.
func (c *Catalog) Meta(entityType string) EntityMeta {
	if e, ok := c.types[entityType]; ok {
		return e.meta
	}
	return EntityMeta{}
}

// ResourceTypes returns the public resource type names ("node--article") of
// every bundle in the catalog.
func (c *Catalog) ResourceTypes() []string {
	var names []string
	for _, id := range c.ordered {
		for _, bundle := range c.types[id].bundleIDs {
			names = append(names, ResourceTypeName(id, bundle))
		}
	}
	return names
}

// ResourceTypeName returns the public name of a resource type.
// Config entities use their own id as bundle.
func ResourceTypeName(entityType, bundle string) string {
	if bundle == "" {
		bundle = entityType
	}
	return entityType + ResourceTypeSeparator + bundle
}

// ParseResourceTypeName splits "node--article" into its entity type and bundle.
func ParseResourceTypeName(name string) (entityType, bundle string, err error) {
	entityType, bundle, ok := strings.Cut(name, ResourceTypeSeparator)
	if !ok || entityType == "" || bundle == "" {
		return "", "", fmt.Errorf("invalid resource type name %q", name)
	}
	return entityType, bundle, nil
}

// Builder collects entity types, bundles and per-bundle field definitions and
// produces an immutable Catalog. It is used by NewCatalog and by stores that
// keep one row per (entity type, bundle, field).
type Builder struct {
	types map[string]*entityEntry
	errs  []string
}

// NewBuilder creates an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{types: make(map[string]*entityEntry)}
}

// AddEntityType adds a YAML definition with all its bundles and fields.
func (b *Builder) AddEntityType(et EntityType) *Builder {
	if err := Validate(et); err != nil {
		b.errs = append(b.errs, fmt.Sprintf("entity type %q: %v", et.ID, err))
		return b
	}
	if _, exists := b.types[et.ID]; exists {
		b.errs = append(b.errs, fmt.Sprintf("entity type %q already defined", et.ID))
		return b
	}

	if et.Config {
		return b.AddConfigType(et.ID, et.Properties...).SetMeta(et.ID, et.Meta)
	}

	for _, bundle := range et.Bundles {
		b.AddBundle(et.ID, bundle)
	}
	b.SetMeta(et.ID, et.Meta)

	for _, name := range sortedKeys(et.Fields) {
		f := et.Fields[name]
		for _, bundle := range et.fieldBundles(f) {
			b.AddField(et.ID, bundle, f.define(name))
		}
	}
	return b
}

// AddConfigType adds a bundle-less config entity type with top-level properties.
func (b *Builder) AddConfigType(entityType string, properties ...string) *Builder {
	if _, exists := b.types[entityType]; exists {
		b.errs = append(b.errs, fmt.Sprintf("entity type %q already defined", entityType))
		return b
	}
	b.types[entityType] = &entityEntry{
		id:         entityType,
		config:     true,
		properties: append([]string(nil), properties...),
		bundles: map[string]BundleSchema{
			"": {EntityType: entityType, Fields: map[string]FieldDefinition{}},
		},
	}
	return b
}

// AddBundle adds a bundle to a content entity type, creating the type if needed.
func (b *Builder) AddBundle(entityType, bundle string) *Builder {
	e, ok := b.types[entityType]
	if !ok {
		e = &entityEntry{id: entityType, bundles: make(map[string]BundleSchema)}
		b.types[entityType] = e
	}
	if e.config {
		b.errs = append(b.errs, fmt.Sprintf("config entity type %q cannot have bundle %q", entityType, bundle))
		return b
	}
	if bundle == "" {
		b.errs = append(b.errs, fmt.Sprintf("entity type %q: bundle id is required", entityType))
		return b
	}
	if _, exists := e.bundles[bundle]; !exists {
		e.bundles[bundle] = BundleSchema{
			EntityType: entityType,
			Bundle:     bundle,
			Fields:     make(map[string]FieldDefinition),
		}
	}
	return b
}

// SetMeta sets the label and description of an already added entity type.
func (b *Builder) SetMeta(entityType string, meta EntityMeta) *Builder {
	e, ok := b.types[entityType]
	if !ok {
		b.errs = append(b.errs, fmt.Sprintf("meta: unknown entity type %q", entityType))
		return b
	}
	e.meta = meta
	return b
}

// AddField attaches a field definition to one bundle.
func (b *Builder) AddField(entityType, bundle string, def FieldDefinition) *Builder {
	e, ok := b.types[entityType]
	if !ok || e.config {
		b.errs = append(b.errs, fmt.Sprintf("field %q: unknown content entity type %q", def.Name, entityType))
		return b
	}
	bs, ok := e.bundles[bundle]
	if !ok {
		b.errs = append(b.errs, fmt.Sprintf("field %q: unknown bundle %q of %q", def.Name, bundle, entityType))
		return b
	}
	if _, exists := bs.Fields[def.Name]; exists {
		b.errs = append(b.errs, fmt.Sprintf("field %q defined twice on %s", def.Name, ResourceTypeName(entityType, bundle)))
		return b
	}
	if err := validateDefinition(def); err != nil {
		b.errs = append(b.errs, fmt.Sprintf("%s: %v", ResourceTypeName(entityType, bundle), err))
		return b
	}
	bs.Fields[def.Name] = def
	return b
}

// Build validates references across entity types and returns the Catalog.
func (b *Builder) Build() (*Catalog, error) {
	errs := append([]string(nil), b.errs...)

	c := &Catalog{types: make(map[string]*entityEntry, len(b.types))}

	for id, e := range b.types {
		if len(e.bundles) == 0 {
			errs = append(errs, fmt.Sprintf("entity type %q has no bundles", id))
		}
		c.types[id] = &entityEntry{
			id:         id,
			config:     e.config,
			properties: append([]string(nil), e.properties...),
			bundles:    make(map[string]BundleSchema, len(e.bundles)),
			bundleIDs:  sortedKeys(e.bundles),
			meta:       e.meta,
		}
		c.ordered = append(c.ordered, id)
	}
	sort.Strings(c.ordered)

	// Second pass: references need every entity type to be known.
	for _, id := range c.ordered {
		src := b.types[id]
		dst := c.types[id]
		for _, bundle := range dst.bundleIDs {
			bs := src.bundles[bundle]
			fields := make(map[string]FieldDefinition, len(bs.Fields))
			for name, def := range bs.Fields {
				if def.Kind == KindReference {
					resolved, err := resolveTargets(c, def)
					if err != nil {
						errs = append(errs, fmt.Sprintf("%s: field %q: %v", ResourceTypeName(id, bundle), name, err))
						continue
					}
					def = resolved
				}
				def.Properties = append([]string(nil), def.Properties...)
				fields[name] = def
			}
			dst.bundles[bundle] = BundleSchema{EntityType: id, Bundle: bundle, Fields: fields}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, fmt.Errorf("catalog errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return c, nil
}

// resolveTargets checks a reference target and expands an empty bundle list to
// every bundle of a content target. Config targets keep an empty list.
func resolveTargets(c *Catalog, def FieldDefinition) (FieldDefinition, error) {
	target, ok := c.types[def.TargetType]
	if !ok {
		return def, fmt.Errorf("unknown target type %q", def.TargetType)
	}

	if target.config {
		if len(def.TargetBundles) > 0 {
			return def, fmt.Errorf("config target %q has no bundles", def.TargetType)
		}
		def.TargetBundles = nil
		return def, nil
	}

	if len(def.TargetBundles) == 0 {
		def.TargetBundles = append([]string(nil), target.bundleIDs...)
		return def, nil
	}

	bundles := append([]string(nil), def.TargetBundles...)
	sort.Strings(bundles)
	for i, bundle := range bundles {
		if i > 0 && bundles[i-1] == bundle {
			return def, fmt.Errorf("target bundle %q listed twice", bundle)
		}
		if !slices.Contains(target.bundleIDs, bundle) {
			return def, fmt.Errorf("unknown target bundle %q of %q", bundle, def.TargetType)
		}
	}
	def.TargetBundles = bundles
	return def, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
