package schema

// EntityType is the root definition for one entity type as written in YAML.
//
//	entity_type: article
//	bundles: [news, blog]
//	fields:
//	  title:  { type: string }
//	  body:   { type: text, bundles: [blog] }
//	  author: { type: entity_reference, target_type: user }
type EntityType struct {
	// ID is the machine name of the entity type (e.g., "node", "user").
	ID string `yaml:"entity_type"`

	// Config marks bundle-less configuration entities. They carry top-level
	// properties instead of fields.
	Config bool `yaml:"config,omitempty"`

	// Bundles lists the bundle ids. Ignored for config entities.
	Bundles []string `yaml:"bundles,omitempty"`

	// Properties are the top-level properties of a config entity.
	Properties []string `yaml:"properties,omitempty"`

	// Fields keyed by field name.
	Fields map[string]Field `yaml:"fields,omitempty"`

	// Meta contains optional metadata.
	Meta EntityMeta `yaml:"meta,omitempty"`
}

// EntityMeta contains optional entity type metadata.
type EntityMeta struct {
	Label       string `yaml:"label,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BundleSchema is the flattened field set of one (entity type, bundle) pair.
// Bundle is empty for config entities.
type BundleSchema struct {
	EntityType string
	Bundle     string
	Fields     map[string]FieldDefinition
}

// FieldNames returns the field names of the bundle in sorted order.
func (b BundleSchema) FieldNames() []string {
	return sortedKeys(b.Fields)
}

// fieldBundles returns the bundles a field is attached to.
func (e EntityType) fieldBundles(f Field) []string {
	if len(f.Bundles) > 0 {
		return f.Bundles
	}
	return e.Bundles
}
