package schema

// FieldKind separates fields that hold values from fields that point at other entities.
type FieldKind int

const (
	// KindPrimitive holds one or more properties (value, format, ...).
	KindPrimitive FieldKind = iota

	// KindReference points at entities of a target type.
	KindReference
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// FieldType is the storage type label of a field.
type FieldType string

const (
	// Single value types
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeUUID      FieldType = "uuid"
	FieldTypeEmail     FieldType = "email"
	FieldTypeTimestamp FieldType = "timestamp"

	// Multi-property types
	FieldTypeText            FieldType = "text"
	FieldTypeTextLong        FieldType = "text_long"
	FieldTypeTextWithSummary FieldType = "text_with_summary"
	FieldTypeLink            FieldType = "link"

	// Reference types
	FieldTypeEntityReference FieldType = "entity_reference"
)

// PropertyTargetID is the property every reference field owns.
const PropertyTargetID = "target_id"

// Field is a field as written in a YAML definition. It is attached to the
// bundles listed in Bundles, or to every bundle of the entity type when empty.
type Field struct {
	// Type is the field type. See FieldType constants.
	Type FieldType `yaml:"type"`

	// Bundles lists the bundles carrying this field.
	Bundles []string `yaml:"bundles,omitempty"`

	// Properties overrides the properties derived from Type.
	Properties []string `yaml:"properties,omitempty"`

	// DefaultProperty overrides the first property as default.
	DefaultProperty string `yaml:"default_property,omitempty"`

	// TargetType is the referenced entity type for entity_reference fields.
	TargetType string `yaml:"target_type,omitempty"`

	// TargetBundles restricts the referenced bundles. Empty means every
	// bundle of TargetType.
	TargetBundles []string `yaml:"target_bundles,omitempty"`
}

// FieldDefinition is the flattened, resolved form of a field on one bundle.
type FieldDefinition struct {
	Name            string
	Type            FieldType
	Kind            FieldKind
	Properties      []string
	DefaultProperty string

	// Reference only.
	TargetType    string
	TargetBundles []string
}

// IsReference reports whether the field points at another entity type.
func (d FieldDefinition) IsReference() bool {
	return d.Kind == KindReference
}

// HasProperty reports whether name is one of the declared properties.
func (d FieldDefinition) HasProperty(name string) bool {
	for _, p := range d.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// KindOf returns the kind implied by a field type.
func KindOf(t FieldType) FieldKind {
	if t == FieldTypeEntityReference {
		return KindReference
	}
	return KindPrimitive
}

// DefaultProperties returns the properties a field type carries when the
// definition does not list them.
func DefaultProperties(t FieldType) []string {
	switch t {
	case FieldTypeText, FieldTypeTextLong:
		return []string{"value", "format"}
	case FieldTypeTextWithSummary:
		return []string{"value", "summary", "format"}
	case FieldTypeLink:
		return []string{"uri", "title", "options"}
	case FieldTypeEntityReference:
		return []string{PropertyTargetID}
	default:
		return []string{"value"}
	}
}

// isValidFieldType checks if a field type is valid.
func isValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeString, FieldTypeInteger, FieldTypeBoolean, FieldTypeUUID,
		FieldTypeEmail, FieldTypeTimestamp,
		FieldTypeText, FieldTypeTextLong, FieldTypeTextWithSummary, FieldTypeLink,
		FieldTypeEntityReference:
		return true
	default:
		return false
	}
}

// define converts a YAML field into its flattened definition.
func (f Field) define(name string) FieldDefinition {
	props := f.Properties
	if len(props) == 0 {
		props = DefaultProperties(f.Type)
	}
	def := FieldDefinition{
		Name:            name,
		Type:            f.Type,
		Kind:            KindOf(f.Type),
		Properties:      append([]string(nil), props...),
		DefaultProperty: f.DefaultProperty,
	}
	if def.DefaultProperty == "" && len(def.Properties) > 0 {
		def.DefaultProperty = def.Properties[0]
	}
	if def.Kind == KindReference {
		def.TargetType = f.TargetType
		def.TargetBundles = append([]string(nil), f.TargetBundles...)
	}
	return def
}
