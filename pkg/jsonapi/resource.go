package jsonapi

// ResourceBuilder provides a fluent API for building Resource objects.
type ResourceBuilder struct {
	resource Resource
}

// NewResource creates a new ResourceBuilder with the given type and ID.
func NewResource(resourceType, id string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: Resource{
			Type:       resourceType,
			ID:         id,
			Attributes: make(map[string]any),
		},
	}
}

// Attr adds an attribute to the resource. Empty strings and nil values are skipped.
func (b *ResourceBuilder) Attr(key string, value any) *ResourceBuilder {
	switch v := value.(type) {
	case nil:
		return b
	case string:
		if v == "" {
			return b
		}
	}
	b.resource.Attributes[key] = value
	return b
}

// HasManyIDs adds a to-many relationship from a list of IDs of one type.
// An empty list is written as an empty array.
func (b *ResourceBuilder) HasManyIDs(name, relType string, ids []string) *ResourceBuilder {
	identifiers := make([]ResourceIdentifier, len(ids))
	for i, id := range ids {
		identifiers[i] = ResourceIdentifier{Type: relType, ID: id}
	}
	if b.resource.Relationships == nil {
		b.resource.Relationships = make(map[string]Relationship)
	}
	b.resource.Relationships[name] = Relationship{Data: identifiers}
	return b
}

// Link sets the self link of the resource.
func (b *ResourceBuilder) Link(self string) *ResourceBuilder {
	b.resource.Links = &Links{Self: self}
	return b
}

// Build returns the constructed Resource.
func (b *ResourceBuilder) Build() Resource {
	return b.resource
}

// ToIdentifier returns a ResourceIdentifier for this resource.
func (b *ResourceBuilder) ToIdentifier() ResourceIdentifier {
	return ResourceIdentifier{
		Type: b.resource.Type,
		ID:   b.resource.ID,
	}
}
