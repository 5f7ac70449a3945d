package schema

// ResourceTypeListResponse is returned by GET /_schema
type ResourceTypeListResponse struct {
	ResourceTypes []ResourceTypeSummary `json:"resource_types"`
	Count         int                   `json:"count"`
}

// ResourceTypeSummary provides a brief overview of one (entity type, bundle).
type ResourceTypeSummary struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Bundle     string `json:"bundle,omitempty"`
	Config     bool   `json:"config,omitempty"`
	Label      string `json:"label,omitempty"`
}

// ResourceTypeSchemaResponse is returned by GET /_schema/{resource_type}
type ResourceTypeSchemaResponse struct {
	Name        string        `json:"name"`
	EntityType  string        `json:"entity_type"`
	Bundle      string        `json:"bundle,omitempty"`
	Config      bool          `json:"config,omitempty"`
	Label       string        `json:"label,omitempty"`
	Description string        `json:"description,omitempty"`
	Fields      []FieldSchema `json:"fields,omitempty"`
	Properties  []string      `json:"properties,omitempty"` // config entities only
}

// FieldSchema describes a bundle field for introspection.
type FieldSchema struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Kind            string   `json:"kind"`
	Properties      []string `json:"properties"`
	DefaultProperty string   `json:"default_property"`
	TargetType      string   `json:"target_type,omitempty"`
	TargetBundles   []string `json:"target_bundles,omitempty"`
}

// Summaries lists every resource type of the catalog.
func (c *Catalog) Summaries() ResourceTypeListResponse {
	resp := ResourceTypeListResponse{ResourceTypes: []ResourceTypeSummary{}}
	for _, id := range c.ordered {
		e := c.types[id]
		for _, bundle := range e.bundleIDs {
			resp.ResourceTypes = append(resp.ResourceTypes, ResourceTypeSummary{
				Name:       ResourceTypeName(id, bundle),
				EntityType: id,
				Bundle:     bundle,
				Config:     e.config,
				Label:      e.meta.Label,
			})
		}
	}
	resp.Count = len(resp.ResourceTypes)
	return resp
}

// Describe returns the introspection document of one (entity type, bundle).
func (c *Catalog) Describe(entityType, bundle string) (ResourceTypeSchemaResponse, bool) {
	bs, ok := c.Bundle(entityType, bundle)
	if !ok {
		return ResourceTypeSchemaResponse{}, false
	}
	e := c.types[entityType]

	resp := ResourceTypeSchemaResponse{
		Name:        ResourceTypeName(entityType, bs.Bundle),
		EntityType:  entityType,
		Bundle:      bs.Bundle,
		Config:      e.config,
		Label:       e.meta.Label,
		Description: e.meta.Description,
	}
	if e.config {
		resp.Properties = append([]string(nil), e.properties...)
		return resp, true
	}

	for _, name := range bs.FieldNames() {
		def := bs.Fields[name]
		resp.Fields = append(resp.Fields, FieldSchema{
			Name:            def.Name,
			Type:            string(def.Type),
			Kind:            def.Kind.String(),
			Properties:      append([]string(nil), def.Properties...),
			DefaultProperty: def.DefaultProperty,
			TargetType:      def.TargetType,
			TargetBundles:   append([]string(nil), def.TargetBundles...),
		})
	}
	return resp, true
}
