package http

import (
	"net/http"

	"github.com/artpar/fieldresolver/core/schema"
	"github.com/artpar/fieldresolver/pkg/jsonapi"
	"github.com/go-chi/chi/v5"
)

// ResourceTypeResource is the JSON:API type of /_schema entries.
const ResourceTypeResource = "resource_type"

// SchemaHandler handles catalog introspection requests.
type SchemaHandler struct {
	catalog CatalogSource
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(catalog CatalogSource) *SchemaHandler {
	return &SchemaHandler{catalog: catalog}
}

// Routes returns a router with all schema routes.
func (h *SchemaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listResourceTypes)
	r.Get("/{resource_type}", h.getResourceType)
	return r
}

// listResourceTypes handles GET /_schema
func (h *SchemaHandler) listResourceTypes(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog.Catalog()
	if cat == nil {
		jsonapi.WriteError(w, jsonapi.ErrServiceUnavailable("catalog not loaded"))
		return
	}

	summaries := cat.Summaries()
	page, perPage := jsonapi.ParsePaginationParams(r.URL.Query(), 50)
	p := jsonapi.NewPagination(summaries.Count, page, perPage, r.URL.Path)
	start, end := p.Bounds()

	resources := make([]jsonapi.Resource, 0, end-start)
	for _, s := range summaries.ResourceTypes[start:end] {
		resources = append(resources, jsonapi.NewResource(ResourceTypeResource, s.Name).
			Attr("entity_type", s.EntityType).
			Attr("bundle", s.Bundle).
			Attr("config", s.Config).
			Attr("label", s.Label).
			Link("/_schema/"+s.Name).
			Build())
	}

	jsonapi.WriteCollection(w, http.StatusOK, resources, p)
}

// getResourceType handles GET /_schema/{resource_type}
func (h *SchemaHandler) getResourceType(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog.Catalog()
	if cat == nil {
		jsonapi.WriteError(w, jsonapi.ErrServiceUnavailable("catalog not loaded"))
		return
	}

	name := chi.URLParam(r, "resource_type")
	entityType, bundle, err := schema.ParseResourceTypeName(name)
	if err != nil {
		jsonapi.WriteBadRequest(w, err.Error())
		return
	}

	desc, ok := cat.Describe(entityType, bundle)
	if !ok {
		jsonapi.WriteNotFound(w, "resource type")
		return
	}

	jsonapi.WriteResource(w, http.StatusOK, buildResourceType(desc))
}

// buildResourceType converts a schema description into a resource. Reference
// fields become relationships to the resource types they target.
func buildResourceType(desc schema.ResourceTypeSchemaResponse) jsonapi.Resource {
	b := jsonapi.NewResource(ResourceTypeResource, desc.Name).
		Attr("entity_type", desc.EntityType).
		Attr("bundle", desc.Bundle).
		Attr("config", desc.Config).
		Attr("label", desc.Label).
		Attr("description", desc.Description).
		Link("/_schema/" + desc.Name)

	if desc.Config {
		return b.Attr("properties", desc.Properties).Build()
	}

	fields := desc.Fields
	if fields == nil {
		fields = []schema.FieldSchema{}
	}
	b.Attr("fields", fields)

	for _, f := range desc.Fields {
		if f.TargetType == "" {
			continue
		}
		var targets []string
		if len(f.TargetBundles) == 0 {
			targets = []string{schema.ResourceTypeName(f.TargetType, "")}
		}
		for _, tb := range f.TargetBundles {
			targets = append(targets, schema.ResourceTypeName(f.TargetType, tb))
		}
		b.HasManyIDs(f.Name, ResourceTypeResource, targets)
	}
	return b.Build()
}
