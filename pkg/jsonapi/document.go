package jsonapi

// DocumentBuilder provides a fluent API for building Document objects.
type DocumentBuilder struct {
	doc Document
}

// NewDocument creates a new DocumentBuilder. Every document carries the
// jsonapi version object.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{
		doc: Document{JSONAPI: &JSONAPI{Version: Version}},
	}
}

// DataResource sets a single resource as the primary data.
func (b *DocumentBuilder) DataResource(r Resource) *DocumentBuilder {
	b.doc.Data = r
	return b
}

// DataCollection sets a collection of resources as the primary data.
// A nil slice is written as an empty array.
func (b *DocumentBuilder) DataCollection(resources []Resource) *DocumentBuilder {
	if resources == nil {
		resources = []Resource{}
	}
	b.doc.Data = resources
	return b
}

// Errors sets the errors array. This is mutually exclusive with Data.
func (b *DocumentBuilder) Errors(errors ...Error) *DocumentBuilder {
	b.doc.Errors = errors
	b.doc.Data = nil
	return b
}

// Meta adds a metadata entry to the document.
func (b *DocumentBuilder) Meta(key string, value any) *DocumentBuilder {
	if b.doc.Meta == nil {
		b.doc.Meta = make(Meta)
	}
	b.doc.Meta[key] = value
	return b
}

// MetaAll merges all entries into the document metadata.
func (b *DocumentBuilder) MetaAll(meta Meta) *DocumentBuilder {
	for k, v := range meta {
		b.Meta(k, v)
	}
	return b
}

// Links sets the top-level links.
func (b *DocumentBuilder) Links(links *Links) *DocumentBuilder {
	b.doc.Links = links
	return b
}

// Pagination adds pagination metadata and links.
func (b *DocumentBuilder) Pagination(p *Pagination) *DocumentBuilder {
	if p == nil {
		return b
	}
	b.MetaAll(p.Meta())
	b.doc.Links = p.Links()
	return b
}

// Build returns the constructed Document.
func (b *DocumentBuilder) Build() Document {
	return b.doc
}

// NewErrorDocument is a convenience function for creating an error document.
func NewErrorDocument(errors ...Error) Document {
	return NewDocument().Errors(errors...).Build()
}
