/*
Package schema defines entity types, bundles and fields, and flattens them into
a read-only Catalog used by the field path resolver.

An entity type owns one or more bundles. Each bundle declares named fields that
are either primitive (one or more properties such as value and format) or
references to another entity type. Config entity types have no bundles and no
field layer; they expose top-level properties instead.

# Entity Type Definition

A content entity type in YAML:

	entity_type: node
	bundles: [article, page]

	fields:
	  title:  { type: string }
	  body:   { type: text_with_summary, bundles: [article] }
	  tags:   { type: entity_reference, target_type: taxonomy_term, target_bundles: [tags] }
	  type:   { type: entity_reference, target_type: node_type }

A config entity type:

	entity_type: node_type
	config: true
	properties: [uuid, id, label]

# Field Types

Field types determine the kind and the default properties of a field:

  - string, integer, boolean, uuid, email, timestamp: [value]
  - text, text_long:                                  [value, format]
  - text_with_summary:                                [value, summary, format]
  - link:                                             [uri, title, options]
  - entity_reference:                                 reference, [target_id]

The first property is the default unless default_property says otherwise.
A field without a bundles list is attached to every bundle of its entity type.
A reference without target_bundles targets every bundle of the target type.

# Parsing

Load entity types from YAML and build the catalog:

	types, err := schema.ParseDir("schema/")
	catalog, err := schema.NewCatalog(types...)

The Catalog is immutable once built. Reloading builds a new one.
*/
package schema
