/*
Package fieldpath resolves external dotted field paths into canonical internal paths.

Clients address data in filters, sorts and includes with paths such as

	field_tags.0.entity.name.value

A Resolver walks such a path against a schema Catalog, starting at an entity
type and bundle:

  - a name segment matches a field of every bundle in the current context
  - after a reference field, an optional list index (delta) and an optional
    "entity" keyword may follow, then the path continues on the target bundles
  - the final segment may name a property; without one the field's default
    property is recorded as implicit
  - config entities have no fields; the final segment names a top-level property

The result is an immutable ResolvedPath whose String form is the internal path
used by the storage layer:

	field_tags.0.entity:taxonomy_term.name.value

Every failure is an *Error carrying its ErrorKind, the path and the index of
the offending segment. Errors unwrap to sentinels such as ErrUnknownField.

Resolution is pure and synchronous. A Resolver can be shared by any number of
goroutines as long as its Catalog is not mutated.
*/
package fieldpath
