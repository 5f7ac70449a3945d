package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/fieldresolver/core/schema"
	"github.com/google/uuid"
)

// timeFormat sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoSchema is returned by Load when no catalog has been saved yet.
var ErrNoSchema = errors.New("no schema stored")

// Revision describes one saved catalog.
type Revision struct {
	ID          string
	EntityTypes int
	Fields      int
	CreatedAt   time.Time
}

// SchemaStore persists a flattened schema.Catalog, one row per
// (entity type, bundle, field).
type SchemaStore struct {
	db *DB
}

// NewSchemaStore creates a new SQLite schema store.
func NewSchemaStore(db *DB) *SchemaStore {
	return &SchemaStore{db: db}
}

// Save replaces the stored schema with the given catalog and records a revision.
func (s *SchemaStore) Save(ctx context.Context, c *schema.Catalog) (Revision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"field_config", "bundles", "entity_types"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Revision{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	rev := Revision{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	for _, id := range c.EntityTypes() {
		meta := c.Meta(id)
		config := c.IsConfigEntity(id)

		props, err := marshalStrings(c.Properties(id))
		if err != nil {
			return Revision{}, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO entity_types (id, config, properties, label, description)
			VALUES (?, ?, ?, ?, ?)
		`, id, config, props, meta.Label, meta.Description)
		if err != nil {
			return Revision{}, fmt.Errorf("insert entity type %s: %w", id, err)
		}
		rev.EntityTypes++

		if config {
			continue
		}

		for _, bundle := range c.BundlesOf(id) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bundles (entity_type, bundle) VALUES (?, ?)`, id, bundle,
			); err != nil {
				return Revision{}, fmt.Errorf("insert bundle %s: %w", schema.ResourceTypeName(id, bundle), err)
			}

			bs, _ := c.Bundle(id, bundle)
			for _, name := range bs.FieldNames() {
				if err := insertField(ctx, tx, id, bundle, bs.Fields[name]); err != nil {
					return Revision{}, err
				}
				rev.Fields++
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_revisions (id, entity_types, fields, created_at)
		VALUES (?, ?, ?, ?)
	`, rev.ID, rev.EntityTypes, rev.Fields, rev.CreatedAt.Format(timeFormat))
	if err != nil {
		return Revision{}, fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, fmt.Errorf("commit schema: %w", err)
	}
	return rev, nil
}

func insertField(ctx context.Context, tx *sql.Tx, entityType, bundle string, def schema.FieldDefinition) error {
	props, err := marshalStrings(def.Properties)
	if err != nil {
		return err
	}
	targets, err := marshalStrings(def.TargetBundles)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO field_config (
			entity_type, bundle, field_name, field_type, properties,
			default_property, target_type, target_bundles
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entityType, bundle, def.Name, string(def.Type), props,
		def.DefaultProperty, def.TargetType, targets)
	if err != nil {
		return fmt.Errorf("insert field %s.%s: %w", schema.ResourceTypeName(entityType, bundle), def.Name, err)
	}
	return nil
}

// Load rebuilds the stored catalog. It returns ErrNoSchema when nothing was saved.
func (s *SchemaStore) Load(ctx context.Context) (*schema.Catalog, error) {
	b := schema.NewBuilder()

	metas, err := s.loadEntityTypes(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ErrNoSchema
	}

	if err := s.loadBundles(ctx, b); err != nil {
		return nil, err
	}
	for id, meta := range metas {
		b.SetMeta(id, meta)
	}

	if err := s.loadFields(ctx, b); err != nil {
		return nil, err
	}

	return b.Build()
}

// loadEntityTypes adds config types to b and returns the metadata of every
// stored entity type. Content types come into existence with their first bundle.
func (s *SchemaStore) loadEntityTypes(ctx context.Context, b *schema.Builder) (map[string]schema.EntityMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config, properties, label, description
		FROM entity_types ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query entity types: %w", err)
	}
	defer rows.Close()

	metas := make(map[string]schema.EntityMeta)
	for rows.Next() {
		var (
			id, propsJSON      string
			label, description string
			config             bool
		)
		if err := rows.Scan(&id, &config, &propsJSON, &label, &description); err != nil {
			return nil, fmt.Errorf("scan entity type: %w", err)
		}

		if config {
			props, err := unmarshalStrings(propsJSON)
			if err != nil {
				return nil, fmt.Errorf("entity type %s properties: %w", id, err)
			}
			b.AddConfigType(id, props...)
		}
		metas[id] = schema.EntityMeta{Label: label, Description: description}
	}
	return metas, rows.Err()
}

func (s *SchemaStore) loadBundles(ctx context.Context, b *schema.Builder) error {
	rows, err := s.db.QueryContext(ctx, `SELECT entity_type, bundle FROM bundles ORDER BY entity_type, bundle`)
	if err != nil {
		return fmt.Errorf("query bundles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entityType, bundle string
		if err := rows.Scan(&entityType, &bundle); err != nil {
			return fmt.Errorf("scan bundle: %w", err)
		}
		b.AddBundle(entityType, bundle)
	}
	return rows.Err()
}

func (s *SchemaStore) loadFields(ctx context.Context, b *schema.Builder) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_type, bundle, field_name, field_type, properties,
		       default_property, target_type, target_bundles
		FROM field_config
		ORDER BY entity_type, bundle, field_name
	`)
	if err != nil {
		return fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entityType, bundle, fieldType string
			propsJSON, targetsJSON        string
			def                           schema.FieldDefinition
		)
		if err := rows.Scan(&entityType, &bundle, &def.Name, &fieldType, &propsJSON,
			&def.DefaultProperty, &def.TargetType, &targetsJSON); err != nil {
			return fmt.Errorf("scan field: %w", err)
		}

		def.Type = schema.FieldType(fieldType)
		def.Kind = schema.KindOf(def.Type)
		if def.Properties, err = unmarshalStrings(propsJSON); err != nil {
			return fmt.Errorf("field %s properties: %w", def.Name, err)
		}
		if def.TargetBundles, err = unmarshalStrings(targetsJSON); err != nil {
			return fmt.Errorf("field %s target bundles: %w", def.Name, err)
		}

		b.AddField(entityType, bundle, def)
	}
	return rows.Err()
}

// LatestRevision returns the most recently saved revision.
func (s *SchemaStore) LatestRevision(ctx context.Context) (Revision, error) {
	var (
		rev       Revision
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, entity_types, fields, created_at
		FROM schema_revisions
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&rev.ID, &rev.EntityTypes, &rev.Fields, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Revision{}, ErrNoSchema
		}
		return Revision{}, fmt.Errorf("query revision: %w", err)
	}

	rev.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return Revision{}, fmt.Errorf("parse revision %s created_at: %w", rev.ID, err)
	}
	return rev, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	var values []string
	if data == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
