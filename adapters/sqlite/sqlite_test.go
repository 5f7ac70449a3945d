package sqlite_test

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/artpar/fieldresolver/adapters/sqlite"
	"github.com/artpar/fieldresolver/core/schema"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "fieldresolver-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
		os.Remove(path + "-wal")
		os.Remove(path + "-shm")
	}

	return db, cleanup
}

func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	c, err := schema.NewCatalog(
		schema.EntityType{
			ID:      "node",
			Bundles: []string{"article", "page"},
			Fields: map[string]schema.Field{
				"title": {Type: schema.FieldTypeString},
				"body":  {Type: schema.FieldTypeTextWithSummary, Bundles: []string{"article"}},
				"tags":  {Type: schema.FieldTypeEntityReference, TargetType: "taxonomy_term"},
				"type":  {Type: schema.FieldTypeEntityReference, TargetType: "node_type"},
			},
			Meta: schema.EntityMeta{Label: "Content", Description: "Site content"},
		},
		schema.EntityType{
			ID:      "taxonomy_term",
			Bundles: []string{"tags"},
			Fields: map[string]schema.Field{
				"name": {Type: schema.FieldTypeString},
			},
		},
		schema.EntityType{
			ID:         "node_type",
			Config:     true,
			Properties: []string{"uuid", "id", "label"},
			Meta:       schema.EntityMeta{Label: "Content type"},
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	applied, err := db.AppliedMigrations(context.Background())
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != 1 || applied[0] != "001_schema" {
		t.Errorf("AppliedMigrations() = %v, want [001_schema]", applied)
	}
}

func TestSchemaStore_LoadEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSchemaStore(db)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, sqlite.ErrNoSchema) {
		t.Errorf("Load() error = %v, want ErrNoSchema", err)
	}
	if _, err := store.LatestRevision(ctx); !errors.Is(err, sqlite.ErrNoSchema) {
		t.Errorf("LatestRevision() error = %v, want ErrNoSchema", err)
	}
}

func TestSchemaStore_SaveAndLoad(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSchemaStore(db)
	ctx := context.Background()
	want := testCatalog(t)

	rev, err := store.Save(ctx, want)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if rev.ID == "" {
		t.Error("Save() should assign a revision id")
	}
	if rev.EntityTypes != 3 {
		t.Errorf("rev.EntityTypes = %d, want 3", rev.EntityTypes)
	}
	// article: body, tags, title, type; page: tags, title, type; tags: name
	if rev.Fields != 8 {
		t.Errorf("rev.Fields = %d, want 8", rev.Fields)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(got.EntityTypes(), want.EntityTypes()) {
		t.Errorf("EntityTypes() = %v, want %v", got.EntityTypes(), want.EntityTypes())
	}
	if !reflect.DeepEqual(got.ResourceTypes(), want.ResourceTypes()) {
		t.Errorf("ResourceTypes() = %v, want %v", got.ResourceTypes(), want.ResourceTypes())
	}
	for _, id := range want.EntityTypes() {
		for _, bundle := range want.BundlesOf(id) {
			wantBS, _ := want.Bundle(id, bundle)
			gotBS, ok := got.Bundle(id, bundle)
			if !ok {
				t.Errorf("bundle %s missing after load", schema.ResourceTypeName(id, bundle))
				continue
			}
			if !reflect.DeepEqual(gotBS, wantBS) {
				t.Errorf("bundle %s = %+v, want %+v", schema.ResourceTypeName(id, bundle), gotBS, wantBS)
			}
		}
	}

	if !got.IsConfigEntity("node_type") {
		t.Error("node_type should load as config entity")
	}
	if !reflect.DeepEqual(got.Properties("node_type"), []string{"uuid", "id", "label"}) {
		t.Errorf("Properties(node_type) = %v", got.Properties("node_type"))
	}
	if got.Meta("node").Description != "Site content" {
		t.Errorf("Meta(node) = %+v", got.Meta("node"))
	}
	if got.Meta("node_type").Label != "Content type" {
		t.Errorf("Meta(node_type) = %+v", got.Meta("node_type"))
	}
}

func TestSchemaStore_SaveReplaces(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSchemaStore(db)
	ctx := context.Background()

	first, err := store.Save(ctx, testCatalog(t))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	small, err := schema.NewCatalog(schema.EntityType{ID: "user", Bundles: []string{"user"}})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	second, err := store.Save(ctx, small)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if second.ID == first.ID {
		t.Error("revisions should have distinct ids")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.EntityTypes(), []string{"user"}) {
		t.Errorf("EntityTypes() = %v, want [user]", got.EntityTypes())
	}

	latest, err := store.LatestRevision(ctx)
	if err != nil {
		t.Fatalf("LatestRevision() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("LatestRevision().ID = %s, want %s", latest.ID, second.ID)
	}
	if latest.CreatedAt.IsZero() {
		t.Error("LatestRevision().CreatedAt should be set")
	}
}

func TestSchemaStore_LatestRevisionBadTimestamp(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_revisions (id, entity_types, fields, created_at)
		VALUES ('rev-1', 1, 1, 'yesterday')
	`)
	if err != nil {
		t.Fatalf("insert revision: %v", err)
	}

	store := sqlite.NewSchemaStore(db)
	_, err = store.LatestRevision(ctx)
	if err == nil {
		t.Fatal("LatestRevision() error = nil, want parse error")
	}
	if errors.Is(err, sqlite.ErrNoSchema) {
		t.Errorf("LatestRevision() error = %v, want parse error", err)
	}
}
