package fieldpath

import (
	"testing"

	"github.com/artpar/fieldresolver/core/schema"
)

const (
	testEntity = "entity_test_with_bundle"
	testConfig = "entity_test_bundle"
)

// newTestCatalog builds bundle1..bundle3 of entity_test_with_bundle with
// reference fields fanning out into one or several bundles, plus a config
// entity and a host whose target owns a field named like a reference property.
func newTestCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	ref := func(bundles []string, targets ...string) schema.Field {
		return schema.Field{
			Type:          schema.FieldTypeEntityReference,
			Bundles:       bundles,
			TargetType:    testEntity,
			TargetBundles: targets,
		}
	}

	catalog, err := schema.NewCatalog(
		schema.EntityType{
			ID:      testEntity,
			Bundles: []string{"bundle1", "bundle2", "bundle3"},
			Fields: map[string]schema.Field{
				"field_test1":     {Type: schema.FieldTypeString, Bundles: []string{"bundle1"}},
				"field_test2":     {Type: schema.FieldTypeString, Bundles: []string{"bundle1"}},
				"field_test3":     {Type: schema.FieldTypeString, Bundles: []string{"bundle2", "bundle3"}},
				"field_test4":     {Type: schema.FieldTypeString, Bundles: []string{"bundle2"}},
				"field_test_ref1": ref([]string{"bundle1"}, "bundle2", "bundle3"),
				"field_test_ref2": ref([]string{"bundle1"}, "bundle1"),
				"field_test_ref3": ref([]string{"bundle2", "bundle3"}),
				"field_test_text": {Type: schema.FieldTypeText},
				"type":            {Type: schema.FieldTypeEntityReference, TargetType: testConfig},
			},
		},
		schema.EntityType{
			ID:         testConfig,
			Config:     true,
			Properties: []string{"uuid", "id", "label"},
		},
		schema.EntityType{
			ID:      "collision_host",
			Bundles: []string{"default"},
			Fields: map[string]schema.Field{
				"ref": {Type: schema.FieldTypeEntityReference, TargetType: "collision_target"},
			},
		},
		schema.EntityType{
			ID:      "collision_target",
			Bundles: []string{"default"},
			Fields: map[string]schema.Field{
				"target_id": {Type: schema.FieldTypeString},
				"name":      {Type: schema.FieldTypeString},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

// newMixedCatalog defines a field whose kind differs between the two bundles
// a reference fans out into.
func newMixedCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	b := schema.NewBuilder().
		AddBundle("mixed", "a").
		AddBundle("mixed", "b").
		AddBundle("host", "default").
		AddField("mixed", "a", schema.FieldDefinition{
			Name: "f", Type: schema.FieldTypeString, Kind: schema.KindPrimitive,
			Properties: []string{"value"}, DefaultProperty: "value",
		}).
		AddField("mixed", "b", schema.FieldDefinition{
			Name: "f", Type: schema.FieldTypeEntityReference, Kind: schema.KindReference,
			Properties: []string{"target_id"}, DefaultProperty: "target_id", TargetType: "host",
		}).
		AddField("mixed", "a", schema.FieldDefinition{
			Name: "g", Type: schema.FieldTypeText, Kind: schema.KindPrimitive,
			Properties: []string{"value", "format"}, DefaultProperty: "value",
		}).
		AddField("mixed", "b", schema.FieldDefinition{
			Name: "g", Type: schema.FieldTypeString, Kind: schema.KindPrimitive,
			Properties: []string{"value"}, DefaultProperty: "value",
		}).
		AddField("host", "default", schema.FieldDefinition{
			Name: "ref", Type: schema.FieldTypeEntityReference, Kind: schema.KindReference,
			Properties: []string{"target_id"}, DefaultProperty: "target_id", TargetType: "mixed",
		})

	catalog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return catalog
}
