package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	yaml := `
entity_type: node
bundles: [article, page]

fields:
  title: { type: string }
  body:  { type: text_with_summary, bundles: [article] }
  tags:  { type: entity_reference, target_type: taxonomy_term, target_bundles: [tags] }

meta:
  label: Content
`

	et, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if et.ID != "node" {
		t.Errorf("ID = %q, want %q", et.ID, "node")
	}
	if len(et.Bundles) != 2 {
		t.Errorf("Bundles = %v, want 2 bundles", et.Bundles)
	}
	if len(et.Fields) != 3 {
		t.Errorf("Fields has %d entries, want 3", len(et.Fields))
	}
	if et.Fields["tags"].TargetType != "taxonomy_term" {
		t.Errorf("tags target = %q", et.Fields["tags"].TargetType)
	}
	if got := et.fieldBundles(et.Fields["title"]); len(got) != 2 {
		t.Errorf("title bundles = %v, want every bundle", got)
	}
	if got := et.fieldBundles(et.Fields["body"]); len(got) != 1 || got[0] != "article" {
		t.Errorf("body bundles = %v, want [article]", got)
	}
	if et.Meta.Label != "Content" {
		t.Errorf("Meta.Label = %q", et.Meta.Label)
	}
}

func TestParseConfigEntity(t *testing.T) {
	yaml := `
entity_type: node_type
config: true
properties: [uuid, id, label]
`
	et, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !et.Config {
		t.Error("Config = false, want true")
	}
	if len(et.Properties) != 3 {
		t.Errorf("Properties = %v", et.Properties)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("entity_type: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if !strings.Contains(err.Error(), "parse yaml") {
		t.Errorf("error = %v, want parse yaml error", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		et      EntityType
		wantErr string
	}{
		{
			name: "valid content type",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"article"},
				Fields:  map[string]Field{"title": {Type: FieldTypeString}},
			},
		},
		{
			name:    "missing id",
			et:      EntityType{Bundles: []string{"a"}},
			wantErr: "entity_type is required",
		},
		{
			name:    "invalid id",
			et:      EntityType{ID: "9node", Bundles: []string{"a"}},
			wantErr: "not a valid identifier",
		},
		{
			name:    "no bundles",
			et:      EntityType{ID: "node"},
			wantErr: "at least one bundle is required",
		},
		{
			name:    "duplicate bundle",
			et:      EntityType{ID: "node", Bundles: []string{"a", "a"}},
			wantErr: `bundle "a" listed twice`,
		},
		{
			name:    "content type with properties",
			et:      EntityType{ID: "node", Bundles: []string{"a"}, Properties: []string{"uuid"}},
			wantErr: "only config entity types",
		},
		{
			name: "unknown field type",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: "secret"}},
			},
			wantErr: `unknown type "secret"`,
		},
		{
			name: "reference without target",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: FieldTypeEntityReference}},
			},
			wantErr: "requires target_type",
		},
		{
			name: "primitive with target",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: FieldTypeString, TargetType: "user"}},
			},
			wantErr: "only entity_reference fields have targets",
		},
		{
			name: "field on unknown bundle",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: FieldTypeString, Bundles: []string{"b"}}},
			},
			wantErr: `unknown bundle "b"`,
		},
		{
			name: "undeclared default property",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: FieldTypeText, DefaultProperty: "summary"}},
			},
			wantErr: `default property "summary" is not declared`,
		},
		{
			name: "duplicate property",
			et: EntityType{
				ID:      "node",
				Bundles: []string{"a"},
				Fields:  map[string]Field{"x": {Type: FieldTypeString, Properties: []string{"v", "v"}}},
			},
			wantErr: `property "v" listed twice`,
		},
		{
			name:    "config type with bundles",
			et:      EntityType{ID: "node_type", Config: true, Bundles: []string{"a"}},
			wantErr: "cannot declare bundles",
		},
		{
			name: "config type with fields",
			et: EntityType{
				ID:     "node_type",
				Config: true,
				Fields: map[string]Field{"x": {Type: FieldTypeString}},
			},
			wantErr: "cannot declare fields",
		},
		{
			name:    "valid config type",
			et:      EntityType{ID: "node_type", Config: true, Properties: []string{"id", "label"}},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.et)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	err := Validate(EntityType{ID: "node", Bundles: []string{"a", "a"}, Properties: []string{"x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "validation errors:") {
		t.Errorf("error = %q, want validation errors prefix", err)
	}
	if strings.Count(err.Error(), "\n  - ") != 2 {
		t.Errorf("error = %q, want 2 entries", err)
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "taxonomy")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "node.yaml"): `
entity_type: node
bundles: [article]
fields:
  tags: { type: entity_reference, target_type: taxonomy_term }
`,
		filepath.Join(sub, "term.yml"): `
entity_type: taxonomy_term
bundles: [tags]
fields:
  name: { type: string }
`,
		filepath.Join(dir, "README.md"): "not a schema",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	types, err := ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir() error = %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("ParseDir() returned %d types, want 2", len(types))
	}

	catalog, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	def, ok := catalog.FieldDefinition("node", "article", "tags")
	if !ok {
		t.Fatal("node--article should have field tags")
	}
	if len(def.TargetBundles) != 1 || def.TargetBundles[0] != "tags" {
		t.Errorf("TargetBundles = %v, want [tags]", def.TargetBundles)
	}
}

func TestParseDirMissing(t *testing.T) {
	if _, err := ParseDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestParseFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("entity_type: node\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseFile(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `validate entity type "node"`) {
		t.Errorf("error = %v", err)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"node", true},
		{"field_tags", true},
		{"_private", true},
		{"Field2", true},
		{"", false},
		{"2field", false},
		{"field-tags", false},
		{"field.tags", false},
	}

	for _, tt := range tests {
		if got := IsValidIdentifier(tt.input); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadDirShippedSchema(t *testing.T) {
	catalog, err := LoadDir(filepath.Join("..", "..", "schema"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	def, ok := catalog.FieldDefinition("node", "article", "field_tags")
	if !ok {
		t.Fatal("node--article field_tags not found")
	}
	if def.TargetType != "taxonomy_term" || len(def.TargetBundles) != 1 || def.TargetBundles[0] != "tags" {
		t.Errorf("field_tags target = %s %v", def.TargetType, def.TargetBundles)
	}
	if !catalog.IsConfigEntity("node_type") {
		t.Error("node_type should be a config entity")
	}
}
