package schema

import (
	"encoding/json"
	"testing"
)

func TestSummaries(t *testing.T) {
	c, err := NewCatalog(testTypes()...)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	resp := c.Summaries()
	if resp.Count != 5 || len(resp.ResourceTypes) != 5 {
		t.Fatalf("Count = %d, want 5", resp.Count)
	}
	first := resp.ResourceTypes[0]
	if first.Name != "node--article" || first.Label != "Content" {
		t.Errorf("first summary = %+v", first)
	}
	cfg := resp.ResourceTypes[2]
	if !cfg.Config || cfg.Bundle != "" || cfg.Name != "node_type--node_type" {
		t.Errorf("config summary = %+v", cfg)
	}
}

func TestDescribe(t *testing.T) {
	c, err := NewCatalog(testTypes()...)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	resp, ok := c.Describe("node", "article")
	if !ok {
		t.Fatal("Describe(node, article) not found")
	}
	if len(resp.Fields) != 5 {
		t.Fatalf("Fields has %d entries, want 5", len(resp.Fields))
	}
	// Fields are sorted by name.
	if resp.Fields[0].Name != "body" {
		t.Errorf("first field = %q, want body", resp.Fields[0].Name)
	}
	for _, f := range resp.Fields {
		if f.Name == "tags" {
			if f.Kind != "reference" || f.TargetType != "taxonomy_term" {
				t.Errorf("tags = %+v", f)
			}
		}
	}

	cfg, ok := c.Describe("node_type", "node_type")
	if !ok {
		t.Fatal("Describe(node_type, node_type) not found")
	}
	if len(cfg.Properties) != 3 || len(cfg.Fields) != 0 {
		t.Errorf("config describe = %+v", cfg)
	}

	if _, ok := c.Describe("node", "missing"); ok {
		t.Error("Describe should fail for unknown bundle")
	}
}

func TestDescribeJSON(t *testing.T) {
	c, err := NewCatalog(testTypes()...)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	resp, _ := c.Describe("node_type", "")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if _, ok := got["fields"]; ok {
		t.Error("config entity should omit fields")
	}
	if got["name"] != "node_type--node_type" {
		t.Errorf("name = %v", got["name"])
	}
}
