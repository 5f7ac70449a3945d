package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses an entity type definition from a YAML file.
func ParseFile(path string) (EntityType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EntityType{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses an entity type definition from YAML bytes.
func Parse(data []byte) (EntityType, error) {
	var et EntityType
	if err := yaml.Unmarshal(data, &et); err != nil {
		return EntityType{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(et); err != nil {
		return EntityType{}, fmt.Errorf("validate entity type %q: %w", et.ID, err)
	}

	return et, nil
}

// ParseDir parses all entity type definitions from a directory, including subdirectories.
func ParseDir(dir string) ([]EntityType, error) {
	var types []EntityType

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			types = append(types, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		et, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		types = append(types, et)
	}

	return types, nil
}

// LoadDir parses a directory and builds a Catalog from it.
func LoadDir(dir string) (*Catalog, error) {
	types, err := ParseDir(dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(types...)
}

// Validate validates a single entity type definition. Cross-type checks such
// as reference targets happen when the Catalog is built.
func Validate(et EntityType) error {
	var errs []string

	if et.ID == "" {
		errs = append(errs, "entity_type is required")
	} else if !IsValidIdentifier(et.ID) {
		errs = append(errs, fmt.Sprintf("entity type %q is not a valid identifier", et.ID))
	}

	if et.Config {
		if len(et.Bundles) > 0 {
			errs = append(errs, "config entity types cannot declare bundles")
		}
		if len(et.Fields) > 0 {
			errs = append(errs, "config entity types cannot declare fields")
		}
		for _, p := range et.Properties {
			if !IsValidIdentifier(p) {
				errs = append(errs, fmt.Sprintf("property %q is not a valid identifier", p))
			}
		}
	} else {
		if len(et.Bundles) == 0 {
			errs = append(errs, "at least one bundle is required")
		}
		if len(et.Properties) > 0 {
			errs = append(errs, "only config entity types declare top-level properties")
		}

		known := make(map[string]bool, len(et.Bundles))
		for _, bundle := range et.Bundles {
			if !IsValidIdentifier(bundle) {
				errs = append(errs, fmt.Sprintf("bundle %q is not a valid identifier", bundle))
			}
			if known[bundle] {
				errs = append(errs, fmt.Sprintf("bundle %q listed twice", bundle))
			}
			known[bundle] = true
		}

		for _, name := range sortedKeys(et.Fields) {
			field := et.Fields[name]
			if err := validateField(name, field); err != nil {
				errs = append(errs, err.Error())
			}
			for _, bundle := range field.Bundles {
				if !known[bundle] {
					errs = append(errs, fmt.Sprintf("field %q: unknown bundle %q", name, bundle))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validateField validates a single YAML field.
func validateField(name string, field Field) error {
	if !isValidFieldType(field.Type) {
		return fmt.Errorf("field %q: unknown type %q", name, field.Type)
	}

	if field.Type == FieldTypeEntityReference && field.TargetType == "" {
		return fmt.Errorf("field %q: entity_reference requires target_type", name)
	}

	if field.Type != FieldTypeEntityReference && (field.TargetType != "" || len(field.TargetBundles) > 0) {
		return fmt.Errorf("field %q: only entity_reference fields have targets", name)
	}

	return validateDefinition(field.define(name))
}

// validateDefinition validates a flattened field definition.
func validateDefinition(def FieldDefinition) error {
	if !IsValidIdentifier(def.Name) {
		return fmt.Errorf("field name %q is not a valid identifier", def.Name)
	}

	if len(def.Properties) == 0 {
		return fmt.Errorf("field %q: at least one property is required", def.Name)
	}

	seen := make(map[string]bool, len(def.Properties))
	for _, p := range def.Properties {
		if !IsValidIdentifier(p) {
			return fmt.Errorf("field %q: property %q is not a valid identifier", def.Name, p)
		}
		if seen[p] {
			return fmt.Errorf("field %q: property %q listed twice", def.Name, p)
		}
		seen[p] = true
	}

	if !seen[def.DefaultProperty] {
		return fmt.Errorf("field %q: default property %q is not declared", def.Name, def.DefaultProperty)
	}

	if def.Kind == KindReference && def.TargetType == "" {
		return fmt.Errorf("field %q: reference requires a target type", def.Name)
	}

	return nil
}

// IsValidIdentifier checks if a string is a valid identifier.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
