package fieldpath

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Traversal records how a reference step continues into its target.
type Traversal int

const (
	// TraversalNone ends the path on the reference itself.
	TraversalNone Traversal = iota

	// TraversalImplicit descends into the target without the keyword.
	TraversalImplicit

	// TraversalExplicit descends into the target because the keyword
	// overrode a reference-owned property of the same name.
	TraversalExplicit
)

// String returns the traversal name.
func (t Traversal) String() string {
	switch t {
	case TraversalNone:
		return "none"
	case TraversalImplicit:
		return "implicit"
	case TraversalExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// FieldStep is one matched field. TargetType is set for reference fields.
type FieldStep struct {
	Name       string
	Delta      int
	HasDelta   bool
	Traversal  Traversal
	TargetType string
}

// IsReference reports whether the step matched a reference field.
func (s FieldStep) IsReference() bool {
	return s.TargetType != ""
}

// String renders the step in internal form: "name[.delta][.entity[:type]]".
func (s FieldStep) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.HasDelta {
		b.WriteString(Delimiter)
		b.WriteString(strconv.Itoa(s.Delta))
	}
	switch s.Traversal {
	case TraversalImplicit:
		b.WriteString(Delimiter + TraversalKeyword + ":" + s.TargetType)
	case TraversalExplicit:
		b.WriteString(Delimiter + TraversalKeyword)
	}
	return b.String()
}

// PropertyStep is the terminal property. Implicit marks a defaulted property
// that the client did not write.
type PropertyStep struct {
	Name     string
	Implicit bool
}

// ResolvedPath is the canonical internal form of an external path. It is
// immutable: accessors return copies.
type ResolvedPath struct {
	steps       []FieldStep
	property    PropertyStep
	hasProperty bool
}

func newResolvedPath(steps []FieldStep, property PropertyStep) ResolvedPath {
	return ResolvedPath{
		steps:       append([]FieldStep(nil), steps...),
		property:    property,
		hasProperty: property.Name != "",
	}
}

// Steps returns a copy of the field steps.
func (p ResolvedPath) Steps() []FieldStep {
	return append([]FieldStep(nil), p.steps...)
}

// Len returns the number of field steps.
func (p ResolvedPath) Len() int {
	return len(p.steps)
}

// Property returns the terminal property, if any.
func (p ResolvedPath) Property() (PropertyStep, bool) {
	return p.property, p.hasProperty
}

// IsZero reports whether p is the zero value.
func (p ResolvedPath) IsZero() bool {
	return len(p.steps) == 0 && !p.hasProperty
}

// EndsOnReference reports whether the path addresses a relationship: its last
// step is a reference that is neither traversed nor given an explicit property.
func (p ResolvedPath) EndsOnReference() bool {
	if len(p.steps) == 0 {
		return false
	}
	last := p.steps[len(p.steps)-1]
	if !last.IsReference() || last.Traversal != TraversalNone {
		return false
	}
	return !p.hasProperty || p.property.Implicit
}

// String renders the internal path. Implicit properties are omitted, so
// "field_test1" resolves to "field_test1" while recording its default property.
func (p ResolvedPath) String() string {
	parts := make([]string, 0, len(p.steps)+1)
	for _, s := range p.steps {
		parts = append(parts, s.String())
	}
	if p.hasProperty && !p.property.Implicit {
		parts = append(parts, p.property.Name)
	}
	return strings.Join(parts, Delimiter)
}

// Key is a deterministic identity string. Unlike String it records the
// implicit property and the target type of every reference step, so two paths
// are Equal exactly when their keys are equal.
func (p ResolvedPath) Key() string {
	parts := make([]string, 0, len(p.steps)+1)
	for _, s := range p.steps {
		part := s.String()
		if s.TargetType != "" && s.Traversal != TraversalImplicit {
			part += "@" + s.TargetType
		}
		parts = append(parts, part)
	}
	key := strings.Join(parts, Delimiter)
	if p.hasProperty {
		if p.property.Implicit {
			key += "#" + p.property.Name
		} else {
			key += Delimiter + p.property.Name
		}
	}
	return key
}

// Equal reports structural equality.
func (p ResolvedPath) Equal(other ResolvedPath) bool {
	if len(p.steps) != len(other.steps) || p.hasProperty != other.hasProperty {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != other.steps[i] {
			return false
		}
	}
	return p.property == other.property
}

type stepJSON struct {
	Name       string `json:"name"`
	Delta      *int   `json:"delta,omitempty"`
	Traversal  string `json:"traversal,omitempty"`
	TargetType string `json:"target_type,omitempty"`
}

type propertyJSON struct {
	Name     string `json:"name"`
	Implicit bool   `json:"implicit"`
}

type pathJSON struct {
	Path     string        `json:"path"`
	Fields   []stepJSON    `json:"fields"`
	Property *propertyJSON `json:"property,omitempty"`
}

// MarshalJSON encodes the internal path together with its structure.
func (p ResolvedPath) MarshalJSON() ([]byte, error) {
	out := pathJSON{Path: p.String(), Fields: make([]stepJSON, 0, len(p.steps))}
	for _, s := range p.steps {
		js := stepJSON{Name: s.Name, TargetType: s.TargetType}
		if s.HasDelta {
			delta := s.Delta
			js.Delta = &delta
		}
		if s.Traversal != TraversalNone {
			js.Traversal = s.Traversal.String()
		}
		out.Fields = append(out.Fields, js)
	}
	if p.hasProperty {
		out.Property = &propertyJSON{Name: p.property.Name, Implicit: p.property.Implicit}
	}
	return json.Marshal(out)
}
