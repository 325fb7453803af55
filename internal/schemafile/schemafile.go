// Package schemafile decodes the three-map schema file format
// (traittypes/archetypes/prototypes) from either YAML or JSON into the
// noumenon package's Register input shapes.
package schemafile

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aigan/noumenon/core/noumenon"
)

// RawSchema is the as-parsed schema file: three label-keyed maps, left as
// generic Go values since traittype shorthand and template values are
// polymorphic (bare strings, nested objects, arrays, alternative sets).
type RawSchema struct {
	Traittypes map[string]interface{} `yaml:"traittypes" json:"traittypes"`
	Archetypes map[string]interface{} `yaml:"archetypes" json:"archetypes"`
	Prototypes map[string]interface{} `yaml:"prototypes" json:"prototypes"`
}

// Parse decodes schema file bytes. YAML is tried first since it is a
// syntactic superset of JSON for the object/array/scalar shapes this
// format uses; a YAML parse failure falls back to strict JSON so that
// malformed-YAML-but-valid-JSON input still gets a clear decode path.
func Parse(data []byte) (*RawSchema, error) {
	var raw RawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		if jsonErr := json.Unmarshal(data, &raw); jsonErr != nil {
			return nil, fmt.Errorf("schemafile: parse: %w", err)
		}
	}
	return &raw, nil
}

// BuildSpecs converts a RawSchema into the typed specs World.Register
// expects: traittypes, archetypes, and prototypes (prototypes are
// archetypes in every structural respect, and Register registers them as
// archetypes; a prototype's shared Belief is minted only when a template
// value references it, via archetypeProtoBelief).
func BuildSpecs(raw *RawSchema) ([]noumenon.TraittypeSpec, []noumenon.ArchetypeSpec, []noumenon.ArchetypeSpec, error) {
	tts := make([]noumenon.TraittypeSpec, 0, len(raw.Traittypes))
	for label, v := range raw.Traittypes {
		spec, err := buildTraittypeSpec(label, v)
		if err != nil {
			return nil, nil, nil, err
		}
		tts = append(tts, spec)
	}

	archs := make([]noumenon.ArchetypeSpec, 0, len(raw.Archetypes))
	for label, v := range raw.Archetypes {
		spec, err := buildArchetypeSpec(label, v)
		if err != nil {
			return nil, nil, nil, err
		}
		archs = append(archs, spec)
	}

	protos := make([]noumenon.ArchetypeSpec, 0, len(raw.Prototypes))
	for label, v := range raw.Prototypes {
		spec, err := buildArchetypeSpec(label, v)
		if err != nil {
			return nil, nil, nil, err
		}
		protos = append(protos, spec)
	}

	return tts, archs, protos, nil
}

func kindFromTypeName(name string) (noumenon.TraitKind, string) {
	switch name {
	case "string":
		return noumenon.TraitString, ""
	case "number":
		return noumenon.TraitNumber, ""
	case "boolean":
		return noumenon.TraitBoolean, ""
	case "enum":
		return noumenon.TraitEnum, ""
	case "Subject":
		return noumenon.TraitSubject, ""
	case "Mind":
		return noumenon.TraitMind, ""
	case "State":
		return noumenon.TraitState, ""
	case "Belief":
		return noumenon.TraitBelief, ""
	default:
		// Anything else names an archetype: the trait holds a Subject
		// reference, and the archetype label is kept on the traittype.
		return noumenon.TraitArchetype, name
	}
}

func buildTraittypeSpec(label string, v interface{}) (noumenon.TraittypeSpec, error) {
	switch val := v.(type) {
	case string:
		kind, archLabel := kindFromTypeName(val)
		return noumenon.TraittypeSpec{Label: label, Kind: kind, ArchetypeLabel: archLabel, Max: noumenon.Unbounded}, nil

	case map[string]interface{}:
		typeName, _ := val["type"].(string)
		kind, archLabel := kindFromTypeName(typeName)
		spec := noumenon.TraittypeSpec{Label: label, Kind: kind, ArchetypeLabel: archLabel, Max: noumenon.Unbounded}
		if container, ok := val["container"].(string); ok && container == "Array" {
			spec.Array = true
		}
		if min, ok := toInt(val["min"]); ok {
			spec.Min = min
		}
		if max, ok := toInt(val["max"]); ok {
			spec.Max = max
		}
		if values, ok := val["values"].([]interface{}); ok {
			for _, item := range values {
				if s, ok := item.(string); ok {
					spec.EnumValues = append(spec.EnumValues, s)
				}
			}
		}
		if mindScope, ok := val["mind"].(string); ok {
			switch mindScope {
			case "parent":
				spec.MindScope = noumenon.ScopeParent
			case "current":
				spec.MindScope = noumenon.ScopeCurrent
			}
		}
		if composable, ok := val["composable"].(bool); ok {
			spec.Composable = composable
		}
		if exposure, ok := val["exposure"].(string); ok {
			spec.Exposure = exposure
		}
		return spec, nil

	default:
		return noumenon.TraittypeSpec{}, fmt.Errorf("schemafile: traittype %q: unsupported shape %T", label, v)
	}
}

func buildArchetypeSpec(label string, v interface{}) (noumenon.ArchetypeSpec, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return noumenon.ArchetypeSpec{}, fmt.Errorf("schemafile: archetype %q: expected object, got %T", label, v)
	}
	spec := noumenon.ArchetypeSpec{Label: label, Trait: map[string]noumenon.Template{}}
	if bases, ok := m["bases"].([]interface{}); ok {
		for _, b := range bases {
			if s, ok := b.(string); ok {
				spec.Bases = append(spec.Bases, s)
			}
		}
	}
	if traits, ok := m["traits"].(map[string]interface{}); ok {
		for traitLabel, raw := range traits {
			tpl, err := buildTemplate(raw)
			if err != nil {
				return noumenon.ArchetypeSpec{}, fmt.Errorf("schemafile: archetype %q trait %q: %w", label, traitLabel, err)
			}
			spec.Trait[traitLabel] = tpl
		}
	}
	return spec, nil
}

// buildTemplate converts a decoded YAML/JSON scalar, array or object into a
// Template, dispatching on its dynamic shape.
func buildTemplate(raw interface{}) (noumenon.Template, error) {
	switch val := raw.(type) {
	case nil:
		return noumenon.TNull(), nil
	case string:
		return noumenon.TLabel(val), nil
	case bool:
		return noumenon.TBool(val), nil
	case int:
		return noumenon.TNumber(float64(val)), nil
	case int64:
		return noumenon.TNumber(float64(val)), nil
	case float64:
		return noumenon.TNumber(val), nil
	case []interface{}:
		items := make([]noumenon.Template, 0, len(val))
		for _, it := range val {
			t, err := buildTemplate(it)
			if err != nil {
				return noumenon.Template{}, err
			}
			items = append(items, t)
		}
		return noumenon.TArray(items...), nil
	case map[string]interface{}:
		if alts, ok := val["alternatives"].([]interface{}); ok {
			weighted := make([]noumenon.WeightedTemplate, 0, len(alts))
			for _, a := range alts {
				am, ok := a.(map[string]interface{})
				if !ok {
					continue
				}
				inner, err := buildTemplate(am["value"])
				if err != nil {
					return noumenon.Template{}, err
				}
				cert, _ := toFloat(am["certainty"])
				weighted = append(weighted, noumenon.WeightedTemplate{Value: inner, Certainty: cert})
			}
			return noumenon.TAlternatives(weighted...), nil
		}
		return noumenon.Template{}, fmt.Errorf("unsupported template object shape")
	default:
		return noumenon.Template{}, fmt.Errorf("unsupported template value %T", raw)
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
