package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var recordSchemaJSON []byte

const recordSchemaURL = "https://github.com/tsawler/docfmt/rules/schema.json"

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

// compiledSchema compiles the embedded record schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(recordSchemaJSON))
		if err != nil {
			recordSchemaErr = fmt.Errorf("parsing record schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(recordSchemaURL, doc); err != nil {
			recordSchemaErr = fmt.Errorf("adding record schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile(recordSchemaURL)
	})
	return recordSchema, recordSchemaErr
}

// Parse reads a rule record. Records starting with '{' or '[' are JSON,
// anything else is YAML. An empty record, null or {} yields the empty
// schema. Categories the record names but this package does not know are
// skipped and reported by Warnings.
func Parse(raw []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == "{}" {
		return Empty(), nil
	}

	doc, err := decodeRecord(trimmed)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return Empty(), nil
	}
	record, ok := doc.(map[string]any)
	if !ok {
		return nil, schemaErrorf("/", "rule record must be a mapping, got %s", typeName(doc))
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, &SchemaError{Msg: "record schema unavailable", Err: err}
	}
	if err := schema.Validate(record); err != nil {
		return nil, validationError(err)
	}

	return decodeSchema(record)
}

// decodeRecord decodes JSON or YAML into the value model of the JSON
// schema validator (json.Number for numbers).
func decodeRecord(data []byte) (any, error) {
	if data[0] == '{' || data[0] == '[' {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err == nil {
			return doc, nil
		}
		// Flow-style YAML ({bodyFont: Arial}) also starts with a brace.
		if doc, yerr := decodeYAML(data); yerr == nil {
			return doc, nil
		}
		return nil, &SchemaError{Msg: "malformed JSON", Err: err}
	}
	return decodeYAML(data)
}

func decodeYAML(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Msg: "malformed YAML", Err: err}
	}
	if doc == nil {
		return nil, nil
	}
	// YAML allows non-string keys (headingStyles: {1: Heading1}); JSON does
	// not, so keys are stringified before the round trip.
	normalized, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, &SchemaError{Msg: "unsupported YAML value", Err: err}
	}
	doc, err = jsonschema.UnmarshalJSON(bytes.NewReader(normalized))
	if err != nil {
		return nil, &SchemaError{Msg: "unsupported YAML value", Err: err}
	}
	return doc, nil
}

func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}

// validationError converts a schema validation failure, pointing at the
// deepest failing location.
func validationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Msg: "record does not match the rule schema", Err: err}
	}
	// Keyword failures such as propertyNames report the offending key as
	// an instance of its own with an empty location; keep the last
	// non-empty one on the way down.
	loc := ve.InstanceLocation
	for leaf := ve; len(leaf.Causes) > 0; {
		leaf = leaf.Causes[0]
		if len(leaf.InstanceLocation) > 0 {
			loc = leaf.InstanceLocation
		}
	}
	return &SchemaError{
		Path: "/" + strings.Join(loc, "/"),
		Msg:  "record does not match the rule schema",
		Err:  err,
	}
}

// decodeSchema builds the typed schema from a record that passed schema
// validation. It still rejects what the JSON schema cannot express: an
// inverted range, or a value combined with a range.
func decodeSchema(record map[string]any) (*Schema, error) {
	s := &Schema{
		constraints:   make(map[Category]Constraint),
		headingStyles: make(map[int]Constraint),
	}

	for _, key := range sortedKeys(record) {
		raw := record[key]
		switch key {
		case "language":
			s.language, _ = raw.(string)
		case "margins":
			sides, _ := raw.(map[string]any)
			for _, side := range marginSides {
				v, ok := sides[side.key]
				if !ok {
					continue
				}
				con, err := decodeNumeric("/margins/"+side.key, v)
				if err != nil {
					return nil, err
				}
				s.constraints[side.cat] = con
			}
			for _, k := range sortedKeys(sides) {
				if isMarginSide(k) {
					continue
				}
				if s.unknownMargins == nil {
					s.unknownMargins = make(map[string]any)
				}
				s.unknownMargins[k] = plainValue(sides[k])
				s.warnings = append(s.warnings, fmt.Sprintf("unknown category %q ignored", "margins."+k))
			}
		case "headingStyles":
			levels, _ := raw.(map[string]any)
			for lvlKey, v := range levels {
				lvl, err := strconv.Atoi(lvlKey)
				if err != nil || lvl < 1 || lvl > 9 {
					return nil, schemaErrorf("/headingStyles/"+lvlKey, "heading level must be 1-9")
				}
				con, err := decodeText("/headingStyles/"+lvlKey, v)
				if err != nil {
					return nil, err
				}
				s.headingStyles[lvl] = con
			}
		default:
			cat := Category(key)
			if !isTopLevel(cat) {
				if s.unknown == nil {
					s.unknown = make(map[string]any)
				}
				s.unknown[key] = plainValue(raw)
				s.warnings = append(s.warnings, fmt.Sprintf("unknown category %q ignored", key))
				continue
			}
			var con Constraint
			var err error
			if cat.Numeric() {
				con, err = decodeNumeric("/"+key, raw)
			} else {
				con, err = decodeText("/"+key, raw)
			}
			if err != nil {
				return nil, err
			}
			s.constraints[cat] = con
		}
	}
	return s, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isMarginSide(key string) bool {
	for _, side := range marginSides {
		if side.key == key {
			return true
		}
	}
	return false
}

func isTopLevel(c Category) bool {
	for _, t := range topLevel {
		if t == c {
			return true
		}
	}
	return false
}

func decodeText(path string, raw any) (Constraint, error) {
	switch v := raw.(type) {
	case string:
		return Exact(Text(v)), nil
	case []any:
		vals, err := textValues(path, v)
		if err != nil {
			return Constraint{}, err
		}
		return OneOf(vals...), nil
	case map[string]any:
		sev, err := decodeSeverity(path, v)
		if err != nil {
			return Constraint{}, err
		}
		value, hasValue := v["value"]
		allowed, hasAllowed := v["allowed"]
		switch {
		case hasValue && hasAllowed:
			return Constraint{}, schemaErrorf(path, "value and allowed are exclusive")
		case hasValue:
			str, ok := value.(string)
			if !ok {
				return Constraint{}, schemaErrorf(path+"/value", "must be a string")
			}
			return Exact(Text(str)).WithSeverity(sev), nil
		case hasAllowed:
			list, _ := allowed.([]any)
			vals, err := textValues(path+"/allowed", list)
			if err != nil {
				return Constraint{}, err
			}
			return OneOf(vals...).WithSeverity(sev), nil
		}
	}
	return Constraint{}, schemaErrorf(path, "expected a name, a list of names or an object")
}

func textValues(path string, list []any) ([]Value, error) {
	if len(list) == 0 {
		return nil, schemaErrorf(path, "list must not be empty")
	}
	vals := make([]Value, 0, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			return nil, schemaErrorf(fmt.Sprintf("%s/%d", path, i), "must be a string")
		}
		vals = append(vals, Text(str))
	}
	return vals, nil
}

func decodeNumeric(path string, raw any) (Constraint, error) {
	switch v := raw.(type) {
	case json.Number, float64, int:
		f, err := toFloat(v)
		if err != nil {
			return Constraint{}, schemaErrorf(path, "%v", err)
		}
		return Exact(Number(f)), nil
	case []any:
		if len(v) != 2 {
			return Constraint{}, schemaErrorf(path, "range must be [min, max]")
		}
		lo, err := toFloat(v[0])
		if err != nil {
			return Constraint{}, schemaErrorf(path+"/0", "%v", err)
		}
		hi, err := toFloat(v[1])
		if err != nil {
			return Constraint{}, schemaErrorf(path+"/1", "%v", err)
		}
		if lo > hi {
			return Constraint{}, schemaErrorf(path, "min %s is greater than max %s", formatNumber(lo), formatNumber(hi))
		}
		return Between(lo, hi), nil
	case map[string]any:
		return decodeNumericObject(path, v)
	}
	return Constraint{}, schemaErrorf(path, "expected a number, [min, max] or an object")
}

func decodeNumericObject(path string, v map[string]any) (Constraint, error) {
	sev, err := decodeSeverity(path, v)
	if err != nil {
		return Constraint{}, err
	}

	value, hasValue := v["value"]
	allowed, hasAllowed := v["allowed"]
	minRaw, hasMin := v["min"]
	maxRaw, hasMax := v["max"]
	hasRange := hasMin || hasMax

	switch {
	case hasValue && (hasAllowed || hasRange):
		return Constraint{}, schemaErrorf(path, "value cannot be combined with allowed, min or max")
	case hasAllowed && hasRange:
		return Constraint{}, schemaErrorf(path, "allowed cannot be combined with min or max")
	case hasValue:
		f, err := toFloat(value)
		if err != nil {
			return Constraint{}, schemaErrorf(path+"/value", "%v", err)
		}
		return Exact(Number(f)).WithSeverity(sev), nil
	case hasAllowed:
		list, _ := allowed.([]any)
		if len(list) == 0 {
			return Constraint{}, schemaErrorf(path+"/allowed", "list must not be empty")
		}
		vals := make([]Value, 0, len(list))
		for i, item := range list {
			f, err := toFloat(item)
			if err != nil {
				return Constraint{}, schemaErrorf(fmt.Sprintf("%s/allowed/%d", path, i), "%v", err)
			}
			vals = append(vals, Number(f))
		}
		return OneOf(vals...).WithSeverity(sev), nil
	case hasRange:
		var lo, hi *float64
		if hasMin {
			f, err := toFloat(minRaw)
			if err != nil {
				return Constraint{}, schemaErrorf(path+"/min", "%v", err)
			}
			lo = &f
		}
		if hasMax {
			f, err := toFloat(maxRaw)
			if err != nil {
				return Constraint{}, schemaErrorf(path+"/max", "%v", err)
			}
			hi = &f
		}
		if lo != nil && hi != nil && *lo > *hi {
			return Constraint{}, schemaErrorf(path, "min %s is greater than max %s", formatNumber(*lo), formatNumber(*hi))
		}
		return Range(lo, hi).WithSeverity(sev), nil
	}
	return Constraint{}, schemaErrorf(path, "object needs value, allowed, min or max")
}

func decodeSeverity(path string, v map[string]any) (Severity, error) {
	raw, ok := v["severity"]
	if !ok {
		return SeverityError, nil
	}
	str, _ := raw.(string)
	sev := Severity(str)
	if !sev.Valid() {
		return "", schemaErrorf(path+"/severity", "unknown severity %q", str)
	}
	return sev, nil
}

// plainValue replaces the decoder's json.Number values with float64 so a
// kept value encodes as a number in both JSON and YAML.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("must be a number, got %s", typeName(v))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
