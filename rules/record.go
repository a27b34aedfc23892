package rules

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Record returns the portable form of the schema, the inverse of Parse.
// Constraints use the shortest form that Parse reads back unchanged: a
// bare value, a list of allowed values, [min, max], or an object when a
// severity or an open range has to be carried. Unknown categories of a
// parsed record are returned as they were read.
func (s *Schema) Record() map[string]any {
	record := make(map[string]any)
	if s == nil {
		return record
	}
	for k, v := range s.unknown {
		record[k] = v
	}
	if s.language != "" {
		record["language"] = s.language
	}
	for _, c := range topLevel {
		if con, ok := s.constraints[c]; ok {
			record[string(c)] = con.record()
		}
	}

	margins := make(map[string]any)
	for k, v := range s.unknownMargins {
		margins[k] = v
	}
	for _, side := range marginSides {
		if con, ok := s.constraints[side.cat]; ok {
			margins[side.key] = con.record()
		}
	}
	if len(margins) > 0 {
		record["margins"] = margins
	}

	if len(s.headingStyles) > 0 {
		styles := make(map[string]any, len(s.headingStyles))
		for lvl, con := range s.headingStyles {
			styles[strconv.Itoa(lvl)] = con.record()
		}
		record["headingStyles"] = styles
	}
	return record
}

// MarshalJSON encodes the schema as its record.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

// MarshalYAML encodes the schema as its record.
func (s *Schema) MarshalYAML() (any, error) {
	return s.Record(), nil
}

// YAML renders the record as a YAML document.
func (s *Schema) YAML() ([]byte, error) {
	return yaml.Marshal(s.Record())
}

func (c Constraint) record() any {
	plain := c.severity() == SeverityError
	switch c.Kind {
	case KindExact:
		if len(c.Values) != 1 {
			break
		}
		if plain {
			return c.Values[0].record()
		}
		return map[string]any{"value": c.Values[0].record(), "severity": string(c.Severity)}
	case KindOneOf:
		vals := make([]any, len(c.Values))
		for i, v := range c.Values {
			vals[i] = v.record()
		}
		// A bare numeric list reads back as a range.
		if plain && (len(c.Values) == 0 || !c.Values[0].IsNumber) {
			return vals
		}
		return map[string]any{"allowed": vals, "severity": string(c.severity())}
	case KindRange:
		if plain && c.Min != nil && c.Max != nil {
			return []any{*c.Min, *c.Max}
		}
		obj := map[string]any{"severity": string(c.severity())}
		if c.Min != nil {
			obj["min"] = *c.Min
		}
		if c.Max != nil {
			obj["max"] = *c.Max
		}
		return obj
	}
	return nil
}

func (v Value) record() any {
	if v.IsNumber {
		return v.Number
	}
	return v.Text
}
