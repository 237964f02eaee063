package schema

import (
	"fmt"
	"strings"

	"csvcodec/internal/rowtype"
)

// ParseDDL parses a comma-separated "name TYPE" schema description, the
// same shape Schema.String and the inference evaluator produce. Multi-word
// type names ("DOUBLE PRECISION") are accepted. All fields parse as
// nullable; nullability is an engine-level concern the description does not
// carry.
func ParseDDL(desc string) (Schema, error) {
	var out Schema
	for _, part := range strings.Split(desc, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typ, ok := strings.Cut(part, " ")
		if !ok {
			return nil, fmt.Errorf("schema: field %q: want \"name TYPE\"", part)
		}
		t, ok := rowtype.ParseTypeName(typ)
		if !ok {
			return nil, fmt.Errorf("schema: field %q: unknown type %q", name, typ)
		}
		if idx := out.IndexOf(name); idx >= 0 {
			return nil, fmt.Errorf("schema: duplicate field %q", name)
		}
		out = append(out, Field{Name: name, Type: t, Nullable: true})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("schema: empty description")
	}
	return out, nil
}
