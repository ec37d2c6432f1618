package repair

import "time"

// TemplateVersion is the version stamped into synthesized metadata.
const TemplateVersion = "1.0.0"

// StandardStructure returns a fresh template for one of the canonical top-level
// structures, or false when field has no template. Each call returns new maps
// so a template can be mutated without affecting other documents.
func StandardStructure(field string, now time.Time) (any, bool) {
	switch field {
	case "parameters":
		return map[string]any{
			"required": []any{},
			"optional": []any{},
		}, true
	case "execution":
		return map[string]any{
			"strategy": "sequential",
			"commands": []any{
				map[string]any{
					"name":    "main",
					"command": "",
					"validation": map[string]any{
						"pre":  []any{},
						"post": []any{},
					},
				},
			},
		}, true
	case "metadata":
		stamp := now.UTC().Format(time.RFC3339)
		return map[string]any{
			"created": stamp,
			"updated": stamp,
			"version": TemplateVersion,
		}, true
	}
	return nil, false
}
