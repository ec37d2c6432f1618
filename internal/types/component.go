package types

// Component is one parsed component document.
// Fields holds the raw, unordered top-level object; numbers are json.Number.
type Component struct {
	Kind     Kind
	ID       string
	Path     string
	Fields   map[string]any
	Revision string // sha256 of the file bytes at load time, recorded on fix results
}

// Ref returns the reference used by downstream records.
func (c *Component) Ref() ComponentRef {
	return ComponentRef{Kind: c.Kind, ID: c.ID, Path: c.Path}
}

// ComponentRef identifies a component without holding its contents.
type ComponentRef struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
	Path string `json:"path" yaml:"path"`
}
