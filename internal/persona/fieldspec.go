package persona

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fieldspec.yaml
var defaultFieldSpecYAML []byte

// FieldSpec declares the structure a generated document must have.
type FieldSpec struct {
	Version  int          `yaml:"version"`
	Required []string     `yaml:"required"`
	Children []ChildSpec  `yaml:"children"`
	Nested   []NestedSpec `yaml:"nested"`
}

// ChildSpec lists the keys an object-valued field must contain.
type ChildSpec struct {
	Parent string   `yaml:"parent"`
	Fields []string `yaml:"fields"`
}

// NestedSpec says Field also appears inside Under and must satisfy its own
// ChildSpec there.
type NestedSpec struct {
	Field string `yaml:"field"`
	Under string `yaml:"under"`
}

// DefaultFieldSpec returns the UX persona schema compiled into the binary.
func DefaultFieldSpec() *FieldSpec {
	spec, err := ParseFieldSpec(defaultFieldSpecYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded field spec is invalid: %v", err))
	}
	return spec
}

// LoadFieldSpec reads a spec from path, or returns the default when path is empty.
func LoadFieldSpec(path string) (*FieldSpec, error) {
	if path == "" {
		return DefaultFieldSpec(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field spec: %w", err)
	}
	return ParseFieldSpec(data)
}

// ParseFieldSpec decodes and checks a YAML field spec.
func ParseFieldSpec(data []byte) (*FieldSpec, error) {
	var spec FieldSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse field spec: %w", err)
	}
	if err := spec.check(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *FieldSpec) check() error {
	if len(s.Required) == 0 {
		return fmt.Errorf("field spec: no required fields")
	}
	seen := make(map[string]bool)
	for _, c := range s.Children {
		if c.Parent == "" || len(c.Fields) == 0 {
			return fmt.Errorf("field spec: child entry %q has no parent or fields", c.Parent)
		}
		if seen[c.Parent] {
			return fmt.Errorf("field spec: parent %q declared twice", c.Parent)
		}
		seen[c.Parent] = true
	}
	for _, n := range s.Nested {
		if !seen[n.Field] {
			return fmt.Errorf("field spec: nested field %q has no child entry", n.Field)
		}
	}
	return nil
}

// ChildrenOf returns the required child keys of parent, or nil.
func (s *FieldSpec) ChildrenOf(parent string) []string {
	for _, c := range s.Children {
		if c.Parent == parent {
			return c.Fields
		}
	}
	return nil
}

// Describe renders the spec as prompt text.
func (s *FieldSpec) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top-level keys: %s.\n", strings.Join(s.Required, ", "))
	for _, c := range s.Children {
		path := c.Parent
		for _, n := range s.Nested {
			if n.Field == c.Parent {
				path = n.Under + "." + n.Field
				break
			}
		}
		fmt.Fprintf(&b, "\"%s\" is an object with keys: %s.\n", path, strings.Join(c.Fields, ", "))
	}
	return b.String()
}
