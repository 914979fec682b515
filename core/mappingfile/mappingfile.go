// Package mappingfile loads persistent class declarations from YAML mapping
// files, the declarative alternative to Go source directives.
//
// Example file:
//
//	version: "1"
//	classes:
//	  - name: Customer
//	    annotations:
//	      - kind: Entity
//	      - kind: SecondaryTable
//	        attributes:
//	          name: CUST_DETAIL
//	          foreign_key: {name: FK_CUST_DETAIL}
//	    members:
//	      - name: ID
//	        type: int64
//	        annotations:
//	          - kind: Id
//	      - name: Images
//	        type: map[string]Image
//	        annotations:
//	          - kind: one_to_many
//	          - kind: map_key_column
//
// Annotation kinds are accepted in both spellings, "MapKeyColumn" and
// "map_key_column". Member element defaults to field.
package mappingfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
)

// File is the YAML document layout.
type File struct {
	Version string  `yaml:"version"`
	Classes []Class `yaml:"classes"`
}

// Class declares one persistent class. Super names its supertype.
type Class struct {
	Name        string       `yaml:"name"`
	Super       string       `yaml:"super,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
	Members     []Member     `yaml:"members,omitempty"`
}

// Member declares a field or accessor. Element is "field" or "accessor";
// Type is the Go type expression of the member.
type Member struct {
	Name        string       `yaml:"name"`
	Element     string       `yaml:"element,omitempty"`
	Type        string       `yaml:"type,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// Annotation is one annotation of a class or member. Kind accepts the
// CamelCase and the directive spelling.
type Annotation struct {
	Kind       string         `yaml:"kind"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// Load reads and converts the mapping file at path. Declaration positions
// record path as their file.
//
// Parameters:
//   - path: the YAML mapping file (e.g., "./orm.yaml")
//
// Returns:
//   - []*decl.Class: the declared classes in document order
//   - error: a read failure, a YAML syntax error, or an invalid declaration
//     prefixed with path
//
// Example:
//
//	classes, err := mappingfile.Load("./orm.yaml")
//	if err != nil {
//		return err
//	}
//	if err := reg.Register(classes...); err != nil {
//		return err
//	}
func Load(path string) ([]*decl.Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	classes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, class := range classes {
		class.Pos = decl.Position{File: path}
	}
	return classes, nil
}

// Parse converts YAML mapping data into class declarations, keeping the
// document order of classes, members and annotations.
func Parse(data []byte) ([]*decl.Class, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	if f.Version != "" && f.Version != "1" {
		return nil, fmt.Errorf("unsupported mapping file version %q", f.Version)
	}

	classes := make([]*decl.Class, 0, len(f.Classes))
	for i, c := range f.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("classes[%d]: name is required", i)
		}
		anns, err := convertAll(c.Annotations)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Name, err)
		}
		class := decl.NewClass(c.Name, anns...).Extends(c.Super)

		for j, m := range c.Members {
			if m.Name == "" {
				return nil, fmt.Errorf("class %s: members[%d]: name is required", c.Name, j)
			}
			element, err := decl.ParseElementKind(m.Element)
			if err != nil || element == decl.ElementType {
				return nil, fmt.Errorf("class %s: member %s: invalid element %q", c.Name, m.Name, m.Element)
			}
			anns, err := convertAll(m.Annotations)
			if err != nil {
				return nil, fmt.Errorf("class %s: member %s: %w", c.Name, m.Name, err)
			}
			class.Members = append(class.Members, decl.Member{
				Name:        m.Name,
				Element:     element,
				Type:        m.Type,
				Annotations: anns,
			})
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func convertAll(in []Annotation) ([]annotation.Annotation, error) {
	out := make([]annotation.Annotation, 0, len(in))
	for _, a := range in {
		converted, err := convert(a)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func convert(a Annotation) (annotation.Annotation, error) {
	s, err := annotation.Lookup(annotation.Kind(a.Kind))
	if err != nil {
		var derr error
		s, derr = annotation.LookupDirective(a.Kind)
		if derr != nil {
			return annotation.Annotation{}, err
		}
	}
	return annotation.FromMap(s.Kind, a.Attributes)
}
