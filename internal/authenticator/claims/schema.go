package claims

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// SchemaLookup resolves a logical claim name to the identity attributes it is
// built from.
type SchemaLookup interface {
	AttributesFor(name string) ([]string, error)
}

// Schema is an in-memory SchemaLookup. A name that is a claim returns its
// attribute list; a name that is itself an underlying attribute maps to
// itself.
type Schema struct {
	claims     map[string][]string
	attributes map[string]struct{}
}

type schemaFile struct {
	Claims map[string][]string `yaml:"claims"`
}

// NewSchema builds a schema from a claim to attributes mapping.
func NewSchema(mapping map[string][]string) *Schema {
	s := &Schema{
		claims:     make(map[string][]string, len(mapping)),
		attributes: make(map[string]struct{}),
	}
	for claim, attrs := range mapping {
		cp := make([]string, len(attrs))
		copy(cp, attrs)
		s.claims[claim] = cp
		for _, a := range attrs {
			s.attributes[a] = struct{}{}
		}
	}
	return s
}

// ParseSchemaYAML reads a mapping document of the form
//
//	claims:
//	  name: [fullName]
//	  address: [addressLine1, addressLine2, city, postalCode]
func ParseSchemaYAML(data []byte) (*Schema, error) {
	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse claim schema: %w", err)
	}
	if len(f.Claims) == 0 {
		return nil, fmt.Errorf("claim schema has no claims")
	}
	for claim, attrs := range f.Claims {
		if len(attrs) == 0 {
			return nil, fmt.Errorf("claim %q maps to no attributes", claim)
		}
	}
	return NewSchema(f.Claims), nil
}

// LoadSchemaFile reads a YAML claim schema from path.
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claim schema: %w", err)
	}
	return ParseSchemaYAML(data)
}

// AttributesFor implements SchemaLookup.
func (s *Schema) AttributesFor(name string) ([]string, error) {
	if attrs, ok := s.claims[name]; ok {
		out := make([]string, len(attrs))
		copy(out, attrs)
		return out, nil
	}
	if _, ok := s.attributes[name]; ok {
		return []string{name}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, models.ErrSchemaLookup)
}

// DefaultSchema maps the standard OIDC claims onto the MOSIP ID schema
// attribute names. It is used when no schema file is configured.
func DefaultSchema() *Schema {
	return NewSchema(map[string][]string{
		"name":         {"fullName"},
		"given_name":   {"firstName"},
		"family_name":  {"lastName"},
		"email":        {"email"},
		"phone_number": {"phone"},
		"gender":       {"gender"},
		"birthdate":    {"dateOfBirth"},
		"address":      {"addressLine1", "addressLine2", "addressLine3", "city", "province", "region", "postalCode"},
		"picture":      {"encodedPhoto"},
	})
}
