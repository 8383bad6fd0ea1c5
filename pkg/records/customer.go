package records

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Target ledger field names managed by the sync.
const (
	FieldIntegrationCode = "codigo_cliente_integracao"
	FieldTargetCode      = "codigo_cliente_omie"
	FieldDisplayName     = "razao_social"
	FieldEmail           = "email"
)

// Customer is a target ledger customer record. The fields the sync manages are
// exposed as struct fields; every other field is retained as raw JSON and
// written back unchanged.
type Customer struct {
	IntegrationCode string
	DisplayName     string
	Email           string

	fields map[string]json.RawMessage
}

// TargetCode returns the ledger-assigned customer code, or "" when the record
// does not carry one.
func (c Customer) TargetCode() string {
	return scalarString(c.fields[FieldTargetCode])
}

// Field returns the raw JSON of any field present on the record.
func (c Customer) Field(name string) (json.RawMessage, bool) {
	switch name {
	case FieldIntegrationCode, FieldDisplayName, FieldEmail:
		value := c.managed(name)
		if value == "" && !c.has(name) {
			return nil, false
		}
		b, _ := json.Marshal(value)
		return b, true
	}
	raw, ok := c.fields[name]
	return raw, ok
}

// SetField stores an unmanaged field. Managed names update the struct field
// when value is a string.
func (c *Customer) SetField(name string, value any) error {
	switch name {
	case FieldIntegrationCode, FieldDisplayName, FieldEmail:
		s, ok := value.(string)
		if !ok {
			b, err := json.Marshal(value)
			if err != nil {
				return err
			}
			s = scalarString(b)
		}
		c.setManaged(name, s)
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.fields == nil {
		c.fields = make(map[string]json.RawMessage)
	}
	c.fields[name] = b
	return nil
}

// Clone returns a deep copy of the record.
func (c Customer) Clone() Customer {
	out := c
	if c.fields != nil {
		out.fields = make(map[string]json.RawMessage, len(c.fields))
		for k, v := range c.fields {
			out.fields[k] = bytes.Clone(v)
		}
	}
	return out
}

// MarshalJSON emits the retained fields with the managed fields overlaid.
// A managed field is written when it is non-empty or was present on decode.
func (c Customer) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.fields)+3)
	maps.Copy(out, c.fields)

	for _, name := range []string{FieldIntegrationCode, FieldDisplayName, FieldEmail} {
		value := c.managed(name)
		if value == "" && !c.has(name) {
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[name] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes any JSON object. Managed fields that are not strings
// are converted to their literal text.
func (c *Customer) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}

	*c = Customer{
		IntegrationCode: scalarString(fields[FieldIntegrationCode]),
		DisplayName:     scalarString(fields[FieldDisplayName]),
		Email:           scalarString(fields[FieldEmail]),
		fields:          fields,
	}
	return nil
}

func (c Customer) has(name string) bool {
	_, ok := c.fields[name]
	return ok
}

func (c Customer) managed(name string) string {
	switch name {
	case FieldIntegrationCode:
		return c.IntegrationCode
	case FieldDisplayName:
		return c.DisplayName
	case FieldEmail:
		return c.Email
	}
	return ""
}

func (c *Customer) setManaged(name, value string) {
	switch name {
	case FieldIntegrationCode:
		c.IntegrationCode = value
	case FieldDisplayName:
		c.DisplayName = value
	case FieldEmail:
		c.Email = value
	}
}
