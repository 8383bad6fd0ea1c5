package records

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// CustomField is one key/value attribute attached to a source contact.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts scalar values of any JSON type. Numbers and booleans
// keep their literal text and null becomes the empty string.
func (f *CustomField) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key   json.RawMessage `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Key = scalarString(raw.Key)
	f.Value = scalarString(raw.Value)
	return nil
}

// CustomFields is the ordered sequence of custom attributes of a contact.
type CustomFields []CustomField

// FindKeyContaining returns the first field whose key contains any of the
// substrings, compared case-insensitively. Field order decides ties.
func (fs CustomFields) FindKeyContaining(substrs ...string) (CustomField, bool) {
	caser := cases.Fold()
	folded := make([]string, 0, len(substrs))
	for _, s := range substrs {
		if s != "" {
			folded = append(folded, caser.String(s))
		}
	}

	for _, field := range fs {
		if field.Key == "" {
			continue
		}
		key := caser.String(field.Key)
		for _, s := range folded {
			if strings.Contains(key, s) {
				return field, true
			}
		}
	}
	return CustomField{}, false
}

// Get returns the value of the field with exactly the given key.
func (fs CustomFields) Get(key string) (string, bool) {
	for _, field := range fs {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Contact is a customer contact as held by the source directory.
type Contact struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	CustomFields CustomFields `json:"customFields"`
}

// UnmarshalJSON accepts numeric contact ids in addition to strings.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type alias Contact
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = scalarString(aux.ID)
	return nil
}

// scalarString renders a raw JSON scalar as plain text.
func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
