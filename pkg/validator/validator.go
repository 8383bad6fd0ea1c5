// Package validator decides whether a source contact is fit for sync and
// extracts its normalized fiscal identifier.
//
// A contact is eligible when its first custom field whose key contains "cpf"
// or "cnpj" (case-insensitive) holds a value with exactly 11 or 14 digits once
// every non-digit character is stripped.
package validator

import (
	"strings"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// Validator checks source contacts. The zero value is not usable; call New.
type Validator struct {
	keywords    []string
	checkDigits bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithCheckDigits enables CPF/CNPJ check digit verification in addition to
// the length rule.
func WithCheckDigits(enabled bool) Option {
	return func(v *Validator) {
		v.checkDigits = enabled
	}
}

// WithFieldKeywords replaces the substrings used to find the identifier field.
func WithFieldKeywords(keywords ...string) Option {
	return func(v *Validator) {
		if len(keywords) > 0 {
			v.keywords = keywords
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		keywords: constants.FiscalFieldKeywords,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns the contact augmented with its digits-only identifier, or
// a *errors.RejectionError carrying the reason it is unfit. The contact itself
// is never modified.
func (v *Validator) Validate(contact records.Contact) (records.Validated, error) {
	field, ok := contact.CustomFields.FindKeyContaining(v.keywords...)
	if !ok || field.Value == "" {
		rej := errors.NewRejectionError(contact.ID, errors.ReasonMissingIdentifier)
		rej.Field = field.Key
		return records.Validated{}, rej
	}

	digits := Digits(field.Value)
	if len(digits) != constants.CPFLength && len(digits) != constants.CNPJLength {
		return records.Validated{}, &errors.RejectionError{
			ContactID: contact.ID,
			Reason:    errors.ReasonInvalidIdentifierLength,
			Field:     field.Key,
			Value:     field.Value,
		}
	}

	if v.checkDigits && !ValidCheckDigits(digits) {
		return records.Validated{}, &errors.RejectionError{
			ContactID: contact.ID,
			Reason:    errors.ReasonInvalidIdentifierChecksum,
			Field:     field.Key,
			Value:     field.Value,
		}
	}

	return records.Validated{
		Contact: contact,
		CnpjCpf: digits,
		Field:   field.Key,
	}, nil
}

var defaultValidator = New()

// Validate checks a contact with the default length-only rules.
func Validate(contact records.Contact) (records.Validated, error) {
	return defaultValidator.Validate(contact)
}

// Digits strips every character that is not an ASCII digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
