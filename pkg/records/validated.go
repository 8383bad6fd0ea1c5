package records

import "github.com/GustavoBertuzzi/API-Kolado/pkg/constants"

// FiscalKind tells an individual (CPF) identifier from an entity (CNPJ) one.
type FiscalKind string

const (
	// FiscalKindIndividual is an 11-digit CPF.
	FiscalKindIndividual FiscalKind = "CPF"
	// FiscalKindEntity is a 14-digit CNPJ.
	FiscalKindEntity FiscalKind = "CNPJ"
)

// Validated is a contact that passed validation, augmented with its
// digits-only fiscal identifier. The embedded contact is never modified.
type Validated struct {
	Contact Contact `json:"contact"`

	// CnpjCpf is the normalized identifier, 11 or 14 digits.
	CnpjCpf string `json:"cnpj_cpf"`

	// Field is the custom field key the identifier was read from.
	Field string `json:"field"`
}

// Kind derives the identifier kind from its length.
func (v Validated) Kind() FiscalKind {
	switch len(v.CnpjCpf) {
	case constants.CPFLength:
		return FiscalKindIndividual
	case constants.CNPJLength:
		return FiscalKindEntity
	default:
		return ""
	}
}
