// Package identity derives the cross-system key that joins a source contact
// to its target ledger customer.
//
// The key is the configured prefix followed by the contact id. It depends on
// the id alone, so it never changes between runs while the id is stable, and
// distinct ids under one prefix always give distinct keys.
package identity

import (
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// Resolver maps contact ids to keys.
type Resolver struct {
	prefix string
}

// NewResolver creates a Resolver for the given prefix. An empty prefix uses
// constants.DefaultKeyPrefix.
func NewResolver(prefix string) *Resolver {
	if prefix == "" {
		prefix = constants.DefaultKeyPrefix
	}
	return &Resolver{prefix: prefix}
}

// Prefix returns the key prefix.
func (r *Resolver) Prefix() string {
	return r.prefix
}

// Resolve returns the key of a contact.
func (r *Resolver) Resolve(contact records.Contact) records.Key {
	return r.Key(contact.ID)
}

// Key returns the key for a contact id.
func (r *Resolver) Key(id string) records.Key {
	return records.Key(r.prefix + id)
}

var defaultResolver = NewResolver(constants.DefaultKeyPrefix)

// ResolveKey returns the key of a contact under the default prefix.
func ResolveKey(contact records.Contact) records.Key {
	return defaultResolver.Resolve(contact)
}
