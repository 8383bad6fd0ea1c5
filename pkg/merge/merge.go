// Package merge computes the target ledger customer that results from
// applying a validated source contact to it.
//
// Merging is pure: the target passed in is never modified, and fields without
// a policy pass through unchanged. The result is the full customer record
// along with the list of field changes, so callers can skip an update when
// nothing changed.
package merge

import (
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// Field names a customer field managed by the merge.
type Field string

const (
	// FieldDisplayName is the customer display name (razao_social).
	FieldDisplayName Field = "display_name"
	// FieldEmail is the customer email list.
	FieldEmail Field = "email"
)

// Change describes one field modified by a merge.
type Change struct {
	Field  Field  `json:"field" yaml:"field"`
	Old    string `json:"old" yaml:"old"`
	New    string `json:"new" yaml:"new"`
	Policy string `json:"policy" yaml:"policy"`
}

// Result is the outcome of a merge.
type Result struct {
	Customer records.Customer
	Changes  []Change
}

// Changed reports whether the merge modified any field.
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

type accessor struct {
	field  Field
	source func(records.Validated) string
	get    func(records.Customer) string
	set    func(*records.Customer, string)
}

// fields lists the managed fields in the order changes are reported.
var fields = []accessor{
	{
		field:  FieldDisplayName,
		source: func(v records.Validated) string { return v.Contact.Name },
		get:    func(c records.Customer) string { return c.DisplayName },
		set:    func(c *records.Customer, s string) { c.DisplayName = s },
	},
	{
		field:  FieldEmail,
		source: func(v records.Validated) string { return v.Contact.Email },
		get:    func(c records.Customer) string { return c.Email },
		set:    func(c *records.Customer, s string) { c.Email = s },
	},
}

// Engine merges source contacts into target customers.
type Engine struct {
	policies map[Field]Policy
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the policy for a field. A nil policy leaves the field
// untouched by merges.
func WithPolicy(field Field, policy Policy) Option {
	return func(e *Engine) {
		if policy == nil {
			delete(e.policies, field)
			return
		}
		e.policies[field] = policy
	}
}

// WithStrictEmailCompare switches email merging to whole-string comparison.
func WithStrictEmailCompare(strict bool) Option {
	return WithPolicy(FieldEmail, Append(constants.EmailSeparator, strict))
}

// WithLiteralMerge applies every field exactly as received: the display name
// is replaced whenever it differs, empty or not, and the email uses the
// strict append.
func WithLiteralMerge() Option {
	return func(e *Engine) {
		e.policies[FieldDisplayName] = ReplaceStrict()
		e.policies[FieldEmail] = Append(constants.EmailSeparator, true)
	}
}

// New creates an Engine with the default policies: display name is replaced,
// email is appended.
func New(opts ...Option) *Engine {
	e := &Engine{
		policies: map[Field]Policy{
			FieldDisplayName: Replace(),
			FieldEmail:       Append(constants.EmailSeparator, false),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge applies source to a copy of target.
func (e *Engine) Merge(source records.Validated, target records.Customer) Result {
	merged := target.Clone()

	var changes []Change
	for _, f := range fields {
		policy, ok := e.policies[f.field]
		if !ok {
			continue
		}
		old := f.get(merged)
		value, changed := policy.Apply(old, f.source(source))
		if !changed {
			continue
		}
		f.set(&merged, value)
		changes = append(changes, Change{
			Field:  f.field,
			Old:    old,
			New:    value,
			Policy: policy.Name(),
		})
	}

	return Result{Customer: merged, Changes: changes}
}

var defaultEngine = New()

// Merge applies source to a copy of target with the default policies and
// returns the full merged customer.
func Merge(source records.Validated, target records.Customer) records.Customer {
	return defaultEngine.Merge(source, target).Customer
}
