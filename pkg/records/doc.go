// Package records defines the data model shared by every stage of a sync run:
// the source directory contact, its ordered custom fields, the validated
// contact carrying a normalized fiscal identifier, the cross-system key, and
// the target ledger customer.
//
// Contacts are read-only inputs. Customers are decoded from the target ledger,
// merged, and written back whole, so a Customer keeps every field it does not
// manage as raw JSON and re-emits it unchanged.
package records
