package reconciler

import (
	"context"
	"sync"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

type fakeDirectory struct {
	contacts []records.Contact
	err      error
}

func (d *fakeDirectory) ListAll(context.Context) ([]records.Contact, error) {
	return d.contacts, d.err
}

type fakeLedger struct {
	mu         sync.Mutex
	customers  map[records.Key]records.Customer
	lookupErrs map[records.Key]error
	updateErrs map[records.Key]error
	lookups    []records.Key
	updates    []records.Customer
	onLookup   func(records.Key)
}

func newFakeLedger(customers ...records.Customer) *fakeLedger {
	l := &fakeLedger{
		customers:  make(map[records.Key]records.Customer),
		lookupErrs: make(map[records.Key]error),
		updateErrs: make(map[records.Key]error),
	}
	for _, c := range customers {
		l.customers[records.Key(c.IntegrationCode)] = c
	}
	return l
}

func (l *fakeLedger) LookupByIntegrationCode(_ context.Context, key records.Key) (records.Customer, bool, error) {
	if l.onLookup != nil {
		l.onLookup(key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups = append(l.lookups, key)

	if err := l.lookupErrs[key]; err != nil {
		return records.Customer{}, false, err
	}
	c, ok := l.customers[key]
	return c, ok, nil
}

func (l *fakeLedger) Update(_ context.Context, c records.Customer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.updateErrs[records.Key(c.IntegrationCode)]; err != nil {
		return err
	}
	l.updates = append(l.updates, c)
	l.customers[records.Key(c.IntegrationCode)] = c
	return nil
}

func (l *fakeLedger) updateCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.updates)
}

func rejected(status int, body string) error {
	return errors.NewRejectedError("AlterarCliente", "", status, body)
}

func cpfContact(id, name, email string) records.Contact {
	return records.Contact{
		ID:           id,
		Name:         name,
		Email:        email,
		CustomFields: records.CustomFields{{Key: "CPF", Value: "529.982.247-25"}},
	}
}

func customer(key, name, email string) records.Customer {
	return records.Customer{IntegrationCode: key, DisplayName: name, Email: email}
}
