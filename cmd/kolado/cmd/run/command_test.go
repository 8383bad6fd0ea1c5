package run

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kolado "github.com/GustavoBertuzzi/API-Kolado"
	"github.com/GustavoBertuzzi/API-Kolado/cmd/application"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

type contacts []records.Contact

func (c contacts) ListAll(context.Context) ([]records.Contact, error) { return c, nil }

type failingDirectory struct{}

func (failingDirectory) ListAll(context.Context) ([]records.Contact, error) {
	return nil, errors.NewFetchError("http://octadesk", errors.New("connection refused"))
}

type memLedger struct {
	mu        sync.Mutex
	customers map[records.Key]records.Customer
	updates   int
	fail      bool
}

func (l *memLedger) LookupByIntegrationCode(_ context.Context, key records.Key) (records.Customer, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return records.Customer{}, false, errors.NewRejectedError("ListarClientes", key.String(), 500, "boom")
	}
	c, ok := l.customers[key]
	return c, ok, nil
}

func (l *memLedger) Update(_ context.Context, c records.Customer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates++
	l.customers[records.Key(c.IntegrationCode)] = c
	return nil
}

func contact(id, name, email, cpf string) records.Contact {
	return records.Contact{
		ID:           id,
		Name:         name,
		Email:        email,
		CustomFields: records.CustomFields{{Key: "CPF", Value: cpf}},
	}
}

func newLedger() *memLedger {
	return &memLedger{customers: map[records.Key]records.Customer{
		"CodigoInterno1": {IntegrationCode: "CodigoInterno1", DisplayName: "Old Name", Email: "a@x.com"},
	}}
}

func mockApp(dir reconciler.Directory, led reconciler.Ledger, format string) *application.Mock {
	return &application.Mock{
		ClientFunc: func(opts ...kolado.Option) (kolado.Client, error) {
			opts = append(opts, kolado.WithDirectory(dir), kolado.WithLedger(led))
			return kolado.New(kolado.Config{}, opts...)
		},
		OutputFormatFunc: func() string { return format },
	}
}

func TestExecuteAppliesChanges(t *testing.T) {
	led := newLedger()
	dir := contacts{contact("1", "New Name", "a@x.com", "529.982.247-25")}

	var out bytes.Buffer
	err := Execute(context.Background(), mockApp(dir, led, "json"), &Flags{}, &out)
	require.NoError(t, err)

	var report reconciler.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 1, report.Synced)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, reconciler.StateApplied, report.Entries[0].State)

	assert.Equal(t, 1, led.updates)
	assert.Equal(t, "New Name", led.customers["CodigoInterno1"].DisplayName)
}

func TestExecuteDryRun(t *testing.T) {
	led := newLedger()
	dir := contacts{contact("1", "New Name", "b@x.com", "52998224725")}

	var out bytes.Buffer
	err := Execute(context.Background(), mockApp(dir, led, "json"), &Flags{DryRun: true}, &out)
	require.NoError(t, err)

	var report reconciler.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.DryRun)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, reconciler.StatePlanned, report.Entries[0].State)
	assert.Zero(t, led.updates)
}

func TestExecuteTableOutput(t *testing.T) {
	dir := contacts{
		contact("1", "New Name", "a@x.com", "52998224725"),
		contact("2", "Nobody", "n@x.com", "123"),
	}

	var out bytes.Buffer
	err := Execute(context.Background(), mockApp(dir, newLedger(), "table"), &Flags{}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Sync completed. 2 fetched, 1 synced, 1 skipped, 0 failed.")
	assert.Contains(t, out.String(), "InvalidIdentifierLength")
}

func TestExecuteFailOnError(t *testing.T) {
	led := newLedger()
	led.fail = true
	dir := contacts{contact("1", "New Name", "a@x.com", "52998224725")}

	var out bytes.Buffer
	err := Execute(context.Background(), mockApp(dir, led, "json"), &Flags{}, &out)
	require.NoError(t, err, "record failures are reported, not returned")

	out.Reset()
	err = Execute(context.Background(), mockApp(dir, led, "json"), &Flags{FailOnError: true}, &out)
	require.ErrorIs(t, err, ErrRecordsFailed)
	assert.NotEmpty(t, out.String(), "report is written before failing")
}

func TestExecuteFetchFailure(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), mockApp(failingDirectory{}, newLedger(), "json"), &Flags{}, &out)
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.Empty(t, out.String())
}

func TestExecuteInvalidFormat(t *testing.T) {
	err := Execute(context.Background(), mockApp(contacts{}, newLedger(), "xml"), &Flags{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestBuildOptions(t *testing.T) {
	assert.Empty(t, BuildOptions(&Flags{}))
	assert.Len(t, BuildOptions(&Flags{DryRun: true, ForceUpdate: true}), 2)
	assert.Len(t, BuildOptions(&Flags{Workers: 4}), 0, "workers only apply when the flag was given")
	assert.Len(t, BuildOptions(&Flags{Workers: 4, workersSet: true}), 1)
	assert.Len(t, BuildOptions(&Flags{StrictEmailCompare: true, LiteralMerge: true}), 2)
}

func TestNewCommandFlags(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	for _, name := range []string{"dry-run", "force-update", "verify-check-digits", "strict-email-compare", "literal-merge", "fail-on-error", "workers"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
