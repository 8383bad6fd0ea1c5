package kolado

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoBertuzzi/API-Kolado/internal/metrics"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// fakeLedger is an in-memory target ledger speaking the JSON envelope protocol.
type fakeLedger struct {
	t         *testing.T
	mu        sync.Mutex
	customers map[string]map[string]any
	failCodes map[string]int
	calls     map[string]int
	updated   []map[string]any
}

func newFakeLedger(t *testing.T) *fakeLedger {
	return &fakeLedger{
		t:         t,
		customers: make(map[string]map[string]any),
		failCodes: make(map[string]int),
		calls:     make(map[string]int),
	}
}

func (l *fakeLedger) add(code string, fields map[string]any) {
	fields["codigo_cliente_integracao"] = code
	l.customers[code] = fields
}

func (l *fakeLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	require.NoError(l.t, err)

	var env struct {
		Call      string           `json:"call"`
		AppKey    string           `json:"app_key"`
		AppSecret string           `json:"app_secret"`
		Param     []map[string]any `json:"param"`
		Cliente   map[string]any   `json:"cliente"`
	}
	require.NoError(l.t, json.Unmarshal(raw, &env))
	assert.Equal(l.t, "app-key", env.AppKey)
	assert.Equal(l.t, "app-secret", env.AppSecret)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[env.Call]++

	switch env.Call {
	case "ListarClientes":
		code, _ := env.Param[0]["codigo_cliente_integracao"].(string)
		var found []map[string]any
		if c, ok := l.customers[code]; ok {
			found = append(found, c)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"cliente_cadastro": found})
	case "AlterarCliente":
		code, _ := env.Cliente["codigo_cliente_integracao"].(string)
		if status := l.failCodes[code]; status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"faultstring":"update refused"}`))
			return
		}
		l.customers[code] = env.Cliente
		l.updated = append(l.updated, env.Cliente)
		_, _ = w.Write([]byte(`{"codigo_status":"0"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

type staticDirectory []records.Contact

func (d staticDirectory) ListAll(context.Context) ([]records.Contact, error) {
	return d, nil
}

func sourceServer(t *testing.T, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "src-key", r.Header.Get("X-API-KEY"))
		_, _ = w.Write([]byte(body))
	}))
}

func testConfig(source, target string) Config {
	return Config{
		SourceAPIURL:    source,
		SourceAPIKey:    "src-key",
		TargetAPIURL:    target,
		TargetAppKey:    "app-key",
		TargetAppSecret: "app-secret",
	}
}

func TestRunEndToEndValidationMix(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[
		{"id":"1","name":"New Name","email":"b@x.com","customFields":[{"key":"CPF","value":"529.982.247-25"}]},
		{"id":"2","name":"No Doc","customFields":[{"key":"telefone","value":"11999998888"}]},
		{"id":"3","name":"Short","customFields":[{"key":"cpf","value":"123.456.789"}]}
	]`)
	defer src.Close()

	led := newFakeLedger(t)
	led.add("CodigoInterno1", map[string]any{"codigo_cliente_omie": 1001, "razao_social": "Old Name", "email": "a@x.com", "cidade": "RIO"})
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, errors.ReasonMissingIdentifier, report.Entries[1].Reason)
	assert.Equal(t, errors.ReasonInvalidIdentifierLength, report.Entries[2].Reason)
	assert.Equal(t, "1001", report.Entries[0].TargetCode)

	require.Len(t, led.updated, 1)
	assert.Equal(t, "New Name", led.updated[0]["razao_social"])
	assert.Equal(t, "a@x.com;b@x.com", led.updated[0]["email"])
	assert.Equal(t, "RIO", led.updated[0]["cidade"], "unmanaged fields pass through")
	assert.EqualValues(t, 1001, led.updated[0]["codigo_cliente_omie"])
	assert.Equal(t, 1, led.calls["ListarClientes"])
}

func TestRunEndToEndNotFound(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[{"id":"9","name":"N","customFields":[{"key":"cnpj","value":"11.222.333/0001-81"}]}]`)
	defer src.Close()

	led := newFakeLedger(t)
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, errors.ReasonNotFound, report.Entries[0].Reason)
	assert.Zero(t, led.calls["AlterarCliente"])
}

func TestRunEndToEndUpdateFailureContinues(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[
		{"id":"1","name":"A","customFields":[{"key":"cpf","value":"52998224725"}]},
		{"id":"2","name":"B","customFields":[{"key":"cpf","value":"52998224725"}]}
	]`)
	defer src.Close()

	led := newFakeLedger(t)
	led.add("CodigoInterno1", map[string]any{"razao_social": "a"})
	led.add("CodigoInterno2", map[string]any{"razao_social": "b"})
	led.failCodes["CodigoInterno1"] = http.StatusInternalServerError
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Synced)

	var te *errors.TargetError
	require.ErrorAs(t, report.Entries[0].Err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, te.Body, "update refused")
	assert.Equal(t, reconciler.StateApplied, report.Entries[1].State)
}

func TestRunEndToEndFetchFailure(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer src.Close()

	led := newFakeLedger(t)
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.Empty(t, report.Entries)
	assert.Empty(t, led.calls)
}

func TestHooks(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[
		{"id":"1","name":"A","customFields":[{"key":"cpf","value":"52998224725"}]},
		{"id":"2","name":"B"},
		{"id":"3","name":"C","customFields":[{"key":"cpf","value":"52998224725"}]}
	]`)
	defer src.Close()

	led := newFakeLedger(t)
	led.add("CodigoInterno1", map[string]any{"razao_social": "a"})
	led.add("CodigoInterno3", map[string]any{"razao_social": "c"})
	led.failCodes["CodigoInterno3"] = http.StatusBadRequest
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL), WithWorkers(3))
	require.NoError(t, err)

	var synced, skipped, failed atomic.Int32
	client.OnSynced(func(reconciler.Outcome) { synced.Add(1) })
	client.OnSkipped(func(reconciler.Outcome) { skipped.Add(1) })
	client.OnFailed(func(o reconciler.Outcome) {
		failed.Add(1)
		assert.Equal(t, "3", o.ContactID)
	})

	_, err = client.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), synced.Load())
	assert.Equal(t, int32(1), skipped.Load())
	assert.Equal(t, int32(1), failed.Load())
}

func TestDryRunSendsNoUpdates(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[{"id":"1","name":"A","customFields":[{"key":"cpf","value":"52998224725"}]}]`)
	defer src.Close()

	led := newFakeLedger(t)
	led.add("CodigoInterno1", map[string]any{"razao_social": "old"})
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL), WithDryRun(true))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconciler.StatePlanned, report.Entries[0].State)
	assert.Zero(t, led.calls["AlterarCliente"])
}

func TestRunLiteralMergeAppendsEmptyEmail(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[{"id":"1","name":"New","customFields":[{"key":"cpf","value":"52998224725"}]}]`)
	defer src.Close()

	led := newFakeLedger(t)
	led.add("CodigoInterno1", map[string]any{"razao_social": "Old", "email": "a@x.com"})
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL), WithLiteralMerge(true))
	require.NoError(t, err)

	report, err := client.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)

	require.Len(t, led.updated, 1)
	assert.Equal(t, "New", led.updated[0]["razao_social"])
	assert.Equal(t, "a@x.com;", led.updated[0]["email"])
}

func TestCheckNeedsNoTarget(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[{"id":"1","customFields":[{"key":"cpf","value":"52998224725"}]},{"id":"2"}]`)
	defer src.Close()

	led := newFakeLedger(t)
	tgt := httptest.NewServer(led)
	defer tgt.Close()

	client, err := New(testConfig(src.URL, tgt.URL))
	require.NoError(t, err)

	report, err := client.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconciler.StateEligible, report.Entries[0].State)
	assert.Equal(t, reconciler.StateRejected, report.Entries[1].State)
	assert.Empty(t, led.calls)
}

func TestMetricsPushedAfterRun(t *testing.T) {
	logging.DisableLoggingForTest(t)

	src := sourceServer(t, `[{"id":"2"}]`)
	defer src.Close()
	tgt := httptest.NewServer(newFakeLedger(t))
	defer tgt.Close()

	var pushes atomic.Int32
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes.Add(1)
		assert.Equal(t, "/metrics/job/nightly", r.URL.Path)
	}))
	defer gw.Close()

	rec := metrics.New()
	client, err := New(testConfig(src.URL, tgt.URL), WithMetrics(rec), WithPushgateway(gw.URL, "nightly"))
	require.NoError(t, err)

	_, err = client.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), pushes.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.RecordsTotal.WithLabelValues("rejected", "MissingIdentifier")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.LastRunRecords.WithLabelValues("skipped")))
}

func TestConfigValidate(t *testing.T) {
	err := Config{SourceAPIURL: "http://src"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	var ce *errors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"source_api_key", "target_api_url", "target_app_key", "target_app_secret"}, ce.Missing)

	assert.NoError(t, testConfig("http://a", "http://b").Validate())
}

func TestNewWithInjectedClients(t *testing.T) {
	logging.DisableLoggingForTest(t)

	_, err := New(Config{})
	assert.True(t, errors.IsConfigError(err))

	_, err = New(Config{TargetAPIURL: "http://t", TargetAppKey: "k", TargetAppSecret: "s"}, WithDirectory(staticDirectory{}))
	assert.NoError(t, err)
}

func TestNewInvalidOptions(t *testing.T) {
	cfg := testConfig("http://a", "http://b")
	for _, opt := range []Option{WithWorkers(0), WithHTTPTimeout(0), WithKeyPrefix("")} {
		_, err := New(cfg, opt)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
}
