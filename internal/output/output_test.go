package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/merge"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

func fixedReport() *reconciler.Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &reconciler.Report{
		RunID:     "00000000-0000-0000-0000-000000000001",
		StartTime: start,
		EndTime:   start.Add(1500 * time.Millisecond),
		Duration:  1500 * time.Millisecond,
		Fetched:   3,
		Synced:    1,
		Skipped:   1,
		Failed:    1,
		States: map[reconciler.State]int{
			reconciler.StateApplied:  1,
			reconciler.StateRejected: 1,
			reconciler.StateFailed:   1,
		},
		Entries: []reconciler.Outcome{
			{
				Index:      0,
				ContactID:  "1",
				Key:        "CodigoInterno1",
				State:      reconciler.StateApplied,
				TargetCode: "1001",
				Changes: []merge.Change{
					{Field: merge.FieldDisplayName, Old: "Old Name", New: "New Name", Policy: "replace"},
				},
				Duration: 250 * time.Millisecond,
			},
			{
				Index:     1,
				ContactID: "2",
				State:     reconciler.StateRejected,
				Reason:    errors.ReasonMissingIdentifier,
				Error:     "contact 2 has no CPF or CNPJ custom field",
			},
			{
				Index:     2,
				ContactID: "3",
				Key:       "CodigoInterno3",
				State:     reconciler.StateFailed,
				Error:     "target AlterarCliente rejected for CodigoInterno3 (status 500): boom",
				Duration:  5 * time.Millisecond,
			},
		},
	}
}

func TestWriteReportJSONGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatJSON, fixedReport()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", buf.Bytes())
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatYAML, fixedReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", decoded["run_id"])
	assert.Len(t, decoded["entries"], 3)
}

func TestWriteReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatTable, fixedReport()))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "CONTACT ID")
	assert.Contains(t, out, "CodigoInterno1")
	assert.Contains(t, out, "display_name")
	assert.Contains(t, out, "MissingIdentifier")
	assert.Contains(t, out, "Sync completed with failures. 3 fetched, 1 synced, 1 skipped, 1 failed.")
	assert.Contains(t, out, "run 00000000-0000-0000-0000-000000000001, 1.5s")
}

func TestWriteReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatMarkdown, fixedReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "## Sync run 00000000-0000-0000-0000-000000000001"))
	assert.Contains(t, out, "Sync completed with failures. 3 fetched, 1 synced, 1 skipped, 1 failed.")
	assert.Contains(t, out, "Contact Id")
	assert.Contains(t, out, "CodigoInterno3")
	assert.Contains(t, out, "|")
}

func TestMarkdownFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestWriteReportTableEmpty(t *testing.T) {
	report := reconciler.NewReport()
	report.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatTable, report))
	assert.Contains(t, buf.String(), "Sync completed. 0 fetched")
	assert.NotContains(t, strings.ToUpper(buf.String()), "CONTACT ID")
}

func TestReportTable(t *testing.T) {
	data := ReportTable(fixedReport())
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"0", "1", "CodigoInterno1", "applied", "1001", "display_name", ""}, data.Rows[0])
	assert.Equal(t, "MissingIdentifier", data.Rows[1][6])
	assert.Contains(t, data.Rows[2][6], "status 500")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "markdown", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	f, err := ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}
