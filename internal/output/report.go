package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

// ReportTable converts the entries of a report into table data.
func ReportTable(report *reconciler.Report) Data {
	data := Data{
		Headers:      []string{"index", "contact_id", "key", "state", "target_code", "changes", "detail"},
		RightAligned: []int{0},
	}
	for _, o := range report.Entries {
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(o.Index),
			o.ContactID,
			o.Key.String(),
			string(o.State),
			o.TargetCode,
			changesCell(o),
			detailCell(o),
		})
	}
	return data
}

// WriteReport renders a report in the given format. The table format prints
// the per-record table followed by the summary line.
func WriteReport(w io.Writer, format Format, report *reconciler.Report) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, report)
	case FormatMarkdown:
		return writeMarkdownReport(w, "Sync run "+report.RunID, report.Summary(), ReportTable(report))
	}

	if len(report.Entries) > 0 {
		if err := NewFormatter(FormatTable).Format(w, ReportTable(report)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s (run %s, %s)\n", report.Summary(), report.RunID, report.Duration.Round(time.Millisecond))
	return err
}

func changesCell(o reconciler.Outcome) string {
	fields := make([]string, 0, len(o.Changes))
	for _, c := range o.Changes {
		fields = append(fields, string(c.Field))
	}
	return strings.Join(fields, ",")
}

func detailCell(o reconciler.Outcome) string {
	if o.Reason != "" {
		return o.Reason.String()
	}
	return o.Error
}
