package output

import (
	"io"

	md "github.com/nao1215/markdown"
)

// MarkdownFormatter outputs table data as a markdown table. Data that is
// not table data falls back to JSON.
type MarkdownFormatter struct{}

// Format outputs data in markdown format.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	case *Data:
		return f.formatTable(w, *v)
	default:
		jsonFormatter := &JSONFormatter{Indent: "  "}
		return jsonFormatter.Format(w, data)
	}
}

func (f *MarkdownFormatter) formatTable(w io.Writer, data Data) error {
	return md.NewMarkdown(w).
		Table(md.TableSet{Header: titleHeaders(data.Headers), Rows: data.Rows}).
		Build()
}

// writeMarkdownReport renders a report as a markdown section: a heading
// carrying the run id, the summary line and the per-record table.
func writeMarkdownReport(w io.Writer, title, summary string, data Data) error {
	doc := md.NewMarkdown(w).
		H2(title).
		PlainText(summary).
		LF()
	if len(data.Rows) > 0 {
		doc = doc.Table(md.TableSet{Header: titleHeaders(data.Headers), Rows: data.Rows})
	}
	return doc.Build()
}
