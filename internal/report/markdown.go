package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/comet/internal/model"
)

// MarkdownWriter writes Markdown documents.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteStatus writes the status as a heading, an alert and a property table.
func (w *MarkdownWriter) WriteStatus(report *model.StatusReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Proxy Status")
	md.PlainText("")

	if report.ProxyEnabled {
		md.Tip("Connected: desktop traffic is routed through the local proxy.")
	} else {
		md.Note("Disconnected: desktop traffic connects directly.")
	}
	md.PlainText("")

	rows := [][]string{
		{"Status", report.Label},
		{"Controller", "`" + report.ControlAddress + "`"},
		{"Checked", report.CheckedAt.Format(timeLayout)},
	}
	if cfg := report.Configuration; cfg != nil {
		rows = append(rows,
			[]string{"Mode", "`" + string(cfg.Mode) + "`"},
			[]string{"Proxy", "`" + cfg.Rules.SingleProxy.Scheme + "://" + cfg.Rules.SingleProxy.Address() + "`"},
			[]string{"Bypass", "`" + bypassText(cfg.Rules.BypassList) + "`"},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteHistory writes a summary chart and a table of events.
func (w *MarkdownWriter) WriteHistory(events []model.ToggleEvent) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Toggle History")
	md.PlainText("")

	if len(events) == 0 {
		md.Note("No toggle events recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	var failed int
	for _, e := range events {
		if e.Failed() {
			failed++
		}
	}
	if failed > 0 {
		md.Warningf("%d of %d toggle(s) failed. The status label may not match the system proxy settings.", failed, len(events))
		md.PlainText("")
	}

	w.writeActionChart(md, events)

	md.H2("Events")
	md.PlainText("")
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Timestamp.Local().Format(timeLayout),
			string(e.Source),
			actionName(e.Action),
			model.StatusLabel(e.ProxyEnabled),
			eventResult(e),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "Source", "Action", "State", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainTextf("Showing %s event(s), newest first.", strconv.Itoa(len(events)))

	return len(md.String()), md.Build()
}

// writeActionChart writes a mermaid pie chart of connects, disconnects and
// ignored messages.
func (w *MarkdownWriter) writeActionChart(md *markdown.Markdown, events []model.ToggleEvent) {
	var connects, disconnects, ignored uint64
	for _, e := range events {
		switch e.Action {
		case model.ActionConnect:
			connects++
		case model.ActionDisconnect:
			disconnects++
		default:
			ignored++
		}
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Toggle Actions"),
		piechart.WithShowData(true),
	)
	if connects > 0 {
		chart.LabelAndIntValue("connect", connects)
	}
	if disconnects > 0 {
		chart.LabelAndIntValue("disconnect", disconnects)
	}
	if ignored > 0 {
		chart.LabelAndIntValue("ignored", ignored)
	}

	md.H2("Summary")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}
