package report

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nao1215/comet/internal/model"
)

// TextWriter writes plain text for the terminal.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// WriteStatus prints the label on the first line, followed by the applied
// configuration when the proxy is enabled.
func (w *TextWriter) WriteStatus(report *model.StatusReport) (int, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, report.Label)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if cfg := report.Configuration; cfg != nil {
		fmt.Fprintf(tw, "  Mode:\t%s\n", cfg.Mode)
		fmt.Fprintf(tw, "  Proxy:\t%s://%s\n", cfg.Rules.SingleProxy.Scheme, cfg.Rules.SingleProxy.Address())
		fmt.Fprintf(tw, "  Bypass:\t%s\n", bypassText(cfg.Rules.BypassList))
	}
	fmt.Fprintf(tw, "  Controller:\t%s\n", report.ControlAddress)
	fmt.Fprintf(tw, "  Checked:\t%s\n", report.CheckedAt.Format(timeLayout))
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// WriteHistory prints one aligned line per event.
func (w *TextWriter) WriteHistory(events []model.ToggleEvent) (int, error) {
	if len(events) == 0 {
		return fmt.Fprintln(w.output, "No toggle events recorded.")
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSOURCE\tACTION\tSTATE\tRESULT")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(timeLayout),
			e.Source,
			actionName(e.Action),
			model.StatusLabel(e.ProxyEnabled),
			eventResult(e),
		)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
