package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/comet/internal/model"
)

// Writer renders status reports and toggle history.
type Writer interface {
	// WriteStatus renders a single status report.
	WriteStatus(report *model.StatusReport) (int, error)

	// WriteHistory renders toggle events, newest first.
	WriteHistory(events []model.ToggleEvent) (int, error)
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable output.
	FormatJSON Format = "json"
	// FormatMarkdown is a Markdown document.
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// timeLayout is used for every human-facing timestamp.
const timeLayout = "2006-01-02 15:04:05 MST"

// eventResult summarises an event outcome for text and markdown output.
func eventResult(e model.ToggleEvent) string {
	if e.Failed() {
		return "failed: " + e.Error
	}
	if !e.Action.IsKnown() {
		return "ignored"
	}
	return "ok"
}

// actionName renders an action, quoting unknown and empty ones.
func actionName(a model.Action) string {
	if a.IsKnown() {
		return string(a)
	}
	return fmt.Sprintf("%q", string(a))
}

// bypassText renders a bypass list.
func bypassText(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}
