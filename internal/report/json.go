package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/comet/internal/model"
)

// JSONWriter writes JSON documents.
type JSONWriter struct {
	output io.Writer
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents output by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter. Output is compact unless
// WithPrettyPrint is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// historyDocument wraps events so an empty history is still an object.
type historyDocument struct {
	Count  int                 `json:"count"`
	Events []model.ToggleEvent `json:"events"`
}

// WriteStatus writes the report as a JSON object.
func (w *JSONWriter) WriteStatus(report *model.StatusReport) (int, error) {
	return w.writeJSON(report)
}

// WriteHistory writes {"count": n, "events": [...]}.
func (w *JSONWriter) WriteHistory(events []model.ToggleEvent) (int, error) {
	if events == nil {
		events = []model.ToggleEvent{}
	}
	return w.writeJSON(historyDocument{Count: len(events), Events: events})
}

// writeJSON encodes v without HTML escaping so bypass entries such as
// <local> stay readable.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.indent)
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
