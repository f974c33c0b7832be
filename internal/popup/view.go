package popup

import (
	"fmt"
	"io"
	"sync"
)

// WriterView prints each rendered label on its own line.
type WriterView struct {
	w io.Writer
}

// NewWriterView returns a View writing to w.
func NewWriterView(w io.Writer) *WriterView {
	return &WriterView{w: w}
}

// RenderStatus implements View.
func (v *WriterView) RenderStatus(label string) {
	fmt.Fprintln(v.w, label)
}

// LabelView keeps the last rendered label, like a status text element.
type LabelView struct {
	mu    sync.Mutex
	label string
	count int
}

// RenderStatus implements View.
func (v *LabelView) RenderStatus(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
	v.count++
}

// Label returns the last rendered label, or "" when nothing was rendered.
func (v *LabelView) Label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}

// Renders returns how many times a label was rendered.
func (v *LabelView) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}
