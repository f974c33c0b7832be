// Package report renders proxy status and toggle history.
//
// Three formats are available:
//   - TextWriter: the status label and a few detail lines for the terminal
//   - JSONWriter: the same data for scripts
//   - MarkdownWriter: a shareable document built with nao1215/markdown
//
// All writers implement Writer, so commands pick a format once and write
// through the interface.
package report
