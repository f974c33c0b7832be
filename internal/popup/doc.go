// Package popup implements the user-facing side of the toggle.
//
// A Popup never changes the proxy itself. A click sends a connect or
// disconnect message to the background controller, waits for the
// acknowledgement and then re-reads the persisted flag to render
// "Connected" or "Disconnected". When a message is lost the label is left as
// it was; there is no retry and no error state is rendered.
package popup
