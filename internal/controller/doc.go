// Package controller implements the background controller that owns the
// proxy toggle.
//
// The controller is the only writer of the persisted proxyEnabled flag and of
// the system proxy configuration slot. It reacts to three things:
//
//   - a connect message, which applies the fixed proxy configuration and
//     persists proxyEnabled=true
//   - a disconnect message, which clears the configuration and persists
//     proxyEnabled=false
//   - startup, which reapplies the configuration when the persisted flag is
//     true
//
// Every message is acknowledged with {"status":"ok"}, including unknown
// actions and toggles that failed. Failures are logged and recorded in the
// toggle history instead.
package controller
