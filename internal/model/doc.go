// Package model defines the data structures shared by the comet components.
//
// This package contains the following main types:
//   - ProxyConfiguration: The routing rules submitted to the system proxy settings
//   - Message / Response: The toggle protocol between the popup and the controller
//   - ToggleEvent: An audit record of a handled toggle
//   - OpError: The uniform failure record for apply, persist and deliver calls
//   - StatusReport: The rendered view of the current state
//
// The types are kept free of behaviour that touches the network, the disk or
// the operating system so that every other package can depend on them without
// import cycles.
package model
