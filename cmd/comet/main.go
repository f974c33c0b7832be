// Package main provides the entry point for the comet CLI.
//
// comet toggles the desktop proxy settings between direct connections and a
// local HTTP proxy on 127.0.0.1:8080 that forwards to Tor.
//
// Usage:
//
//	comet serve --bridge     # background controller and bridge
//	comet connect            # route traffic through the proxy
//	comet disconnect         # connect directly again
//	comet status             # Connected / Disconnected
//
// See --help for all available options.
package main

// main is the entry point for comet.
func main() {
	Execute()
}
