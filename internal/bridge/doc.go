// Package bridge is the local HTTP proxy the toggle points the desktop at.
//
// It listens on 127.0.0.1:8080 and forwards every request through a Tor
// SOCKS5 port. Plain HTTP requests are forwarded by goproxy over a transport
// whose dialer is the SOCKS5 client; CONNECT tunnels are dialed the same way.
// Hostnames are handed to the SOCKS server unresolved, so DNS never leaks to
// the local resolver.
//
// Requests for malformed .onion hosts are refused with 400 before anything is
// dialed.
package bridge
