// Package tor talks to the Tor SOCKS5 port the bridge forwards to.
//
// Client probes and dials the SOCKS port, WaitForSocks polls it until Tor is
// up, and EmbeddedTor launches a private Tor daemon through tornago when no
// system Tor is running. CheckOnionHost rejects malformed .onion hostnames
// before a request ever reaches Tor.
package tor
