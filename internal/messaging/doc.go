// Package messaging carries popup messages to the background controller over
// a loopback HTTP endpoint.
//
// Routes:
//
//	POST /message  {"action":"connect"}  -> {"status":"ok"}
//	GET  /state                          -> {"proxyEnabled":true}
//	GET  /health                         -> {"ok":true}
//
// POST /message answers {"status":"ok"} for every body, including bodies
// that are not valid JSON; those are handled as an unknown action.
package messaging
