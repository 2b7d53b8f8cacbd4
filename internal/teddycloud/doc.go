// Package teddycloud implements the HTTP client for the TeddyCloud content
// server.
//
// Only the two endpoints the setup wizard needs are covered: the custom
// tonies catalog (used as the reachability check) and the Toniebox device
// listing. All calls are context-bounded; the package never retries.
package teddycloud
