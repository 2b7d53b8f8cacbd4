// Package daemon coordinates the long-running tonielib process.
//
// It wires configuration, logging, and the HTTP setup API into a single
// lifecycle with flock-based locking to prevent multiple instances. The
// setup API is what the first-run wizard in the frontend talks to: it
// reports readiness, detects the mounted data volume, probes candidate
// TeddyCloud servers, and persists the configuration file.
//
// Keep orchestration logic here: wizard semantics live in the setup
// package while the daemon focuses on startup, shutdown, and transport.
package daemon
