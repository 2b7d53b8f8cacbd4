// Package main hosts the tonielib CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the same operations the daemon's
// setup API offers: readiness status, data volume detection, TeddyCloud
// connection probing, library scanning, and configuration scaffolding. It
// centralizes configuration resolution so subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
