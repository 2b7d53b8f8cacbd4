// Package tafcache persists parsed TAF header summaries in a SQLite
// database so library scans can skip files that have not changed since the
// previous pass.
package tafcache
