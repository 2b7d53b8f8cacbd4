// Package library scans the mounted library volume for Tonie audio files
// and reads their headers, backed by the TAF metadata cache.
package library
