// Package utils provides concurrency and panic-recovery helpers for hybridrag.
//
// This package contains:
//   - The default concurrency bound for backend calls (concurrent.go)
//   - Deadline-aware fan-out that returns partial results (concurrent.go)
//   - Panic recovery that converts panics into errors (recovery.go)
package utils
