// Package primitives provides the foundational data structures for the
// reaction-time engine.
//
// This package uses only the Go standard library. It holds:
//   - the state and event enumerations with their string forms
//   - Transition and the immutable transition Table
//   - the milestone-grouped collection streams and their snapshot types
//
// Nothing here is safe for concurrent mutation on its own. The engine in
// internal/core serialises every access behind its own lock.
package primitives
