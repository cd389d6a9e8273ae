// Package memory provides in-memory implementations of the driven store
// interfaces. They back the "memory" index backend and are used in tests.
package memory
