// Package analytics compiles declarative query requests into a single
// parameterized SQL statement and coerces the returned rows.
//
// Only catalog-resolved column expressions, allow-listed operator and
// aggregate tokens, and allow-listed temporal units are ever written into the
// statement text. Every filter value is bound as a positional parameter.
//
// Compilation is pure: it has no side effects and holds no shared mutable
// state, so Compile may be called from any number of goroutines.
package analytics
