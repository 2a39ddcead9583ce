// Package postgres stores traces, observations and scores in PostgreSQL and
// executes compiled analytics statements against the same tables.
//
// Entity reads and writes go through sqlx on the lib/pq driver. Analytics
// statements go through the pgx pool so that numeric and timestamp columns
// come back as native driver values for coercion.
//
// # Atomicity
//
// WithEntityLock opens a transaction, takes a transaction-scoped advisory
// lock derived from the entity key, and carries the transaction in the
// context. Repository calls made with that context run inside it.
package postgres
