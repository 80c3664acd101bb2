// Package session stores conversation logs across runs so a session can be
// resumed by seeding the next run with its history. The Store interface keeps
// higher layers independent of concrete storage; additional backends (Redis,
// Postgres, etc.) can live in subpackages without changing calling code.
package session
