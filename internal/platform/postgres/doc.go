// Package postgres manages the PostgreSQL connection pool. The service does
// not persist anything yet; the pool is opened at startup, checked by the
// health endpoint and closed on shutdown.
package postgres
