// Package app wires configuration, logging, services, middleware and
// routes into a runnable HTTP application. NewApplication builds the
// dependency graph; Run starts the server and blocks until an interrupt
// triggers graceful shutdown.
package app
