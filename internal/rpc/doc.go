// Package rpc implements a typed procedure router.
//
// Procedures are registered once, at process start, when the Router is built.
// Every call, whether it arrives over HTTP or from an in-process caller, runs
// the same pipeline: resolve the procedure by name, validate the raw input
// against the procedure's schema, run the handler with the typed input and
// hand its result or error back untouched.
//
// The primary components are:
//   - Procedure: a named query or mutation with an input schema and a handler
//   - Router: the immutable registry and the call pipeline
//   - Middleware: interceptors wrapped around every call (logging, metrics, tracing)
//   - Code: the error classification transports use to pick a status
package rpc
