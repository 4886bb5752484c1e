// Package procedures declares the application's RPC procedures and a typed
// in-process caller for them.
//
// Handlers get their collaborators through Deps; nothing here reaches for
// package-level clients, so tests substitute the event dispatcher directly.
package procedures
