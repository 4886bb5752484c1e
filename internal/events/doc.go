// Package events forwards validated payloads to an external asynchronous
// event-processing system.
//
// The primary components are:
//   - Event: a named payload with a unique id, as sent over the wire
//   - Dispatcher: the capability handed to procedures that emit events
//   - Bridge: the Dispatcher implementation; one outbound send per call,
//     no retries, failures surfaced as *DispatchError
//   - Sender: the process-wide client to the external system, built on a
//     Watermill publisher (HTTP event API, NATS, or an in-memory channel)
//   - DevConsumer: drains the in-memory channel during local development
package events
