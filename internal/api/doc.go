// Package api exposes the procedure router over HTTP.
//
// Queries are served on GET /api/rpc/{procedure} with the input as a
// URL-encoded JSON document in the "input" query parameter; mutations are
// served on POST with the input as the request body. Several procedures can be
// called in one request by joining their names with commas and setting
// batch=1, in which case the input is an object keyed by the call's index.
//
// Every response uses the same envelope: {"result":{"data":...}} on success
// and {"error":{...}} on failure. Error mapping happens in one place
// (MapErrorToStatusCode) and server-class error messages are sanitised before
// they reach the client.
package api
