// Package api implements the client for the device-management API.
//
// The API is RPC-shaped rather than RESTful: every call is a single POST to
// one fixed endpoint with the method name and parameters in the JSON body,
// authenticated by a bearer key. Successful responses wrap their payload in
// a "result" field; failures carry a non-2xx status and, usually, a JSON
// error envelope.
//
// The client performs exactly one round trip per call: no retries, no
// pagination, no connection-level cleverness. Failures surface as errors;
// the orchestration layer decides which of them are fatal (none, in
// practice: a failed scope degrades to zero results).
package api
