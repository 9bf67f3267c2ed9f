// Package client is the CLI's connection to the taskkeeper REST API.
//
// # Overview
//
// Client describes the API in task terms. HTTPClient implements it over
// net/http: it sends JSON for register/login and multipart forms for task
// writes, unwraps the {status, message, data, error} envelope, and turns
// replies into Go values and errors.
//
// # Error Handling
//
//   - 401: ErrUnauthorized; the Credentials passed to the call are invalidated.
//   - 403: ErrForbidden.
//   - 404: ErrNotFound.
//   - 422: *ValidationError with the server's field messages unchanged.
//   - transport failures: ErrUnavailable.
//   - anything else: *APIError carrying the server's summary.
//
// InitDatabase opens and migrates the local SQLite file the session lives in.
package client
