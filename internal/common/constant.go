package common

// AuthorizationHeaderName carries the bearer token on API requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is echoed back (or generated) for every API request.
const RequestIDHeaderName = "X-Request-ID"

// APIBasePath prefixes every route of the REST surface.
const APIBasePath = "/api"
