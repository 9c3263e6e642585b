package common

// Persistence keys of the local key/value state.
const (
	ProfileKey = "profile"
	LogsKey    = "logs"
)

// RequestIDHeaderName carries the correlation id of an inference call or a
// local API request.
const RequestIDHeaderName = "X-Request-Id"
