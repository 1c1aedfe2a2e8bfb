package log

const (
	// Outbound HTTP
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"

	// Actor
	FieldUserID     = "user_id"
	FieldUsername   = "username"
	FieldStreamerID = "streamer_id"

	// Realtime channel
	FieldEndpoint    = "endpoint"
	FieldDestination = "destination"
	FieldState       = "state"
	FieldAttempt     = "attempt"
	FieldBackoff     = "backoff_ms"

	// Service
	FieldService   = "service"
	FieldComponent = "component"
)
