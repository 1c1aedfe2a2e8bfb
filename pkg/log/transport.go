package log

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// Transport wraps an http.RoundTripper so every outbound call carries an
// X-Request-ID and is logged with status and latency once it completes.
// A request ID already present on the request is kept.
func Transport(base http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := req.Header.Get(headerRequestID)
	if reqID == "" {
		reqID = uuid.New().String()
		req = req.Clone(req.Context())
		req.Header.Set(headerRequestID, reqID)
	}

	child := t.logger.With().
		Str(FieldRequestID, reqID).
		Str(FieldMethod, req.Method).
		Str(FieldURL, req.URL.Redacted()).
		Logger()

	resp, err := t.base.RoundTrip(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		child.Warn().Err(err).Float64(FieldLatency, latency).Msg("request failed")
		return nil, err
	}

	child.Debug().
		Int(FieldStatus, resp.StatusCode).
		Float64(FieldLatency, latency).
		Msg("request completed")
	return resp, nil
}
