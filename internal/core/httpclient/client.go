package httpclient

import (
	"net/http"
	"time"

	"ecu-stand/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound call with the name of the remote service.
type LoggingRoundTripper struct {
	// Service names the remote side in log entries (e.g. "resend").
	Service string
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
// Only scheme, host and path are logged; query strings may carry secrets.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.Named("httpclient").With(
		zap.String("service", lrt.Service),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Scheme+"://"+req.URL.Host+req.URL.Path),
	)

	log.Debug("HTTP request started")

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP request failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	log.Debug("HTTP request completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
// A zero timeout leaves the transport defaults in charge.
func NewClient(service string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Service: service,
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
