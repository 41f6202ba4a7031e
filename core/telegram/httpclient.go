package telegram

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/core/telegram/netutil"
)

// apiTimeouts bounds one Bot API round trip. Long polling adds its own wait on top.
var apiTimeouts = struct {
	dial, tlsHandshake, idle, header, total, keepAlive time.Duration
}{
	dial:         5 * time.Second,
	tlsHandshake: 5 * time.Second,
	idle:         30 * time.Second,
	header:       5 * time.Second,
	total:        30 * time.Second,
	keepAlive:    30 * time.Second,
}

const (
	apiRetries      = 3
	apiRetryBackoff = 2 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls. getUpdates may
// hold a response for pollTimeout, so the header and total deadlines grow by it.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	total := max(apiTimeouts.total, pollTimeout+2*apiTimeouts.header)
	dialer := &net.Dialer{Timeout: apiTimeouts.dial, KeepAlive: apiTimeouts.keepAlive}
	return &http.Client{
		Timeout: total,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       apiTimeouts.idle,
				TLSHandshakeTimeout:   apiTimeouts.tlsHandshake,
				ResponseHeaderTimeout: apiTimeouts.header + pollTimeout,
				ExpectContinueTimeout: time.Second,
			},
			retries: apiRetries,
			backoff: apiRetryBackoff,
		},
	}
}

// retryTransport repeats a request after network-level failures (resets,
// timeouts, DNS). HTTP error statuses are returned as they are.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

var errBodyNotRewindable = errors.New("telegram: request body cannot be replayed")

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries && netutil.ShouldRetry(err); attempt++ {
		logger.TG.Debug("api.retry",
			slog.String("path", req.URL.Path),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)
		if werr := sleepCtx(req, t.backoff*time.Duration(attempt)); werr != nil {
			return nil, werr
		}
		next, rerr := rewind(req)
		if rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}

func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, errBodyNotRewindable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

func sleepCtx(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
