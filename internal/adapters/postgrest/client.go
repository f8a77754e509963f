// Package postgrest stores posts and profiles in a PostgREST-compatible
// backend such as Supabase.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"snippets/internal/core/apperr"
	"snippets/internal/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"resty.dev/v3"
)

type Repository struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// New builds a client against baseURL authenticated with the service key.
func New(baseURL, key string, logger *zap.Logger) *Repository {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		DialerKeepAlive:       30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", key).
		SetAuthToken(key).
		SetHeader("Accept", "application/json")
	client.AddResponseMiddleware(metricMiddleware)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "postgrest",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperr.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Repository{client: client, breaker: breaker, logger: logger}
}

// Close releases idle connections.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) req(ctx context.Context) *resty.Request {
	return r.client.R().WithContext(ctx)
}

// do runs fn behind the breaker and turns non-2xx answers into errors.
func (r *Repository) do(fn func() (*resty.Response, error)) (*resty.Response, error) {
	out, err := r.breaker.Execute(func() (interface{}, error) {
		res, err := fn()
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, &StatusError{Method: res.Request.Method, Path: requestPath(res), Code: res.StatusCode(), Body: res.String()}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*resty.Response), nil
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("postgrest %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func requestPath(res *resty.Response) string {
	u, err := url.Parse(res.Request.URL)
	if err != nil {
		return res.Request.URL
	}
	return u.Path
}

func metricMiddleware(_ *resty.Client, res *resty.Response) error {
	metrics.BackendRequestDuration.WithLabelValues(
		res.Request.Method,
		requestPath(res),
		strconv.Itoa(res.StatusCode()),
	).Observe(res.Duration().Seconds())
	return nil
}

// count reads the total from a Content-Range header such as "0-0/42" or "*/0".
func count(res *resty.Response) (int64, error) {
	cr := res.Header().Get("Content-Range")
	i := strings.LastIndex(cr, "/")
	if i < 0 || cr[i+1:] == "*" {
		return 0, fmt.Errorf("postgrest: missing total in Content-Range %q", cr)
	}
	return strconv.ParseInt(cr[i+1:], 10, 64)
}
