package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const (
	opKey ctxKey = iota
	authKey
)

func withOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey, op)
}

func opFrom(ctx context.Context) string {
	op, _ := ctx.Value(opKey).(string)
	if op == "" {
		return "unknown"
	}
	return op
}

func withAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, authKey, true)
}

func wantsAuth(ctx context.Context) bool {
	v, _ := ctx.Value(authKey).(bool)
	return v
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware envuelve un RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// chain aplica los middlewares en orden: el primero ve el request primero.
func chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

func withRequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("X-Request-ID") == "" {
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-ID", uuid.NewString())
			}
			return next.RoundTrip(r)
		})
	}
}

// withBearer lee el token al momento de la llamada, no al construir el cliente.
func withBearer(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if tokens != nil && wantsAuth(r.Context()) {
				if token := tokens.AccessToken(); token != "" {
					r = r.Clone(r.Context())
					r.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next.RoundTrip(r)
		})
	}
}

func withLogging(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("op", opFrom(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get("X-Request-ID")),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				logger.Warn("api request failed", append(fields, zap.Error(err))...)
				return resp, err
			}
			logger.Debug("api request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

func withMetrics(m *Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			m.observe(opFrom(r.Context()), r.Method, status, time.Since(start))
			return resp, err
		})
	}
}
