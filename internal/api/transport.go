package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource entrega el access token vigente; se consulta en cada request.
type TokenSource interface {
	AccessToken() string
}

// TransportConfig agrupa las dependencias del Transport.
type TransportConfig struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *zap.Logger
	Metrics *Metrics
	// Base permite inyectar el RoundTripper de fondo (tests).
	Base http.RoundTripper
}

// Transport es el pipeline HTTP compartido por todos los clientes.
type Transport struct {
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

// NewTransport arma el pipeline: request id, bearer, logging y metricas.
func NewTransport(cfg TransportConfig) (*Transport, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "http://127.0.0.1:8000/api/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", base)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := cfg.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	rt = chain(rt,
		withRequestID(),
		withBearer(cfg.Tokens),
		withLogging(logger),
		withMetrics(cfg.Metrics),
	)

	return &Transport{
		baseURL: u,
		client:  &http.Client{Timeout: cfg.Timeout, Transport: rt},
		logger:  logger,
	}, nil
}

// request describe una llamada a un endpoint relativo a la base.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

func (t *Transport) do(ctx context.Context, r request, out any) error {
	target := t.baseURL.ResolveReference(&url.URL{Path: r.path, RawQuery: r.query.Encode()})

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	ctx = withOp(ctx, r.op)
	if r.auth {
		ctx = withAuth(ctx)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: r.op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Payload: respBody}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
