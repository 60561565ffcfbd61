// Package api is the client for the warehouse REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jask/warehousedash/internal/session"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; tests route it to an in-process server.
	HTTPClient *http.Client
	Logger     zerolog.Logger

	BreakerRequests uint32        // consecutive failures before the breaker opens
	BreakerTimeout  time.Duration // time open before a trial request
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a client. Zero values in cfg get defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerRequests == 0 {
		cfg.BreakerRequests = 5
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		log:     cfg.Logger.With().Str("component", "api").Logger(),
		now:     time.Now,
	}
	threshold := cfg.BreakerRequests
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "warehouse-api",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// The server answered; only transport and 5xx failures count against it.
			switch KindOf(err) {
			case KindUnauthorized, KindForbidden, KindNotFound, KindValidation:
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

type call struct {
	op     string
	method string
	path   string
	body   any
	out    any
	// role is what the endpoint demands; reported on 403.
	role session.Role
}

func (c *Client) do(ctx context.Context, sess session.Session, req call) error {
	if sess.Expired(c.now()) {
		c.log.Info().Str("op", req.op).Msg("session expired before request")
		return &Error{Op: req.op, Kind: KindUnauthorized, Status: http.StatusUnauthorized}
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, sess, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Op: req.op, Kind: KindNetwork, Err: err}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, sess session.Session, req call) error {
	var reqBody io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: marshal request body: %w", req.op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if auth := sess.Authorization(); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Str("op", req.op).Msg("request failed")
		return &Error{Op: req.op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("op", req.op).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(req, resp)
	}
	if req.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return &Error{Op: req.op, Kind: KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorBody covers the backend's {"detail": ...} shape, where detail is either
// a message or a list of field errors.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

func decodeError(req call, resp *http.Response) error {
	e := &Error{
		Op:           req.op,
		Kind:         kindForStatus(resp.StatusCode),
		Status:       resp.StatusCode,
		RequiredRole: req.role,
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		e.Detail = detailText(body)
	}
	return e
}

func detailText(body errorBody) string {
	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return strings.TrimSpace(s)
		}
		var fields []fieldError
		if json.Unmarshal(body.Detail, &fields) == nil {
			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				if m := strings.TrimSpace(f.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(body.Message)
}
