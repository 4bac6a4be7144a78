// Package apiclient talks to the CareerGap REST backend on behalf of one
// browser session at a time. It injects the stored access token into every
// call and recovers from an expired access token with a single refresh and
// retry.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const maxResponseBytes = 10 << 20

// SessionExpiredFunc is called after a failed refresh has cleared the tokens.
type SessionExpiredFunc func(ctx context.Context, store session.Store)

// Client is safe for concurrent use by every browser session.
type Client struct {
	cfg        Config
	baseURL    *url.URL
	httpClient *http.Client
	refreshes  singleflight.Group
	onExpired  SessionExpiredFunc
}

type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout should be left at zero;
// timeouts are applied per call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithSessionExpiredHook(fn SessionExpiredFunc) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	base, err := url.Parse(strings.TrimSuffix(cfg.Origin, "/") + "/" + strings.Trim(cfg.Prefix, "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient New] invalid origin %q", cfg.Origin)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("[apiclient New] origin %q must be absolute: %w", cfg.Origin, errors.ErrInternal)
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// URL resolves a path relative to the API prefix.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	// JoinPath drops the trailing slash the backend routes require
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends req with the store's access token. A 401 is answered with at most
// one token refresh followed by at most one retry. Any other non-2xx status
// is returned as an *APIError and transport failures as a *NetworkError.
func (c *Client) Do(ctx context.Context, store session.Store, req *Request) (*Response, error) {
	if store == nil {
		return nil, fmt.Errorf("[apiclient Do] nil session store: %w", errors.ErrInternal)
	}

	access, err := session.AccessToken(ctx, store)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient Do] read access token")
	}

	f := &flight{req: req, sentToken: access}
	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized {
		return finish(resp, nil)
	}
	return c.recoverUnauthorized(ctx, store, f, resp)
}

func (c *Client) recoverUnauthorized(ctx context.Context, store session.Store, f *flight, unauthorized *Response) (*Response, error) {
	if f.state != stateNormal {
		return finish(unauthorized, nil)
	}

	// Another request may already have refreshed the token this one was sent with
	current, err := session.AccessToken(ctx, store)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient Do] read access token")
	}
	if current != "" && current != f.sentToken {
		f.to(stateRetried)
		tokenRefreshTotal.WithLabelValues(refreshReused).Inc()
		return finish(c.send(ctx, f.req, current))
	}

	f.to(stateRefreshing)
	refresh, err := session.RefreshToken(ctx, store)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient Do] read refresh token")
	}
	if refresh == "" {
		f.to(stateFailed)
		tokenRefreshTotal.WithLabelValues(refreshMissing).Inc()
		return finish(unauthorized, nil)
	}

	access, err := c.refresh(ctx, store, refresh, f.sentToken)
	if err != nil {
		f.to(stateFailed)
		return nil, c.expire(ctx, store, err)
	}

	// Waiters on a shared refresh may hold a different store; persist before the retry
	stored, err := session.AccessToken(ctx, store)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient Do] read access token")
	}
	if stored != access {
		if err := session.SetAccessToken(ctx, store, access); err != nil {
			return nil, errors.Wrapf(err, "[apiclient Do] store refreshed access token")
		}
	}

	f.to(stateRetried)
	return finish(c.send(ctx, f.req, access))
}

func (c *Client) expire(ctx context.Context, store session.Store, cause error) error {
	log.Warn().Err(cause).Msg("token refresh failed, clearing session tokens")

	if err := session.ClearTokens(ctx, store); err != nil {
		log.Err(err).Msg("failed to clear session tokens")
	}
	if c.onExpired != nil {
		c.onExpired(ctx, store)
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// send performs one HTTP exchange. It never looks at the status code.
func (c *Client) send(ctx context.Context, req *Request, access string) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.URL(req.Path, req.Query)
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient send] build %s %s", req.Method, target)
	}
	hr.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		hr.Header.Set("Content-Type", req.ContentType)
	}
	session.SetBearer(hr, access)

	resp, err := c.httpClient.Do(hr)
	if err != nil {
		observeRequest(req.Method, 0)
		return nil, &NetworkError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		observeRequest(req.Method, 0)
		return nil, &NetworkError{Method: req.Method, URL: target, Err: err}
	}
	observeRequest(req.Method, resp.StatusCode)

	log.Debug().
		Str("method", req.Method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Bool("bearer", access != "").
		Msg("api request")

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: b}, nil
}

func finish(resp *Response, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, newAPIError(resp, "")
	}
	return resp, nil
}
