// Package backend talks to the case-tracking API. It returns raw response
// bodies; decoding belongs to the cases packages.
package backend

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Doer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"legaltrack/internal/assets"
	"legaltrack/internal/platform/connectivity"
	"legaltrack/internal/platform/credentials"
	"legaltrack/internal/platform/metrics"
	"legaltrack/pkg/requestcontext"
)

// Endpoints, relative to the API base.
const (
	PathSubscriptions = "/subs/get-subscribtions"
	PathCaseDetail    = "/subs/detail-case"
	PathCompanyDetail = "/subs/detail-company"
	PathNotifications = "/subs/get-notiffications"
	PathCalendar      = "/subs/get-calendar"
	PathDelays        = "/subs/get-delays"
	PathPDF           = "/subs/get-pdf"
	defaultTimeout    = 30 * time.Second
	maxResponseBytes  = 32 << 20
	headerRequestID   = "X-Request-ID"
	acceptJSON        = "application/json"
	acceptPDF         = "application/pdf, */*"
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	base         *url.URL
	doer         Doer
	creds        credentials.Store
	monitor      connectivity.Monitor
	trustedHosts map[string]struct{}
	timeout      time.Duration
	maxBody      int64
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Client)

func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

func WithCredentials(store credentials.Store) Option {
	return func(c *Client) {
		c.creds = store
	}
}

func WithMonitor(m connectivity.Monitor) Option {
	return func(c *Client) {
		c.monitor = m
	}
}

// WithTrustedHosts adds hosts, besides the API host, that receive the token
// on document downloads. Values may be bare hosts or URLs.
func WithTrustedHosts(hosts ...string) Option {
	return func(c *Client) {
		for _, h := range hosts {
			if host := hostOf(h); host != "" {
				c.trustedHosts[host] = struct{}{}
			}
		}
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxResponseBytes caps response bodies. Larger bodies fail with
// ErrResponseTooLarge instead of being cut short.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base %q", baseURL)
	}
	c := &Client{
		base:         base,
		doer:         http.DefaultClient,
		trustedHosts: map[string]struct{}{strings.ToLower(base.Hostname()): {}},
		timeout:      defaultTimeout,
		maxBody:      maxResponseBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Subscriptions(ctx context.Context) ([]byte, error) {
	return c.getJSON(ctx, PathSubscriptions, nil)
}

func (c *Client) CaseDetail(ctx context.Context, id int64) ([]byte, error) {
	return c.getJSON(ctx, PathCaseDetail, url.Values{"id": {strconv.FormatInt(id, 10)}})
}

func (c *Client) CompanyDetail(ctx context.Context, id int64) ([]byte, error) {
	return c.getJSON(ctx, PathCompanyDetail, url.Values{"id": {strconv.FormatInt(id, 10)}})
}

func (c *Client) Notifications(ctx context.Context, page int) ([]byte, error) {
	if page < 1 {
		page = 1
	}
	return c.getJSON(ctx, PathNotifications, url.Values{"page": {strconv.Itoa(page)}})
}

func (c *Client) Calendar(ctx context.Context) ([]byte, error) {
	return c.getJSON(ctx, PathCalendar, nil)
}

func (c *Client) Delays(ctx context.Context) ([]byte, error) {
	return c.getJSON(ctx, PathDelays, nil)
}

// Ping succeeds when the backend answers at all, whatever the status.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, "ping", c.base.String(), acceptJSON, false)
	var te *TransportError
	if errors.As(err, &te) && te.Kind == KindServer {
		return nil
	}
	return err
}

// Download fetches a document. The token is attached only for trusted hosts.
func (c *Client) Download(ctx context.Context, remoteURL string) (assets.Download, error) {
	u, err := url.Parse(remoteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return assets.Download{}, fmt.Errorf("invalid document url %q", remoteURL)
	}
	_, trusted := c.trustedHosts[strings.ToLower(u.Hostname())]
	body, header, err := c.do(ctx, "document", u.String(), acceptPDF, trusted)
	if err != nil {
		return assets.Download{}, err
	}
	return assets.Download{Body: body, ContentType: header.Get("Content-Type")}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	body, _, err := c.do(ctx, path, u.String(), acceptJSON, true)
	return body, err
}

func (c *Client) do(ctx context.Context, endpoint, target, accept string, withToken bool) ([]byte, http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	requestID := requestcontext.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(headerRequestID, requestID)
	if withToken && c.creds != nil {
		token, err := c.creds.Get(ctx)
		switch {
		case err == nil:
			req.Header.Set("Authorization", token)
		case errors.Is(err, credentials.ErrNoToken):
			c.logger.Debug("no api token available", "endpoint", endpoint)
		default:
			return nil, nil, fmt.Errorf("read api token: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	c.metrics.ObserveBackendLatency(endpoint, time.Since(start))
	if err != nil {
		te := classify(ctx, endpoint, err)
		c.report(te)
		c.logger.Warn("backend request failed", "endpoint", endpoint, "kind", te.Kind, "request_id", requestID, "error", err)
		return nil, nil, te
	}
	defer resp.Body.Close()
	c.report(nil)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		te := classify(ctx, endpoint, err)
		if te.Kind == KindUnreachable {
			te.Kind = KindDecode
		}
		return nil, nil, te
	}
	if int64(len(body)) > c.maxBody {
		c.logger.Warn("backend response too large", "endpoint", endpoint, "limit", c.maxBody, "request_id", requestID)
		return nil, nil, &TransportError{Kind: KindDecode, Path: endpoint, StatusCode: resp.StatusCode, Underlying: ErrResponseTooLarge}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend returned error status",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, nil, &TransportError{Kind: KindServer, Path: endpoint, StatusCode: resp.StatusCode}
	}
	return body, resp.Header, nil
}

// report feeds the connectivity monitor. Only transport-level failures
// count against reachability; any HTTP response proves the backend is up.
func (c *Client) report(te *TransportError) {
	if c.monitor == nil {
		return
	}
	if te == nil {
		c.monitor.ReportSuccess()
		return
	}
	if te.Kind == KindUnreachable || te.Kind == KindTimeout {
		c.monitor.ReportFailure(te)
	}
}

func hostOf(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.Contains(v, "://") {
		u, err := url.Parse(v)
		if err != nil {
			return ""
		}
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(v)
}
