package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"payroll-engine/internal/model"
)

// ErrTransport covers every failure to obtain a decodable answer from the
// service: dial errors, timeouts and non-JSON bodies.
var ErrTransport = errors.New("calculation service unreachable")

const DefaultTimeout = 10 * time.Second

// Client talks to the calculation service over HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	log     *zap.Logger
}

type Option func(*Client)

// WithTimeout bounds every request. Context deadlines shorter than this win.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) {
		c.http.Dial = dial
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "payroll-engine",
			MaxConnsPerHost:     4,
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate posts req to /calculate. Application failures come back as an
// envelope with Success false; only transport failures return an error.
func (c *Client) Calculate(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error) {
	return c.post(ctx, "/calculate", req)
}

// Annual posts req to /calculate/annual.
func (c *Client) Annual(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error) {
	return c.post(ctx, "/calculate/annual", req)
}

// Analyze posts payslip figures to /analyze.
func (c *Client) Analyze(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error) {
	return c.post(ctx, "/analyze", req)
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) post(ctx context.Context, path string, payload model.CalculationRequest) (*model.CalculationResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrTransport, context.DeadlineExceeded)
	}

	httpReq := fasthttp.AcquireRequest()
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.baseURL + path)
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.SetBody(body)

	if err := c.http.DoTimeout(httpReq, httpResp, timeout); err != nil {
		c.log.Warn("calculation request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var out model.CalculationResponse
	if err := json.Unmarshal(httpResp.Body(), &out); err != nil {
		c.log.Warn("malformed calculation response",
			zap.String("path", path),
			zap.Int("status", httpResp.StatusCode()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: malformed response (status %d): %v", ErrTransport, httpResp.StatusCode(), err)
	}
	if !out.Success && out.Error == "" && httpResp.StatusCode() >= 400 {
		out.Error = fmt.Sprintf("service answered %d", httpResp.StatusCode())
	}
	return &out, nil
}
