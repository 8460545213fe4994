package coub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"coubcrawl/pkg/errors"
	"coubcrawl/pkg/logger"
	"coubcrawl/pkg/ratelimit"
)

// Client issues paced requests against the Coub site and API.
// The limiter runs before each request.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	userAgents []string
	limiter    ratelimit.Limiter
	endpoints  Endpoints
	logger     logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout    time.Duration
	Limiter    ratelimit.Limiter
	UserAgents []string
	Endpoints  Endpoints
	HTTPClient *http.Client
	Logger     logger.Logger
	// Seed fixes user-agent selection; 0 seeds from the clock
	Seed uint64
}

// NewClient creates a new Coub client
func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	agents := opts.UserAgents
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}

	endpoints := opts.Endpoints
	if endpoints.BaseURL == "" {
		endpoints.BaseURL = BaseURL
	}
	if endpoints.APIURL == "" {
		endpoints.APIURL = APIURL
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Chain{}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Client{
		httpClient: httpClient,
		headers: map[string]string{
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
		userAgents: agents,
		limiter:    limiter,
		endpoints:  endpoints,
		logger:     log,
		rng:        rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Endpoints returns the URL builder the client was configured with
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

func (c *Client) userAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rng.IntN(len(c.userAgents))]
}

// do waits on the limiter, then performs the request
func (c *Client) do(ctx context.Context, method, url, token string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("request cancelled: %v", err),
			URL:     url,
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			URL:     url,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", c.userAgent())
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Cookie", "remember_token="+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			URL:     url,
		}
	}

	logger.LogRequest(c.logger, method, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.FromStatus(resp.StatusCode, url)
	}

	return resp, nil
}

// Fetch performs a GET and returns the body. A non-blank token is sent
// as the remember_token cookie.
func (c *Client) Fetch(ctx context.Context, url, token string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			URL:     url,
		}
	}

	return body, nil
}

// Probe performs a HEAD request and reports only whether it succeeded
func (c *Client) Probe(ctx context.Context, url string) error {
	resp, err := c.do(ctx, http.MethodHead, url, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// FetchPage fetches and decodes one timeline page
func (c *Client) FetchPage(ctx context.Context, url, token string) (*Page, error) {
	body, err := c.Fetch(ctx, url, token)
	if err != nil {
		return nil, err
	}

	page, err := DecodePage(body)
	if err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: err.Error(),
			Code:    http.StatusOK,
			URL:     url,
		}
	}

	return page, nil
}

// FetchSegments returns the raw segments document for an item
func (c *Client) FetchSegments(ctx context.Context, permalink, token string) (json.RawMessage, error) {
	body, err := c.Fetch(ctx, c.endpoints.SegmentsURL(permalink), token)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "segments response is not valid JSON",
			Code:    http.StatusOK,
			URL:     c.endpoints.SegmentsURL(permalink),
		}
	}
	return json.RawMessage(body), nil
}
