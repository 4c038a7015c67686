package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/apichain/internal/types"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the per-request timeout when none is configured
const DefaultTimeout = 30 * time.Second

// TLSConfig holds optional TLS settings for the HTTP client
type TLSConfig struct {
	InsecureSkipVerify bool
	CAFile             string
	CertFile           string
	KeyFile            string
}

// Client issues requests against the fixture API
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	userAgent  string
	logger     *zap.Logger

	timeout time.Duration
	token   string
	tls     *TLSConfig
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithToken sends a static bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHeaders adds headers to every request
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithTLS configures TLS verification and client certificates
func WithTLS(cfg *TLSConfig) Option {
	return func(c *Client) {
		c.tls = cfg
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
// Timeout, token and TLS options are ignored when this is set.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the given base URL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid base URL %q: must start with http:// or https://", baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		headers:   make(map[string]string),
		userAgent: "apichain",
		logger:    zap.NewNop(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		httpClient, err := buildHTTPClient(c.timeout, c.token, c.tls)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
		c.httpClient = httpClient
	}

	return c, nil
}

// BaseURL returns the configured origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListUsers issues GET {base}/users
func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	var users []types.User
	if err := c.do(ctx, "list users", http.MethodGet, UsersEndpoint, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListPostsByUser issues GET {base}/posts?userId={userID}
func (c *Client) ListPostsByUser(ctx context.Context, userID int) ([]types.Post, error) {
	var posts []types.Post
	if err := c.do(ctx, "list posts", http.MethodGet, UserPostsEndpoint(userID), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListCommentsByPost issues GET {base}/comments?postId={postID}
func (c *Client) ListCommentsByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	var comments []types.Comment
	if err := c.do(ctx, "list comments", http.MethodGet, PostCommentsEndpoint(postID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreatePost issues POST {base}/posts with the draft as JSON body.
// The draft is sent as-is; business rules such as upper-casing belong to the caller.
func (c *Client) CreatePost(ctx context.Context, draft types.DraftPost) (types.Post, error) {
	var post types.Post
	if err := c.do(ctx, "create post", http.MethodPost, PostsEndpoint, draft, &post); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// do performs one request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any, out any) error {
	url := c.baseURL + "/" + endpoint
	startTime := time.Now()

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &NetworkError{Op: op, URL: url, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: url, StatusCode: 0, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("size", len(bodyBytes)),
		zap.Duration("duration", time.Since(startTime)))

	if !IsSuccessStatus(resp.StatusCode) {
		return &NetworkError{Op: op, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &NetworkError{Op: op, URL: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// buildHTTPClient creates an HTTP client with optional TLS and bearer token
func buildHTTPClient(timeout time.Duration, token string, tlsConfig *TLSConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var rt http.RoundTripper = transport
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
