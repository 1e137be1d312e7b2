// Package remote implements the ledger's remote contract over the hosted REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// ErrInvalidBaseURL is returned when the API base URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid API base URL")

// Client talks to the ledger REST API.
type Client struct {
	httpClient  *http.Client
	walletTypes map[model.WalletType]model.ID
	typeNames   map[model.ID]model.WalletType
	baseURL     string
	retrier     *common.Retrier
	logger      *slog.Logger
	retry       service.RetryOptions
	typesMu     sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry configures the backoff used for reads.
func WithRetry(opts service.RetryOptions) Option {
	return func(c *Client) {
		c.retry = opts
	}
}

// WithLogger sets the logger used for request tracing and retries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.retrier = common.NewRetrier(c.retry, c.logger)
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("%s %s: %w", method, path, err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("API request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &common.RetryableError{
			Err:       fmt.Errorf("%s %s: %w", method, path, common.ErrRateLimit),
			After:     retryAfter(resp.Header.Get("Retry-After")),
			Retryable: true,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		detail := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &eb) == nil && len(eb.Detail) > 0 {
			detail = eb.message()
		}
		return &common.RemoteError{
			Operation:  method + " " + path,
			Detail:     detail,
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// get performs an idempotent read with retries.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.retrier.Do(ctx, "GET "+path, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, path, nil, out)
	})
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func path(format string, ids ...model.ID) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id.String())
	}
	return fmt.Sprintf(format, args...)
}

// Login exchanges credentials for the user's identity.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login/", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.UserID.IsZero() {
		return nil, fmt.Errorf("login response without user id: %w", common.ErrRemoteRejected)
	}
	return &model.Identity{UserID: resp.UserID, Email: resp.Email}, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	return c.do(ctx, http.MethodPost, "/users/", userCreate{
		Name:       reg.Name,
		Email:      reg.Email,
		Password:   reg.Password,
		Mobile:     reg.Mobile,
		DOB:        reg.DateOfBirth,
		CountryID:  wireID(reg.CountryID),
		CurrencyID: wireID(reg.CurrencyID),
	}, nil)
}

// FetchUserProfile returns a user's profile.
func (c *Client) FetchUserProfile(ctx context.Context, userID model.ID) (*model.UserProfile, error) {
	var user userDTO
	if err := c.get(ctx, path("/users/%s", userID), &user); err != nil {
		return nil, err
	}
	return user.profile(), nil
}

// UpdateUserProfile writes the fields set in update. The API replaces the whole
// profile, so the current profile is read first and merged.
func (c *Client) UpdateUserProfile(ctx context.Context, userID model.ID, update model.ProfileUpdate) error {
	current, err := c.FetchUserProfile(ctx, userID)
	if err != nil {
		return err
	}
	merged := update.Apply(*current)

	body := userUpdate{
		Name:       merged.Name,
		Email:      merged.Email,
		CountryID:  wireID(merged.CountryID),
		CurrencyID: wireID(merged.CurrencyID),
	}
	if merged.Mobile != "" {
		body.Mobile = &merged.Mobile
	}
	if merged.DateOfBirth != "" {
		body.DOB = &merged.DateOfBirth
	}
	return c.do(ctx, http.MethodPut, path("/users/%s/profile", userID), body, nil)
}

// FetchCategories returns the transaction categories.
func (c *Client) FetchCategories(ctx context.Context) ([]model.Category, error) {
	var dtos []categoryDTO
	if err := c.get(ctx, "/transaction_categories/", &dtos); err != nil {
		return nil, err
	}
	categories := make([]model.Category, 0, len(dtos))
	for _, d := range dtos {
		categories = append(categories, model.Category{ID: d.ID, Name: d.Name, Kind: model.CategoryKind(d.Type)})
	}
	return categories, nil
}

// Ensure Client implements the remote contract.
var _ service.Remote = (*Client)(nil)
