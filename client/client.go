// Package client talks to the ExamAce Vault API. It implements the
// backend interfaces of the catalog, navigator and search packages so the
// same navigator core runs against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

const (
	// DefaultBaseURL is the local development server
	DefaultBaseURL = "http://localhost:8080/api/v1"
	// DefaultTimeout is the HTTP client timeout for API calls
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the API client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional, overrides Timeout
	// RateLimit throttles requests; nil sends them unthrottled
	RateLimit *RateLimiterConfig
}

// Client is safe for concurrent use
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
}

// New creates a client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	hc := config.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: config.Timeout}
	}
	c := &Client{baseURL: strings.TrimSuffix(config.BaseURL, "/"), httpClient: hc}
	if config.RateLimit != nil {
		c.limiter = NewRateLimiter(*config.RateLimit)
	}
	return c
}

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	// Data is the payload some errors carry, e.g. the subscription notice
	Data json.RawMessage
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API error %d %s: %s (%s)", e.StatusCode, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("API error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

// ListChildren implements catalog.Store
func (c *Client) ListChildren(ctx context.Context, level catalog.Level, parentID *uuid.UUID) ([]catalog.Entity, error) {
	endpoint := "/" + level.Kind.Plural()
	if !level.IsRoot() {
		if parentID == nil {
			return nil, fmt.Errorf("list %s: parent id required", level.Kind.Plural())
		}
		endpoint = fmt.Sprintf("/%s/%s/%s", level.ParentKind.Plural(), parentID, level.Kind.Plural())
	}

	var out []catalog.Entity
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntity implements catalog.Store
func (c *Client) GetEntity(ctx context.Context, level catalog.Level, id uuid.UUID) (catalog.Entity, error) {
	var out catalog.Entity
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s", level.Kind.Plural(), id), nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return catalog.Entity{}, catalog.ErrNotFound
	}
	return out, err
}

// ListSubject implements navigator.ListingLoader
func (c *Client) ListSubject(ctx context.Context, subjectID uuid.UUID) ([]resources.Listing, error) {
	var out []resources.Listing
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/subjects/%s/resources", subjectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchResources implements search.Store. The server applies the
// criteria; rows come back as listings and are widened to resources.
func (c *Client) SearchResources(ctx context.Context, criteria search.Criteria) ([]model.Resource, error) {
	var listings []resources.Listing
	endpoint := "/resources/search?q=" + url.QueryEscape(criteria.Term)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &listings); err != nil {
		return nil, err
	}

	out := make([]model.Resource, 0, len(listings))
	for _, l := range listings {
		out = append(out, model.Resource{
			ID:            l.ID,
			SubjectID:     l.SubjectID,
			Title:         l.Title,
			Description:   l.Description,
			Subject:       l.Subject,
			Course:        l.Course,
			Year:          l.Year,
			ResourceType:  l.ResourceType,
			FilePath:      l.FilePath,
			DownloadCount: l.DownloadCount,
			IsPublished:   true,
			CreatedAt:     l.CreatedAt,
		})
	}
	return out, nil
}

// Download asks the server for a download ticket; the server records the
// download
func (c *Client) Download(ctx context.Context, id uuid.UUID) (resources.Ticket, error) {
	var out resources.Ticket
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/resources/%s/download?redirect=false", id), nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return resources.Ticket{}, resources.ErrNotFound
	}
	return out, err
}

// Article loads a solved article
func (c *Client) Article(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	var out model.SolvedArticle
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/solved-articles/%s", id), nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return model.SolvedArticle{}, resources.ErrNotFound
	}
	return out, err
}

// Stats loads the home statistics
func (c *Client) Stats(ctx context.Context) (services.Stats, error) {
	var out services.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &out)
	return out, err
}

// Subscribe adds email to the mailing list. An already subscribed address
// is not an error; the returned notice says so.
func (c *Client) Subscribe(ctx context.Context, email string) (response.Notice, error) {
	var notice response.Notice
	err := c.do(ctx, http.MethodPost, "/subscriptions", services.SubscribeRequest{Email: email, Source: "cli"}, &notice)
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Data) > 0 {
		if jsonErr := json.Unmarshal(apiErr.Data, &notice); jsonErr == nil && apiErr.StatusCode == http.StatusConflict {
			return notice, nil
		}
	}
	return notice, err
}

// do performs a request and decodes the envelope's data into result
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.limiter != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.Backoff(2)
		} else {
			c.limiter.Reset()
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Data: env.Data}
		if env.Error != nil {
			apiErr.Code, apiErr.Message, apiErr.Details = env.Error.Code, env.Error.Message, env.Error.Details
		}
		return apiErr
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
