package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// Client is an HTTP client for the source-control REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retrier    *httpx.Retrier
	rateLimit  *httpx.RateLimitState
	logger     *httpx.Logger
	sleep      httpx.SleepFunc
	clock      func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at a mock server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetrier replaces the retry machinery.
func WithRetrier(r *httpx.Retrier) Option {
	return func(c *Client) { c.retrier = r }
}

// WithRateLimitState injects a shared quota tracker.
func WithRateLimitState(s *httpx.RateLimitState) Option {
	return func(c *Client) { c.rateLimit = s }
}

// WithLogger attaches a logger.
func WithLogger(l *httpx.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSleep replaces the proactive rate-limit wait (tests skip real delays).
func WithSleep(sleep httpx.SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock replaces the time source used for Retry-After math.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) { c.clock = clock }
}

// NewClient creates an API client authenticated with the given bearer
// token. The token value never appears in errors or log output.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retrier:    httpx.NewRetrier(httpx.DefaultRetryPolicy()),
		rateLimit:  httpx.NewRateLimitState(nil),
		sleep:      httpx.ContextSleep,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimit exposes the shared quota tracker so collaborating clients can
// observe the same budget.
func (c *Client) RateLimit() *httpx.RateLimitState {
	return c.rateLimit
}

// GetAccountType looks up whether a username belongs to a user or an
// organization. Callers treat exhaustion as non-fatal and substitute a
// conservative default.
func (c *Client) GetAccountType(ctx context.Context, username string) (domain.AccountType, error) {
	var user userResponse
	url := fmt.Sprintf("%s/users/%s", c.baseURL, username)

	if err := c.do(ctx, "get_account_type", http.MethodGet, url, nil, &user); err != nil {
		return domain.AccountUser, err
	}

	if user.Type == "Organization" {
		return domain.AccountOrganization, nil
	}
	return domain.AccountUser, nil
}

// GetPullRequestCommits fetches the commit list of a change request in
// order. Exhaustion here is fatal to the orchestration: without the list no
// scan range can be computed.
func (c *Client) GetPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]domain.Commit, error) {
	var raw []prCommit
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits", c.baseURL, owner, repo, number)

	if err := c.do(ctx, "get_pull_request_commits", http.MethodGet, url, nil, &raw); err != nil {
		return nil, err
	}

	commits := make([]domain.Commit, 0, len(raw))
	for _, rc := range raw {
		if rc.SHA == "" {
			continue
		}
		author := rc.Commit.Author.Name
		if author == "" {
			author = "unknown"
		}
		email := rc.Commit.Author.Email
		if email == "" {
			email = "unknown"
		}
		commits = append(commits, domain.Commit{
			SHA:     rc.SHA,
			Author:  author,
			Email:   email,
			Message: rc.Commit.Message,
		})
	}

	c.logger.Debug(ctx, "fetched pull request commits", httpx.Fields{
		"pull_number": number,
		"commits":     len(commits),
	})

	return commits, nil
}

// ListExistingComments fetches the review comments already present on a
// change request, used only for duplicate comparison. Callers treat
// exhaustion as non-fatal and proceed with an empty list.
func (c *Client) ListExistingComments(ctx context.Context, owner, repo string, number int) ([]domain.ExistingComment, error) {
	var raw []reviewCommentResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.baseURL, owner, repo, number)

	if err := c.do(ctx, "list_existing_comments", http.MethodGet, url, nil, &raw); err != nil {
		return nil, err
	}

	existing := make([]domain.ExistingComment, 0, len(raw))
	for _, rc := range raw {
		existing = append(existing, domain.ExistingComment{
			Body:     rc.Body,
			Path:     rc.Path,
			Line:     rc.Line,
			CommitID: rc.CommitID,
		})
	}

	return existing, nil
}

// PostComment posts a review comment on a change request.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, comment domain.ReviewComment) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.baseURL, owner, repo, number)
	return c.do(ctx, "post_comment", http.MethodPost, url, comment, nil)
}

// do issues one API call under the retry policy. Every response updates the
// shared rate-limit state; before each attempt a low quota triggers a
// proactive wait until the window resets.
func (c *Client) do(ctx context.Context, operation, method, url string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", operation, err)
		}
		payload = data
	}

	var responseBody []byte

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		if wait, err := c.rateLimit.WaitIfLow(ctx, c.sleep); err != nil {
			return err
		} else if wait > 0 {
			c.logger.Info(ctx, "rate limit budget low, waited for reset", httpx.Fields{
				"operation": operation,
				"waited":    wait.String(),
			})
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return &httpx.Error{
				Type:      httpx.ErrTypeUnknown,
				Message:   httpx.RedactSecret(err.Error(), c.token),
				Retryable: false,
				Operation: operation,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network failure or per-request timeout: retryable.
			return httpx.NewTimeoutError(operation, httpx.RedactSecret(err.Error(), c.token))
		}
		defer resp.Body.Close()

		c.trackRateLimit(resp)

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &httpx.Error{
				Type:       httpx.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, err),
				StatusCode: resp.StatusCode,
				Retryable:  resp.StatusCode >= 500,
				Operation:  operation,
			}
		}

		if resp.StatusCode >= 400 {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), c.clock())
			apiErr := mapStatusError(operation, resp.StatusCode, retryAfter, data)
			apiErr.Message = httpx.RedactSecret(apiErr.Message, c.token)
			return apiErr
		}

		responseBody = data
		return nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			// A response that parses as HTTP success but fails local
			// validation is not retryable.
			return &httpx.Error{
				Type:      httpx.ErrTypeInvalidRequest,
				Message:   fmt.Sprintf("parse response: %v", err),
				Retryable: false,
				Operation: operation,
			}
		}
	}

	return nil
}

// trackRateLimit records the quota headers from a response.
func (c *Client) trackRateLimit(resp *http.Response) {
	remainingHeader := resp.Header.Get(headerRateLimitRemaining)
	resetHeader := resp.Header.Get(headerRateLimitReset)
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, err := strconv.Atoi(remainingHeader)
	if err != nil {
		return
	}
	resetUnix, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return
	}

	c.rateLimit.Update(remaining, time.Unix(resetUnix, 0))
}
