// Package cms publishes annotated documents to a CMS over its admin
// HTTP API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client communicates with the CMS admin HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Post is one published document.
type Post struct {
	ID          string `json:"id,omitempty"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	HTML        string `json:"html"`
	ContentHash string `json:"content_hash,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// RetryableError indicates a transient CMS failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable cms error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// UpsertPost creates or replaces the post with the given slug and
// returns the post ID.
func (c *Client) UpsertPost(ctx context.Context, post Post) (string, error) {
	body, err := json.Marshal(map[string]any{"post": post})
	if err != nil {
		return "", fmt.Errorf("marshal post: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/posts/"+url.PathEscape(post.Slug), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upsert post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := classifyStatus(resp.StatusCode, respBody, http.StatusOK, http.StatusCreated); err != nil {
		return "", fmt.Errorf("upsert post %s: %w", post.Slug, err)
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode post: %w", err)
	}
	return result.Post.ID, nil
}

// GetPost retrieves a post by slug. Returns nil if it does not exist.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/posts/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := classifyStatus(resp.StatusCode, respBody, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get post %s: %w", slug, err)
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &result.Post, nil
}

// FindByHash looks up a post by its content hash. Returns nil if no
// post carries that hash.
func (c *Client) FindByHash(ctx context.Context, hash string) (*Post, error) {
	u := c.baseURL + "/api/posts?hash=" + url.QueryEscape(hash) + "&limit=1"
	posts, err := c.listPosts(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// ListPosts returns up to limit posts.
func (c *Client) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	u := c.baseURL + "/api/posts"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	posts, err := c.listPosts(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (c *Client) listPosts(ctx context.Context, u string) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err := classifyStatus(resp.StatusCode, respBody, http.StatusOK); err != nil {
		return nil, err
	}

	var result struct {
		Posts []Post `json:"posts"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return result.Posts, nil
}

// DeletePost removes a post by slug.
func (c *Client) DeletePost(ctx context.Context, slug string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/posts/"+url.PathEscape(slug), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete post %s: status %d: %s", slug, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// classifyStatus maps a response status to nil, a RetryableError for
// transient failures, or a plain error.
func classifyStatus(status int, body []byte, ok ...int) error {
	for _, s := range ok {
		if status == s {
			return nil
		}
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Message: string(body)}
	}
	return fmt.Errorf("status %d: %s", status, truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
