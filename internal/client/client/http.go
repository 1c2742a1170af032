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
	"strconv"
	"strings"
	"time"

	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/repositories/kvstore"
	"github.com/hablemosverde/verde/internal/common"
)

// ProjectHeader identifies the backend project on every request.
const ProjectHeader = "X-Project-ID"

// HTTPClient talks to the hosted backend over its REST API. The session
// secret lives in the profile key/value store under cookieFallback, so every
// client process of the profile shares one backend session.
type HTTPClient struct {
	baseURL    string
	projectID  string
	store      kvstore.Repository
	httpClient *http.Client
}

type session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

type documentList[T any] struct {
	Total     int `json:"total"`
	Documents []T `json:"documents"`
}

// NewHTTPClient creates a backend client. A zero timeout means no timeout.
func NewHTTPClient(baseURL, projectID string, store kvstore.Repository, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		store:     store,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context) (*models.Account, error) {
	token, err := sessionToken(ctx, c.store)
	if err != nil {
		return nil, fmt.Errorf("client.GetCurrentUser: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	var acc models.Account
	if err := c.get(ctx, "/v1/account", &acc); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, fmt.Errorf("client.GetCurrentUser: %w", err)
	}
	return &acc, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	err := c.doRequest(ctx, http.MethodDelete, "/v1/account/sessions/current", nil, nil)
	if cerr := clearSessionToken(ctx, c.store); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("client.SignOut: %w", err)
	}
	return nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, user models.NewUser) (*models.Account, error) {
	body := map[string]string{
		"userId":   "unique()",
		"name":     user.Name,
		"username": user.Username,
		"email":    user.Email,
		"password": user.Password,
	}

	var acc models.Account
	if err := c.post(ctx, "/v1/account", body, &acc); err != nil {
		return nil, fmt.Errorf("client.CreateAccount: %w", err)
	}
	return &acc, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, creds models.Credentials) error {
	var s session
	if err := c.post(ctx, "/v1/account/sessions/email", creds, &s); err != nil {
		return fmt.Errorf("client.SignIn: %w", err)
	}
	if s.Secret == "" {
		return fmt.Errorf("client.SignIn: empty session secret")
	}
	if err := saveSessionToken(ctx, c.store, s.Secret); err != nil {
		return fmt.Errorf("client.SignIn: save session: %w", err)
	}
	return nil
}

func (c *HTTPClient) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var list documentList[models.Post]
	if err := c.get(ctx, "/v1/posts?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("client.RecentPosts: %w", err)
	}
	return list.Documents, nil
}

func (c *HTTPClient) UserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	params := url.Values{}
	params.Set("creator", userID)

	var list documentList[models.Post]
	if err := c.get(ctx, "/v1/posts?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("client.UserPosts: %w", err)
	}
	return list.Documents, nil
}

func (c *HTTPClient) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := c.get(ctx, "/v1/posts/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetPost: %w", err)
	}
	return &p, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	var created models.Post
	if err := c.post(ctx, "/v1/posts", postBody(post), &created); err != nil {
		return nil, fmt.Errorf("client.CreatePost: %w", err)
	}
	return &created, nil
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id string, post models.NewPost) (*models.Post, error) {
	var updated models.Post
	if err := c.doRequest(ctx, http.MethodPatch, "/v1/posts/"+url.PathEscape(id), postBody(post), &updated); err != nil {
		return nil, fmt.Errorf("client.UpdatePost: %w", err)
	}
	return &updated, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/v1/posts/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeletePost: %w", err)
	}
	return nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, p models.ProfileUpdate) (*models.Account, error) {
	var acc models.Account
	if err := c.doRequest(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(userID), p, &acc); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &acc, nil
}

func (c *HTTPClient) Users(ctx context.Context, limit int) ([]models.Account, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var list documentList[models.Account]
	if err := c.get(ctx, "/v1/users?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("client.Users: %w", err)
	}
	return list.Documents, nil
}

func (c *HTTPClient) Follow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	body := map[string]string{"follower": followerID, "followed": followedID}

	var f models.Follow
	if err := c.post(ctx, "/v1/follows", body, &f); err != nil {
		return nil, fmt.Errorf("client.Follow: %w", err)
	}
	return &f, nil
}

func (c *HTTPClient) Unfollow(ctx context.Context, followID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/v1/follows/"+url.PathEscape(followID), nil, nil); err != nil {
		return fmt.Errorf("client.Unfollow: %w", err)
	}
	return nil
}

func (c *HTTPClient) Followers(ctx context.Context, userID string) ([]models.Follow, error) {
	params := url.Values{}
	params.Set("followed", userID)

	var list documentList[models.Follow]
	if err := c.get(ctx, "/v1/follows?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("client.Followers: %w", err)
	}
	return list.Documents, nil
}

func postBody(post models.NewPost) map[string]any {
	return map[string]any{
		"caption":  post.Caption,
		"location": post.Location,
		"tags":     models.SplitTags(post.Tags),
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.projectID != "" {
		req.Header.Set(ProjectHeader, c.projectID)
	}
	if raw, err := c.store.Get(ctx, common.KeyCookieFallback); err == nil {
		if _, ok := ParseCookieFallback(raw); ok {
			req.Header.Set(common.FallbackCookiesHeader, string(raw))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return mapStatus(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapStatus turns an error response into an *HTTPError, wrapped with the
// matching sentinel for 401/403, 404 and 5xx.
func mapStatus(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	httpErr := &HTTPError{StatusCode: resp.StatusCode}
	var apiErr struct {
		Message string `json:"message"`
	}
	switch {
	case readErr != nil:
		httpErr.Message = fmt.Sprintf("failed to read body: %v", readErr)
	case json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "":
		httpErr.Message = apiErr.Message
	default:
		httpErr.Message = string(respBody)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, httpErr)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, httpErr)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", ErrUnavailable, httpErr)
	default:
		return httpErr
	}
}
