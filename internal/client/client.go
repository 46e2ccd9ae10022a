package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mini-linkedin/internal/domain"
)

// APIError es un error estructurado devuelto por el servidor.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

// Client habla con la API REST. Adjunta el bearer token a cada request y
// notifica cualquier 401 a traves de un hook transversal, sin importar que
// endpoint lo produjo.
type Client struct {
	baseURL        string
	client         *http.Client
	tokenSource    func() string
	onUnauthorized func()
}

// New construye un cliente apuntando a la URL base de la API.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokenSource registra de donde sale el token para cada request.
func (c *Client) SetTokenSource(fn func() string) {
	c.tokenSource = fn
}

// SetUnauthorizedHook registra el hook invocado en cualquier respuesta 401.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// AuthResponse es la respuesta de register y login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// LikeState es la respuesta del toggle de like.
type LikeState struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

func (c *Client) Register(ctx context.Context, name, email, password, bio string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"bio":      bio,
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out.User, err
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var out []domain.Post
	err := c.do(ctx, http.MethodGet, "/posts", nil, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id string) (domain.Post, error) {
	var out domain.Post
	err := c.do(ctx, http.MethodGet, "/posts/"+id, nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, content string) (domain.Post, error) {
	var out domain.Post
	err := c.do(ctx, http.MethodPost, "/posts", map[string]string{"content": content}, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+id, nil, nil)
}

func (c *Client) LikePost(ctx context.Context, id string) (LikeState, error) {
	var out LikeState
	err := c.do(ctx, http.MethodPut, "/posts/"+id+"/like", nil, &out)
	return out, err
}

func (c *Client) AddComment(ctx context.Context, postID, text string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := c.do(ctx, http.MethodPost, "/posts/"+postID+"/comment", map[string]string{"text": text}, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &out)
	return out, err
}

func (c *Client) ListUserPosts(ctx context.Context, id string) ([]domain.Post, error) {
	var out []domain.Post
	err := c.do(ctx, http.MethodGet, "/users/"+id+"/posts", nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, name, bio string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, http.MethodPut, "/users/profile", map[string]string{
		"name": name,
		"bio":  bio,
	}, &out)
	return out, err
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	path := "/users"
	if query != "" {
		path += "?search=" + url.QueryEscape(query)
	}
	var out []domain.User
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
