// Package client is a typed Go client for the dashboard HTTP API. Errors
// returned by the server come back as *apperror.Error with the same kind the
// server assigned.
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

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/models"
)

// Client talks to one dashboard server with one identity token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for baseURL authenticating with token
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

type listPayload[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// do sends one request and decodes the envelope's data into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp.StatusCode, env)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

func responseError(status int, env envelope) error {
	if env.Error == nil {
		return apperror.Unknown(fmt.Sprintf("request failed with status %d", status), nil)
	}
	kind := apperror.Kind(env.Error.Code)
	switch kind {
	case apperror.KindAuth, apperror.KindNotFound, apperror.KindValidation:
	default:
		switch status {
		case http.StatusUnauthorized:
			kind = apperror.KindAuth
		case http.StatusNotFound:
			kind = apperror.KindNotFound
		case http.StatusBadRequest:
			kind = apperror.KindValidation
		default:
			kind = apperror.KindUnknown
		}
	}
	return &apperror.Error{Kind: kind, Message: env.Error.Message, Details: env.Error.Details}
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out listPayload[T]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) remove(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func entityPath(collection, id string) string {
	return "/api/" + collection + "/" + url.PathEscape(id)
}

// Posts

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	return getList[models.Post](ctx, c, "/api/posts", nil)
}

func (c *Client) PostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return getList[models.Post](ctx, c, "/api/posts", url.Values{"author_id": {authorID}})
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return getOne[models.Post](ctx, c, entityPath("posts", id))
}

func (c *Client) CreatePost(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
	return send[models.Post](ctx, c, http.MethodPost, "/api/posts", input)
}

func (c *Client) UpdatePost(ctx context.Context, id string, input models.UpdatePostInput) (*models.Post, error) {
	return send[models.Post](ctx, c, http.MethodPatch, entityPath("posts", id), input)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.remove(ctx, entityPath("posts", id))
}

// Products

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	return getList[models.Product](ctx, c, "/api/products", nil)
}

func (c *Client) ProductsByAuthor(ctx context.Context, authorID string) ([]models.Product, error) {
	return getList[models.Product](ctx, c, "/api/products", url.Values{"author_id": {authorID}})
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return getList[models.Product](ctx, c, "/api/products", url.Values{"category": {category}})
}

func (c *Client) ProductCategories(ctx context.Context) ([]string, error) {
	return getList[string](ctx, c, "/api/products/categories", nil)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return getOne[models.Product](ctx, c, entityPath("products", id))
}

func (c *Client) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.Product, error) {
	return send[models.Product](ctx, c, http.MethodPost, "/api/products", input)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input models.UpdateProductInput) (*models.Product, error) {
	return send[models.Product](ctx, c, http.MethodPatch, entityPath("products", id), input)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.remove(ctx, entityPath("products", id))
}

// Tasks

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	return getList[models.Task](ctx, c, "/api/tasks", nil)
}

func (c *Client) TasksByAuthor(ctx context.Context, authorID string) ([]models.Task, error) {
	return getList[models.Task](ctx, c, "/api/tasks", url.Values{"author_id": {authorID}})
}

func (c *Client) TasksByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	return getList[models.Task](ctx, c, "/api/tasks", url.Values{"status": {string(status)}})
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getOne[models.Task](ctx, c, entityPath("tasks", id))
}

func (c *Client) CreateTask(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	return send[models.Task](ctx, c, http.MethodPost, "/api/tasks", input)
}

func (c *Client) UpdateTask(ctx context.Context, id string, input models.UpdateTaskInput) (*models.Task, error) {
	return send[models.Task](ctx, c, http.MethodPatch, entityPath("tasks", id), input)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.remove(ctx, entityPath("tasks", id))
}

// Columns

func (c *Client) ListColumns(ctx context.Context) ([]models.Column, error) {
	return getList[models.Column](ctx, c, "/api/columns", nil)
}

func (c *Client) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	return getOne[models.Column](ctx, c, entityPath("columns", id))
}

func (c *Client) CreateColumn(ctx context.Context, input models.CreateColumnInput) (*models.Column, error) {
	return send[models.Column](ctx, c, http.MethodPost, "/api/columns", input)
}

func (c *Client) UpdateColumn(ctx context.Context, id string, input models.UpdateColumnInput) (*models.Column, error) {
	return send[models.Column](ctx, c, http.MethodPatch, entityPath("columns", id), input)
}

func (c *Client) DeleteColumn(ctx context.Context, id string) error {
	return c.remove(ctx, entityPath("columns", id))
}

// ReorderColumns sends the complete order and returns the columns as stored
func (c *Client) ReorderColumns(ctx context.Context, ids []string) ([]models.Column, error) {
	var out listPayload[models.Column]
	err := c.do(ctx, http.MethodPut, "/api/columns/order", models.ReorderColumnsInput{ColumnIDs: ids}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Overview returns the dashboard counts
func (c *Client) Overview(ctx context.Context) (*models.Overview, error) {
	return getOne[models.Overview](ctx, c, "/api/overview")
}
