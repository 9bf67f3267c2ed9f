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

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
	"github.com/gabriel-vasile/mimetype"
)

const maxResponseBytes = 4 << 20

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// HTTPClient talks to the REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, nil, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, nil, http.MethodPost, "/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, creds Credentials) error {
	return c.do(ctx, creds, http.MethodPost, "/logout", nil, "", nil)
}

func (c *HTTPClient) ListTasks(ctx context.Context, creds Credentials) ([]*models.Task, error) {
	tasks := []*models.Task{}
	if err := c.do(ctx, creds, http.MethodGet, "/tasks", nil, "", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, creds Credentials, id string) (*models.Task, error) {
	var t models.Task
	if err := c.do(ctx, creds, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, "", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, creds Credentials, draft models.TaskDraft) (*models.Task, error) {
	return c.sendTask(ctx, creds, "/tasks", draft)
}

func (c *HTTPClient) UpdateTask(ctx context.Context, creds Credentials, id string, draft models.TaskDraft) (*models.Task, error) {
	return c.sendTask(ctx, creds, "/tasks/"+url.PathEscape(id), draft)
}

func (c *HTTPClient) DeleteTask(ctx context.Context, creds Credentials, id string) error {
	return c.do(ctx, creds, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, "", nil)
}

func (c *HTTPClient) CompletedCount(ctx context.Context, creds Credentials) ([]*models.CompletedCount, error) {
	rows := []*models.CompletedCount{}
	if err := c.do(ctx, creds, http.MethodGet, "/tasks/completedcount", nil, "", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) sendTask(ctx context.Context, creds Credentials, path string, draft models.TaskDraft) (*models.Task, error) {
	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"time":        draft.Time,
	}
	if draft.Status != "" {
		fields["status"] = draft.Status
	}

	var file *netx.FilePart
	if draft.File != nil {
		file = &netx.FilePart{
			Field:       "attachment",
			Filename:    draft.File.Name,
			ContentType: mimetype.Detect(draft.File.Content).String(),
			Content:     draft.File.Content,
		}
	}

	body, contentType, err := netx.MultipartBody(fields, file)
	if err != nil {
		return nil, err
	}

	var t models.Task
	if err := c.do(ctx, creds, http.MethodPost, path, body, contentType, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, creds Credentials, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, creds, method, path, bytes.NewReader(b), "application/json", out)
}

// do performs one API call and decodes the envelope's data into out.
// A 401 on an authenticated call invalidates creds.
func (c *HTTPClient) do(ctx context.Context, creds Credentials, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds != nil {
		if token := creds.Token(); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if creds != nil {
			_ = creds.Invalidate(ctx)
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		ve := &ValidationError{}
		if decodeErr == nil && len(env.Error) > 0 {
			if err := json.Unmarshal(env.Error, &ve.Fields); err != nil {
				ve.Add("error", env.Message)
			}
		}
		return ve
	case resp.StatusCode >= 300:
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
