package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/podscript/podscript-cli/internals/schemas"
)

const DefaultTimeout = 30 * time.Second

// UploadTimeout is long on purpose, podcast episodes can be large.
const UploadTimeout = 10 * time.Minute

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SetToken replaces the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// CreateTask starts acquisition of a remote source (page or video URL).
func (c *Client) CreateTask(ctx context.Context, sourceURL string) (*schemas.Task, error) {
	req := schemas.TaskCreateRequest{SourceURL: sourceURL}
	resp, err := c.doJSON(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	return decodeTask(resp.Body)
}

// UploadTask registers a local media file with the server. The returned
// task is already in the downloaded state, acquisition is skipped.
func (c *Client) UploadTask(ctx context.Context, path string) (*schemas.Task, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	httpClient := &http.Client{Timeout: UploadTimeout, Transport: c.httpClient.Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	return decodeTask(resp.Body)
}

// CreateFromAudioURL submits a direct audio URL job. The server skips
// acquisition and starts transcription immediately.
func (c *Client) CreateFromAudioURL(ctx context.Context, req schemas.TranscribeURLRequest) (*schemas.Task, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/tasks/transcribe-url", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	return decodeTask(resp.Body)
}

// StartTranscription requests transcription of an already acquired task.
func (c *Client) StartTranscription(ctx context.Context, taskID string, opts schemas.TranscribeOptions) (*schemas.Task, error) {
	params := url.Values{}
	params.Set("provider", opts.Provider)
	if opts.ModelName != "" {
		params.Set("model_name", opts.ModelName)
	}
	if opts.Prompt != "" {
		params.Set("prompt", opts.Prompt)
	}
	path := "/tasks/" + url.PathEscape(taskID) + "/transcribe?" + params.Encode()
	resp, err := c.doJSON(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	return decodeTask(resp.Body)
}

// GetTask fetches the current task snapshot.
func (c *Client) GetTask(ctx context.Context, taskID string) (*schemas.Task, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	return decodeTask(resp.Body)
}

// GetLogs fetches the task log tail. Logs are best effort: any failure
// yields an empty slice, never an error.
func (c *Client) GetLogs(ctx context.Context, taskID string) []schemas.TaskLog {
	resp, err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/logs", nil)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var logs []schemas.TaskLog
	if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
		return nil
	}
	return logs
}

// GetResults fetches the final artifact links for a completed task.
func (c *Client) GetResults(ctx context.Context, taskID string) (*schemas.TaskResults, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/results", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var results schemas.TaskResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return &results, nil
}

// GetTranscript fetches the full transcript of a completed task.
func (c *Client) GetTranscript(ctx context.Context, taskID string) (*schemas.Transcript, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/transcript", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var transcript schemas.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

// Login exchanges credentials for an access token and installs it on
// the client.
func (c *Client) Login(ctx context.Context, req schemas.LoginRequest) (*schemas.LoginResponse, error) {
	return c.authCall(ctx, "/auth/login", req)
}

// Register creates an account and installs the returned token.
func (c *Client) Register(ctx context.Context, req schemas.LoginRequest) (*schemas.LoginResponse, error) {
	return c.authCall(ctx, "/auth/register", req)
}

func (c *Client) authCall(ctx context.Context, path string, req schemas.LoginRequest) (*schemas.LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	var payload schemas.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	c.token = payload.AccessToken
	return &payload, nil
}

// Balance fetches the caller's credit balance.
func (c *Client) Balance(ctx context.Context) (int, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/credits/balance", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, responseError(resp)
	}
	var payload schemas.BalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	return payload.Balance, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	return c.httpClient.Do(req)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeTask(r io.Reader) (*schemas.Task, error) {
	var task schemas.Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func responseError(resp *http.Response) error {
	apiErr := &APIError{Kind: KindDomain, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr.Kind = KindUnauthenticated
	case http.StatusPaymentRequired:
		apiErr.Kind = KindInsufficientBalance
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			apiErr.Message = payload.Detail
			return apiErr
		}
		if payload.Message != "" {
			apiErr.Message = payload.Message
			return apiErr
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 500 {
		apiErr.Message = text
	}
	return apiErr
}
