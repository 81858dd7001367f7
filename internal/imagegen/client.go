package imagegen

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/wantzavod/musicsync/internal/httpx"
)

// TaskState is the coarse state of a generation task as reported by
// the upstream API.
type TaskState string

const (
	// StateProcessing means the task has not resolved yet.
	StateProcessing TaskState = "processing"

	// StateSuccess means the task produced an image; Result.URL is set.
	StateSuccess TaskState = "success"

	// StateError covers every upstream failure state.
	StateError TaskState = "error"
)

// Result is the outcome of one TaskStatus poll.
type Result struct {
	State TaskState

	// URL is the generated image location, set only on success.
	URL string

	// Reason is the upstream error message, set only on error.
	Reason string
}

// Client submits and polls image-generation tasks.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *httpx.Client
}

// Option adjusts client construction.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithModel selects the upstream model identifier.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates an image-generation client authenticated with
// apiKey.
func NewClient(apiKey string, httpc *httpx.Client, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.kie.ai",
		model:   "z-image",
		httpc:   httpc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createTaskRequest struct {
	Model string          `json:"model"`
	Input createTaskInput `json:"input"`
}

type createTaskInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

type taskData struct {
	TaskID string      `json:"taskId"`
	Status string      `json:"status"`
	Output *taskOutput `json:"output"`
}

type taskOutput struct {
	URL string `json:"url"`
}

// CreateTask submits a generation task for prompt and returns the
// upstream task id. Covers are always square.
func (c *Client) CreateTask(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(createTaskRequest{
		Model: c.model,
		Input: createTaskInput{Prompt: prompt, AspectRatio: "1:1"},
	})
	if err != nil {
		return "", fmt.Errorf("encode task request: %w", err)
	}

	body, err := c.httpc.PostJSON(ctx, c.baseURL+"/api/v1/jobs/createTask", c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("create task: decode response: %w", err)
	}
	var data taskData
	if envelope.Code == 0 && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return "", fmt.Errorf("create task: decode data: %w", err)
		}
	}
	if envelope.Code != 0 || data.TaskID == "" {
		return "", fmt.Errorf("create task: upstream error: %s", nonEmpty(envelope.Msg, "no task id"))
	}
	return data.TaskID, nil
}

// TaskStatus polls one task and maps the upstream state onto the
// three-valued Result. Upstream states other than SUCCESS and
// PROCESSING are reported as errors with the upstream message as the
// reason.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (Result, error) {
	body, err := c.httpc.GetAuth(ctx, c.baseURL+"/api/v1/jobs/recordInfo?taskId="+taskID, c.apiKey)
	if err != nil {
		return Result{}, fmt.Errorf("task status: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Result{}, fmt.Errorf("task status: decode response: %w", err)
	}
	var data taskData
	if envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return Result{}, fmt.Errorf("task status: decode data: %w", err)
		}
	}

	switch {
	case envelope.Code == 0 && data.Status == "SUCCESS" && data.Output != nil && data.Output.URL != "":
		return Result{State: StateSuccess, URL: data.Output.URL}, nil
	case data.Status == "PROCESSING":
		return Result{State: StateProcessing}, nil
	default:
		return Result{State: StateError, Reason: nonEmpty(envelope.Msg, "unknown upstream state")}, nil
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
