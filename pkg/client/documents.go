package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/formmaster/go-formmaster/pkg/extract"
)

// JobState is the backend's view of a processing job.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobError      JobState = "error"
)

// Terminal reports whether the state ends a polling loop.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobError
}

// Job is one poll of the processing-status endpoint.
type Job struct {
	ID            string            `json:"jobId"`
	Status        JobState          `json:"status"`
	QueuePosition int               `json:"queuePosition,omitempty"`
	ExtractedData map[string]string `json:"extractedData,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// UploadRequest carries one document upload.
type UploadRequest struct {
	DocumentType string
	Filename     string
	Content      io.Reader
}

// UploadResponse is the backend's acknowledgement of an accepted upload.
type UploadResponse struct {
	DocumentID    string `json:"documentId"`
	JobID         string `json:"jobId,omitempty"`
	TempPath      string `json:"tempPath,omitempty"`
	QueuePosition int    `json:"queuePosition,omitempty"`
}

func (r UploadRequest) validate() error {
	if r.DocumentType == "" {
		return errors.New("client: document type is required")
	}
	if r.Filename == "" {
		return errors.New("client: filename is required")
	}
	if r.Content == nil {
		return errors.New("client: file content is required")
	}
	return nil
}

// UploadDocument uploads a file without any processing attached.
func (c *Client) UploadDocument(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	return c.uploadMultipart(ctx, "/api/upload/document", req)
}

// UploadAndProcess uploads a file and enqueues AI extraction for it.
func (c *Client) UploadAndProcess(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	return c.uploadMultipart(ctx, "/api/document-processor/upload-and-process", req)
}

// UploadSimple uploads a file through the document processor without
// extraction, for types that have no configured extraction schema.
func (c *Client) UploadSimple(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	return c.uploadMultipart(ctx, "/api/document-processor/upload-simple", req)
}

func (c *Client) uploadMultipart(ctx context.Context, path string, req UploadRequest) (UploadResponse, error) {
	if err := req.validate(); err != nil {
		return UploadResponse{}, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("client: build upload: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return UploadResponse{}, fmt.Errorf("client: read file: %w", err)
	}
	if err := writer.WriteField("documentType", req.DocumentType); err != nil {
		return UploadResponse{}, fmt.Errorf("client: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("client: build upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &body)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	data, err := c.do(httpReq)
	if err != nil {
		return UploadResponse{}, err
	}
	var resp UploadResponse
	if err := decodeJSON(data, &resp); err != nil {
		return UploadResponse{}, err
	}
	return resp, nil
}

// JobStatus polls one processing job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (Job, error) {
	if jobID == "" {
		return Job{}, errors.New("client: job id is required")
	}
	data, err := c.get(ctx, "/api/document-processor/status/"+url.PathEscape(jobID))
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := decodeJSON(data, &job); err != nil {
		return Job{}, err
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

// LoadModel asks the backend to load the extraction model. Concurrent callers
// join the in-flight request rather than issuing duplicates. The request uses
// the first caller's context, so cancelling it aborts the load for everyone
// still waiting.
func (c *Client) LoadModel(ctx context.Context) error {
	result := c.loadModel.DoChan("load-model", func() (any, error) {
		_, err := c.postJSON(ctx, "/api/document-processor/load-model", nil)
		return nil, err
	})
	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnloadModel asks the backend to release the extraction model.
func (c *Client) UnloadModel(ctx context.Context) error {
	_, err := c.postJSON(ctx, "/api/document-processor/unload-model", nil)
	return err
}

// ReleaseModel is the best-effort page-unload variant of UnloadModel: short
// deadline, errors dropped.
func (c *Client) ReleaseModel() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.UnloadModel(ctx)
}

// ParsingConfig fetches the extraction-schema configuration.
func (c *Client) ParsingConfig(ctx context.Context) (extract.Config, error) {
	data, err := c.get(ctx, "/api/document-parsing/config")
	if err != nil {
		return extract.Config{}, err
	}
	return extract.DecodeConfig(data)
}

// SaveParsingConfig stores the extraction-schema configuration.
func (c *Client) SaveParsingConfig(ctx context.Context, cfg extract.Config) error {
	_, err := c.postJSON(ctx, "/api/document-parsing/config", cfg)
	return err
}

// AvailableFields lists the columns the extraction configurator can bind,
// grouped by table.
func (c *Client) AvailableFields(ctx context.Context) (map[string][]string, error) {
	data, err := c.get(ctx, "/api/document-parsing/available-fields")
	if err != nil {
		return nil, err
	}
	var result struct {
		Data map[string][]string `json:"data"`
	}
	if err := decodeJSON(data, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
