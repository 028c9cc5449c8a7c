package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	c, err := New("http://localhost:8080/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := c.url("/api/x"); got != "http://localhost:8080/api/x" {
		t.Fatalf("trailing slash not trimmed: %q", got)
	}
}

func TestCompatibleTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/database/tables/compatible" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"tableName":"personal_details","columns":[{"name":"full_name","type":"TEXT"}]}]`))
	}))
	defer server.Close()

	c, _ := New(server.URL)
	tables, err := c.CompatibleTables(context.Background())
	if err != nil {
		t.Fatalf("compatible tables: %v", err)
	}
	if len(tables) != 1 || tables[0].TableName != "personal_details" {
		t.Fatalf("unexpected tables: %+v", tables)
	}
}

func TestFetchAll_BuildsSnapshotConcurrently(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/database/tables/compatible":
			_, _ = w.Write([]byte(`[{"tableName":"a","columns":[{"name":"x","type":"TEXT"}]},{"tableName":"b","columns":[{"name":"y","type":"TEXT"}]}]`))
		case strings.HasSuffix(r.URL.Path, "/schema"):
			table := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/database/tables/"), "/schema")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tableName": table,
				"columns":   []map[string]any{{"name": table + "_col", "type": "TEXT"}},
			})
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	c, _ := New(server.URL)
	set, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 tables, got %d", set.Len())
	}
	if _, _, ok := set.FindColumn("a_col"); !ok {
		t.Fatalf("detailed schema not in snapshot")
	}
}

func TestInsertRow_ConstraintError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"type":"UNIQUE_CONSTRAINT","message":"duplicate"}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)
	err := c.InsertRow(context.Background(), "personal_details", map[string]string{"email": "x@y.dev"})

	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}
	fields := constraintErr.Fields()
	if len(fields["_general"]) != 1 {
		t.Fatalf("unique constraint must map to a general message: %v", fields)
	}
}

func TestInsertRow_ServerErrorIsNotConstraint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	err := c.InsertRow(context.Background(), "personal_details", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestUploadAndProcess_MultipartFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("documentType"); got != "aadhaar" {
			t.Fatalf("documentType = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "aadhaar.pdf" {
			t.Fatalf("filename = %q", header.Filename)
		}
		_, _ = w.Write([]byte(`{"documentId":"doc-1","jobId":"job-1","queuePosition":2}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)
	resp, err := c.UploadAndProcess(context.Background(), UploadRequest{
		DocumentType: "aadhaar",
		Filename:     "aadhaar.pdf",
		Content:      strings.NewReader("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.JobID != "job-1" || resp.QueuePosition != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestJobStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/document-processor/status/job-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"completed","extractedData":{"full_name":"John Doe"}}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)
	job, err := c.JobStatus(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("job status: %v", err)
	}
	if job.Status != JobCompleted || !job.Status.Terminal() {
		t.Fatalf("unexpected status: %+v", job)
	}
	if job.ExtractedData["full_name"] != "John Doe" {
		t.Fatalf("extracted data lost: %+v", job)
	}
	if job.ID != "job-1" {
		t.Fatalf("job id not backfilled: %+v", job)
	}
}

func TestValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/validate/personal_details" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"errors":{"personal_details.age":["Age must be at least 1"]}}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)
	errsByField, err := c.Validate(context.Background(), "personal_details", map[string]string{"age": "0"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(errsByField["personal_details.age"]) != 1 {
		t.Fatalf("unexpected validation payload: %v", errsByField)
	}
}

func TestParsingConfigAndGroupedFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/document-parsing/config":
			_, _ = w.Write([]byte(`{"types":{"aadhaar":{"fields":["full_name"]}}}`))
		case "/api/fields/grouped/table":
			_, _ = w.Write([]byte(`{"data":{"personal_details":["full_name","email"]}}`))
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	c, _ := New(server.URL)
	cfg, err := c.ParsingConfig(context.Background())
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	if !cfg.HasSchema("aadhaar") {
		t.Fatalf("config lost: %+v", cfg)
	}

	grouped, err := c.GroupedFields(context.Background())
	if err != nil {
		t.Fatalf("grouped fields: %v", err)
	}
	if len(grouped["personal_details"]) != 2 {
		t.Fatalf("unexpected grouped fields: %v", grouped)
	}
}
