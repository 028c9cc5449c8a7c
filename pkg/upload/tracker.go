package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxFileSize is the local upload size cap, checked before any network call.
const MaxFileSize = 10 << 20

// ErrUploadInProgress rejects a second upload for a document type whose prior
// upload has not reached a terminal status.
var ErrUploadInProgress = errors.New("upload: an upload for this document type is already in progress")

// ErrFileTooLarge rejects oversized files locally.
var ErrFileTooLarge = errors.New("File size exceeds 10MB limit")

// ErrFileTypeNotAccepted rejects files whose extension falls outside the
// field's accept types.
var ErrFileTypeNotAccepted = errors.New("upload: file type is not accepted for this field")

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
}

// Tracker holds the per-type upload records for one session. All methods are
// safe for concurrent use; uploads of different types never block each other.
type Tracker struct {
	mu          sync.Mutex
	documents   map[string]*Document
	maxFileSize int64
	now         func() time.Time
}

// TrackerOption customises tracker construction.
type TrackerOption func(*Tracker)

// WithMaxFileSize overrides the local size cap.
func WithMaxFileSize(limit int64) TrackerOption {
	return func(t *Tracker) {
		if limit > 0 {
			t.maxFileSize = limit
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker constructs an empty tracker.
func NewTracker(options ...TrackerOption) *Tracker {
	t := &Tracker{
		documents:   make(map[string]*Document),
		maxFileSize: MaxFileSize,
		now:         time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Begin registers a new upload after the local checks pass: size cap,
// accept-type match, and the single-flight rule for the document type. The
// returned document is a copy in StatusUploading.
func (t *Tracker) Begin(documentType, filename string, size int64, accept string) (Document, error) {
	if strings.TrimSpace(documentType) == "" {
		return Document{}, errors.New("upload: document type is required")
	}
	if size > t.maxFileSize {
		return Document{}, ErrFileTooLarge
	}
	if !accepts(accept, filename) {
		return Document{}, fmt.Errorf("%w: %s", ErrFileTypeNotAccepted, filepath.Ext(filename))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.documents[documentType]; ok && !existing.Status.Terminal() {
		return Document{}, fmt.Errorf("%w: %s is %s", ErrUploadInProgress, documentType, existing.Status)
	}

	doc := &Document{
		DocumentType: documentType,
		Filename:     filename,
		Size:         size,
		Status:       StatusUploading,
		Timestamp:    t.now(),
	}
	t.documents[documentType] = doc
	return *doc, nil
}

// accepts resolves a minimal accept-type check from the file extension.
// An empty accept string allows everything.
func accepts(accept, filename string) bool {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, entry := range strings.Split(accept, ",") {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "image/*":
			if _, ok := imageExtensions[ext]; ok {
				return true
			}
		case strings.HasPrefix(entry, "."):
			if ext == strings.ToLower(entry) {
				return true
			}
		}
	}
	return false
}

// update applies a transition under the lock, ignoring illegal moves. The
// transition is checked before the mutation runs so a rejected move leaves
// the stored record untouched.
func (t *Tracker) update(documentType string, next Status, apply func(*Document)) (Document, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.documents[documentType]
	if !ok {
		return Document{}, false
	}
	if !canTransition(doc.Status, next) {
		return *doc, false
	}
	apply(doc)
	doc.Status = next
	return *doc, true
}

// MarkQueued records backend acceptance of an upload.
func (t *Tracker) MarkQueued(documentType, documentID, jobID, tempPath string, queuePosition int) (Document, bool) {
	return t.update(documentType, StatusQueued, func(doc *Document) {
		doc.DocumentID = documentID
		doc.JobID = jobID
		doc.TempPath = tempPath
		doc.QueuePosition = queuePosition
	})
}

// SetQueuePosition refreshes a queued document's position without leaving
// the queued state.
func (t *Tracker) SetQueuePosition(documentType string, position int) (Document, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.documents[documentType]
	if !ok || doc.Status != StatusQueued || doc.QueuePosition == position {
		return Document{}, false
	}
	doc.QueuePosition = position
	return *doc, true
}

// MarkProcessing records that the extraction job started.
func (t *Tracker) MarkProcessing(documentType string) (Document, bool) {
	return t.update(documentType, StatusProcessing, func(doc *Document) {
		doc.QueuePosition = 0
	})
}

// MarkCompleted records a finished job together with its extracted data.
func (t *Tracker) MarkCompleted(documentType string, extracted map[string]string) (Document, bool) {
	return t.update(documentType, StatusCompleted, func(doc *Document) {
		doc.ExtractedData = extracted
		doc.Error = ""
	})
}

// MarkError records a failure on the specific document. Other documents are
// unaffected and the type becomes retryable.
func (t *Tracker) MarkError(documentType, message string) (Document, bool) {
	return t.update(documentType, StatusError, func(doc *Document) {
		doc.Error = message
	})
}

// Get returns a copy of the tracked document for a type.
func (t *Tracker) Get(documentType string) (Document, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc, ok := t.documents[documentType]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Documents returns copies of every tracked document.
func (t *Tracker) Documents() []Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Document, 0, len(t.documents))
	for _, doc := range t.documents {
		out = append(out, *doc)
	}
	return out
}
