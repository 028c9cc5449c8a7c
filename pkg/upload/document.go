// Package upload tracks document uploads and their processing lifecycle:
// uploading -> queued -> processing -> completed, with error reachable from
// every non-terminal state. The tracker enforces one in-flight upload per
// document type; the poller observes backend job status on a bounded timer
// and reflects it into the tracker. Processing is never initiated here, only
// observed.
package upload

import "time"

// Status is a document's position in the upload/processing lifecycle.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the status ends the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Document is the tracked record for one upload of one document type.
type Document struct {
	DocumentID    string            `json:"documentId"`
	DocumentType  string            `json:"documentType"`
	Filename      string            `json:"filename"`
	Size          int64             `json:"size"`
	Status        Status            `json:"status"`
	QueuePosition int               `json:"queuePosition,omitempty"`
	ExtractedData map[string]string `json:"extractedData,omitempty"`
	Error         string            `json:"error,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	TempPath      string            `json:"tempPath,omitempty"`
	JobID         string            `json:"jobId,omitempty"`
}

// Event is one observed lifecycle change, emitted on a poller's channel so
// consumers can render progress without owning the polling loop.
type Event struct {
	DocumentType  string
	Status        Status
	QueuePosition int
	Error         string
}

// transitions lists the legal moves; anything else is ignored rather than
// treated as a fault, since the backend owns the real lifecycle and polls can
// arrive out of order.
var transitions = map[Status][]Status{
	StatusUploading:  {StatusQueued, StatusProcessing, StatusCompleted, StatusError},
	StatusQueued:     {StatusProcessing, StatusCompleted, StatusError},
	StatusProcessing: {StatusCompleted, StatusError},
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
