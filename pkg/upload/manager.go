package upload

import (
	"context"
	"io"

	"github.com/formmaster/go-formmaster/pkg/client"
	"github.com/formmaster/go-formmaster/pkg/extract"
)

// Manager ties the tracker, the backend client, and the extraction pipeline
// together: it uploads, polls, and merges extracted data into the session's
// per-type result map.
type Manager struct {
	client  *client.Client
	tracker *Tracker
	poller  *Poller
	config  extract.Config
	mapper  *extract.Mapper
	result  *extract.Result
}

// NewManager builds a manager for one session. The mapper may be nil when no
// schema snapshot is loaded yet; extracted data is then accumulated but not
// mapped.
func NewManager(c *client.Client, config extract.Config, mapper *extract.Mapper, options ...PollerOption) *Manager {
	return &Manager{
		client:  c,
		tracker: NewTracker(),
		poller:  NewPoller(c.JobStatus, options...),
		config:  config,
		mapper:  mapper,
		result:  extract.NewResult(),
	}
}

// Tracker exposes the per-type document records.
func (m *Manager) Tracker() *Tracker { return m.tracker }

// Result exposes the accumulated extraction output.
func (m *Manager) Result() *extract.Result { return m.result }

// Upload runs the whole flow for one document: local checks and single-flight
// registration, backend upload, and, for types with an extraction schema, the
// status polling loop. The returned channel reports lifecycle events and
// closes when the document reaches a terminal status. Types without an
// extraction schema skip processing and complete immediately.
func (m *Manager) Upload(ctx context.Context, documentType, filename string, size int64, content io.Reader, accept string) (<-chan Event, error) {
	if _, err := m.tracker.Begin(documentType, filename, size, accept); err != nil {
		return nil, err
	}

	req := client.UploadRequest{
		DocumentType: documentType,
		Filename:     filename,
		Content:      content,
	}

	if !m.config.HasSchema(documentType) {
		resp, err := m.client.UploadSimple(ctx, req)
		if err != nil {
			m.tracker.MarkError(documentType, err.Error())
			return nil, err
		}
		m.tracker.MarkQueued(documentType, resp.DocumentID, "", resp.TempPath, 0)
		doc, _ := m.tracker.MarkCompleted(documentType, nil)

		events := make(chan Event, 1)
		events <- Event{DocumentType: documentType, Status: doc.Status}
		close(events)
		return events, nil
	}

	resp, err := m.client.UploadAndProcess(ctx, req)
	if err != nil {
		m.tracker.MarkError(documentType, err.Error())
		return nil, err
	}
	m.tracker.MarkQueued(documentType, resp.DocumentID, resp.JobID, resp.TempPath, resp.QueuePosition)

	raw := m.poller.Poll(ctx, m.tracker, documentType, resp.JobID)
	events := make(chan Event, 8)
	go func() {
		defer close(events)
		for event := range raw {
			if event.Status == StatusCompleted {
				if doc, ok := m.tracker.Get(documentType); ok {
					m.result.Merge(documentType, doc.ExtractedData)
				}
			}
			events <- event
		}
	}()
	return events, nil
}

// MappedData runs every type's extraction through the document-to-field
// mapper, yielding values keyed by (table, column) plus warnings for keys the
// schema does not model.
func (m *Manager) MappedData() (map[string]map[string]string, []string) {
	if m.mapper == nil {
		return nil, nil
	}
	return m.mapper.Map(m.result.Flatten())
}
