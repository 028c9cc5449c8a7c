package upload

import (
	"context"
	"time"

	"github.com/formmaster/go-formmaster/pkg/client"
)

const (
	// DefaultPollInterval matches the backend's expected poll cadence.
	DefaultPollInterval = 2 * time.Second
	// DefaultPollCap bounds how long one job is polled before giving up.
	DefaultPollCap = 5 * time.Minute
)

// StatusFunc fetches the current state of a processing job.
type StatusFunc func(ctx context.Context, jobID string) (client.Job, error)

// Poller drives a tracker from backend job status. It never initiates
// processing; it only observes and reflects.
type Poller struct {
	fetch    StatusFunc
	interval time.Duration
	cap      time.Duration
}

// PollerOption customises poller construction.
type PollerOption func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithCap overrides the total polling budget per job.
func WithCap(cap time.Duration) PollerOption {
	return func(p *Poller) {
		if cap > 0 {
			p.cap = cap
		}
	}
}

// NewPoller constructs a poller around a status fetcher.
func NewPoller(fetch StatusFunc, options ...PollerOption) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultPollInterval,
		cap:      DefaultPollCap,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Poll observes one job until it terminates, emitting an Event for every
// status change. The channel closes when polling stops: on a terminal
// status, on the polling cap, or on context cancellation. Transport errors
// on individual polls are tolerated; the loop simply tries again on the next
// tick.
func (p *Poller) Poll(ctx context.Context, tracker *Tracker, documentType, jobID string) <-chan Event {
	events := make(chan Event, 8)

	go func() {
		defer close(events)

		deadline := time.NewTimer(p.cap)
		defer deadline.Stop()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		last := StatusQueued
		emit := func(doc Document) {
			events <- Event{
				DocumentType:  documentType,
				Status:        doc.Status,
				QueuePosition: doc.QueuePosition,
				Error:         doc.Error,
			}
		}

		for {
			select {
			case <-ctx.Done():
				if doc, ok := tracker.MarkError(documentType, "polling cancelled"); ok {
					emit(doc)
				}
				return
			case <-deadline.C:
				if doc, ok := tracker.MarkError(documentType, "processing timed out"); ok {
					emit(doc)
				}
				return
			case <-ticker.C:
				job, err := p.fetch(ctx, jobID)
				if err != nil {
					continue
				}

				switch job.Status {
				case client.JobQueued:
					if doc, ok := tracker.SetQueuePosition(documentType, job.QueuePosition); ok {
						emit(doc)
					}
				case client.JobProcessing:
					if doc, ok := tracker.MarkProcessing(documentType); ok && last != doc.Status {
						last = doc.Status
						emit(doc)
					}
				case client.JobCompleted:
					if doc, ok := tracker.MarkCompleted(documentType, job.ExtractedData); ok {
						emit(doc)
					}
					return
				case client.JobError:
					message := job.Error
					if message == "" {
						message = "document processing failed"
					}
					if doc, ok := tracker.MarkError(documentType, message); ok {
						emit(doc)
					}
					return
				}
			}
		}
	}()

	return events
}
