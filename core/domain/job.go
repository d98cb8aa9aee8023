// ABOUTME: Extraction job domain model tracked by the job store and the polling scheduler
// ABOUTME: Defines job statuses, terminal-state rules and status update merging

package domain

import (
	"strings"
	"time"
)

// DefaultJobTitle is used when a job is submitted or restored without a title
const DefaultJobTitle = "Untitled Extraction"

// JobStatus is the lifecycle state of an extraction job
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// ParseJobStatus maps a wire value onto a known status.
// The second return value is false for empty or unknown values.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobStatusPending:
		return JobStatusPending, true
	case JobStatusDone:
		return JobStatusDone, true
	case JobStatusFailed:
		return JobStatusFailed, true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are allowed
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// PageSource identifies how page content was captured
type PageSource string

const (
	// PageSourceTiptap content is raw editor HTML and must be converted before display
	PageSourceTiptap PageSource = "tiptap"

	// PageSourceStandard content is already plain text
	PageSourceStandard PageSource = "standard"
)

// OrDefault returns the source, or standard when none was given
func (s PageSource) OrDefault() PageSource {
	if s == "" {
		return PageSourceStandard
	}
	return s
}

// NeedsConversion reports whether content from this source is HTML
func (s PageSource) NeedsConversion() bool {
	return s == PageSourceTiptap
}

// ExtractionJob is one asynchronous extraction request tracked by id and status
type ExtractionJob struct {
	ID        string     `json:"id"`
	Status    JobStatus  `json:"status"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	URL       string     `json:"url,omitempty"`
	Source    PageSource `json:"source,omitempty"`
}

// NewExtractionJob creates a pending job stamped with the current time
func NewExtractionJob(id, title, url string, source PageSource) *ExtractionJob {
	if strings.TrimSpace(title) == "" {
		title = DefaultJobTitle
	}
	return &ExtractionJob{
		ID:        id,
		Status:    JobStatusPending,
		Title:     title,
		Timestamp: time.Now().UTC(),
		URL:       url,
		Source:    source.OrDefault(),
	}
}

// StatusUpdate carries the fields reported by one status check
type StatusUpdate struct {
	Status  JobStatus
	Content string
	Error   string
}

// Apply merges an update into the job and reports whether anything changed.
// Empty fields never overwrite existing values. A terminal job is left untouched.
func (j *ExtractionJob) Apply(u StatusUpdate) bool {
	if j.Status.IsTerminal() {
		return false
	}

	status := j.Status
	if parsed, ok := ParseJobStatus(string(u.Status)); ok {
		status = parsed
	}

	changed := status != j.Status
	j.Status = status

	if status == JobStatusDone && u.Content != "" && u.Content != j.Content {
		j.Content = u.Content
		changed = true
	}
	if status == JobStatusFailed && u.Error != "" && u.Error != j.Error {
		j.Error = u.Error
		changed = true
	}

	return changed
}

// Clone returns a copy safe to hand out of the store
func (j *ExtractionJob) Clone() *ExtractionJob {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}
