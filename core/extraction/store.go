// ABOUTME: Job store owning the extraction job collection, its selection and its persisted copy
// ABOUTME: Submits jobs to the remote service, merges poll results and restores state on load

package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	timeutil "github.com/anhbatoichoi/content-capture-universe/pkg/utils/time"
)

// StorageKey is the storage key holding the serialized job collection
const StorageKey = "extractions"

// StoreConfig holds job store configuration
type StoreConfig struct {
	Scheduler SchedulerConfig

	// ResumePolling restarts polling for pending jobs restored by Load
	ResumePolling bool

	// PersistTimeout bounds each storage write
	PersistTimeout time.Duration

	Logger interfaces.Logger
}

// DefaultStoreConfig returns the default store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Scheduler:      DefaultSchedulerConfig(),
		ResumePolling:  true,
		PersistTimeout: 5 * time.Second,
	}
}

// JobStore is the single writer of the extraction job collection. Jobs are
// kept newest first with unique ids.
type JobStore struct {
	service   interfaces.ExtractionService
	storage   interfaces.Storage
	scheduler *Scheduler
	config    StoreConfig
	logger    interfaces.Logger

	mu         sync.RWMutex
	jobs       []*domain.ExtractionJob
	selectedID string

	// persistMu serializes snapshot+write so the last write carries the latest state
	persistMu sync.Mutex
}

// NewJobStore creates a store and its polling scheduler. storage may be nil,
// in which case nothing is persisted.
func NewJobStore(service interfaces.ExtractionService, storage interfaces.Storage, config StoreConfig) *JobStore {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = DefaultStoreConfig().PersistTimeout
	}
	if config.Logger == nil {
		config.Logger = interfaces.NopLogger{}
	}
	if config.Scheduler.Logger == nil {
		config.Scheduler.Logger = config.Logger
	}

	s := &JobStore{
		service: service,
		storage: storage,
		config:  config,
		logger:  config.Logger,
	}
	s.scheduler = NewScheduler(service, s, config.Scheduler)
	return s
}

// Scheduler returns the scheduler polling this store's jobs
func (s *JobStore) Scheduler() *Scheduler {
	return s.scheduler
}

// Submit sends a new extraction request and records the job at the head of
// the collection. Pending jobs start polling immediately.
func (s *JobStore) Submit(ctx context.Context, url, title string, source domain.PageSource) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", &coreerrors.ValidationError{Field: "url", Message: "url is required"}
	}
	source = source.OrDefault()

	resp, err := s.service.Submit(ctx, interfaces.SubmitRequest{
		URL:    url,
		Title:  title,
		Source: string(source),
	})
	if err != nil {
		var transportErr *coreerrors.TransportError
		if !errors.As(err, &transportErr) {
			err = coreerrors.NewTransportError("submit", err)
		}
		s.logger.Error("Extraction submit failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.RequestID) == "" {
		return "", coreerrors.ErrInvalidResponse
	}

	job := domain.NewExtractionJob(resp.RequestID, title, url, source)
	if status, ok := domain.ParseJobStatus(resp.Status); ok && status.IsTerminal() {
		job.Apply(domain.StatusUpdate{Status: status, Content: resp.Content, Error: resp.Error})
	}

	s.mu.Lock()
	s.removeLocked(job.ID)
	s.jobs = append([]*domain.ExtractionJob{job}, s.jobs...)
	s.mu.Unlock()

	s.persist()

	s.logger.Info("Extraction submitted", map[string]interface{}{
		"job_id": job.ID,
		"url":    url,
		"status": string(job.Status),
	})

	if job.Status == domain.JobStatusPending {
		s.scheduler.Start(job.ID)
		// a concurrent ClearAll or Load may have dropped the job before Start
		if !s.tracked(job.ID) {
			s.scheduler.Stop(job.ID)
		}
	}
	return job.ID, nil
}

// ApplyStatusUpdate merges a status check result into the job with the given
// id and persists the change. Unknown ids are ignored. It reports whether the
// job changed.
func (s *JobStore) ApplyStatusUpdate(id string, update domain.StatusUpdate) bool {
	changed, _ := s.ApplyStatus(id, update)
	if changed {
		s.persist()
	}
	return changed
}

// ApplyStatus merges update in memory only. tracked is false for unknown ids.
func (s *JobStore) ApplyStatus(id string, update domain.StatusUpdate) (changed, tracked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.findLocked(id)
	if job == nil {
		return false, false
	}
	return job.Apply(update), true
}

// Persist writes the collection to storage
func (s *JobStore) Persist() {
	s.persist()
}

// tracked reports whether id is in the collection
func (s *JobStore) tracked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id) != nil
}

// ClearAll stops every polling run, empties the collection, clears the
// selection and removes the persisted copy.
func (s *JobStore) ClearAll(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	cleared := len(s.jobs)
	s.jobs = nil
	s.selectedID = ""
	s.mu.Unlock()

	// stop after emptying: a run started later by Submit finds its job gone
	s.scheduler.StopAll()

	s.logger.Info("Extractions cleared", map[string]interface{}{"count": cleared})

	if s.storage == nil {
		return nil
	}
	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return coreerrors.WrapError(err, "failed to delete persisted extractions")
	}
	return nil
}

// Load replaces the in-memory collection with the persisted one. Malformed
// data never fails the load: bad blobs are treated as empty and bad fields
// get defaults.
func (s *JobStore) Load(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil
		}
		return coreerrors.WrapError(err, "failed to read persisted extractions")
	}

	jobs := s.decode(data)

	s.mu.Lock()
	s.jobs = jobs
	if s.selectedID != "" && s.findLocked(s.selectedID) == nil {
		s.selectedID = ""
	}
	var pending []string
	for _, job := range jobs {
		if job.Status == domain.JobStatusPending {
			pending = append(pending, job.ID)
		}
	}
	s.mu.Unlock()

	s.scheduler.StopAll()

	s.logger.Info("Extractions restored", map[string]interface{}{
		"count":   len(jobs),
		"pending": len(pending),
	})

	if s.config.ResumePolling {
		for _, id := range pending {
			s.scheduler.Start(id)
		}
	}
	return nil
}

// List returns copies of all jobs, newest first
func (s *JobStore) List() []*domain.ExtractionJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*domain.ExtractionJob, len(s.jobs))
	for i, job := range s.jobs {
		jobs[i] = job.Clone()
	}
	return jobs
}

// Get returns a copy of the job with the given id
func (s *JobStore) Get(id string) (*domain.ExtractionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job := s.findLocked(id)
	if job == nil {
		return nil, &coreerrors.NotFoundError{Resource: "extraction", ID: id}
	}
	return job.Clone(), nil
}

// Select focuses the job with the given id
func (s *JobStore) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return &coreerrors.NotFoundError{Resource: "extraction", ID: id}
	}
	s.selectedID = id
	return nil
}

// Selected returns the focused job. It always reflects the latest state of
// the job in the collection.
func (s *JobStore) Selected() (*domain.ExtractionJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selectedID == "" {
		return nil, false
	}
	job := s.findLocked(s.selectedID)
	if job == nil {
		return nil, false
	}
	return job.Clone(), true
}

// ClearSelection drops the focus
func (s *JobStore) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// Refresh performs one immediate status check for id outside the regular
// polling schedule and returns the updated job.
func (s *JobStore) Refresh(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	resp, err := s.service.CheckStatus(ctx, id)
	if err != nil {
		var transportErr *coreerrors.TransportError
		if !errors.As(err, &transportErr) {
			err = coreerrors.NewTransportError("status", err)
		}
		return nil, err
	}
	if resp != nil {
		status, _ := domain.ParseJobStatus(resp.Status)
		s.ApplyStatusUpdate(id, domain.StatusUpdate{
			Status:  status,
			Content: resp.Content,
			Error:   resp.Error,
		})
		if status.IsTerminal() {
			s.scheduler.Stop(id)
		}
	}
	return s.Get(id)
}

// Close stops polling, waits for the polling goroutines and flushes the
// collection to storage.
func (s *JobStore) Close() error {
	s.scheduler.StopAll()
	s.scheduler.Wait()
	s.persist()
	return nil
}

func (s *JobStore) findLocked(id string) *domain.ExtractionJob {
	for _, job := range s.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (s *JobStore) removeLocked(id string) {
	for i, job := range s.jobs {
		if job.ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return
		}
	}
}

// persist writes the whole collection. An empty collection is not written;
// ClearAll removes the key instead.
func (s *JobStore) persist() {
	if s.storage == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	snapshot := make([]domain.ExtractionJob, len(s.jobs))
	for i, job := range s.jobs {
		snapshot[i] = *job
	}
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to encode extractions", map[string]interface{}{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.PersistTimeout)
	defer cancel()

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.Warn("Failed to persist extractions", map[string]interface{}{
			"count": len(snapshot),
			"error": err.Error(),
		})
	}
}

// decode turns a persisted blob into jobs. The blob is either a JSON array of
// records or a JSON string holding that array.
func (s *JobStore) decode(data []byte) []*domain.ExtractionJob {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = []byte(encoded)
	}

	var records []interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Discarding malformed persisted extractions", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	now := time.Now().UTC()
	jobs := make([]*domain.ExtractionJob, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, r := range records {
		record, ok := r.(map[string]interface{})
		if !ok {
			s.logger.Warn("Skipping malformed extraction record", map[string]interface{}{"index": i})
			continue
		}

		job := restoreJob(record, now)
		if seen[job.ID] {
			continue
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
	}
	return jobs
}

// restoreJob builds a job from a loosely typed record, defaulting every
// missing or invalid field.
func restoreJob(record map[string]interface{}, now time.Time) *domain.ExtractionJob {
	id := strings.TrimSpace(stringField(record, "id"))
	if id == "" {
		id = "fallback-" + uuid.NewString()
	}

	status, ok := domain.ParseJobStatus(stringField(record, "status"))
	if !ok {
		status = domain.JobStatusFailed
	}

	title := stringField(record, "title")
	if strings.TrimSpace(title) == "" {
		title = domain.DefaultJobTitle
	}

	return &domain.ExtractionJob{
		ID:        id,
		Status:    status,
		Title:     title,
		Content:   stringField(record, "content"),
		Error:     stringField(record, "error"),
		Timestamp: timeutil.ParseValue(record["timestamp"], now),
		URL:       stringField(record, "url"),
		Source:    domain.PageSource(stringField(record, "source")),
	}
}

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}
