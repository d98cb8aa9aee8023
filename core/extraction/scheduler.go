// ABOUTME: Polling scheduler that checks pending extraction jobs on a fixed interval
// ABOUTME: Keeps one cancellable handle per job id and feeds results back into a status sink

package extraction

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// DefaultPollInterval is the delay between two status checks of one job
const DefaultPollInterval = 10 * time.Second

// StatusSink receives the result of every status check. ApplyStatus runs
// under the scheduler lock and must only touch memory; Persist runs after the
// lock is released for every update that changed a job.
type StatusSink interface {
	// ApplyStatus merges update into the job with the given id. tracked is
	// false when the id is no longer in the collection.
	ApplyStatus(id string, update domain.StatusUpdate) (changed, tracked bool)

	// Persist writes the collection to durable storage
	Persist()
}

// SchedulerConfig holds polling configuration
type SchedulerConfig struct {
	// Interval between status checks of the same job
	Interval time.Duration

	// CheckTimeout bounds a single status check. Zero means no extra bound.
	CheckTimeout time.Duration

	// Limiter optionally bounds the aggregate status-check rate across all jobs
	Limiter *rate.Limiter

	// Metrics optionally receives polling events
	Metrics interfaces.PollMetrics

	Logger interfaces.Logger
}

// DefaultSchedulerConfig returns the default polling configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     DefaultPollInterval,
		CheckTimeout: 30 * time.Second,
	}
}

// pollHandle identifies one polling run. A handle that is no longer the
// current entry in the map belongs to a stopped or replaced run.
type pollHandle struct {
	gen    uint64
	cancel context.CancelFunc
}

// Scheduler polls the extraction service for every started job until the job
// reaches a terminal status or polling is stopped.
type Scheduler struct {
	service interfaces.ExtractionService
	sink    StatusSink
	config  SchedulerConfig
	logger  interfaces.Logger

	mu      sync.Mutex
	handles map[string]*pollHandle
	nextGen uint64
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that writes results into sink
func NewScheduler(service interfaces.ExtractionService, sink StatusSink, config SchedulerConfig) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	return &Scheduler{
		service: service,
		sink:    sink,
		config:  config,
		logger:  logger,
		handles: make(map[string]*pollHandle),
	}
}

// Start begins polling id. An existing run for the same id is cancelled first,
// so a job is never polled twice concurrently. The first check happens
// immediately.
func (s *Scheduler) Start(id string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if old, ok := s.handles[id]; ok {
		old.cancel()
	}
	s.nextGen++
	h := &pollHandle{gen: s.nextGen, cancel: cancel}
	s.handles[id] = h
	active := len(s.handles)
	s.wg.Add(1)
	s.mu.Unlock()

	s.reportActive(active)
	s.logger.Debug("Polling started", map[string]interface{}{
		"job_id":     id,
		"generation": h.gen,
	})

	go s.run(ctx, id, h)
}

// Stop cancels polling for id. It is a no-op when id is not being polled.
// Once Stop returns no further result for that run reaches the sink.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	h, ok := s.handles[id]
	if ok {
		delete(s.handles, id)
		h.cancel()
	}
	active := len(s.handles)
	s.mu.Unlock()

	if ok {
		s.reportActive(active)
		s.logger.Debug("Polling stopped", map[string]interface{}{"job_id": id})
	}
}

// StopAll cancels every polling run
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	stopped := len(s.handles)
	for id, h := range s.handles {
		h.cancel()
		delete(s.handles, id)
	}
	s.mu.Unlock()

	if stopped > 0 {
		s.reportActive(0)
		s.logger.Debug("Polling stopped for all jobs", map[string]interface{}{"count": stopped})
	}
}

// IsPolling reports whether id currently has an active run
func (s *Scheduler) IsPolling(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[id]
	return ok
}

// Active returns the number of jobs being polled
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Wait blocks until every polling goroutine has exited. Callers stop the
// runs first; Wait does not cancel anything itself.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, id string, h *pollHandle) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		if !s.poll(ctx, id, h) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll performs one status check and reports whether the run should continue
func (s *Scheduler) poll(ctx context.Context, id string, h *pollHandle) bool {
	if s.config.Limiter != nil {
		if err := s.config.Limiter.Wait(ctx); err != nil {
			return false
		}
	}

	checkCtx := ctx
	if s.config.CheckTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.config.CheckTimeout)
		defer cancel()
	}

	resp, err := s.service.CheckStatus(checkCtx, id)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		if s.config.Metrics != nil {
			s.config.Metrics.PollFailed()
		}
		s.logger.Warn("Status check failed", map[string]interface{}{
			"job_id": id,
			"error":  err.Error(),
		})
		return true
	}
	if resp == nil {
		return true
	}

	status, known := domain.ParseJobStatus(resp.Status)

	s.mu.Lock()
	// the run was stopped or replaced while the request was in flight
	if current, ok := s.handles[id]; !ok || current != h {
		s.mu.Unlock()
		s.logger.Debug("Discarding late status response", map[string]interface{}{
			"job_id":     id,
			"generation": h.gen,
		})
		return false
	}

	changed, tracked := s.sink.ApplyStatus(id, domain.StatusUpdate{
		Status:  status,
		Content: resp.Content,
		Error:   resp.Error,
	})

	// the job was removed from the collection, nothing left to track
	if !tracked || (known && status.IsTerminal()) {
		delete(s.handles, id)
		h.cancel()
	}
	active := len(s.handles)
	s.mu.Unlock()

	if changed {
		s.sink.Persist()
	}
	if s.config.Metrics != nil {
		label := string(status)
		if !known {
			label = "unknown"
		}
		s.config.Metrics.PollCompleted(label)
	}

	switch {
	case !tracked:
		s.reportActive(active)
		s.logger.Debug("Polling stopped for untracked job", map[string]interface{}{"job_id": id})
		return false
	case !known:
		s.logger.Warn("Unknown job status", map[string]interface{}{
			"job_id": id,
			"status": resp.Status,
		})
		return true
	case status.IsTerminal():
		s.reportActive(active)
		s.logger.Info("Extraction finished", map[string]interface{}{
			"job_id": id,
			"status": string(status),
		})
		return false
	}
	return true
}

func (s *Scheduler) reportActive(n int) {
	if s.config.Metrics != nil {
		s.config.Metrics.ActivePollers(n)
	}
}
