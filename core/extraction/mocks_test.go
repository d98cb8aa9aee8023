package extraction

import (
	"context"
	"sync"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// mockExtractionService is a mock implementation of the ExtractionService interface
type mockExtractionService struct {
	submitFunc      func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error)
	checkStatusFunc func(ctx context.Context, id string) (*interfaces.StatusResponse, error)
}

func (m *mockExtractionService) Submit(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, req)
	}
	return &interfaces.StatusResponse{RequestID: "req_1", Status: "pending"}, nil
}

func (m *mockExtractionService) CheckStatus(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
	if m.checkStatusFunc != nil {
		return m.checkStatusFunc(ctx, id)
	}
	return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
}

// mockStorage is an in-memory Storage that records writes
type mockStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	deletes int

	getErr error
	setErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string][]byte)}
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *mockStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *mockStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *mockStorage) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// recordingSink collects every update handed to it by the scheduler.
// Ids in untracked are reported as missing from the collection. When
// persistGate is set, Persist signals persisting and blocks until the gate closes.
type recordingSink struct {
	mu        sync.Mutex
	updates   []domain.StatusUpdate
	untracked map[string]bool
	persists  int

	persisting  chan struct{}
	persistGate chan struct{}
}

func (r *recordingSink) ApplyStatus(id string, update domain.StatusUpdate) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.untracked[id] {
		return false, false
	}
	r.updates = append(r.updates, update)
	return true, true
}

func (r *recordingSink) Persist() {
	r.mu.Lock()
	r.persists++
	gate := r.persistGate
	r.mu.Unlock()

	if gate != nil {
		select {
		case r.persisting <- struct{}{}:
		default:
		}
		<-gate
	}
}

func (r *recordingSink) snapshot() []domain.StatusUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusUpdate(nil), r.updates...)
}

// mockMetrics counts polling events
type mockMetrics struct {
	mu        sync.Mutex
	completed map[string]int
	failed    int
	active    int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{completed: make(map[string]int)}
}

func (m *mockMetrics) PollCompleted(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[status]++
}

func (m *mockMetrics) PollFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

func (m *mockMetrics) ActivePollers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = n
}

func (m *mockMetrics) counts() (map[string]int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := make(map[string]int, len(m.completed))
	for k, v := range m.completed {
		c[k] = v
	}
	return c, m.failed
}

// blockingStorage wraps mockStorage; the first Set signals entered and waits
// for release
type blockingStorage struct {
	*mockStorage
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingStorage() *blockingStorage {
	return &blockingStorage{
		mockStorage: newMockStorage(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *blockingStorage) Set(ctx context.Context, key string, value []byte) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.mockStorage.Set(ctx, key, value)
}
