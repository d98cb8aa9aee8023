package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

func testStoreConfig() StoreConfig {
	cfg := DefaultStoreConfig()
	cfg.Scheduler = testSchedulerConfig()
	return cfg
}

// sequentialSubmit hands out req_1, req_2, ... as pending jobs
func sequentialSubmit() func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
	var n int32
	return func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
		id := fmt.Sprintf("req_%d", atomic.AddInt32(&n, 1))
		return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
	}
}

func persistedJobs(t *testing.T, storage *mockStorage) []domain.ExtractionJob {
	t.Helper()
	data, err := storage.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var jobs []domain.ExtractionJob
	require.NoError(t, json.Unmarshal(data, &jobs))
	return jobs
}

func TestSubmit_InsertsPendingJobAtHead(t *testing.T) {
	storage := newMockStorage()
	var gotReq interfaces.SubmitRequest
	submit := sequentialSubmit()
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			gotReq = req
			return submit(ctx, req)
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())
	defer store.Close()

	ctx := context.Background()
	first, err := store.Submit(ctx, "https://example.com/a", "Page A", domain.PageSourceStandard)
	require.NoError(t, err)
	second, err := store.Submit(ctx, "https://example.com/b", "", domain.PageSourceTiptap)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/b", gotReq.URL)
	assert.Equal(t, "tiptap", gotReq.Source)

	jobs := store.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)
	assert.Equal(t, domain.DefaultJobTitle, jobs[0].Title)
	assert.Equal(t, domain.JobStatusPending, jobs[0].Status)
	assert.True(t, store.Scheduler().IsPolling(first))
	assert.True(t, store.Scheduler().IsPolling(second))

	persisted := persistedJobs(t, storage)
	require.Len(t, persisted, 2)
	assert.Equal(t, second, persisted[0].ID)
}

func TestSubmit_EmptyURL(t *testing.T) {
	store := NewJobStore(&mockExtractionService{}, newMockStorage(), testStoreConfig())

	_, err := store.Submit(context.Background(), "  ", "title", "")
	assert.True(t, coreerrors.IsValidation(err))
	assert.Empty(t, store.List())
}

func TestSubmit_MissingRequestID(t *testing.T) {
	tests := []struct {
		name string
		resp *interfaces.StatusResponse
	}{
		{"nil response", nil},
		{"empty id", &interfaces.StatusResponse{Status: "pending"}},
		{"blank id", &interfaces.StatusResponse{RequestID: "  ", Status: "pending"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMockStorage()
			service := &mockExtractionService{
				submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
					return tt.resp, nil
				},
			}
			store := NewJobStore(service, storage, testStoreConfig())

			_, err := store.Submit(context.Background(), "https://example.com", "", "")
			assert.ErrorIs(t, err, coreerrors.ErrInvalidResponse)
			assert.Empty(t, store.List())
			assert.Equal(t, 0, store.Scheduler().Active())
			assert.False(t, storage.has(StorageKey))
		})
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	store := NewJobStore(service, newMockStorage(), testStoreConfig())

	_, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.Error(t, err)
	assert.True(t, coreerrors.IsTransport(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, store.List())
}

func TestSubmit_TerminalResponseDoesNotPoll(t *testing.T) {
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "done", Content: "# Ready"}, nil
		},
	}
	store := NewJobStore(service, newMockStorage(), testStoreConfig())

	id, err := store.Submit(context.Background(), "https://example.com", "T", "")
	require.NoError(t, err)

	job, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, job.Status)
	assert.Equal(t, "# Ready", job.Content)
	assert.False(t, store.Scheduler().IsPolling(id))
}

func TestPolling_UpdatesJobUntilDone(t *testing.T) {
	storage := newMockStorage()
	var checks int32
	service := &mockExtractionService{
		submitFunc: sequentialSubmit(),
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			if atomic.AddInt32(&checks, 1) < 3 {
				return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
			}
			return &interfaces.StatusResponse{RequestID: id, Status: "done", Content: "# Extracted"}, nil
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())
	defer store.Close()

	id, err := store.Submit(context.Background(), "https://example.com", "Page", "")
	require.NoError(t, err)
	require.NoError(t, store.Select(id))

	require.Eventually(t, func() bool {
		job, _ := store.Get(id)
		return job.Status == domain.JobStatusDone
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !store.Scheduler().IsPolling(id) }, time.Second, time.Millisecond)

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "# Extracted", selected.Content)

	persisted := persistedJobs(t, storage)
	require.Len(t, persisted, 1)
	assert.Equal(t, domain.JobStatusDone, persisted[0].Status)
	assert.Equal(t, "# Extracted", persisted[0].Content)
}

func TestClearAll_StopsPollingAndIgnoresLateResponse(t *testing.T) {
	storage := newMockStorage()
	inFlight := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	service := &mockExtractionService{
		submitFunc: sequentialSubmit(),
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			once.Do(func() { close(inFlight) })
			<-release
			return &interfaces.StatusResponse{RequestID: id, Status: "done", Content: "late"}, nil
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)
	require.NoError(t, store.Select(id))
	<-inFlight

	require.NoError(t, store.ClearAll(context.Background()))
	setsAfterClear := storage.setCount()

	close(release)
	store.Scheduler().Wait()

	assert.Empty(t, store.List())
	assert.Equal(t, 0, store.Scheduler().Active())
	_, ok := store.Selected()
	assert.False(t, ok)
	assert.False(t, storage.has(StorageKey))
	assert.Equal(t, setsAfterClear, storage.setCount(), "late response must not be persisted")

	// a late update addressed directly to the store is a no-op too
	assert.False(t, store.ApplyStatusUpdate(id, domain.StatusUpdate{Status: domain.JobStatusDone}))
	assert.Empty(t, store.List())
}

func TestApplyStatusUpdate_UnknownID(t *testing.T) {
	storage := newMockStorage()
	store := NewJobStore(&mockExtractionService{}, storage, testStoreConfig())

	assert.False(t, store.ApplyStatusUpdate("nope", domain.StatusUpdate{Status: domain.JobStatusDone}))
	assert.Equal(t, 0, storage.setCount())
}

func TestApplyStatusUpdate_OutOfOrderResponses(t *testing.T) {
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "pending"}, nil
		},
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	store := NewJobStore(service, newMockStorage(), testStoreConfig())
	defer store.Close()

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)

	assert.True(t, store.ApplyStatusUpdate(id, domain.StatusUpdate{Status: domain.JobStatusDone, Content: "final"}))
	assert.False(t, store.ApplyStatusUpdate(id, domain.StatusUpdate{Status: domain.JobStatusPending}))
	assert.False(t, store.ApplyStatusUpdate(id, domain.StatusUpdate{Status: domain.JobStatusFailed, Error: "late"}))

	job, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, job.Status)
	assert.Equal(t, "final", job.Content)
	assert.Empty(t, job.Error)
}

func TestLoad_RestoresWithDefaults(t *testing.T) {
	storage := newMockStorage()
	blob := `[
		{"id":"req_1","status":"done","title":"Kept","content":"# Hi","timestamp":"2024-03-05T10:20:30Z","url":"https://example.com","source":"tiptap"},
		{"status":"done","title":"No id","timestamp":"2024-03-05T10:20:30Z"},
		{"id":"req_3","status":"weird","timestamp":"not a date"},
		{"id":"req_4","timestamp":1709634030000},
		{"id":"req_1","status":"failed","title":"duplicate"},
		"not an object"
	]`
	storage.data[StorageKey] = []byte(blob)

	cfg := testStoreConfig()
	cfg.ResumePolling = false
	store := NewJobStore(&mockExtractionService{}, storage, cfg)

	before := time.Now().UTC()
	require.NoError(t, store.Load(context.Background()))

	jobs := store.List()
	require.Len(t, jobs, 4)

	assert.Equal(t, "req_1", jobs[0].ID)
	assert.Equal(t, "Kept", jobs[0].Title)
	assert.Equal(t, domain.JobStatusDone, jobs[0].Status)
	assert.Equal(t, domain.PageSourceTiptap, jobs[0].Source)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC), jobs[0].Timestamp.UTC())

	assert.True(t, strings.HasPrefix(jobs[1].ID, "fallback-"), "missing id gets a fallback: %s", jobs[1].ID)

	assert.Equal(t, domain.JobStatusFailed, jobs[2].Status)
	assert.Equal(t, domain.DefaultJobTitle, jobs[2].Title)
	assert.False(t, jobs[2].Timestamp.Before(before), "unparsable timestamp becomes load time")

	assert.Equal(t, domain.JobStatusFailed, jobs[3].Status, "missing status becomes failed")
	assert.Equal(t, time.UnixMilli(1709634030000).UTC(), jobs[3].Timestamp)

	assert.Equal(t, 0, store.Scheduler().Active())
}

func TestLoad_MalformedBlobIsEmpty(t *testing.T) {
	for _, blob := range []string{`{"not":"an array"}`, `garbage`, `"[broken"`} {
		storage := newMockStorage()
		storage.data[StorageKey] = []byte(blob)
		store := NewJobStore(&mockExtractionService{}, storage, testStoreConfig())

		require.NoError(t, store.Load(context.Background()), "blob %q", blob)
		assert.Empty(t, store.List(), "blob %q", blob)
	}
}

func TestLoad_StringEncodedBlob(t *testing.T) {
	storage := newMockStorage()
	inner := `[{"id":"req_9","status":"done","title":"Old","timestamp":"2024-01-01T00:00:00.000Z"}]`
	encoded, err := json.Marshal(inner)
	require.NoError(t, err)
	storage.data[StorageKey] = encoded

	store := NewJobStore(&mockExtractionService{}, storage, testStoreConfig())
	require.NoError(t, store.Load(context.Background()))

	jobs := store.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, "req_9", jobs[0].ID)
}

func TestLoad_NothingPersisted(t *testing.T) {
	store := NewJobStore(&mockExtractionService{}, newMockStorage(), testStoreConfig())
	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.List())
}

func TestLoad_StorageError(t *testing.T) {
	storage := newMockStorage()
	storage.getErr = errors.New("disk on fire")
	store := NewJobStore(&mockExtractionService{}, storage, testStoreConfig())

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestLoad_ResumesPendingPolling(t *testing.T) {
	storage := newMockStorage()
	storage.data[StorageKey] = []byte(`[
		{"id":"req_1","status":"pending","title":"Waiting","timestamp":"2024-03-05T10:20:30Z"},
		{"id":"req_2","status":"done","title":"Finished","timestamp":"2024-03-05T10:20:30Z"}
	]`)

	service := &mockExtractionService{
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: id, Status: "done", Content: "resumed"}, nil
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())
	defer store.Close()

	require.NoError(t, store.Load(context.Background()))

	require.Eventually(t, func() bool {
		job, err := store.Get("req_1")
		return err == nil && job.Status == domain.JobStatusDone
	}, time.Second, time.Millisecond)

	job, _ := store.Get("req_1")
	assert.Equal(t, "resumed", job.Content)
}

func TestSelect(t *testing.T) {
	store := NewJobStore(&mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "done", Content: "x"}, nil
		},
	}, nil, testStoreConfig())

	err := store.Select("missing")
	assert.True(t, coreerrors.IsNotFound(err))

	_, ok := store.Selected()
	assert.False(t, ok)

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)
	require.NoError(t, store.Select(id))

	job, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, id, job.ID)

	store.ClearSelection()
	_, ok = store.Selected()
	assert.False(t, ok)
}

func TestGet_NotFound(t *testing.T) {
	store := NewJobStore(&mockExtractionService{}, nil, testStoreConfig())
	_, err := store.Get("missing")
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestRefresh(t *testing.T) {
	var status atomic.Value
	status.Store("pending")
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "pending"}, nil
		},
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			s := status.Load().(string)
			if s == "failed" {
				return &interfaces.StatusResponse{RequestID: id, Status: s, Error: "page unreachable"}, nil
			}
			return &interfaces.StatusResponse{RequestID: id, Status: s}, nil
		},
	}
	cfg := testStoreConfig()
	cfg.Scheduler.Interval = time.Hour
	store := NewJobStore(service, newMockStorage(), cfg)
	defer store.Close()

	_, err := store.Refresh(context.Background(), "missing")
	assert.True(t, coreerrors.IsNotFound(err))

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)

	status.Store("failed")
	job, err := store.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Equal(t, "page unreachable", job.Error)
	assert.False(t, store.Scheduler().IsPolling(id))
}

func TestRefresh_TransportError(t *testing.T) {
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "done"}, nil
		},
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			return nil, errors.New("timeout")
		},
	}
	store := NewJobStore(service, nil, testStoreConfig())

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)

	_, err = store.Refresh(context.Background(), id)
	assert.True(t, coreerrors.IsTransport(err))
}

func TestPersistFailureIsNotReturned(t *testing.T) {
	storage := newMockStorage()
	storage.setErr = errors.New("quota exceeded")
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "done"}, nil
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())

	_, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)
	assert.Len(t, store.List(), 1)
}

func TestConcurrentSubmitAndClear(t *testing.T) {
	service := &mockExtractionService{submitFunc: sequentialSubmit()}
	store := NewJobStore(service, newMockStorage(), testStoreConfig())

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_ = store.ClearAll(ctx)
				return
			}
			id, err := store.Submit(ctx, "https://example.com", "", "")
			if err == nil {
				store.ApplyStatusUpdate(id, domain.StatusUpdate{Status: domain.JobStatusDone})
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.ClearAll(ctx))
	store.Scheduler().Wait()

	assert.Empty(t, store.List())
	assert.Equal(t, 0, store.Scheduler().Active())
}

func TestClearAll_DuringSubmitLeavesNoPoller(t *testing.T) {
	storage := newBlockingStorage()
	var checks int32
	service := &mockExtractionService{
		submitFunc: sequentialSubmit(),
		checkStatusFunc: func(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
			atomic.AddInt32(&checks, 1)
			return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
		},
	}
	store := NewJobStore(service, storage, testStoreConfig())
	defer store.Close()

	submitted := make(chan error, 1)
	go func() {
		_, err := store.Submit(context.Background(), "https://example.com", "", domain.PageSourceStandard)
		submitted <- err
	}()

	// Submit is now inside persist with the job in the collection
	<-storage.entered

	cleared := make(chan error, 1)
	go func() { cleared <- store.ClearAll(context.Background()) }()

	close(storage.release)
	require.NoError(t, <-submitted)
	require.NoError(t, <-cleared)

	assert.Empty(t, store.List())
	require.Eventually(t, func() bool { return store.Scheduler().Active() == 0 }, time.Second, time.Millisecond)

	settled := atomic.LoadInt32(&checks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&checks), "status checks continued after clear")
}

func TestSubmit_DefaultsSource(t *testing.T) {
	var gotReq interfaces.SubmitRequest
	service := &mockExtractionService{
		submitFunc: func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
			gotReq = req
			return &interfaces.StatusResponse{RequestID: "req_1", Status: "done", Content: "x"}, nil
		},
	}
	store := NewJobStore(service, nil, testStoreConfig())
	defer store.Close()

	id, err := store.Submit(context.Background(), "https://example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "standard", gotReq.Source)

	job, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.PageSourceStandard, job.Source)
}
