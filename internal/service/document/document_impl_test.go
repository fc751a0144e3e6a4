package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/internal/partition/plaintext"
	"github.com/feichai0017/ai-ready-data/internal/pipeline"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/queue"
)

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Task
	statuses map[string]*queue.TaskStatus
	results  map[string]*models.StructuredOutput
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		statuses: make(map[string]*queue.TaskStatus),
		results:  make(map[string]*models.StructuredOutput),
	}
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, task)
	return nil
}

func (q *fakeQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[taskID]
	if !ok {
		return nil, fmt.Errorf("no status for task %s", taskID)
	}
	return status, nil
}

func (q *fakeQueue) CancelTask(ctx context.Context, taskID string) error { return nil }

func (q *fakeQueue) SaveFinalStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[status.TaskID] = status
	return nil
}

func (q *fakeQueue) SaveResult(ctx context.Context, taskID string, output *models.StructuredOutput) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results[taskID] = output
	return nil
}

func (q *fakeQueue) GetResult(ctx context.Context, taskID string) (*models.StructuredOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	output, ok := q.results[taskID]
	if !ok {
		return nil, fmt.Errorf("no result for task %s", taskID)
	}
	return output, nil
}

func (q *fakeQueue) taskCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) CleanupBefore(ctx context.Context, threshold time.Time) error { return nil }

func (s *fakeStorage) objectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type upload struct {
	name    string
	content string
}

// buildUploads produces parsed multipart file headers the way gin hands them
// to the service.
func buildUploads(t *testing.T, uploads []upload) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		fw, err := w.CreateFormFile("files", u.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["files"]
}

func newTestService(t *testing.T, limit int64) (DocumentProcessor, *billing.Meter, *fakeQueue, *fakeStorage) {
	t.Helper()
	log := logger.NewTestLogger()

	registry := partition.NewRegistry(log, nil, map[string][]partition.Partitioner{
		".txt": {plaintext.New()},
	})
	pipe := pipeline.New(registry, nil, log)

	store := billing.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &models.UsageAccount{
		CredentialID: "cred-1",
		Limit:        limit,
		Plan:         models.PlanFree,
	}))
	meter := billing.NewMeter(store, billing.DefaultPlans(), log)

	q := newFakeQueue()
	st := newFakeStorage()
	svc := NewService(pipe, meter, q, st, log, nil)
	return svc, meter, q, st
}

func TestProcessBatchPartialRejection(t *testing.T) {
	svc, meter, q, st := newTestService(t, 100)

	files := buildUploads(t, []upload{
		{name: "notes.txt", content: "a perfectly fine document"},
		{name: "app.exe", content: "MZ"},
	})

	outcomes := svc.ProcessBatch(context.Background(), files, Request{
		CredentialID: "cred-1",
		Options:      models.DefaultProcessingOptions(),
	})
	require.Len(t, outcomes, 2)

	// Accepted file: a task the caller can poll.
	assert.Equal(t, "notes.txt", outcomes[0].Filename)
	require.NoError(t, outcomes[0].Err)
	require.NotNil(t, outcomes[0].Task)
	assert.Equal(t, models.StatusPending, outcomes[0].Task.Status)
	assert.NotEmpty(t, outcomes[0].Task.ID)

	// Rejected file: an error, no task, no side effects.
	assert.Equal(t, "app.exe", outcomes[1].Filename)
	assert.Nil(t, outcomes[1].Task)
	assert.ErrorIs(t, outcomes[1].Err, models.ErrUnsupportedFileType)

	// Only the accepted file was charged, stored and enqueued.
	assert.Equal(t, 1, q.taskCount())
	assert.Equal(t, 1, st.objectCount())
	acct, err := meter.Account(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acct.Usage)
}

func TestProcessBatchQuotaAdmitsRemaining(t *testing.T) {
	svc, meter, q, _ := newTestService(t, 1)

	files := buildUploads(t, []upload{
		{name: "one.txt", content: "first"},
		{name: "two.txt", content: "second"},
	})

	outcomes := svc.ProcessBatch(context.Background(), files, Request{
		CredentialID: "cred-1",
		Options:      models.DefaultProcessingOptions(),
	})
	require.Len(t, outcomes, 2)

	accepted, rejected := 0, 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			assert.ErrorIs(t, outcome.Err, models.ErrQuotaExceeded)
			assert.Nil(t, outcome.Task)
			rejected++
			continue
		}
		require.NotNil(t, outcome.Task)
		accepted++
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, q.taskCount())

	acct, err := meter.Account(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acct.Usage)
}

func TestProcessBatchOutcomesKeepInputOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t, 100)

	files := buildUploads(t, []upload{
		{name: "a.txt", content: "alpha"},
		{name: "b.bin", content: "beta"},
		{name: "c.txt", content: "gamma"},
	})

	outcomes := svc.ProcessBatch(context.Background(), files, Request{
		CredentialID: "cred-1",
		Options:      models.DefaultProcessingOptions(),
	})
	require.Len(t, outcomes, 3)
	assert.Equal(t, "a.txt", outcomes[0].Filename)
	assert.Equal(t, "b.bin", outcomes[1].Filename)
	assert.Equal(t, "c.txt", outcomes[2].Filename)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
}
