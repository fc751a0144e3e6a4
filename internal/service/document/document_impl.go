package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/pipeline"
	"github.com/feichai0017/ai-ready-data/internal/utils/validator"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/metrics"
	"github.com/feichai0017/ai-ready-data/pkg/queue"
	"github.com/feichai0017/ai-ready-data/pkg/storage"
)

type DocumentService struct {
	pipeline  *pipeline.Pipeline
	meter     *billing.Meter
	queue     queue.Queue
	storage   storage.Storage
	validator *validator.UploadValidator
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize     int64
	QueuePriority   int
	ProcessTimeout  time.Duration
	RetentionPeriod time.Duration
}

func NewService(
	pipe *pipeline.Pipeline,
	meter *billing.Meter,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) DocumentProcessor {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:     50 * 1024 * 1024, // 50MB
			QueuePriority:   2,
			ProcessTimeout:  30 * time.Minute,
			RetentionPeriod: 24 * time.Hour,
		}
	}

	return &DocumentService{
		pipeline:  pipe,
		meter:     meter,
		queue:     q,
		storage:   store,
		validator: validator.NewUploadValidator(log, cfg.MaxFileSize, pipe.Supported()),
		logger:    log,
		config:    cfg,
	}
}

// ProcessFile is the synchronous path: validate, reserve a credit, run the
// pipeline, then commit or release the reservation depending on the outcome.
func (s *DocumentService) ProcessFile(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
	req Request,
) (*models.StructuredOutput, error) {
	s.logger.Info("Starting document processing",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validator.Validate(header); err != nil {
		s.logger.Error("Upload validation failed",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	if _, err := s.meter.Check(ctx, req.CredentialID); err != nil {
		return nil, err
	}

	content, hash, err := s.readUpload(file, header)
	if err != nil {
		s.meter.Release(req.CredentialID)
		return nil, err
	}

	// Audit copy. Losing it does not fail the request.
	s.auditStore(ctx, req.CredentialID, header.Filename, hash, content)

	fileType := extOf(header.Filename)
	output, err := s.pipeline.Process(ctx, content, header.Filename, req.Options, req.Schema)
	if err != nil {
		s.meter.Release(req.CredentialID)
		metrics.DocumentsProcessed.WithLabelValues(fileType, "failure").Inc()
		return nil, err
	}

	if err := s.meter.Commit(ctx, req.CredentialID); err != nil {
		s.logger.Error("Failed to commit usage",
			logger.String("credentialId", req.CredentialID),
			logger.Error(err),
		)
	}
	metrics.DocumentsProcessed.WithLabelValues(fileType, "success").Inc()

	return output, nil
}

// ProcessBatch charges credits at submission time: each accepted file holds
// a committed credit before its task is enqueued, so the quota invariant is
// enforced at the API instance rather than in the worker. A file that fails
// submission is rejected on its own; the rest of the batch proceeds, and the
// caller gets one outcome per file so every charged task id is reachable.
func (s *DocumentService) ProcessBatch(ctx context.Context, files []*multipart.FileHeader, req Request) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(files))

	var g errgroup.Group
	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			task, err := s.submitOne(ctx, header, req)
			if err != nil {
				s.logger.Warn("Batch file rejected",
					logger.String("filename", header.Filename),
					logger.Error(err),
				)
			}
			outcomes[i] = BatchOutcome{
				Filename: header.Filename,
				Task:     task,
				Err:      err,
			}
			return nil
		})
	}
	// Workers never return an error; failures live in the outcomes.
	_ = g.Wait()

	return outcomes
}

func (s *DocumentService) submitOne(ctx context.Context, header *multipart.FileHeader, req Request) (*models.ProcessingTask, error) {
	if err := s.validator.Validate(header); err != nil {
		return nil, err
	}

	if _, err := s.meter.Check(ctx, req.CredentialID); err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		s.meter.Release(req.CredentialID)
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, hash, err := s.readUpload(file, header)
	if err != nil {
		s.meter.Release(req.CredentialID)
		return nil, err
	}

	// Batch uploads must land in storage; the worker reads them from there.
	objectKey := uploadKey(req.CredentialID, hash, header.Filename)
	if _, err := s.storage.Store(ctx, bytes.NewReader(content), objectKey); err != nil {
		s.meter.Release(req.CredentialID)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	taskID := uuid.New().String()
	queueTask := &queue.Task{
		ID:           taskID,
		Type:         queue.TaskTypeDocumentProcess,
		Priority:     s.config.QueuePriority,
		CredentialID: req.CredentialID,
		ObjectKey:    objectKey,
		Filename:     header.Filename,
		Options:      req.Options,
		Schema:       req.Schema,
		CreatedAt:    time.Now(),
	}

	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		s.meter.Release(req.CredentialID)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	if err := s.meter.Commit(ctx, req.CredentialID); err != nil {
		s.logger.Error("Failed to commit usage",
			logger.String("credentialId", req.CredentialID),
			logger.Error(err),
		)
	}

	initialStatus := &queue.TaskStatus{
		TaskID:    taskID,
		Status:    "pending",
		Progress:  0,
		StartedAt: time.Now(),
	}
	if err := s.queue.SaveFinalStatus(ctx, initialStatus); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	s.logger.Info("Batch task created",
		logger.String("taskId", taskID),
		logger.String("filename", header.Filename),
	)

	return &models.ProcessingTask{
		ID:        taskID,
		Status:    models.StatusPending,
		Type:      queue.TaskTypeDocumentProcess,
		Priority:  s.config.QueuePriority,
		CreatedAt: queueTask.CreatedAt,
		UpdatedAt: queueTask.CreatedAt,
		Metadata: map[string]string{
			"filename": header.Filename,
			"size":     fmt.Sprintf("%d", header.Size),
			"type":     extOf(header.Filename),
		},
	}, nil
}

// HandleDocument runs a batch task on the worker. The credit was committed
// at submission, so only the pipeline outcome is recorded here.
func (s *DocumentService) HandleDocument(ctx context.Context, task *queue.Task) error {
	s.logger.Info("Processing batch document",
		logger.String("taskId", task.ID),
		logger.String("filename", task.Filename),
	)

	reader, err := s.storage.Get(ctx, task.ObjectKey)
	if err != nil {
		return s.failTask(ctx, task, fmt.Errorf("failed to get document: %w", err))
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return s.failTask(ctx, task, fmt.Errorf("failed to read document: %w", err))
	}

	fileType := extOf(task.Filename)
	output, err := s.pipeline.Process(ctx, content, task.Filename, task.Options, task.Schema)
	if err != nil {
		metrics.DocumentsProcessed.WithLabelValues(fileType, "failure").Inc()
		return s.failTask(ctx, task, err)
	}

	if err := s.queue.SaveResult(ctx, task.ID, output); err != nil {
		return s.failTask(ctx, task, fmt.Errorf("failed to store result: %w", err))
	}

	metrics.DocumentsProcessed.WithLabelValues(fileType, "success").Inc()

	finalStatus := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "completed",
		Progress:   1.0,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveFinalStatus(ctx, finalStatus); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	s.logger.Info("Batch document completed",
		logger.String("taskId", task.ID),
		logger.Int("elements", output.Metadata.TotalElements),
	)

	return nil
}

func (s *DocumentService) failTask(ctx context.Context, task *queue.Task, cause error) error {
	status := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "failed",
		Error:      cause.Error(),
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveFinalStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save failure status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}
	return cause
}

func (s *DocumentService) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.ProcessingStatus
	switch status.Status {
	case "pending":
		taskStatus = models.StatusPending
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	default:
		taskStatus = models.StatusPending
	}

	return &models.ProcessingTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeDocumentProcess,
		Progress:  status.Progress,
		Error:     status.Error,
		Metadata:  make(map[string]string),
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

func (s *DocumentService) GetProcessedDocument(ctx context.Context, taskID string) (*models.StructuredOutput, error) {
	status, err := s.GetProcessingStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if status.Status != models.StatusCompleted {
		return nil, fmt.Errorf("task is not completed: %s", status.Status)
	}

	return s.queue.GetResult(ctx, taskID)
}

func (s *DocumentService) CancelTask(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	s.logger.Info("Task cancelled",
		logger.String("taskId", taskID),
	)

	return nil
}

func (s *DocumentService) SupportedTypes() []string {
	return s.pipeline.Supported()
}

// CleanupUploads removes audit copies older than the retention period.
func (s *DocumentService) CleanupUploads(ctx context.Context) error {
	threshold := time.Now().Add(-s.config.RetentionPeriod)

	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}

	s.logger.Info("Completed uploads cleanup",
		logger.Time("threshold", threshold),
	)

	return nil
}

func (s *DocumentService) readUpload(file multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	hash, err := validator.ContentHash(file)
	if err != nil {
		return nil, "", err
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}

	return content, hash, nil
}

func (s *DocumentService) auditStore(ctx context.Context, credentialID, filename, hash string, content []byte) {
	if s.storage == nil {
		return
	}
	key := uploadKey(credentialID, hash, filename)
	if _, err := s.storage.Store(ctx, bytes.NewReader(content), key); err != nil {
		s.logger.Warn("Failed to store audit copy",
			logger.String("key", key),
			logger.Error(err),
		)
	}
}

func uploadKey(credentialID, hash, filename string) string {
	return fmt.Sprintf("uploads/%s/%s-%s", credentialID, hash[:12], filepath.Base(filename))
}

func extOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
