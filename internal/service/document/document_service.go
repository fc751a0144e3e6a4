package document

import (
	"context"
	"mime/multipart"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/queue"
)

// Request bundles everything one processing call needs beyond the file
// itself.
type Request struct {
	CredentialID string
	Options      models.ProcessingOptions
	Schema       []models.SchemaField
}

// BatchOutcome is one file's submission result. Exactly one of Task and Err
// is set: a rejected file is never charged, stored or enqueued.
type BatchOutcome struct {
	Filename string
	Task     *models.ProcessingTask
	Err      error
}

// DocumentProcessor is the application service behind the API: synchronous
// processing, async batch submission and task lifecycle.
type DocumentProcessor interface {
	// ProcessFile runs the full pipeline inline and charges one credit on
	// success.
	ProcessFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, req Request) (*models.StructuredOutput, error)
	// ProcessBatch stores the files, charges credits up front and enqueues
	// one task per file. Files are accepted or rejected independently; one
	// outcome is returned per input file, in input order.
	ProcessBatch(ctx context.Context, files []*multipart.FileHeader, req Request) []BatchOutcome
	GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)
	GetProcessedDocument(ctx context.Context, taskID string) (*models.StructuredOutput, error)
	// HandleDocument is the worker-side execution of a batch task.
	HandleDocument(ctx context.Context, task *queue.Task) error
	CancelTask(ctx context.Context, taskID string) error
	// SupportedTypes lists the file extensions the pipeline accepts.
	SupportedTypes() []string
	// CleanupUploads removes stored upload copies past the retention period.
	CleanupUploads(ctx context.Context) error
}
