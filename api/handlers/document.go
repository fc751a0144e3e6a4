package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/api/middleware"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/service/document"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

type DocumentHandler struct {
	service document.DocumentProcessor
	logger  logger.Logger
}

// TaskResponse describes one batch file's submission result. Accepted files
// carry a task id; rejected files carry the error code instead.
type TaskResponse struct {
	TaskID    string `json:"taskId,omitempty"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileType  string `json:"fileType,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

func NewDocumentHandler(service document.DocumentProcessor, logger logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

// ProcessDocument runs the pipeline synchronously and returns the
// structured output envelope.
func (h *DocumentHandler) ProcessDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.badRequest(c, "Invalid file upload", err)
		return
	}
	defer file.Close()

	req, err := h.parseRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	output, err := h.service.ProcessFile(c.Request.Context(), file, header, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

// ProcessBatch accepts multiple files and enqueues one task per file.
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.badRequest(c, "No files provided", nil)
		return
	}

	req, err := h.parseRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	outcomes := h.service.ProcessBatch(c.Request.Context(), files, req)

	accepted := 0
	responses := make([]TaskResponse, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			_, code := classify(outcome.Err)
			responses[i] = TaskResponse{
				Status:   "rejected",
				Filename: outcome.Filename,
				Error:    code,
				Message:  outcome.Err.Error(),
			}
			continue
		}
		accepted++
		responses[i] = TaskResponse{
			TaskID:    outcome.Task.ID,
			Status:    string(outcome.Task.Status),
			Filename:  outcome.Filename,
			FileType:  outcome.Task.Metadata["type"],
			CreatedAt: outcome.Task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  fmt.Sprintf("Accepted %d of %d documents", accepted, len(outcomes)),
		"accepted": accepted,
		"rejected": len(outcomes) - accepted,
		"tasks":    responses,
	})
}

// GetStatus reports the lifecycle state of a batch task.
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.badRequest(c, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetProcessingStatus(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":    task.ID,
		"status":    string(task.Status),
		"progress":  task.Progress,
		"error":     task.Error,
		"createdAt": task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updatedAt": task.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// DownloadResult streams a finished task's structured output as a JSON
// attachment.
func (h *DocumentHandler) DownloadResult(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.badRequest(c, "Task ID is required", nil)
		return
	}

	result, err := h.service.GetProcessedDocument(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("result_%s.json", taskID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", resultJSON)
}

// CancelTask removes a pending batch task from the queue.
func (h *DocumentHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.badRequest(c, "Task ID is required", nil)
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled successfully",
		"taskId":  taskID,
	})
}

// SupportedTypes lists the file extensions the pipeline accepts.
func (h *DocumentHandler) SupportedTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"supportedTypes": h.service.SupportedTypes()})
}

// parseRequest pulls the processing options and optional schema out of the
// multipart form. Unknown option values surface as configuration errors.
func (h *DocumentHandler) parseRequest(c *gin.Context) (document.Request, error) {
	opts := models.DefaultProcessingOptions()
	if err := c.ShouldBind(&opts); err != nil {
		return document.Request{}, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	var schema []models.SchemaField
	if raw := c.PostForm("schema"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &schema); err != nil {
			return document.Request{}, fmt.Errorf("%w: invalid schema JSON: %v", models.ErrConfiguration, err)
		}
	} else if preset := c.PostForm("schema_preset"); preset != "" {
		fields, ok := models.SchemaPreset(preset)
		if !ok {
			return document.Request{}, fmt.Errorf("%w: unknown schema preset %q", models.ErrConfiguration, preset)
		}
		schema = fields
	}

	return document.Request{
		CredentialID: middleware.Credential(c),
		Options:      opts,
		Schema:       schema,
	}, nil
}

func (h *DocumentHandler) badRequest(c *gin.Context, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(http.StatusBadRequest, response)
}
