package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/pipeline"
	"billscan/internal/port"
)

// AnalyzeHandler serves document analysis requests.
type AnalyzeHandler struct {
	pipe        *pipeline.Pipeline
	storage     port.ObjectStorage // nil when archival is disabled
	s3cfg       *config.S3Config
	maxFileSize int64
}

// NewAnalyzeHandler creates an AnalyzeHandler. storage may be nil.
func NewAnalyzeHandler(pipe *pipeline.Pipeline, storage port.ObjectStorage, s3cfg *config.S3Config, uploadCfg *config.UploadConfig) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipe:        pipe,
		storage:     storage,
		s3cfg:       s3cfg,
		maxFileSize: uploadCfg.MaxFileSizeMB * 1024 * 1024,
	}
}

// Analyze accepts one document (multipart field "file") and runs the full
// analysis pipeline on it.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}
	if header.Size > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		HandleError(c, fmt.Errorf("reading upload: %w", err))
		return
	}
	if len(fileBytes) == 0 {
		HandleError(c, domain.ErrEmptyFile)
		return
	}

	result, err := h.pipe.Run(c.Request.Context(), port.DocumentInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if h.storage != nil {
		h.archive(result.RunID, fileBytes, contentType)
	}

	RespondOK(c, result)
}

// archive stores the analyzed document in the configured bucket. Best-effort:
// a storage failure never fails the analysis request that already completed.
func (h *AnalyzeHandler) archive(runID uuid.UUID, fileBytes []byte, contentType string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("documents/%s/%s", time.Now().UTC().Format("2006-01-02"), runID)
	_, err := h.storage.Upload(ctx, port.UploadInput{
		Bucket:      h.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(fileBytes),
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("analyzeHandler: archiving run %s failed: %v", runID, err)
		return
	}
	log.Printf("analyzeHandler: archived run %s to s3://%s/%s", runID, h.s3cfg.Bucket, key)
}
