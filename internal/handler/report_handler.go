package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/export"
	"billscan/internal/pipeline"
)

// ReportHandler renders analysis results as downloadable XLSX reports.
type ReportHandler struct{}

// NewReportHandler creates a ReportHandler.
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// Export accepts a pipeline result JSON body and responds with an XLSX
// workbook. Results are not persisted server-side, so the caller supplies the
// record it wants rendered.
func (h *ReportHandler) Export(c *gin.Context) {
	var result pipeline.Result
	if err := c.ShouldBindJSON(&result); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REPORT_INPUT", "report payload does not match expected format")
		return
	}
	if result.Fields == nil || result.Validation == nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REPORT_INPUT", "report payload is missing fields or validation results")
		return
	}

	wb, err := export.BuildWorkbook(&result)
	if err != nil {
		HandleError(c, fmt.Errorf("building report workbook: %w", err))
		return
	}
	defer func() { _ = wb.Close() }()

	filename := fmt.Sprintf("analysis-%s.xlsx", result.RunID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := wb.Write(c.Writer); err != nil {
		log.Printf("reportHandler: writing workbook for run %s: %v", result.RunID, err)
	}
}
