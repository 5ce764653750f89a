package dto

import "github.com/staffkit/workforce-api/internal/models"

// ExportRequest asks for an asynchronous monthly report export.
type ExportRequest struct {
	EmployeeID string              `json:"employee_id" binding:"required"`
	Month      int                 `json:"month" binding:"required,min=1,max=12"`
	Year       int                 `json:"year" binding:"required,min=2000,max=2200"`
	Format     models.ExportFormat `json:"format" binding:"required"`
}

// ExportJobResponse acknowledges job creation.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, when finished, the signed
// download URL.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
