package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/staffkit/workforce-api/internal/dto"
	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/service"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type monthlyReportMock struct {
	report *service.MonthlyReport
	err    error
}

func (m *monthlyReportMock) Monthly(ctx context.Context, employeeID string, month, year int) (*service.MonthlyReport, error) {
	return m.report, m.err
}

type exportJobServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportJobServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *exportJobServiceMock) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportJobServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerMonthly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &monthlyReportMock{
		report: &service.MonthlyReport{EmployeeID: "emp-1", Month: 6, Year: 2025},
	}
	handler := NewReportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/reports/monthly?employeeId=emp-1&month=6&year=2025", nil)

	handler.Monthly(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.MonthlyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "emp-1", envelope.Data.EmployeeID)
}

func TestReportHandlerMonthlyBadMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&monthlyReportMock{}, nil)

	c, w := newGinContext(http.MethodGet, "/reports/monthly?employeeId=emp-1&month=june&year=2025", nil)

	handler.Monthly(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	handler := NewReportHandler(&monthlyReportMock{}, mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{EmployeeID: "emp-1", Month: 6, Year: 2025, Format: models.ExportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reports/exports", payload)

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestReportHandlerCreateExportInvalidMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&monthlyReportMock{}, &exportJobServiceMock{})

	payload, _ := json.Marshal(dto.ExportRequest{EmployeeID: "emp-1", Month: 13, Year: 2025, Format: models.ExportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reports/exports", payload)

	handler.CreateExport(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100},
	}
	handler := NewReportHandler(&monthlyReportMock{}, mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandlerExportStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		statusErr: appErrors.Clone(appErrors.ErrNotFound, "export job not found"),
	}
	handler := NewReportHandler(&monthlyReportMock{}, mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/exports/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.ExportStatus(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "export*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Date,Status,Total\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportJobServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "monthly_emp-1_2025-06.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewReportHandler(&monthlyReportMock{}, mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/exports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "monthly_emp-1_2025-06.csv")
	require.Contains(t, w.Body.String(), "Date,Status,Total")
}

func TestReportHandlerDownloadExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		downloadErr: appErrors.Clone(appErrors.ErrForbidden, "download link expired"),
	}
	handler := NewReportHandler(&monthlyReportMock{}, mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/exports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
