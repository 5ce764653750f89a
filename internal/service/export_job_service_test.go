package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/dto"
	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/repository"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
	"github.com/staffkit/workforce-api/pkg/jobs"
)

type exportJobStoreStub struct {
	jobs map[string]*models.ExportJob
}

func newExportJobStoreStub() *exportJobStoreStub {
	return &exportJobStoreStub{jobs: map[string]*models.ExportJob{}}
}

func (r *exportJobStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *exportJobStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

func (r *exportJobStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *exportJobStoreStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *exportJobStoreStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return nil, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g *generatorStub) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newExportJobServiceForTest(t *testing.T) (*ExportJobService, *exportJobStoreStub, *queueStub) {
	t.Helper()
	repo := newExportJobStoreStub()
	queue := &queueStub{}
	exporter := newExportServiceForTest(t, &monthlyBuilderStub{report: sampleReport()})
	svc := NewExportJobService(repo, queue, exporter, zap.NewNop(), ExportJobServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
		MaxRetries:      3,
	})
	return svc, repo, queue
}

func validExportRequest() dto.ExportRequest {
	return dto.ExportRequest{EmployeeID: "emp-1", Month: 6, Year: 2025, Format: models.ExportFormatCSV}
}

func TestCreateJobQueuesExport(t *testing.T) {
	svc, repo, queue := newExportJobServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), validExportRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	assert.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Contains(t, repo.jobs, resp.ID)
}

func TestCreateJobRejectsBadFormat(t *testing.T) {
	svc, _, _ := newExportJobServiceForTest(t)

	req := validExportRequest()
	req.Format = "xlsx"
	_, err := svc.CreateJob(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	svc, repo, queue := newExportJobServiceForTest(t)
	queue.err = errors.New("queue stopped")

	_, err := svc.CreateJob(context.Background(), validExportRequest())
	require.Error(t, err)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestGetStatusNotFound(t *testing.T) {
	svc, _, _ := newExportJobServiceForTest(t)

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
}

func TestWorkerFinishesJob(t *testing.T) {
	repo := newExportJobStoreStub()
	job := &models.ExportJob{
		Params: models.ExportJobParams{EmployeeID: "emp-1", Month: 6, Year: 2025, Format: models.ExportFormatCSV},
		Status: models.ExportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))

	url := "/api/v1/reports/exports/download/tok"
	worker := NewExportWorker(repo, &generatorStub{result: &ExportResult{URL: url}}, nil, 3, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID}))

	stored := repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.ResultURL)
	assert.Equal(t, url, *stored.ResultURL)
	assert.NotNil(t, stored.FinishedAt)
}

func TestWorkerRequeuesUntilRetriesExhausted(t *testing.T) {
	repo := newExportJobStoreStub()
	job := &models.ExportJob{
		Params: models.ExportJobParams{EmployeeID: "emp-1", Month: 6, Year: 2025, Format: models.ExportFormatCSV},
		Status: models.ExportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))

	worker := NewExportWorker(repo, &generatorStub{err: errors.New("boom")}, nil, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, repo.jobs[job.ID].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, repo.jobs[job.ID].Status)
}

func TestEndToEndJobProducesDownloadableFile(t *testing.T) {
	repo := newExportJobStoreStub()
	queue := &queueStub{}
	exporter := newExportServiceForTest(t, &monthlyBuilderStub{report: sampleReport()})
	svc := NewExportJobService(repo, queue, exporter, zap.NewNop(), ExportJobServiceConfig{ResultTTL: time.Hour, MaxRetries: 3})
	worker := NewExportWorker(repo, exporter, nil, 3, zap.NewNop())

	resp, err := svc.CreateJob(context.Background(), validExportRequest())
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))

	status, err := svc.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)

	token := extractToken(*status.ResultURL)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatCSV, download.Format)
	assert.Contains(t, download.Filename, ".csv")
}
