package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/clients/api"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type jobsClient interface {
	CreateJob(ctx context.Context) (int64, error)
	UpdateJob(ctx context.Context, jobID int64, payload api.JobPayload) error
	DeleteJob(ctx context.Context, jobID int64) error
	ListJobs(ctx context.Context) ([]models.Job, error)
}

type postingRepository interface {
	Save(ctx context.Context, posting models.Posting) error
	Get(ctx context.Context, jobID int64) (models.Posting, error)
	GetUnfinished(ctx context.Context) ([]models.Posting, error)
	Remove(ctx context.Context, jobID int64) error
}

// JobPostingPipeline creates jobs in two steps: an empty job is allocated first and
// populated afterwards. Every step is recorded, so a job whose populate step failed
// can be repaired with Retry.
type JobPostingPipeline struct {
	client   jobsClient
	postings postingRepository
	bus      EventBus.Bus
}

func NewJobPostingPipeline(client jobsClient, postings postingRepository, bus EventBus.Bus) *JobPostingPipeline {
	return &JobPostingPipeline{client: client, postings: postings, bus: bus}
}

// Validate returns every problem of the form at once.
func (p *JobPostingPipeline) Validate(form models.JobForm) (models.Job, error) {
	return form.Job(0)
}

// Post creates a job. When only the populate step fails, the allocated id is returned
// together with an error matching models.ErrPopulateFailed.
func (p *JobPostingPipeline) Post(ctx context.Context, form models.JobForm) (int64, error) {

	job, err := p.Validate(form)
	if err != nil {
		return 0, err
	}

	jobID, err := p.client.CreateJob(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to allocate job: %v", err)
		metrics.JobPostingsCounter.WithLabelValues("allocation_failed").Inc()
		return 0, fmt.Errorf("%w: %w", models.ErrAllocationFailed, err)
	}

	payload := api.NewJobPayload(job)
	data, err := json.Marshal(payload)
	if err != nil {
		return jobID, fmt.Errorf("failed to encode job %d: %w", jobID, err)
	}

	posting := models.Posting{JobID: jobID, State: models.PostingAllocated, Payload: data}
	p.record(ctx, posting)

	return jobID, p.populate(ctx, posting, payload)
}

// Retry populates an allocated job again from its recorded payload. Populating overwrites
// every field, so retrying a job that is already populated changes nothing.
func (p *JobPostingPipeline) Retry(ctx context.Context, jobID int64) error {

	posting, err := p.postings.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: no posting recorded for job %d", models.ErrNotFound, jobID)
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load posting %d: %v", jobID, err)
		return err
	}

	var payload api.JobPayload
	if err = json.Unmarshal(posting.Payload, &payload); err != nil {
		return fmt.Errorf("recorded payload of job %d is corrupted: %w", jobID, err)
	}

	return p.populate(ctx, posting, payload)
}

// Update overwrites an existing job with the form.
func (p *JobPostingPipeline) Update(ctx context.Context, jobID int64, form models.JobForm) error {

	job, err := form.Job(jobID)
	if err != nil {
		return err
	}

	payload := api.NewJobPayload(job)
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode job %d: %w", jobID, err)
	}

	posting, err := p.postings.Get(ctx, jobID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		posting = models.Posting{JobID: jobID}
	case err != nil:
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load posting of job %d: %v", jobID, err)
		return err
	}
	posting.Payload = data
	return p.populate(ctx, posting, payload)
}

func (p *JobPostingPipeline) Delete(ctx context.Context, jobID int64) error {

	if err := p.client.DeleteJob(ctx, jobID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to delete job %d: %v", jobID, err)
		return err
	}

	if err := p.postings.Remove(ctx, jobID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to remove posting %d: %v", jobID, err)
	}
	return nil
}

// Pending returns the postings that were allocated but never populated.
func (p *JobPostingPipeline) Pending(ctx context.Context) ([]models.Posting, error) {
	postings, err := p.postings.GetUnfinished(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load pending postings: %v", err)
		return nil, err
	}
	return postings, nil
}

// ListActive returns the jobs candidates may apply to.
func (p *JobPostingPipeline) ListActive(ctx context.Context) ([]models.Job, error) {

	jobs, err := p.client.ListJobs(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to list jobs: %v", err)
		return nil, err
	}

	return lo.Filter(jobs, func(job models.Job, _ int) bool {
		if !job.IsListable() {
			log.Debugf("job %d is not listable", job.ID)
			return false
		}
		return true
	}), nil
}

func (p *JobPostingPipeline) populate(ctx context.Context, posting models.Posting, payload api.JobPayload) error {

	posting.Attempts++
	err := p.client.UpdateJob(ctx, posting.JobID, payload)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to populate job %d: %v", posting.JobID, err)
		posting.State = models.PostingFailed
		posting.LastError = err.Error()
	} else {
		posting.State = models.PostingPopulated
		posting.LastError = ""
	}

	p.record(ctx, posting)
	metrics.JobPostingsCounter.WithLabelValues(string(posting.State)).Inc()
	p.bus.Publish(events.JobPostingTopic, events.JobPosting{JobID: posting.JobID, State: posting.State, Error: posting.LastError})

	if err != nil {
		return fmt.Errorf("%w: job %d: %w", models.ErrPopulateFailed, posting.JobID, err)
	}
	return nil
}

func (p *JobPostingPipeline) record(ctx context.Context, posting models.Posting) {
	if err := p.postings.Save(ctx, posting); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record posting %d as %s: %v", posting.JobID, posting.State, err)
	}
}
