package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

// CreateJob allocates an empty job and returns its id.
func (c *Client) CreateJob(ctx context.Context) (int64, error) {
	const op = "create job"

	body, err := c.sendRequest(ctx, op, http.MethodPost, "/jobs", createJobRequest{})
	if err != nil {
		return 0, err
	}

	var response createJobResponse
	if err := c.decode(op, body, &response); err != nil {
		return 0, err
	}
	return response.JobID, nil
}

// UpdateJob overwrites every field of an allocated job.
func (c *Client) UpdateJob(ctx context.Context, jobID int64, payload JobPayload) error {
	_, err := c.sendRequest(ctx, "update job", http.MethodPut, fmt.Sprintf("/jobs/%d", jobID), payload)
	return err
}

func (c *Client) DeleteJob(ctx context.Context, jobID int64) error {
	_, err := c.sendRequest(ctx, "delete job", http.MethodDelete, fmt.Sprintf("/jobs/%d", jobID), nil)
	return err
}

// ListJobs returns the decodable jobs. Incomplete records, such as jobs that were allocated
// but never populated, are dropped one by one instead of failing the whole listing.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	const op = "list jobs"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/jobs", nil)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	jobs := make([]models.Job, 0, len(raw))
	for _, item := range raw {
		var record jobRecord
		if err := c.decode(op, item, &record); err != nil {
			log.Debugf("skipping job record: %v", err)
			continue
		}
		job, err := record.job()
		if err != nil {
			log.Debugf("skipping job record: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
