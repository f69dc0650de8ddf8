package events

import "github.com/maxaizer/jobmatch/internal/domain/models"

var JobPostingTopic = "JobPostingEvent"

type JobPosting struct {
	JobID int64
	State models.PostingState
	Error string
}
