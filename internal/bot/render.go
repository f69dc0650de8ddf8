package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maxaizer/jobmatch/internal/domain/models"
)

const requestTimeout = 30 * time.Second

const tryLaterMessage = "Something went wrong, please try again later."

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func formatJob(number int, job models.Job) string {
	return fmt.Sprintf("%d. %s at %s\n%s · %s · %s · apply until %s\nSkills: %s",
		number, job.Title, job.Company, job.Location, formatSalary(job.Salary), job.JobType,
		job.ApplicationDeadline, job.RequiredSkills)
}

func formatJobs(jobs []models.Job) string {
	lines := make([]string, 0, len(jobs))
	for i, job := range jobs {
		lines = append(lines, formatJob(i+1, job))
	}
	return strings.Join(lines, "\n\n")
}

func formatSalary(salary float64) string {
	return strconv.FormatFloat(salary, 'f', -1, 64)
}

func formatMatches(matches models.Matches, filter models.StatusFilter) string {

	if len(matches) == 0 {
		if filter == models.FilterAll {
			return "You haven't applied to any job yet."
		}
		return fmt.Sprintf("You have no applications with status %q.", filter)
	}

	lines := make([]string, 0, len(matches))
	for i, match := range matches {
		line := fmt.Sprintf("%d. %s at %s: %s", i+1, match.Job.Title, match.Job.Company, match.Status)
		if len(match.SelectedSkills) > 0 {
			line += fmt.Sprintf("\nYour skills: %s", match.SelectedSkills)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatFeedback(feedback []models.Feedback) string {
	if len(feedback) == 0 {
		return models.NoFeedbackMessage
	}
	lines := make([]string, 0, len(feedback))
	for _, f := range feedback {
		lines = append(lines, "• "+f.Text)
	}
	return strings.Join(lines, "\n")
}

func formatPostings(postings []models.Posting) string {
	lines := make([]string, 0, len(postings))
	for i, posting := range postings {
		line := fmt.Sprintf("%d. Job %d: %s, attempts: %d", i+1, posting.JobID, posting.State, posting.Attempts)
		if posting.LastError != "" {
			line += "\nLast error: " + posting.LastError
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// validationMessage lists every problem of a rejected form, or returns "" for other errors.
func validationMessage(err error) string {
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		return ""
	}
	return "Please fix the following:\n- " + strings.Join(validationErr.Problems, "\n- ")
}
