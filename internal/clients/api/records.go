package api

import (
	"fmt"
	"time"

	"github.com/maxaizer/jobmatch/internal/domain/models"
)

type nameRecord struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type dobRecord struct {
	Day   int `json:"day" validate:"min=1,max=31"`
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=1,max=9999"`
}

type userRecord struct {
	UID         string     `json:"uid" validate:"required"`
	Name        nameRecord `json:"name"`
	DOB         *dobRecord `json:"dob"`
	IsAdmin     bool       `json:"is_admin"`
	IsOwner     bool       `json:"is_owner"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email" validate:"required"`
}

func (r userRecord) principal() (models.Principal, error) {
	role, err := models.RoleFromFlags(r.IsAdmin, r.IsOwner)
	if err != nil {
		return models.Principal{}, fmt.Errorf("user %s: %w", r.UID, err)
	}

	principal := models.Principal{
		ID:          r.UID,
		FirstName:   r.Name.FirstName,
		LastName:    r.Name.LastName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Role:        role,
	}
	if r.DOB != nil {
		dob, err := models.NewDate(r.DOB.Year, time.Month(r.DOB.Month), r.DOB.Day)
		if err != nil {
			return models.Principal{}, fmt.Errorf("user %s: %w", r.UID, err)
		}
		principal.DateOfBirth = dob
	}
	return principal, nil
}

type updateUserRequest struct {
	UID         string `json:"uid"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DOB         string `json:"dob"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type privilegesRequest struct {
	TargetUID string `json:"target_uid"`
	IsAdmin   bool   `json:"is_admin"`
	IsOwner   bool   `json:"is_owner"`
	AuthUID   string `json:"auth_uid"`
}

type createJobRequest struct {
	JobDescriptionText string `json:"job_description_text"`
}

type createJobResponse struct {
	JobID int64 `json:"job_id" validate:"required"`
}

// JobPayload is the body of the populate request. Dates are already in the wire layout.
type JobPayload struct {
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	Description         string   `json:"description"`
	RequiredSkills      []string `json:"required_skills"`
	ApplicationDeadline string   `json:"application_deadline"`
	Location            string   `json:"location"`
	Salary              float64  `json:"salary"`
	JobType             string   `json:"job_type"`
	Active              bool     `json:"active"`
}

func NewJobPayload(job models.Job) JobPayload {
	return JobPayload{
		Title:               job.Title,
		Company:             job.Company,
		Description:         job.Description,
		RequiredSkills:      append([]string{}, job.RequiredSkills...),
		ApplicationDeadline: job.ApplicationDeadline.WireString(),
		Location:            job.Location,
		Salary:              job.Salary,
		JobType:             string(job.JobType),
		Active:              job.Active,
	}
}

type jobRecord struct {
	JobID               int64    `json:"job_id" validate:"required"`
	Title               string   `json:"title" validate:"required"`
	Company             string   `json:"company" validate:"required"`
	Description         string   `json:"description" validate:"required"`
	RequiredSkills      []string `json:"required_skills" validate:"required,min=1"`
	ApplicationDeadline string   `json:"application_deadline" validate:"required,len=8,numeric"`
	Location            string   `json:"location" validate:"required"`
	Salary              float64  `json:"salary" validate:"gte=0"`
	JobType             string   `json:"job_type" validate:"required,oneof=FULL PART CONT UNKN"`
	Active              bool     `json:"active"`
}

func (r jobRecord) job() (models.Job, error) {
	deadline, err := models.ParseWireDate(r.ApplicationDeadline)
	if err != nil {
		return models.Job{}, fmt.Errorf("job %d: %w", r.JobID, err)
	}
	skills := models.NewSkills(r.RequiredSkills...)
	if len(skills) == 0 {
		return models.Job{}, fmt.Errorf("job %d: no required skills", r.JobID)
	}
	return models.Job{
		ID:                  r.JobID,
		Title:               r.Title,
		Company:             r.Company,
		Description:         r.Description,
		RequiredSkills:      skills,
		ApplicationDeadline: deadline,
		Location:            r.Location,
		Salary:              r.Salary,
		JobType:             models.JobType(r.JobType),
		Active:              r.Active,
	}, nil
}

type createMatchRequest struct {
	UID            string   `json:"uid"`
	JobID          int64    `json:"job_id"`
	SelectedSkills []string `json:"selected_skills"`
}

type matchRecord struct {
	MatchID        int64    `json:"match_id" validate:"required"`
	UID            string   `json:"uid"`
	JobID          int64    `json:"job_id"`
	SelectedSkills []string `json:"selected_skills"`
	Status         string   `json:"status"`
	Job            *struct {
		Title       string `json:"title"`
		Company     string `json:"company"`
		Description string `json:"description"`
	} `json:"job"`
}

// match converts the record. defaultStatus is used when the API omits the status.
func (r matchRecord) match(defaultStatus models.MatchStatus) (models.Match, error) {
	status := defaultStatus
	if r.Status != "" || status == "" {
		parsed, err := models.ToMatchStatus(r.Status)
		if err != nil {
			return models.Match{}, fmt.Errorf("match %d: %w", r.MatchID, err)
		}
		status = parsed
	}

	match := models.Match{
		ID:             r.MatchID,
		UID:            r.UID,
		JobID:          r.JobID,
		SelectedSkills: models.NewSkills(r.SelectedSkills...),
		Status:         status,
	}
	if r.Job != nil {
		match.Job = models.JobSummary{Title: r.Job.Title, Company: r.Job.Company, Description: r.Job.Description}
	}
	return match, nil
}

type feedbackRecord struct {
	FeedbackID   int64  `json:"feedback_id" validate:"required"`
	MatchID      int64  `json:"match_id" validate:"required"`
	FeedbackText string `json:"feedback_text"`
}

type resumeRecord struct {
	Experience []struct {
		Title string `json:"title"`
	} `json:"experience"`
	Skills []string `json:"skills"`
}
