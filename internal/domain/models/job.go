package models

import (
	"fmt"
	"strconv"
	"strings"
)

type JobType string

const (
	JobTypeFull     JobType = "FULL"
	JobTypePart     JobType = "PART"
	JobTypeContract JobType = "CONT"
	JobTypeUnknown  JobType = "UNKN"
)

func ToJobType(s string) (JobType, error) {
	switch JobType(strings.ToUpper(strings.TrimSpace(s))) {
	case JobTypeFull:
		return JobTypeFull, nil
	case JobTypePart:
		return JobTypePart, nil
	case JobTypeContract:
		return JobTypeContract, nil
	case JobTypeUnknown:
		return JobTypeUnknown, nil
	default:
		return "", fmt.Errorf("invalid job type: %q", s)
	}
}

type Job struct {
	ID                  int64
	Title               string
	Company             string
	Description         string
	RequiredSkills      Skills
	ApplicationDeadline Date
	Location            string
	Salary              float64
	JobType             JobType
	Active              bool
}

// IsComplete reports whether every field required for candidates is filled.
func (j Job) IsComplete() bool {
	return j.Title != "" && j.Company != "" && j.Description != "" && len(j.RequiredSkills) > 0 &&
		!j.ApplicationDeadline.IsZero() && j.Location != "" && j.Salary >= 0 && j.JobType != ""
}

// IsListable reports whether candidates may see the job.
func (j Job) IsListable() bool {
	return j.Active && j.IsComplete()
}

// JobForm is the raw admin input. Salary is text as typed, deadline is YYYY-MM-DD.
type JobForm struct {
	Title               string `validate:"required" label:"Job title"`
	Company             string `validate:"required" label:"Company"`
	Description         string `validate:"required" label:"Description"`
	RequiredSkills      string `validate:"required" label:"Required skills"`
	ApplicationDeadline string `validate:"required" label:"Application deadline"`
	Location            string `validate:"required" label:"Location"`
	Salary              string `validate:"required" label:"Salary"`
	JobType             string `label:"Job type"`
	Active              bool
}

var jobRequiredMessages = map[string]string{
	"Required skills": "Required skills are required",
}

func NewJobForm() JobForm {
	return JobForm{JobType: string(JobTypeFull), Active: true}
}

// Job validates the form and builds the job content. Every problem is reported,
// missing fields first and format problems after them.
func (f JobForm) Job(id int64) (Job, error) {
	f = f.trimmed()
	problems := formProblems(f, jobRequiredMessages)

	job := Job{
		ID:          id,
		Title:       f.Title,
		Company:     f.Company,
		Description: f.Description,
		Location:    f.Location,
		Active:      f.Active,
		JobType:     JobTypeFull,
	}

	if f.RequiredSkills != "" {
		job.RequiredSkills = ParseSkills(f.RequiredSkills)
		if len(job.RequiredSkills) == 0 {
			problems = append(problems, "Required skills must contain at least one skill")
		}
	}

	if f.ApplicationDeadline != "" {
		deadline, err := ParseFormDate(f.ApplicationDeadline)
		if err != nil {
			problems = append(problems, "Application deadline must be a valid YYYY-MM-DD date")
		}
		job.ApplicationDeadline = deadline
	}

	if f.Salary != "" {
		salary, err := strconv.ParseFloat(f.Salary, 64)
		switch {
		case err != nil:
			problems = append(problems, "Salary must be a number")
		case salary < 0:
			problems = append(problems, "Salary must not be negative")
		default:
			job.Salary = salary
		}
	}

	if f.JobType != "" {
		jobType, err := ToJobType(f.JobType)
		if err != nil {
			problems = append(problems, "Job type must be one of FULL, PART, CONT, UNKN")
		}
		job.JobType = jobType
	}

	if len(problems) > 0 {
		return Job{}, NewValidationError(problems...)
	}
	return job, nil
}

func (f JobForm) trimmed() JobForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Company = strings.TrimSpace(f.Company)
	f.Description = strings.TrimSpace(f.Description)
	f.RequiredSkills = strings.TrimSpace(f.RequiredSkills)
	f.ApplicationDeadline = strings.TrimSpace(f.ApplicationDeadline)
	f.Location = strings.TrimSpace(f.Location)
	f.Salary = strings.TrimSpace(f.Salary)
	f.JobType = strings.TrimSpace(f.JobType)
	return f
}
