package models

import (
	"fmt"

	"github.com/samber/lo"
)

type MatchStatus string

const (
	StatusApplied            MatchStatus = "Applied"
	StatusInterviewScheduled MatchStatus = "Interview Scheduled"
	StatusRejected           MatchStatus = "Rejected"
)

// StatusFilter selects matches by status. FilterAll keeps every match.
type StatusFilter string

const FilterAll StatusFilter = "All"

var StatusFilters = []StatusFilter{
	FilterAll,
	StatusFilter(StatusApplied),
	StatusFilter(StatusInterviewScheduled),
	StatusFilter(StatusRejected),
}

func ToMatchStatus(s string) (MatchStatus, error) {
	switch MatchStatus(s) {
	case StatusApplied, StatusInterviewScheduled, StatusRejected:
		return MatchStatus(s), nil
	default:
		return "", fmt.Errorf("invalid match status: %q", s)
	}
}

func ToStatusFilter(s string) (StatusFilter, error) {
	if s == string(FilterAll) {
		return FilterAll, nil
	}
	status, err := ToMatchStatus(s)
	if err != nil {
		return "", err
	}
	return StatusFilter(status), nil
}

// JobSummary is the part of a job that is embedded into a match listing.
type JobSummary struct {
	Title       string
	Company     string
	Description string
}

type Match struct {
	ID             int64
	UID            string
	JobID          int64
	SelectedSkills Skills
	Status         MatchStatus
	Job            JobSummary
}

type Feedback struct {
	ID      int64
	MatchID int64
	Text    string
}

const NoFeedbackMessage = "No feedback found"

// Matches is the candidate's visible application list in the order it was fetched.
type Matches []Match

// Filter returns a new list with the matches of the given status. It never modifies m.
func (m Matches) Filter(filter StatusFilter) Matches {
	if filter == FilterAll {
		return append(Matches{}, m...)
	}
	return lo.Filter(m, func(item Match, _ int) bool {
		return StatusFilter(item.Status) == filter
	})
}

// Without returns a new list without the element at index, keeping the order of the rest.
func (m Matches) Without(index int) (Matches, error) {
	if index < 0 || index >= len(m) {
		return m, fmt.Errorf("match index %d out of range [0, %d)", index, len(m))
	}
	result := make(Matches, 0, len(m)-1)
	result = append(result, m[:index]...)
	return append(result, m[index+1:]...), nil
}

func (m Matches) IndexOf(matchID int64) int {
	_, index, found := lo.FindIndexOf(m, func(item Match) bool { return item.ID == matchID })
	if !found {
		return -1
	}
	return index
}
