package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/maxaizer/jobmatch/internal/domain/models"
)

func (c *Client) CreateMatch(ctx context.Context, uid string, jobID int64, skills models.Skills) (models.Match, error) {
	const op = "create match"

	request := createMatchRequest{UID: uid, JobID: jobID, SelectedSkills: append([]string{}, skills...)}
	body, err := c.sendRequest(ctx, op, http.MethodPost, "/matches/", request)
	if err != nil {
		return models.Match{}, err
	}

	var record matchRecord
	if err := c.decode(op, body, &record); err != nil {
		return models.Match{}, err
	}
	match, err := record.match(models.StatusApplied)
	if err != nil {
		return models.Match{}, &models.TransportError{Op: op, Err: err}
	}
	if match.UID == "" {
		match.UID = uid
	}
	if match.JobID == 0 {
		match.JobID = jobID
	}
	if len(match.SelectedSkills) == 0 {
		match.SelectedSkills = models.NewSkills(skills...)
	}
	return match, nil
}

// ListMatches returns the candidate's matches in the order the API returned them.
func (c *Client) ListMatches(ctx context.Context, uid string) (models.Matches, error) {
	const op = "list matches"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/matches/?uid="+url.QueryEscape(uid), nil)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	matches := make(models.Matches, 0, len(raw))
	for _, item := range raw {
		var record matchRecord
		if err := c.decode(op, item, &record); err != nil {
			return nil, err
		}
		match, err := record.match("")
		if err != nil {
			return nil, &models.TransportError{Op: op, Err: err}
		}
		if match.UID == "" {
			match.UID = uid
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (c *Client) DeleteMatch(ctx context.Context, matchID int64) error {
	_, err := c.sendRequest(ctx, "delete match", http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), nil)
	return err
}

// ListFeedback returns the latest feedback entries of a match. An empty slice is a valid answer.
func (c *Client) ListFeedback(ctx context.Context, matchID int64) ([]models.Feedback, error) {
	const op = "list feedback"

	path := fmt.Sprintf("/feedback/?match_id=%d&all_feedback=false", matchID)
	body, err := c.sendRequest(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var records []feedbackRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	feedback := make([]models.Feedback, 0, len(records))
	for _, record := range records {
		if err := c.validate.Struct(record); err != nil {
			return nil, &models.TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
		}
		feedback = append(feedback, models.Feedback{ID: record.FeedbackID, MatchID: record.MatchID, Text: record.FeedbackText})
	}
	return feedback, nil
}
