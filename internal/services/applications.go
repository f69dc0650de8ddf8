package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/session"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

type applicationsClient interface {
	HasResume(ctx context.Context, uid string) (bool, error)
	CreateMatch(ctx context.Context, uid string, jobID int64, skills models.Skills) (models.Match, error)
	ListMatches(ctx context.Context, uid string) (models.Matches, error)
	DeleteMatch(ctx context.Context, matchID int64) error
	ListFeedback(ctx context.Context, matchID int64) ([]models.Feedback, error)
}

type ApplicationService struct {
	client  applicationsClient
	bus     EventBus.Bus
	resumes *gocache.Cache
}

func NewApplicationService(client applicationsClient, bus EventBus.Bus) *ApplicationService {
	return &ApplicationService{
		client:  client,
		bus:     bus,
		resumes: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Apply creates a match for the job. Candidates without a resume get models.ErrMissingResume
// and no match is requested.
func (s *ApplicationService) Apply(ctx context.Context, actor *session.Snapshot, job models.Job,
	selection *models.SkillSelection) (models.Match, error) {

	if !actor.SignedIn() {
		return models.Match{}, models.ErrUnauthenticated
	}

	hasResume, err := s.hasResume(ctx, actor.UID)
	if err != nil {
		metrics.ApplicationsCounter.WithLabelValues("apply", "error").Inc()
		return models.Match{}, err
	}
	if !hasResume {
		metrics.ApplicationsCounter.WithLabelValues("apply", "missing_resume").Inc()
		return models.Match{}, models.ErrMissingResume
	}

	var selected models.Skills
	if selection != nil {
		selected = selection.Selected()
	}
	if !selected.IsSubsetOf(job.RequiredSkills) {
		return models.Match{}, models.NewValidationError("Selected skills must be required by the job")
	}

	match, err := s.client.CreateMatch(ctx, actor.UID, job.ID, selected)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to apply to job %d: %v", job.ID, err)
		metrics.ApplicationsCounter.WithLabelValues("apply", "error").Inc()
		return models.Match{}, err
	}

	if match.Job == (models.JobSummary{}) {
		match.Job = models.JobSummary{Title: job.Title, Company: job.Company, Description: job.Description}
	}
	metrics.ApplicationsCounter.WithLabelValues("apply", "ok").Inc()
	return match, nil
}

func (s *ApplicationService) ListMatches(ctx context.Context, actor *session.Snapshot) (models.Matches, error) {

	if !actor.SignedIn() {
		return nil, models.ErrUnauthenticated
	}

	matches, err := s.client.ListMatches(ctx, actor.UID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to list matches: %v", err)
		return nil, err
	}
	return matches, nil
}

// Withdraw deletes the match at index after confirm returns true. The returned list never
// contains the withdrawn match; on any failure or a declined confirmation it is matches itself.
func (s *ApplicationService) Withdraw(ctx context.Context, actor *session.Snapshot, matches models.Matches,
	index int, confirm func() bool) (models.Matches, error) {

	if !actor.SignedIn() {
		return matches, models.ErrUnauthenticated
	}

	if index < 0 || index >= len(matches) {
		return matches, fmt.Errorf("%w: no application number %d", models.ErrNotFound, index+1)
	}

	if confirm != nil && !confirm() {
		metrics.ApplicationsCounter.WithLabelValues("withdraw", "declined").Inc()
		return matches, nil
	}

	match := matches[index]
	if err := s.client.DeleteMatch(ctx, match.ID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to withdraw match %d: %v", match.ID, err)
		metrics.ApplicationsCounter.WithLabelValues("withdraw", "error").Inc()
		return matches, err
	}

	remaining, err := matches.Without(index)
	if err != nil {
		return matches, err
	}

	metrics.ApplicationsCounter.WithLabelValues("withdraw", "ok").Inc()
	s.bus.Publish(events.MatchWithdrawnTopic, events.MatchWithdrawn{UID: actor.UID, MatchID: match.ID})
	return remaining, nil
}

// ListFeedback returns an empty slice when the match has no feedback yet.
func (s *ApplicationService) ListFeedback(ctx context.Context, matchID int64) ([]models.Feedback, error) {

	feedback, err := s.client.ListFeedback(ctx, matchID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to load feedback of %d: %v", matchID, err)
		return nil, err
	}
	if feedback == nil {
		feedback = []models.Feedback{}
	}
	return feedback, nil
}

// hasResume caches only positive answers, so an uploaded resume is seen on the next attempt.
func (s *ApplicationService) hasResume(ctx context.Context, uid string) (bool, error) {

	if _, found := s.resumes.Get(uid); found {
		return true, nil
	}

	hasResume, err := s.client.HasResume(ctx, uid)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to check resume of %s: %v", uid, err)
		return false, err
	}

	if hasResume {
		s.resumes.Set(uid, true, gocache.DefaultExpiration)
	}
	return hasResume, nil
}
