package services

import (
	"context"
	"time"

	"github.com/maxaizer/jobmatch/internal/clients/api"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// mockApi implements every client interface of the package.
type mockApi struct {
	mock.Mock
}

func (m *mockApi) GetUser(ctx context.Context, uid string) (models.Principal, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(models.Principal), args.Error(1)
}

func (m *mockApi) GetPrivileges(ctx context.Context, uid string) (models.Role, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *mockApi) GetRoster(ctx context.Context, actorUID string) ([]models.Principal, error) {
	args := m.Called(ctx, actorUID)
	roster, _ := args.Get(0).([]models.Principal)
	return roster, args.Error(1)
}

func (m *mockApi) UpdatePrivileges(ctx context.Context, actorUID, targetUID string, isAdmin, isOwner bool) error {
	return m.Called(ctx, actorUID, targetUID, isAdmin, isOwner).Error(0)
}

func (m *mockApi) UpdateUser(ctx context.Context, user models.Principal) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockApi) CreateJob(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockApi) UpdateJob(ctx context.Context, jobID int64, payload api.JobPayload) error {
	return m.Called(ctx, jobID, payload).Error(0)
}

func (m *mockApi) DeleteJob(ctx context.Context, jobID int64) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *mockApi) ListJobs(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *mockApi) HasResume(ctx context.Context, uid string) (bool, error) {
	args := m.Called(ctx, uid)
	return args.Bool(0), args.Error(1)
}

func (m *mockApi) CreateMatch(ctx context.Context, uid string, jobID int64, skills models.Skills) (models.Match, error) {
	args := m.Called(ctx, uid, jobID, skills)
	return args.Get(0).(models.Match), args.Error(1)
}

func (m *mockApi) ListMatches(ctx context.Context, uid string) (models.Matches, error) {
	args := m.Called(ctx, uid)
	matches, _ := args.Get(0).(models.Matches)
	return matches, args.Error(1)
}

func (m *mockApi) DeleteMatch(ctx context.Context, matchID int64) error {
	return m.Called(ctx, matchID).Error(0)
}

func (m *mockApi) ListFeedback(ctx context.Context, matchID int64) ([]models.Feedback, error) {
	args := m.Called(ctx, matchID)
	feedback, _ := args.Get(0).([]models.Feedback)
	return feedback, args.Error(1)
}

// memoryPostings is an in-memory posting repository.
type memoryPostings struct {
	postings map[int64]models.Posting
}

func newMemoryPostings() *memoryPostings {
	return &memoryPostings{postings: map[int64]models.Posting{}}
}

func (m *memoryPostings) Save(_ context.Context, posting models.Posting) error {
	posting.UpdatedAt = time.Now()
	m.postings[posting.JobID] = posting
	return nil
}

func (m *memoryPostings) Get(_ context.Context, jobID int64) (models.Posting, error) {
	posting, ok := m.postings[jobID]
	if !ok {
		return models.Posting{}, models.ErrNotFound
	}
	return posting, nil
}

func (m *memoryPostings) GetUnfinished(_ context.Context) ([]models.Posting, error) {
	var result []models.Posting
	for _, posting := range m.postings {
		if posting.State != models.PostingPopulated {
			result = append(result, posting)
		}
	}
	return result, nil
}

func (m *memoryPostings) Remove(_ context.Context, jobID int64) error {
	delete(m.postings, jobID)
	return nil
}

func signedIn(uid string, role models.Role) *session.Snapshot {
	return &session.Snapshot{UID: uid, Role: role, User: &models.Principal{ID: uid, Role: role}}
}
