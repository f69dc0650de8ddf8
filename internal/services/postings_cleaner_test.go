package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPostingCleanup struct {
	mock.Mock
}

func (m *mockPostingCleanup) RemovePopulatedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostingCleanup) CountUnfinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func Test_NewPostingsCleaner_WhenExpirationNotPositive_ShouldFail(t *testing.T) {
	_, err := NewPostingsCleaner(&mockPostingCleanup{}, 0)
	assert.Error(t, err)
}

func Test_PostingsCleaner_ShouldUseExpirationTime(t *testing.T) {

	repo := &mockPostingCleanup{}
	olderThanWeek := mock.MatchedBy(func(before time.Time) bool {
		return time.Since(before) >= 7*24*time.Hour && time.Since(before) < 8*24*time.Hour
	})
	repo.On("RemovePopulatedBefore", mock.Anything, olderThanWeek).Return(int64(3), nil)
	repo.On("CountUnfinishedBefore", mock.Anything, olderThanWeek).Return(int64(1), nil)

	cleaner, err := NewPostingsCleaner(repo, 7)
	assert.NoError(t, err)
	defer cleaner.Stop()

	cleaner.cleanOldPostings()
	repo.AssertExpectations(t)
}
