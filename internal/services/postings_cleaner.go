package services

import (
	"context"
	"time"

	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type PostingCleanupRepository interface {
	RemovePopulatedBefore(ctx context.Context, before time.Time) (int64, error)
	CountUnfinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// PostingsCleaner drops finished posting records once a day and reports jobs that stayed
// unpopulated. It never retries them.
type PostingsCleaner struct {
	postings             PostingCleanupRepository
	cron                 *cron.Cron
	expirationTimeInDays int
}

func NewPostingsCleaner(postings PostingCleanupRepository, expirationInDays int) (*PostingsCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	pc := &PostingsCleaner{
		postings:             postings,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
	}

	_, err := pc.cron.AddFunc("0 0 * * *", pc.cleanOldPostings)
	if err != nil {
		return nil, err
	}

	pc.cron.Start()
	log.Infof("postings cleaner started, expiration in days: %d", pc.expirationTimeInDays)
	return pc, nil
}

func (pc *PostingsCleaner) Stop() {
	<-pc.cron.Stop().Done()
}

func (pc *PostingsCleaner) cleanOldPostings() {

	expirationTime := time.Now().Add(-time.Duration(pc.expirationTimeInDays) * 24 * time.Hour)
	ctx := context.Background()

	rowsAffected, err := pc.postings.RemovePopulatedBefore(ctx, expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to clean old postings: %v", err)
	} else {
		log.Infof("old postings were cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}

	orphans, err := pc.postings.CountUnfinishedBefore(ctx, expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to count unfinished postings: %v", err)
		return
	}
	if orphans > 0 {
		log.Warnf("%d allocated jobs were never populated, run `jobmatch postings list` to retry them", orphans)
	}
}
