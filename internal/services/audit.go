package services

import (
	"errors"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

// SubscribeAudit writes every domain event to the log.
func SubscribeAudit(bus EventBus.Bus) error {
	return errors.Join(
		bus.Subscribe(events.SessionChangedTopic, auditSessionChanged),
		bus.Subscribe(events.RoleChangedTopic, auditRoleChanged),
		bus.Subscribe(events.JobPostingTopic, auditJobPosting),
		bus.Subscribe(events.MatchWithdrawnTopic, auditMatchWithdrawn),
	)
}

func auditSessionChanged(event events.SessionChanged) {
	if event.UID == "" {
		log.Info("session closed")
		return
	}
	log.WithField("uid", event.UID).Infof("session opened with role %s", event.Role)
}

func auditRoleChanged(event events.RoleChanged) {
	log.WithFields(log.Fields{"actor": event.ActorUID, "target": event.TargetUID}).
		Infof("role changed to %s", event.Role)
}

func auditJobPosting(event events.JobPosting) {
	entry := log.WithField("job_id", event.JobID)
	if event.State == models.PostingFailed {
		entry.Warnf("job details weren't saved: %s", event.Error)
		return
	}
	entry.Infof("job posting is %s", event.State)
}

func auditMatchWithdrawn(event events.MatchWithdrawn) {
	log.WithFields(log.Fields{"uid": event.UID, "match_id": event.MatchID}).Info("application withdrawn")
}
