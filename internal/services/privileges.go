package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/session"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type privilegesClient interface {
	GetRoster(ctx context.Context, actorUID string) ([]models.Principal, error)
	GetPrivileges(ctx context.Context, uid string) (models.Role, error)
	UpdatePrivileges(ctx context.Context, actorUID, targetUID string, isAdmin, isOwner bool) error
}

// PrivilegeManager looks users up and changes their roles.
type PrivilegeManager struct {
	client privilegesClient
	bus    EventBus.Bus
	roster *gocache.Cache
}

func NewPrivilegeManager(client privilegesClient, bus EventBus.Bus, rosterTTL time.Duration) (*PrivilegeManager, error) {

	if rosterTTL <= 0 {
		rosterTTL = time.Minute
	}

	m := &PrivilegeManager{
		client: client,
		bus:    bus,
		roster: gocache.New(rosterTTL, 2*rosterTTL),
	}
	if err := bus.Subscribe(events.RoleChangedTopic, m.onRoleChanged); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadRoster returns the users visible to the actor. Results are cached per actor
// until any role changes.
func (m *PrivilegeManager) LoadRoster(ctx context.Context, actor *session.Snapshot) ([]models.Principal, error) {

	if !actor.SignedIn() {
		return nil, models.ErrUnauthenticated
	}

	if cached, found := m.roster.Get(actor.UID); found {
		return cached.([]models.Principal), nil
	}

	roster, err := m.client.GetRoster(ctx, actor.UID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to load roster: %v", err)
		return nil, err
	}

	m.roster.Set(actor.UID, roster, gocache.DefaultExpiration)
	return roster, nil
}

// CurrentRole returns the stored role of uid, shown to owners and admins before a role change.
func (m *PrivilegeManager) CurrentRole(ctx context.Context, uid string) (models.Role, error) {
	role, err := m.client.GetPrivileges(ctx, uid)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to get role of %s: %v", uid, err)
		return models.RoleUnknown, err
	}
	return role, nil
}

// Promote sets the role of the target user. The request is validated before anything is sent.
func (m *PrivilegeManager) Promote(ctx context.Context, actor *session.Snapshot, targetUID string, role models.Role) error {

	if !actor.SignedIn() {
		return models.ErrUnauthenticated
	}

	var problems []string
	if strings.TrimSpace(targetUID) == "" {
		problems = append(problems, "User is required")
	}
	if !role.IsKnown() {
		problems = append(problems, "Role must be one of user, admin, owner")
	}
	if len(problems) > 0 {
		return models.NewValidationError(problems...)
	}

	if !actor.Role.CanGrant(role) {
		return errors.Wrapf(models.ErrPrivilegeDenied, "%s can't grant %s", actor.Role, role)
	}

	isAdmin, isOwner := role.Flags()
	if err := m.client.UpdatePrivileges(ctx, actor.UID, targetUID, isAdmin, isOwner); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).
			Errorf("failed to set role %s for %s: %v", role, targetUID, err)
		return err
	}

	metrics.RoleChangesCounter.WithLabelValues(role.String()).Inc()
	m.bus.Publish(events.RoleChangedTopic, events.RoleChanged{ActorUID: actor.UID, TargetUID: targetUID, Role: role})
	return nil
}

// SetFlags is Promote expressed with the wire flags. Both flags set is rejected outright.
func (m *PrivilegeManager) SetFlags(ctx context.Context, actor *session.Snapshot, targetUID string, isAdmin, isOwner bool) error {
	role, err := models.RoleFromFlags(isAdmin, isOwner)
	if err != nil {
		return err
	}
	return m.Promote(ctx, actor, targetUID, role)
}

func (m *PrivilegeManager) onRoleChanged(_ events.RoleChanged) {
	m.roster.Flush()
}

func FindByEmail(roster []models.Principal, email string) (models.Principal, error) {
	email = strings.TrimSpace(email)
	return find(roster, func(p models.Principal) bool { return email != "" && p.Email == email })
}

func FindByUID(roster []models.Principal, uid string) (models.Principal, error) {
	uid = strings.TrimSpace(uid)
	return find(roster, func(p models.Principal) bool { return uid != "" && p.ID == uid })
}

func find(roster []models.Principal, predicate func(models.Principal) bool) (models.Principal, error) {
	principal, found := lo.Find(roster, predicate)
	if !found {
		return models.Principal{}, fmt.Errorf("%w: %s", models.ErrNotFound, models.UserNotFoundMessage)
	}
	return principal, nil
}
