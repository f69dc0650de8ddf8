package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
)

type tokenVerifier interface {
	Verify(token string) (string, error)
}

type identityClient interface {
	GetUser(ctx context.Context, uid string) (models.Principal, error)
	GetPrivileges(ctx context.Context, uid string) (models.Role, error)
}

// IdentityResolver turns a session token into the current principal and role.
// It owns the session writer, so it is the only component that changes the session.
type IdentityResolver struct {
	verifier tokenVerifier
	client   identityClient
	bus      EventBus.Bus
	store    *session.Store
	writer   *session.Writer
	mu       sync.Mutex
}

func NewIdentityResolver(verifier tokenVerifier, client identityClient, bus EventBus.Bus) *IdentityResolver {
	store, writer := session.New()
	return &IdentityResolver{verifier: verifier, client: client, bus: bus, store: store, writer: writer}
}

func (r *IdentityResolver) Session() *session.Store {
	return r.store
}

func (r *IdentityResolver) Current() *session.Snapshot {
	return r.store.Current()
}

// SignIn verifies the token and publishes the resolved session. The previous session
// stays in place when the token is rejected or the principal can't be loaded.
func (r *IdentityResolver) SignIn(ctx context.Context, token string) (*session.Snapshot, error) {

	uid, err := r.verifier.Verify(token)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).Warnf("token rejected: %v", err)
		return r.store.Current(), err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve(ctx, uid)
}

// Refresh re-resolves the principal and role of the current session.
func (r *IdentityResolver) Refresh(ctx context.Context) (*session.Snapshot, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.store.Current()
	if !current.SignedIn() {
		return current, models.ErrUnauthenticated
	}
	return r.resolve(ctx, current.UID)
}

func (r *IdentityResolver) SignOut() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Current().SignedIn() {
		return
	}
	r.writer.Clear()
	r.bus.Publish(events.SessionChangedTopic, events.SessionChanged{})
}

func (r *IdentityResolver) resolve(ctx context.Context, uid string) (*session.Snapshot, error) {

	user, err := r.client.GetUser(ctx, uid)
	if err != nil {
		if models.StatusCode(err) == http.StatusNotFound {
			return r.store.Current(), fmt.Errorf("%w: user %s is not registered", models.ErrUnauthenticated, uid)
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to load user %s: %v", uid, err)
		return r.store.Current(), err
	}

	role, err := r.client.GetPrivileges(ctx, uid)
	if err != nil {
		role = models.RoleUnknown
		errorType := logger.ErrorTypeApi
		if errors.Is(err, models.ErrInvalidRoleCombination) {
			errorType = logger.ErrorTypeAuth
		}
		log.WithField(logger.ErrorTypeField, errorType).Errorf("failed to resolve role of %s: %v", uid, err)
	}

	snapshot := r.writer.Publish(session.Snapshot{UID: uid, Role: role, User: &user})
	r.bus.Publish(events.SessionChangedTopic, events.SessionChanged{UID: uid, Role: role})
	return snapshot, nil
}
