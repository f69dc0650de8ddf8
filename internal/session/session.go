package session

import (
	"sync/atomic"

	"github.com/maxaizer/jobmatch/internal/domain/models"
)

// Snapshot is an immutable view of who is signed in. A signed out snapshot has every field empty.
type Snapshot struct {
	UID  string
	Role models.Role
	User *models.Principal
}

func (s *Snapshot) SignedIn() bool {
	return s != nil && s.UID != ""
}

// CanRenderPrivileged is false for unknown roles, even for a signed in user.
func (s *Snapshot) CanRenderPrivileged() bool {
	return s.SignedIn() && s.Role.IsPrivileged()
}

var signedOut = &Snapshot{}

// Store holds the current snapshot. Readers call Current, only the Writer returned by New publishes.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// Writer is the only handle able to replace the snapshot.
type Writer struct {
	store *Store
}

func New() (*Store, *Writer) {
	store := &Store{}
	store.current.Store(signedOut)
	return store, &Writer{store: store}
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish replaces the snapshot with a copy of snapshot. The principal is copied too,
// so the caller can't mutate what readers see.
func (w *Writer) Publish(snapshot Snapshot) *Snapshot {
	published := &Snapshot{UID: snapshot.UID, Role: snapshot.Role}
	if snapshot.User != nil {
		user := *snapshot.User
		user.Role = snapshot.Role
		published.User = &user
	}
	w.store.current.Store(published)
	return published
}

func (w *Writer) Clear() *Snapshot {
	w.store.current.Store(signedOut)
	return signedOut
}

func (w *Writer) Store() *Store {
	return w.store
}
