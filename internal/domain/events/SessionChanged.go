package events

import "github.com/maxaizer/jobmatch/internal/domain/models"

var SessionChangedTopic = "SessionChangedEvent"

// SessionChanged is published after a new session snapshot became visible.
// UID is empty after sign out.
type SessionChanged struct {
	UID  string
	Role models.Role
}
