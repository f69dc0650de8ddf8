package events

import "github.com/maxaizer/jobmatch/internal/domain/models"

var RoleChangedTopic = "RoleChangedEvent"

type RoleChanged struct {
	ActorUID  string
	TargetUID string
	Role      models.Role
}
