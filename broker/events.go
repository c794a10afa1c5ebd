package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	TaskCreated   EventType = "task.created"
	TaskUpdated   EventType = "task.updated"
	TaskDeleted   EventType = "task.deleted"
	TaskReordered EventType = "task.reordered"

	TeamCreated         EventType = "team.created"
	TeamUpdated         EventType = "team.updated"
	TeamDeleted         EventType = "team.deleted"
	TeamJoinCodeRotated EventType = "team.join_code_regenerated"
	TeamMemberJoined    EventType = "team.member_joined"
	TeamMemberLeft      EventType = "team.member_left"
	TeamMemberRemoved   EventType = "team.member_removed"

	UserCreated EventType = "user.created"
)
