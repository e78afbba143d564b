package auth

import (
	"github.com/taskhub/task-manager-api/internal/models"
)

// Action is an operation an actor attempts on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// CanAccessTask decides whether actor may perform action on task.
// Administrators are unrestricted; everyone else is scoped to tasks they
// own. Inactive accounts are denied regardless of role.
func CanAccessTask(actor *models.User, _ Action, task *models.Task) bool {
	if actor == nil || task == nil {
		return false
	}
	if !actor.IsActive {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	return task.OwnerID == actor.ID
}

// CanAccessUser decides whether actor may perform action on the user
// record with targetID. Non-administrators may only read their own
// record; listing and mutating other users is administrator-only.
func CanAccessUser(actor *models.User, action Action, targetID uint64) bool {
	if actor == nil {
		return false
	}
	if !actor.IsActive {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	return action == ActionRead && targetID == actor.ID
}
