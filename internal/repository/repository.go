package repository

import (
	"github.com/taskhub/task-manager-api/internal/models"
)

// TaskFilter holds filtering and pagination options for listing tasks
type TaskFilter struct {
	// OwnerID restricts the listing to a single owner when non-nil.
	OwnerID  *uint64
	Page     int
	PageSize int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists all fields of a task
	Update(task *models.Task) error

	// Delete permanently removes a task
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (case-insensitive)
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with pagination
	List(page, pageSize int) ([]models.User, int64, error)

	// Update persists all fields of a user
	Update(user *models.User) error

	// Delete permanently removes a user and all tasks they own
	Delete(id uint64) error
}
