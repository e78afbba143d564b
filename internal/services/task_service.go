package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhub/task-manager-api/internal/auth"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("not enough permissions for this task")
	ErrTitleRequired        = errors.New("title is required")
	ErrStatusRequired       = errors.New("status is required")
	ErrInvalidStatus        = errors.New("invalid task status")
)

// TaskService orchestrates task store operations under the access policy.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
}

// UpdateTaskInput represents a partial update; nil fields are untouched
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
}

// ReplaceTaskInput represents a full replacement of a task's fields
type ReplaceTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
}

// ListTasks returns tasks visible to the actor: every task for an
// administrator, only owned tasks otherwise.
func (s *TaskService) ListTasks(actor *models.User, page, pageSize int) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if !actor.IsAdmin {
		filter.OwnerID = &actor.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTask validates the input and persists a task owned by the actor.
// Nothing is persisted when validation fails.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		OwnerID:     actor.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Owner")
}

// GetTask returns a task if the actor may read it. Absence is reported
// before permission, so a missing id is NotFound for everyone.
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(actor, taskID, auth.ActionRead)
	if err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, "Owner")
}

// UpdateTask applies a partial update to a task the actor may modify
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(actor, taskID, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Owner")
}

// ReplaceTask overwrites every mutable field of a task. Title and status
// are mandatory.
func (s *TaskService) ReplaceTask(actor *models.User, taskID uint64, input ReplaceTaskInput) (*models.Task, error) {
	task, err := s.findTask(actor, taskID, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		return nil, ErrStatusRequired
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	task.Title = title
	task.Description = input.Description
	task.Status = input.Status

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to replace task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Owner")
}

// DeleteTask permanently removes a task the actor may delete
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	task, err := s.findTask(actor, taskID, auth.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) findTask(actor *models.User, taskID uint64, action auth.Action) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !auth.CanAccessTask(actor, action, task) {
		return nil, ErrTaskPermissionDenied
	}

	return task, nil
}
