package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/taskhub/task-manager-api/internal/auth"
	"github.com/taskhub/task-manager-api/internal/database"
	"github.com/taskhub/task-manager-api/internal/dto"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	tokens *auth.TokenManager
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))
	suite.db = db

	hasher := auth.NewPasswordHasher()
	suite.tokens = auth.NewTokenManager("test-secret", 30*time.Minute)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authService := services.NewAuthService(userRepo, hasher, suite.tokens)
	taskService := services.NewTaskService(taskRepo)
	handler := NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	tasks := suite.router.Group("/api/v1/tasks")
	tasks.Use(middleware.RequireAuth(suite.tokens, authService))
	{
		tasks.GET("/", handler.ListTasks)
		tasks.POST("/", handler.CreateTask)
		tasks.GET("/:id", handler.GetTask)
		tasks.PUT("/:id", handler.ReplaceTask)
		tasks.PATCH("/:id", handler.UpdateTask)
		tasks.DELETE("/:id", handler.DeleteTask)
	}
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helpers

func (suite *TaskHandlerTestSuite) createTestUser(email string, isAdmin bool) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "digest",
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, ownerID uint64) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		Status:      models.TaskStatusTodo,
		OwnerID:     ownerID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) request(method, url string, body any, actor *models.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	if actor != nil {
		token, err := suite.tokens.Issue(actor.ID)
		suite.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) listTitles(actor *models.User) []string {
	w := suite.request(http.MethodGet, "/api/v1/tasks/", nil, actor)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	titles := make([]string, len(response.Tasks))
	for i, task := range response.Tasks {
		titles[i] = task.Title
	}
	return titles
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Tests

func (suite *TaskHandlerTestSuite) TestOwnerAndAdminListingScenario() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", true)
	suite.createTestTask("Bob's own task", bob.ID)

	// alice creates a task and sees only her own
	w := suite.request(http.MethodPost, "/api/v1/tasks/", gin.H{"title": "Buy milk"}, alice)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal(alice.ID, created.OwnerID)
	suite.Equal(models.TaskStatusTodo, created.Status)

	suite.Equal([]string{"Buy milk"}, suite.listTitles(alice))

	// admin bob sees tasks from all users
	suite.ElementsMatch([]string{"Buy milk", "Bob's own task"}, suite.listTitles(bob))

	// bob deletes alice's task; her next listing is empty
	w = suite.request(http.MethodDelete, "/api/v1/tasks/"+formatID(created.ID), nil, bob)
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.Empty(suite.listTitles(alice))
}

func (suite *TaskHandlerTestSuite) TestNonOwnerIsForbidden() {
	alice := suite.createTestUser("alice@example.com", false)
	carol := suite.createTestUser("carol@example.com", false)
	task := suite.createTestTask("Alice's task", alice.ID)

	url := "/api/v1/tasks/" + formatID(task.ID)

	suite.Equal(http.StatusForbidden, suite.request(http.MethodGet, url, nil, carol).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodPatch, url, gin.H{"title": "stolen"}, carol).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodPut, url, gin.H{"title": "stolen", "status": "done"}, carol).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodDelete, url, nil, carol).Code)

	// the task is untouched
	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Equal("Alice's task", stored.Title)
}

func (suite *TaskHandlerTestSuite) TestGetTaskNotFound() {
	alice := suite.createTestUser("alice@example.com", false)

	w := suite.request(http.MethodGet, "/api/v1/tasks/9999", nil, alice)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskInvalidStatus() {
	alice := suite.createTestUser("alice@example.com", false)

	w := suite.request(http.MethodPost, "/api/v1/tasks/", gin.H{"title": "Bad", "status": "bogus"}, alice)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskEmptyTitle() {
	alice := suite.createTestUser("alice@example.com", false)

	suite.Equal(http.StatusUnprocessableEntity,
		suite.request(http.MethodPost, "/api/v1/tasks/", gin.H{"title": ""}, alice).Code)
	suite.Equal(http.StatusUnprocessableEntity,
		suite.request(http.MethodPost, "/api/v1/tasks/", gin.H{"description": "no title"}, alice).Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskPartial() {
	alice := suite.createTestUser("alice@example.com", false)
	task := suite.createTestTask("Original", alice.ID)
	url := "/api/v1/tasks/" + formatID(task.ID)

	// a status-only patch leaves the other fields alone
	w := suite.request(http.MethodPatch, url, gin.H{"status": "in_progress"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("Original", updated.Title)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	// unknown status values are rejected
	w = suite.request(http.MethodPatch, url, gin.H{"status": "archived"}, alice)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	// a blank title patch is rejected
	w = suite.request(http.MethodPatch, url, gin.H{"title": "   "}, alice)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReplaceTaskRequiresMandatoryFields() {
	alice := suite.createTestUser("alice@example.com", false)
	task := suite.createTestTask("Original", alice.ID)
	url := "/api/v1/tasks/" + formatID(task.ID)

	// missing status fails the full replace
	w := suite.request(http.MethodPut, url, gin.H{"title": "New title"}, alice)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodPut, url, gin.H{"title": "New title", "status": "done"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code)

	var replaced dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &replaced))
	suite.Equal("New title", replaced.Title)
	suite.Equal(models.TaskStatusDone, replaced.Status)
	// description was not sent, so the replace clears it
	suite.Empty(replaced.Description)
}

func (suite *TaskHandlerTestSuite) TestAdminCanModifyAnyTask() {
	alice := suite.createTestUser("alice@example.com", false)
	admin := suite.createTestUser("admin@example.com", true)
	task := suite.createTestTask("Alice's task", alice.ID)
	url := "/api/v1/tasks/" + formatID(task.ID)

	suite.Equal(http.StatusOK, suite.request(http.MethodGet, url, nil, admin).Code)
	suite.Equal(http.StatusOK, suite.request(http.MethodPatch, url, gin.H{"status": "done"}, admin).Code)
	suite.Equal(http.StatusOK, suite.request(http.MethodDelete, url, nil, admin).Code)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestInactiveUserIsDenied() {
	alice := suite.createTestUser("alice@example.com", false)
	suite.Require().NoError(suite.db.Model(alice).Update("is_active", false).Error)

	w := suite.request(http.MethodGet, "/api/v1/tasks/", nil, alice)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestMissingTokenIsUnauthorized() {
	w := suite.request(http.MethodGet, "/api/v1/tasks/", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
