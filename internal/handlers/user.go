package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/task-manager-api/internal/dto"
	apierrors "github.com/taskhub/task-manager-api/internal/errors"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/services"
	"github.com/taskhub/task-manager-api/internal/utils"
)

// UserHandler coordinates user-management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all users. Admin-only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(user, params.Page, params.Limit)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.Limit, total))
}

// GetUser returns a single user record. Any user may fetch themself;
// other records are admin-only.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, userID, ok := userRequestContext(c)
	if !ok {
		return
	}

	target, err := h.userService.GetUser(user, userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*target))
}

// UpdateUser patches a user's email, active flag, or admin flag. Admin-only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	user, userID, ok := userRequestContext(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Email    *string `json:"email" binding:"omitempty,email"`
		IsActive *bool   `json:"is_active"`
		IsAdmin  *bool   `json:"is_admin"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	target, err := h.userService.UpdateUser(user, userID, services.UpdateUserInput{
		Email:    req.Email,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*target))
}

// DeleteUser permanently removes a user and their tasks. Admin-only;
// self-deletion is refused.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, userID, ok := userRequestContext(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(user, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func userRequestContext(c *gin.Context) (*models.User, uint64, bool) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, 0, false
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "Invalid user ID")
		return nil, 0, false
	}

	return user, userID, true
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUserPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrEmailRequired):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
