// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	notifsvc "softmarket-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *notifsvc.Service
}

func NewNotificationHandler(notificationService *notifsvc.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.notificationService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "failed to list notifications")
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", result)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid notification ID", err)
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		response.FromError(c, err, "failed to mark notification as read")
		return
	}

	response.Success(c, http.StatusOK, "notification marked as read", nil)
}
