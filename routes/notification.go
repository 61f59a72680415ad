package routes

import (
	"time"

	"github.com/mnq11/airbnb-sub000/models"
	"github.com/mnq11/airbnb-sub000/storage"
	"github.com/mnq11/airbnb-sub000/utils"

	"github.com/kataras/iris/v12"
)

// GetUserNotifications returns the authenticated user's notifications, newest
// first.
func GetUserNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var notifications []models.Notification
	res := storage.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(notifications)
}

// MarkNotificationRead flags one of the user's notifications as read.
func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	notificationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid notification ID", ctx)
		return
	}

	var notification models.Notification
	if err := storage.DB.First(&notification, notificationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if notification.UserID != userID {
		utils.CreateForbidden(ctx)
		return
	}

	now := time.Now()
	if err := storage.DB.Model(&notification).UpdateColumns(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notification.IsRead = true
	notification.ReadAt = &now
	ctx.JSON(notification)
}
