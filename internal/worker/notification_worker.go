package worker

import (
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification worker disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker started")
}
