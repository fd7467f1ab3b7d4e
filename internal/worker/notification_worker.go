package worker

import (
	"github.com/JulianoPassing/scc-tickets/internal/service"
)

// StartNotificationWorker registers the DM notification handlers on the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
