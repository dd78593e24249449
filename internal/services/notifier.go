package services

import (
	"context"

	"smartbin-backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// Broadcaster delivers live messages to connected dashboard users.
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
	BroadcastToRole(role string, data interface{})
}

// Pusher sends mobile push notifications.
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// UserDirectory resolves alert owners and their push targets.
type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListFCMTokens(ctx context.Context, userID string) ([]string, error)
}

// AlertNotifier fans new alerts out to the owner and to admins. Delivery is
// best effort: failures are logged and never reach the evaluator.
type AlertNotifier struct {
	users UserDirectory
	hub   Broadcaster
	push  Pusher
}

// NewAlertNotifier builds a notifier. hub and push may be nil.
func NewAlertNotifier(users UserDirectory, hub Broadcaster, push Pusher) *AlertNotifier {
	return &AlertNotifier{users: users, hub: hub, push: push}
}

func (n *AlertNotifier) NotifyAlerts(ctx context.Context, alerts []models.Alert) {
	owners := map[string]*models.User{}

	for _, alert := range alerts {
		msg := map[string]interface{}{
			"type": "new_alert",
			"data": alert,
		}
		if n.hub != nil {
			n.hub.BroadcastToRole(models.RoleAdmin, msg)
		}

		owner, ok := owners[alert.CreatedBy]
		if !ok {
			var err error
			owner, err = n.users.GetUserByEmail(ctx, alert.CreatedBy)
			if err != nil {
				log.WithError(err).WithField("owner", alert.CreatedBy).Warn("⚠️  Alert owner not found, skipping owner delivery")
				owner = nil
			}
			owners[alert.CreatedBy] = owner
		}
		if owner == nil {
			continue
		}

		// Admins already got it through the role broadcast.
		if n.hub != nil && owner.Role != models.RoleAdmin {
			n.hub.BroadcastToUser(owner.ID, msg)
		}

		if n.push != nil && owner.NotifyPush {
			n.sendPush(ctx, owner, alert)
		}
	}
}

func (n *AlertNotifier) sendPush(ctx context.Context, owner *models.User, alert models.Alert) {
	tokens, err := n.users.ListFCMTokens(ctx, owner.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", owner.ID).Warn("⚠️  Could not load FCM tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	title, body, data := AlertMessage(alert)
	if err := n.push.SendMulticast(ctx, tokens, title, body, data); err != nil {
		log.WithError(err).WithField("alert_id", alert.ID).Warn("⚠️  Push notification failed")
	}
}
