package services

import (
	"context"
	"fmt"

	"smartbin-backend/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates a new FCM service from an initialized Firebase app
func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting messaging client")
	}
	return &FCMService{client: client}, nil
}

// AlertMessage builds the push payload for a new alert.
func AlertMessage(alert models.Alert) (title, body string, data map[string]string) {
	title = fmt.Sprintf("%s alert: %s", severityLabel(alert.Severity), alert.BinName)
	body = alert.Message
	data = map[string]string{
		"type":        "new_alert",
		"alert_id":    alert.ID,
		"entity_id":   alert.EntityID,
		"entity_type": string(alert.EntityType),
		"alert_type":  alert.AlertType,
		"severity":    alert.Severity,
	}
	return title, body, data
}

func severityLabel(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "🚨 Critical"
	case models.SeverityHigh:
		return "⚠️ High"
	case models.SeverityMedium:
		return "Medium"
	}
	return "Info"
}

// SendMulticast sends the same message to multiple tokens
func (s *FCMService) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return errors.Wrap(err, "error sending multicast message")
	}

	log.Printf("✅ Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)
	return nil
}
