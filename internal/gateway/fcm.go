package gateway

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// FCMGateway delivers messages through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway initialises a Firebase app from a service-account file.
func NewFCMGateway(ctx context.Context, credentialsFile string) (*FCMGateway, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get messaging client")
	}

	return &FCMGateway{client: client}, nil
}

func (g *FCMGateway) Send(ctx context.Context, msg *domain.PushMessage) (*Receipt, error) {
	id, err := g.client.Send(ctx, BuildFCMMessage(msg))
	if err != nil {
		return nil, errors.Wrap(err, "send fcm message")
	}
	return &Receipt{ID: id, Status: "ok"}, nil
}

// BuildFCMMessage maps a push message onto the FCM wire model. FCM data
// values must be strings.
func BuildFCMMessage(msg *domain.PushMessage) *messaging.Message {
	androidPriority := "normal"
	if msg.Hint.Priority == "high" {
		androidPriority = "high"
	}

	return &messaging.Message{
		Token: msg.To,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: map[string]string{
			"requestId": msg.Data.RequestID,
			"newStatus": msg.Data.NewStatus,
			"oldStatus": msg.Data.OldStatus,
			"type":      msg.Data.Type,
			"userId":    msg.Data.UserID,
		},
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				Sound:     msg.Hint.Sound,
				ChannelID: msg.Hint.ChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: msg.Hint.Sound},
			},
		},
	}
}

var _ Gateway = (*FCMGateway)(nil)
