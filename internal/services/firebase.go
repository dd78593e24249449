package services

import (
	"context"
	"encoding/base64"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// ErrFirebaseNotConfigured is returned when no credentials are provided.
var ErrFirebaseNotConfigured = errors.New("firebase credentials not configured")

// NewFirebaseApp initializes the Firebase app shared by FCM and Firestore.
// Base64 credentials win over a credentials file, which suits deployments
// where files cannot be uploaded.
func NewFirebaseApp(ctx context.Context, credentialsBase64, credentialsFile, projectID string) (*firebase.App, error) {
	var opt option.ClientOption
	switch {
	case credentialsBase64 != "":
		credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, errors.Wrap(err, "error decoding base64 credentials")
		}
		opt = option.WithCredentialsJSON(credentialsJSON)
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, ErrFirebaseNotConfigured
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing Firebase app")
	}
	return app, nil
}
