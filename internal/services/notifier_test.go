package services

import (
	"context"
	"errors"
	"testing"

	"smartbin-backend/internal/logging"
	"smartbin-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	target string
	data   interface{}
}

type fakeHub struct {
	toUser []sent
	toRole []sent
}

func (h *fakeHub) BroadcastToUser(userID string, data interface{}) {
	h.toUser = append(h.toUser, sent{userID, data})
}

func (h *fakeHub) BroadcastToRole(role string, data interface{}) {
	h.toRole = append(h.toRole, sent{role, data})
}

type push struct {
	tokens []string
	title  string
	data   map[string]string
}

type fakePusher struct {
	pushes []push
	err    error
}

func (p *fakePusher) SendMulticast(_ context.Context, tokens []string, title, _ string, data map[string]string) error {
	p.pushes = append(p.pushes, push{tokens, title, data})
	return p.err
}

type fakeUsers struct {
	users   map[string]*models.User
	tokens  map[string][]string
	lookups int
}

func (u *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u.lookups++
	if user, ok := u.users[email]; ok {
		return user, nil
	}
	return nil, errors.New("not found")
}

func (u *fakeUsers) ListFCMTokens(_ context.Context, userID string) ([]string, error) {
	return u.tokens[userID], nil
}

func newUsers() *fakeUsers {
	return &fakeUsers{
		users: map[string]*models.User{
			"owner@example.com": {
				ID: "u-1", Email: "owner@example.com", Role: models.RoleUser,
				NotificationPreferences: models.NotificationPreferences{NotifyPush: true},
			},
			"quiet@example.com": {ID: "u-2", Email: "quiet@example.com", Role: models.RoleUser},
			"admin@example.com": {ID: "a-1", Email: "admin@example.com", Role: models.RoleAdmin},
		},
		tokens: map[string][]string{"u-1": {"tok-1", "tok-2"}, "u-2": {"tok-3"}},
	}
}

func alertFor(owner string) models.Alert {
	return models.Alert{
		ID: "al-1", EntityID: "bin-1", EntityType: models.EntitySingleBin, BinName: "Lobby",
		AlertType: models.SensorFillLevel, Severity: models.SeverityCritical, Message: "Lobby is 95% full",
		CreatedBy: owner,
	}
}

func TestNotifyAlertsReachesOwnerAdminsAndPush(t *testing.T) {
	logging.Silence()
	hub, pusher, users := &fakeHub{}, &fakePusher{}, newUsers()

	NewAlertNotifier(users, hub, pusher).NotifyAlerts(context.Background(), []models.Alert{alertFor("owner@example.com")})

	require.Len(t, hub.toRole, 1)
	assert.Equal(t, models.RoleAdmin, hub.toRole[0].target)
	require.Len(t, hub.toUser, 1)
	assert.Equal(t, "u-1", hub.toUser[0].target)
	assert.Equal(t, "new_alert", hub.toUser[0].data.(map[string]interface{})["type"])

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, []string{"tok-1", "tok-2"}, pusher.pushes[0].tokens)
	assert.Equal(t, "🚨 Critical alert: Lobby", pusher.pushes[0].title)
	assert.Equal(t, "al-1", pusher.pushes[0].data["alert_id"])
}

func TestNotifyAlertsRespectsPreferences(t *testing.T) {
	logging.Silence()
	hub, pusher, users := &fakeHub{}, &fakePusher{}, newUsers()

	NewAlertNotifier(users, hub, pusher).NotifyAlerts(context.Background(), []models.Alert{
		alertFor("quiet@example.com"),
		alertFor("admin@example.com"),
	})

	assert.Empty(t, pusher.pushes, "neither owner enabled push")
	require.Len(t, hub.toUser, 1, "admin owner is reached through the role broadcast")
	assert.Equal(t, "u-2", hub.toUser[0].target)
	assert.Len(t, hub.toRole, 2)
}

func TestNotifyAlertsIsBestEffort(t *testing.T) {
	logging.Silence()
	hub, users := &fakeHub{}, newUsers()
	pusher := &fakePusher{err: errors.New("fcm down")}

	n := NewAlertNotifier(users, hub, pusher)
	n.NotifyAlerts(context.Background(), []models.Alert{
		alertFor("ghost@example.com"),
		alertFor("ghost@example.com"),
		alertFor("owner@example.com"),
	})

	assert.Equal(t, 2, users.lookups, "owners are looked up once per batch")
	assert.Len(t, hub.toRole, 3)
	assert.Len(t, hub.toUser, 1)
	assert.Len(t, pusher.pushes, 1)
}

func TestNotifierWithoutHubOrPush(t *testing.T) {
	logging.Silence()
	assert.NotPanics(t, func() {
		NewAlertNotifier(newUsers(), nil, nil).NotifyAlerts(context.Background(), []models.Alert{alertFor("owner@example.com")})
	})
}
