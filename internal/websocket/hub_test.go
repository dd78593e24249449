package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartbin-backend/internal/logging"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "ws-secret"

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logging.Silence()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(HandleWebSocket(hub, secret))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user *models.User) *websocket.Conn {
	t.Helper()
	token, err := middleware.IssueToken(secret, user)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestBroadcastToUserAndRole(t *testing.T) {
	hub, srv := startHub(t)

	owner := dial(t, srv, &models.User{ID: "u-1", Email: "owner@example.com", Role: models.RoleUser})
	admin := dial(t, srv, &models.User{ID: "a-1", Email: "admin@example.com", Role: models.RoleAdmin})
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToUser("u-1", map[string]string{"type": "new_alert"})
	assert.Equal(t, "new_alert", readJSON(t, owner)["type"])

	hub.BroadcastToRole(models.RoleAdmin, map[string]string{"type": "admin_only"})
	assert.Equal(t, "admin_only", readJSON(t, admin)["type"])
}

func TestPingGetsPong(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, &models.User{ID: "u-1", Email: "owner@example.com", Role: models.RoleUser})
	require.Eventually(t, func() bool { return hub.IsUserConnected("u-1") }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", readJSON(t, conn)["type"])
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, &models.User{ID: "u-1", Email: "owner@example.com", Role: models.RoleUser})
	require.Eventually(t, func() bool { return hub.IsUserConnected("u-1") }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsUserConnected("u-1") }, 2*time.Second, 10*time.Millisecond)
}

func TestRejectsInvalidToken(t *testing.T) {
	_, srv := startHub(t)

	resp, err := http.Get(srv.URL + "/ws?token=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
