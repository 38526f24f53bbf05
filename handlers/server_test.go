package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rabbit-bot/handlers"
	"rabbit-bot/middleware"
	"rabbit-bot/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *handlers.Hub, *middleware.Auth, *fakeChat) {
	t.Helper()
	auth := middleware.NewAuth("test-secret")
	hub := handlers.NewHub(auth)
	svc := newService(t)
	chat := &fakeChat{}

	_, err := svc.Create(context.Background(), 10, 20, 1, "in ten")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 11, 20, 1, "in eleven")
	require.NoError(t, err)

	srv := httptest.NewServer(handlers.NewRouter(handlers.NewReminderHandler(svc), hub, auth))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub, auth, chat
}

func TestRouter_Health(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RemindersRequireToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/reminders")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func getReminders(t *testing.T, url, token string) (int, []models.Reminder) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var list []models.Reminder
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	}
	return resp.StatusCode, list
}

func TestRouter_ListReminders(t *testing.T) {
	srv, _, auth, _ := newTestServer(t)
	token, err := auth.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	status, all := getReminders(t, srv.URL+"/api/reminders", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 2)

	status, one := getReminders(t, srv.URL+"/api/reminders?channel=11", token)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, one, 1)
	assert.Equal(t, "in eleven", one[0].Message)

	status, _ = getReminders(t, srv.URL+"/api/reminders?channel=abc", token)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_StreamsPublishedEvents(t *testing.T) {
	srv, hub, auth, _ := newTestServer(t)
	token, err := auth.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome models.WSMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, models.WSTypeWelcome, welcome.Type)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Publish(models.WSMessage{
		Type:    models.WSTypeReminderDeleted,
		Payload: models.ReminderDeletedPayload{ID: "abc"},
	})

	var got struct {
		Type    string                        `json:"type"`
		Payload models.ReminderDeletedPayload `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, models.WSTypeReminderDeleted, got.Type)
	assert.Equal(t, "abc", got.Payload.ID)
}
