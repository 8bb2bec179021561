package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub, secret []byte) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func signedToken(t *testing.T, secret []byte, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestHubDeliversToConnectedClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)
	srv := newHubServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	n := domain.Notification{ID: "n-1", NotificationRequest: lowStockRequest()}
	require.NoError(t, hub.Publish(ctx, n))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "n-1", got.ID)
	assert.Equal(t, domain.NotificationLowStock, got.Type)
}

func TestHubFiltersByRecipient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	secret := []byte("s3cret")
	hub := NewHub()
	go hub.Run(ctx)
	srv := newHubServer(t, hub, secret)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token="+signedToken(t, secret, "u-2")), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// u-1 only; the u-2 client must not see it.
	require.NoError(t, hub.Publish(ctx, domain.Notification{ID: "for-u1", NotificationRequest: lowStockRequest()}))

	req := lowStockRequest()
	req.RecipientIDs = []string{"u-2"}
	require.NoError(t, hub.Publish(ctx, domain.Notification{ID: "for-u2", NotificationRequest: req}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "for-u2", got.ID)
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub, []byte("s3cret"))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubPublishHonoursContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Publish(ctx, domain.Notification{ID: "n"})
	assert.ErrorIs(t, err, context.Canceled)
}

func stoppedHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	return hub
}

func TestHubPublishAfterStopReturnsErrHubClosed(t *testing.T) {
	hub := stoppedHub(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.Publish(context.Background(), domain.Notification{ID: "n-late"})
	}()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrHubClosed)
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stopped hub")
	}
}

func TestHubRejectsConnectionsAfterStop(t *testing.T) {
	hub := stoppedHub(t)
	srv := newHubServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
	assert.Zero(t, hub.ClientCount())
}
