package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &WebSocketHandler{Hub: socket.NewHub()}
	router := gin.New()
	router.GET("/ws", h.ServeWs)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	srv := wsTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsAnswersPing(t *testing.T) {
	require.NoError(t, auth.Configure("test-secret", "1h"))
	token, err := auth.GenerateJWT("driver@uex.example.com", "driver", "64f000000000000000000001")
	require.NoError(t, err)

	srv := wsTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	pong := make(chan string, 1)
	conn.SetPongHandler(func(appData string) error {
		pong <- appData
		return nil
	})
	require.NoError(t, conn.WriteControl(websocket.PingMessage, []byte("ka"), time.Now().Add(time.Second)))

	// Control frames are only processed while reading.
	go func() {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case data := <-pong:
		assert.Equal(t, "ka", data)
	case <-time.After(2 * time.Second):
		t.Fatal("ping was not answered with a pong")
	}
}
