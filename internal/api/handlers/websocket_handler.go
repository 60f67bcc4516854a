package handlers

import (
	"net/http"
	"time"

	"uex-courier-api-server/internal/auth"
	"uex-courier-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Maximum wait for a ping from the client before the read loop gives up.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub *socket.Hub
}

// ServeWs upgrades the connection and keeps it registered in the hub
// until the client goes away. The JWT travels as a query parameter
// because browsers cannot set headers on WebSocket dials.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := auth.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("failed to upgrade websocket connection")
		return
	}

	h.Hub.Register(userID, claims.Role, conn)

	defer func() {
		h.Hub.Unregister(userID)
		conn.Close()
	}()

	// Heartbeat: each client PING extends the read deadline and is
	// answered with a PONG. Overriding the ping handler replaces the
	// default one, so the reply has to be written here.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("unexpected websocket close")
			}
			break
		}
	}
}
