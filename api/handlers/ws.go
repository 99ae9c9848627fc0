package handlers

import (
	"log"
	"yatube/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Без CheckOrigin gorilla пускает только Origin с хостом запроса (или без Origin)
var upgrader = websocket.Upgrader{}

// WSFeed - websocket, в который приходят события о новых постах авторов из подписок
func (h *Handlers) WSFeed(c *gin.Context) {
	userID := middleware.ViewerID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("ERROR: WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.hub.Add(userID, conn)
	defer h.hub.Remove(userID, conn)

	h.hub.Send(userID, []byte(`{"event":"connected"}`))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Println("DEBUG: WebSocket closed:", err)
			break
		}
	}
}
