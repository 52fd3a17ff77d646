package handlers

import (
	"log"
	"net/http"
	"pulse/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSEventsHandler - WebSocket endpoint живых событий пользователя.
// Подписка снимается при закрытии соединения, поэтому события
// не доставляются в отвалившиеся сокеты.
func WSEventsHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	sub := services.GlobalHub.Subscribe(userID.(int64))
	defer sub.Stop()

	// Тестовое приветствие
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected","message":"WebSocket connected"}`))

	// Качаем события подписки в сокет
	done := make(chan struct{})
	go func() {
		defer close(done)
		for message := range sub.C {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
		// Входящие сообщения от клиента не обрабатываются
	}

	sub.Stop()
	<-done
}
