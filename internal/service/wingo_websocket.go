package service

import (
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var WingoWS *WingoWebsocketService

func init() {
	WingoWS = NewWingoWebsocketService()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WingoWebsocketService pushes round lifecycle events to connected players
type WingoWebsocketService struct {
	connections      map[int64]*websocket.Conn
	mu               sync.Mutex
	lastActivityTime map[int64]time.Time
}

func NewWingoWebsocketService() *WingoWebsocketService {
	service := &WingoWebsocketService{
		connections:      make(map[int64]*websocket.Conn),
		lastActivityTime: make(map[int64]time.Time),
	}
	go service.cleanupInactiveConnections()
	return service
}

func (ws *WingoWebsocketService) cleanupInactiveConnections() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ws.mu.Lock()
		now := time.Now()
		for userId, lastActivity := range ws.lastActivityTime {
			if now.Sub(lastActivity) > 30*time.Minute {
				if conn, ok := ws.connections[userId]; ok {
					conn.Close()
					delete(ws.connections, userId)
					delete(ws.lastActivityTime, userId)
				}
			}
		}
		ws.mu.Unlock()
	}
}

// LiveWingoWebsocketHandler upgrades the connection and keeps it
// registered for round broadcasts
func (ws *WingoWebsocketService) LiveWingoWebsocketHandler(c *gin.Context) {
	userId, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("Error retrieving user ID: %v", err)
		c.Status(500)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	ws.mu.Lock()
	ws.connections[userId] = conn
	ws.lastActivityTime[userId] = time.Now()
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		delete(ws.connections, userId)
		delete(ws.lastActivityTime, userId)
		ws.mu.Unlock()
		conn.Close()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
		ws.mu.Lock()
		ws.lastActivityTime[userId] = time.Now()
		ws.mu.Unlock()
	}
}

func (ws *WingoWebsocketService) broadcast(payload gin.H) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for userId, conn := range ws.connections {
		if err := conn.WriteJSON(payload); err != nil {
			logger.Error("Failed to push wingo event to user %d: %v", userId, err)
			conn.Close()
			delete(ws.connections, userId)
		}
	}
}

func (ws *WingoWebsocketService) BroadcastRoundOpened(round *models.WingoRound) {
	ws.broadcast(gin.H{
		"type":      "round_opened",
		"round_id":  round.ID,
		"track":     round.Track,
		"sequence":  round.Sequence,
		"closes_at": round.ClosesAt,
	})
}

func (ws *WingoWebsocketService) BroadcastBettingClosed(round *models.WingoRound) {
	ws.broadcast(gin.H{
		"type":     "betting_closed",
		"round_id": round.ID,
		"track":    round.Track,
		"sequence": round.Sequence,
	})
}

func (ws *WingoWebsocketService) BroadcastRoundSettled(round *models.WingoRound) {
	payload := gin.H{
		"type":     "round_settled",
		"round_id": round.ID,
		"track":    round.Track,
		"sequence": round.Sequence,
	}
	if round.ResultDigit != nil {
		digit := *round.ResultDigit
		red, green, violet := DigitColor(digit)
		payload["digit"] = digit
		payload["red"] = red
		payload["green"] = green
		payload["violet"] = violet
	}
	ws.broadcast(payload)
}
