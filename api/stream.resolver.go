package api

import (
	"net/http"

	"levsim/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// same policy as the REST surface: open CORS
		return true
	},
}

type streamMessage struct {
	Type     string           `json:"type"` // snapshot or result
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Result   *SimulateResponse `json:"result,omitempty"`
}

// simulateStream runs one simulation per connection: the client sends a
// SimulateRequest, the server replies with one message per daily snapshot
// followed by the result summary, then closes.
func (m ApiHandler) simulateStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	defer conn.Close()

	var requestBody SimulateRequest
	if err := conn.ReadJSON(&requestBody); err != nil {
		m.writeStreamError(conn, err)
		return
	}

	hash, result, err := m.runSimulation(c.Request.Context(), requestBody)
	if err != nil {
		m.writeStreamError(conn, err)
		return
	}

	for i := range result.Snapshots {
		message := streamMessage{Type: "snapshot", Snapshot: &result.Snapshots[i]}
		if err := conn.WriteJSON(message); err != nil {
			m.Logger.Warnw("failed to stream snapshot", "keyHash", hash, "error", err)
			return
		}
	}

	summary := SimulateResponse{
		KeyHash:        hash,
		Liquidated:     result.Liquidated,
		FinalTimestamp: result.FinalTimestamp,
		SharpeRatio:    result.SharpeRatio,
	}
	if err := conn.WriteJSON(streamMessage{Type: "result", Result: &summary}); err != nil {
		m.Logger.Warnw("failed to stream result", "keyHash", hash, "error", err)
	}
}

func (m ApiHandler) writeStreamError(conn *websocket.Conn, err error) {
	m.Logger.Error(err.Error())
	_ = conn.WriteJSON(gin.H{"error": err.Error()})
}
