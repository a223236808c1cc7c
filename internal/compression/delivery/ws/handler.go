// Package ws exposes the live progress stream over a websocket. One
// connection may follow any number of jobs at once; subscriptions die with
// the connection.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/internal/progress"
	"github.com/rahulmishra02/media-compressor/pkg/logger"
)

type subscribeRequest struct {
	Action string `json:"action"`
	JobID  string `json:"job_id"`
}

// wsObserver adapts one websocket connection to the progress.Observer
// contract. Writes are serialized; a write error marks the connection dead
// and the progress channel drops it.
type wsObserver struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (o *wsObserver) Send(event models.ProgressEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conn.WriteJSON(event)
}

type ProgressHandler struct {
	progressCh *progress.Channel
	upgrader   websocket.Upgrader
	logger     logger.Logger
}

func NewProgressHandler(progressCh *progress.Channel, log logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressCh: progressCh,
		logger:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve upgrades the connection and runs its read loop. The client sends
// {"action": "subscribe"|"unsubscribe", "job_id": "..."} messages; events
// for subscribed jobs are pushed as they are published. Late subscribers
// get no replay.
func (h *ProgressHandler) Serve() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			h.logger.Errorf("websocket upgrade failed: %v", err)
			return err
		}

		obs := &wsObserver{conn: conn}
		defer func() {
			h.progressCh.Drop(obs)
			conn.Close()
		}()

		for {
			var req subscribeRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debugf("websocket read error: %v", err)
				}
				return nil
			}
			if req.JobID == "" {
				continue
			}
			switch req.Action {
			case "subscribe":
				h.progressCh.Subscribe(req.JobID, obs)
			case "unsubscribe":
				h.progressCh.Unsubscribe(req.JobID, obs)
			}
		}
	}
}
