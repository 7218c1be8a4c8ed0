package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = maxBodyBytes
)

type wsResponse struct {
	Prediction *models.Prediction `json:"prediction,omitempty"`
	Label      string             `json:"label,omitempty"`
	Percent    string             `json:"percent,omitempty"`
	Error      string             `json:"error,omitempty"`
	Problems   []models.Problem   `json:"problems,omitempty"`
}

// handleWebSocket answers every JSON observation sent by the client with a
// prediction, so a page can update as the user edits the form. Socket
// predictions are not recorded in the history.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		resp := s.socketPredict(r, data)
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) socketPredict(r *http.Request, data []byte) wsResponse {
	obs, err := decodeObservation(bytes.NewReader(data), s.clock.Now())
	if err == nil {
		var pred models.Prediction
		pred, err = s.classify(r.Context(), obs, "ws")
		if err == nil {
			return wsResponse{Prediction: &pred, Label: pred.Text(), Percent: pred.Percent()}
		}
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return wsResponse{Error: "invalid observation", Problems: verr.Problems}
	}
	if errors.Is(err, errDecode) {
		return wsResponse{Error: err.Error()}
	}
	return wsResponse{Error: "prediction failed"}
}

// pingLoop keeps the connection alive. WriteControl may run alongside the
// WriteJSON calls in the read loop.
func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
