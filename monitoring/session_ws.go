package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ayurpredict/ml"
	"ayurpredict/predictor"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 << 10
)

// MessageType identifies a websocket frame.
type MessageType string

const (
	MsgPredict    MessageType = "predict"
	MsgPrediction MessageType = "prediction"
	MsgError      MessageType = "error"
	MsgPing       MessageType = "ping"
	MsgPong       MessageType = "pong"
	MsgWelcome    MessageType = "welcome"
)

// ClientMessage is a frame sent by the browser or CLI.
type ClientMessage struct {
	Type     MessageType    `json:"type"`
	ID       string         `json:"id,omitempty"`
	Symptoms ml.SymptomList `json:"symptoms,omitempty"`
}

// ServerMessage is a frame sent back to the client.
type ServerMessage struct {
	Type      MessageType                 `json:"type"`
	ID        string                      `json:"id,omitempty"`
	SessionID string                      `json:"session_id,omitempty"`
	Result    *predictor.PredictionResult `json:"result,omitempty"`
	Error     string                      `json:"error,omitempty"`
	Timestamp time.Time                   `json:"timestamp"`
}

// PredictionHook is called after every successful session prediction.
type PredictionHook func(sessionID string, symptoms []string, result *predictor.PredictionResult)

// SessionHandler serves interactive prediction sessions over websocket.
// Each connection gets its own read and write pump.
type SessionHandler struct {
	holder   *predictor.Holder
	upgrader websocket.Upgrader
	logger   *zap.Logger
	onResult PredictionHook
	active   atomic.Int64
}

func NewSessionHandler(holder *predictor.Holder, allowedOrigins []string, onResult PredictionHook, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		holder: holder,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   logger.Named("ws"),
		onResult: onResult,
	}
}

// Active returns the number of open sessions.
func (h *SessionHandler) Active() int64 {
	return h.active.Load()
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		id:      uuid.NewString(),
		ctx:     r.Context(),
		conn:    conn,
		send:    make(chan ServerMessage, 16),
		handler: h,
	}
	h.active.Add(1)
	WebSocketSessions.Inc()
	h.logger.Info("session opened", zap.String("session", s.id), zap.String("remote", r.RemoteAddr))

	s.send <- ServerMessage{Type: MsgWelcome, SessionID: s.id, Timestamp: time.Now()}

	go s.writePump()
	s.readPump()
}

type session struct {
	id      string
	ctx     context.Context
	conn    *websocket.Conn
	send    chan ServerMessage
	handler *SessionHandler
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(message); err != nil {
				s.handler.logger.Debug("write failed", zap.String("session", s.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) readPump() {
	defer func() {
		close(s.send)
		s.handler.active.Add(-1)
		WebSocketSessions.Dec()
		s.handler.logger.Info("session closed", zap.String("session", s.id))
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.handler.logger.Warn("websocket read error", zap.String("session", s.id), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(ServerMessage{Type: MsgError, Error: "malformed message: " + err.Error(), Timestamp: time.Now()})
			continue
		}
		s.reply(s.handle(msg))
	}
}

// reply queues a frame, dropping it when the writer has fallen behind.
func (s *session) reply(msg ServerMessage) {
	select {
	case s.send <- msg:
	default:
		s.handler.logger.Warn("send queue full, dropping message", zap.String("session", s.id), zap.String("type", string(msg.Type)))
	}
}

func (s *session) handle(msg ClientMessage) ServerMessage {
	switch msg.Type {
	case MsgPing:
		return ServerMessage{Type: MsgPong, ID: msg.ID, Timestamp: time.Now()}
	case MsgPredict:
		start := time.Now()
		result, err := s.handler.holder.Predict(s.ctx, msg.Symptoms)
		if err != nil {
			RecordPrediction("ws", "", "", time.Since(start), err)
			return ServerMessage{Type: MsgError, ID: msg.ID, Error: err.Error(), Timestamp: time.Now()}
		}
		RecordPrediction("ws", result.RawLabel, result.PredictedLabel, time.Since(start), nil)
		if s.handler.onResult != nil {
			s.handler.onResult(s.id, msg.Symptoms, result)
		}
		return ServerMessage{Type: MsgPrediction, ID: msg.ID, Result: result, Timestamp: time.Now()}
	default:
		return ServerMessage{Type: MsgError, ID: msg.ID, Error: "unknown message type " + string(msg.Type), Timestamp: time.Now()}
	}
}

// originChecker allows same-host requests, requests without an Origin header
// and the configured origins. "*" allows everything.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"), r.Host)
	}
}
