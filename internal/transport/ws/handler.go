package ws

import (
	"casepilot/internal/model"
	"casepilot/internal/service"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgEvaluationResult MessageType = "evaluation_result"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EvaluateFrame is what the typing client sends on every debounce tick
type EvaluateFrame struct {
	Seq int64 `json:"seq"`
	model.EvaluateRequest
}

// EvaluationPayload tags a result with the frame sequence that produced it
type EvaluationPayload struct {
	Seq    int64             `json:"seq"`
	Result *model.Evaluation `json:"result"`
}

// Handler serves the live evaluation feed: the client re-evaluates on a
// debounce timer as the user types, and the server guarantees a result from a
// superseded keystroke never overwrites a newer one.
type Handler struct {
	evalSvc *service.EvaluatorService
}

// NewHandler creates a new WebSocket handler
func NewHandler(evalSvc *service.EvaluatorService) *Handler {
	return &Handler{evalSvc: evalSvc}
}

// EvaluateWS handles GET /v1/ws/evaluate
func (h *Handler) EvaluateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sess := &evalSession{conn: conn}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame EvaluateFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			sess.writeError("invalid frame")
			continue
		}
		if !sess.accept(frame.Seq) {
			continue
		}

		// AI-mode evaluations can take seconds; run each frame on its own
		// goroutine and let the session gate stale results on completion.
		go func(frame EvaluateFrame) {
			result := h.evalSvc.Evaluate(r.Context(), &frame.EvaluateRequest)
			sess.writeResult(frame.Seq, result)
		}(frame)
	}
}

// evalSession tracks the newest sequence number seen on one connection
type evalSession struct {
	conn *websocket.Conn

	mu        sync.Mutex
	latestSeq int64
}

// accept registers a frame's sequence and rejects anything already superseded
func (s *evalSession) accept(seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.latestSeq {
		return false
	}
	s.latestSeq = seq
	return true
}

// writeResult delivers an evaluation unless a newer frame arrived while it
// was in flight
func (s *evalSession) writeResult(seq int64, result *model.Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.latestSeq {
		return // stale, a newer keystroke owns the answer now
	}

	payload, err := json.Marshal(EvaluationPayload{Seq: seq, Result: result})
	if err != nil {
		log.Printf("WebSocket marshal error: %v", err)
		return
	}
	s.write(Message{Type: MsgEvaluationResult, Payload: payload})
}

func (s *evalSession) writeError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, _ := json.Marshal(map[string]string{"message": message})
	s.write(Message{Type: MsgError, Payload: payload})
}

// write assumes s.mu is held
func (s *evalSession) write(msg Message) {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
