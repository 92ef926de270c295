package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketTryOnRequest is one client message on the try-on socket.
// The connection is stateful: "extract" stores the designs from a source
// photo, after which any number of "apply" messages composite them onto
// target photos. "reset" discards the stored designs.
type WebSocketTryOnRequest struct {
	Type  string `json:"type"` // "extract", "apply", "reset", "status"
	Image []byte `json:"image,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketTryOnResponse is one server message on the try-on socket.
type WebSocketTryOnResponse struct {
	Type      string       `json:"type"`
	Status    string       `json:"status"` // "processing", "completed", "error"
	State     string       `json:"state,omitempty"`
	Progress  float64      `json:"progress,omitempty"`
	Designs   []DesignInfo `json:"designs,omitempty"`
	Image     string       `json:"image,omitempty"` // base64-encoded PNG
	Applied   int          `json:"applied,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// tryonWebSocketHandler handles WebSocket connections for interactive
// try-on sessions.
func (s *Server) tryonWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket try-on session started", "remote_addr", r.RemoteAddr)

	// One session per connection; its designs persist across messages.
	sess := s.pipeline.NewSession()
	s.handleWebSocketConnection(conn, sess)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn, sess *pipeline.Session) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, sess, data)
		}
	}
}

// handleWebSocketMessage dispatches one client message.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, sess *pipeline.Session, data []byte) {
	var req WebSocketTryOnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	switch req.Type {
	case "extract":
		s.processWebSocketExtract(conn, sess, req, requestID)
	case "apply":
		s.processWebSocketApply(conn, sess, req, requestID)
	case "reset":
		sess.Reset()
		s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
			Type:      "tryon_response",
			Status:    "completed",
			State:     sess.State().String(),
			RequestID: requestID,
		})
	case "status":
		s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
			Type:      "tryon_response",
			Status:    "completed",
			State:     sess.State().String(),
			Designs:   designInfos(sess.Designs(), false),
			RequestID: requestID,
		})
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

// processWebSocketExtract runs design extraction on a source photo.
func (s *Server) processWebSocketExtract(conn *websocket.Conn, sess *pipeline.Session, req WebSocketTryOnRequest, requestID string) {
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Image), s.maxUploadMB*1024*1024)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
		Type:      "tryon_response",
		Status:    "processing",
		State:     sess.State().String(),
		Progress:  0.0,
		RequestID: requestID,
	})

	ctx, cancel := s.operationContext()
	defer cancel()

	start := time.Now()
	extracted, err := sess.ExtractDesigns(ctx, img)
	if err != nil {
		tryonRequestsTotal.WithLabelValues("websocket_extract", "error").Inc()
		s.sendWebSocketPipelineError(conn, err)
		return
	}

	tryonRequestsTotal.WithLabelValues("websocket_extract", "success").Inc()
	tryonProcessingDuration.WithLabelValues("websocket_extract").Observe(time.Since(start).Seconds())
	fingersProcessed.WithLabelValues("extract").Observe(float64(extracted))

	s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
		Type:      "tryon_response",
		Status:    "completed",
		State:     sess.State().String(),
		Progress:  1.0,
		Designs:   designInfos(sess.Designs(), true),
		RequestID: requestID,
	})
}

// processWebSocketApply composites the stored designs onto a target photo.
func (s *Server) processWebSocketApply(conn *websocket.Conn, sess *pipeline.Session, req WebSocketTryOnRequest, requestID string) {
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Image), s.maxUploadMB*1024*1024)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
		Type:      "tryon_response",
		Status:    "processing",
		State:     sess.State().String(),
		Progress:  0.0,
		RequestID: requestID,
	})

	ctx, cancel := s.operationContext()
	defer cancel()

	start := time.Now()
	result, applied, err := sess.ApplyDesigns(ctx, img)
	if err != nil {
		tryonRequestsTotal.WithLabelValues("websocket_apply", "error").Inc()
		s.sendWebSocketPipelineError(conn, err)
		return
	}

	tryonRequestsTotal.WithLabelValues("websocket_apply", "success").Inc()
	tryonProcessingDuration.WithLabelValues("websocket_apply").Observe(time.Since(start).Seconds())
	fingersProcessed.WithLabelValues("composite").Observe(float64(applied))

	data, err := utils.EncodePNG(result)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to encode result: %v", err))
		return
	}

	s.sendWebSocketResponse(conn, WebSocketTryOnResponse{
		Type:      "tryon_response",
		Status:    "completed",
		State:     sess.State().String(),
		Progress:  1.0,
		Image:     base64.StdEncoding.EncodeToString(data),
		Applied:   applied,
		RequestID: requestID,
	})
}

// operationContext derives the per-message processing deadline.
func (s *Server) operationContext() (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(s.timeoutSec)*time.Second)
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketTryOnResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketPipelineError sends a pipeline failure with its error kind.
func (s *Server) sendWebSocketPipelineError(conn WebSocketConnWriter, err error) {
	kindName := "processing_error"
	if kind, ok := pipeline.KindOf(err); ok {
		kindName = kind.String()
	}
	s.sendWebSocketError(conn, kindName, err.Error())
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketTryOnResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorKind: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
