package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
)

// mockWebSocketConn records messages written during a test.
type mockWebSocketConn struct {
	sentMessages []sentMessage
}

type sentMessage struct {
	messageType int
	data        []byte
}

func (m *mockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	m.sentMessages = append(m.sentMessages, sentMessage{
		messageType: messageType,
		data:        data,
	})
	return nil
}

func TestSendWebSocketResponse(t *testing.T) {
	mockConn := &mockWebSocketConn{}
	server := &Server{}

	response := WebSocketTryOnResponse{
		Type:      "tryon_response",
		Status:    "completed",
		State:     "extraction_done",
		Progress:  1.0,
		RequestID: "test-request-id",
	}

	server.sendWebSocketResponse(mockConn, response)

	require.Len(t, mockConn.sentMessages, 1)

	var received WebSocketTryOnResponse
	err := json.Unmarshal(mockConn.sentMessages[0].data, &received)
	require.NoError(t, err)

	assert.Equal(t, websocket.TextMessage, mockConn.sentMessages[0].messageType)
	assert.Equal(t, response, received)
}

func TestSendWebSocketError(t *testing.T) {
	mockConn := &mockWebSocketConn{}
	server := &Server{}

	server.sendWebSocketError(mockConn, "invalid_request", "No image data provided")

	require.Len(t, mockConn.sentMessages, 1)

	var response WebSocketTryOnResponse
	err := json.Unmarshal(mockConn.sentMessages[0].data, &response)
	require.NoError(t, err)

	assert.Equal(t, websocket.TextMessage, mockConn.sentMessages[0].messageType)
	assert.Equal(t, "error", response.Type)
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "No image data provided", response.Error)
	assert.Equal(t, "invalid_request", response.ErrorKind)
}

func TestSendWebSocketPipelineError(t *testing.T) {
	t.Run("classified pipeline error", func(t *testing.T) {
		mockConn := &mockWebSocketConn{}
		server := &Server{}

		err := &pipeline.Error{
			Kind: pipeline.KindDetection,
			Op:   "detect",
			Err:  pipeline.ErrNoHandDetected,
		}
		server.sendWebSocketPipelineError(mockConn, err)

		require.Len(t, mockConn.sentMessages, 1)

		var response WebSocketTryOnResponse
		require.NoError(t, json.Unmarshal(mockConn.sentMessages[0].data, &response))
		assert.Equal(t, "detection", response.ErrorKind)
		assert.Contains(t, response.Error, "no hand detected")
	})

	t.Run("unclassified error", func(t *testing.T) {
		mockConn := &mockWebSocketConn{}
		server := &Server{}

		server.sendWebSocketPipelineError(mockConn, assert.AnError)

		require.Len(t, mockConn.sentMessages, 1)

		var response WebSocketTryOnResponse
		require.NoError(t, json.Unmarshal(mockConn.sentMessages[0].data, &response))
		assert.Equal(t, "processing_error", response.ErrorKind)
	})
}

func TestWebSocketRequestParsing(t *testing.T) {
	// Image bytes arrive base64-encoded inside the JSON payload.
	raw := `{"type":"extract","image":"aGVsbG8="}`

	var req WebSocketTryOnRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "extract", req.Type)
	assert.Equal(t, []byte("hello"), req.Image)
}

func TestWebSocketUpgrader(t *testing.T) {
	t.Run("check origin allows any origin", func(t *testing.T) {
		allowed := upgrader.CheckOrigin(&http.Request{
			Header: http.Header{
				"Origin": []string{"http://example.com"},
			},
		})
		assert.True(t, allowed)
	})

	t.Run("buffer sizes", func(t *testing.T) {
		assert.Equal(t, 1024, upgrader.ReadBufferSize)
		assert.Equal(t, 1024, upgrader.WriteBufferSize)
	})
}

func TestOperationContextTimeout(t *testing.T) {
	s := &Server{timeoutSec: 1}
	ctx, cancel := s.operationContext()
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.False(t, deadline.IsZero())

	s = &Server{timeoutSec: 0}
	ctx, cancel = s.operationContext()
	defer cancel()

	_, ok = ctx.Deadline()
	assert.False(t, ok)
}
