package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/qrscan/internal/pipeline"
	"github.com/MeKo-Tech/qrscan/internal/raster"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketScanRequest is a JSON scan request sent as a text message.
// Binary messages are treated as encoded images without any envelope.
type WebSocketScanRequest struct {
	Type   string `json:"type"` // "image" or "raw"
	ID     string `json:"id,omitempty"`
	Image  []byte `json:"image,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Clean  bool   `json:"clean,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketScanResponse is the reply to every scan message.
type WebSocketScanResponse struct {
	Type      string        `json:"type"`
	Status    string        `json:"status"` // "completed" or "error"
	RequestID string        `json:"request_id,omitempty"`
	Result    *ScanResponse `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
}

// scanWebSocketHandler streams frames from a client and answers each with a scan result.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
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

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(conn)
}

func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	seq := 0
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		websocketMessagesTotal.WithLabelValues("received").Inc()
		seq++

		switch messageType {
		case websocket.BinaryMessage:
			s.handleWebSocketMessage(conn, WebSocketScanRequest{Type: "image", ID: strconv.Itoa(seq), Image: data})
		case websocket.TextMessage:
			var req WebSocketScanRequest
			if err := json.Unmarshal(data, &req); err != nil {
				s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
				continue
			}
			if req.ID == "" {
				req.ID = strconv.Itoa(seq)
			}
			s.handleWebSocketMessage(conn, req)
		}
	}
}

// handleWebSocketMessage scans one request and writes exactly one reply.
func (s *Server) handleWebSocketMessage(conn WebSocketConnWriter, req WebSocketScanRequest) {
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, req.ID, "invalid_request", "No image data provided")
		return
	}

	start := time.Now()
	var res pipeline.Result
	switch req.Type {
	case "", "image":
		res = s.scanner.ScanImageBytesResult(req.Image)
	case "raw":
		if req.Width <= 0 || req.Height <= 0 || !raster.NewLuma(req.Image, req.Width, req.Height).Valid() {
			s.sendWebSocketError(conn, req.ID, "invalid_request", "raw frame does not match width*height")
			return
		}
		res = s.scanner.ScanRawLumaResult(req.Image, req.Width, req.Height)
	default:
		s.sendWebSocketError(conn, req.ID, "invalid_request", "Unsupported request type: "+req.Type)
		return
	}
	scanProcessingDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())
	scanRequestsTotal.WithLabelValues("websocket", scanStatus(res)).Inc()

	if res.Err != nil {
		s.sendWebSocketError(conn, req.ID, "processing_error", "Invalid image format")
		return
	}

	result := toScanResponse(res, req.Clean)
	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "completed",
		RequestID: req.ID,
		Result:    &result,
	})
}

func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketScanResponse) {
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

func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "error",
		Status:    "error",
		RequestID: requestID,
		Error:     message,
		ErrorType: errorType,
	})
}
