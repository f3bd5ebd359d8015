package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/council/backend/internal/ingest"
)

const (
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = 50 * time.Second
	wsRequestWait = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a separately hosted frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type progressFrame struct {
	Type    string `json:"type"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type resultFrame struct {
	Type string `json:"type"`
	*AnalyzeResponse
}

// Stream runs one council analysis over a websocket. The client opens
// with a single analyze-request frame, receives progress events as the
// stages run, then one result or error frame before the server closes.
// GET /api/analyze/stream
func (h *AnalyzeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(wsRequestWait))
	var req AnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeStreamError(conn, "Expected one analyze request as the first frame")
		return
	}

	settings, reqErr := h.resolveSettings(&req)
	if reqErr != nil {
		writeStreamError(conn, reqErr.Message)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// After the request frame the client only answers pings. Keep reading
	// so a dropped client aborts the run.
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// Keepalive pings. Control frames are safe to write concurrently
	// with data frames.
	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ticker.C:
				conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
			}
		}
	}()

	h.logger.WithFields(map[string]interface{}{
		"mode":  settings.Mode,
		"model": settings.Model,
	}).Info("Streaming council analysis started")

	progress := func(stage, message string) {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(progressFrame{Type: "progress", Stage: stage, Message: message}); err != nil {
			cancel()
		}
	}

	resp, err := h.runCouncil(ctx, &req, settings, progress)
	if err != nil {
		var inputErr *ingest.InputError
		if errors.As(err, &inputErr) {
			writeStreamError(conn, inputErr.Error())
			return
		}
		h.logger.WithError(err).Error("Streaming council run failed")
		writeStreamError(conn, "Council run failed: "+err.Error())
		return
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(resultFrame{Type: "result", AnalyzeResponse: resp}); err != nil {
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

func writeStreamError(conn *websocket.Conn, message string) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	conn.WriteJSON(errorFrame{Type: "error", Error: message})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}
