package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamEnvelope is a superset of every frame the stream endpoint emits,
// so a single decode target covers progress, error, and result frames.
type streamEnvelope struct {
	Type    string `json:"type"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Error   string `json:"error"`
	OK      bool   `json:"ok"`
	Mode    string `json:"mode"`
	Result  struct {
		FullMarkdown string `json:"full_markdown"`
	} `json:"result"`
}

func dialStream(t *testing.T, h *AnalyzeHandler) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) streamEnvelope {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	var frame streamEnvelope
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamHappyPath(t *testing.T) {
	client := &fakeCouncilClient{}
	h := newTestAnalyzeHandler(client, testConfig())
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"company_name": "Acme Robotics",
		"deck_text":    "Acme builds warehouse robots.",
	}))

	var stages []string
	var result streamEnvelope
	for {
		frame := readFrame(t, conn)
		if frame.Type == "result" {
			result = frame
			break
		}
		require.Equal(t, "progress", frame.Type)
		require.NotEmpty(t, frame.Message)
		stages = append(stages, frame.Stage)
	}

	assert.Equal(t, []string{"setup", "stage_1", "stage_2", "stage_3", "done"}, stages)
	assert.True(t, result.OK)
	assert.Equal(t, "fast", result.Mode)
	assert.True(t, strings.HasPrefix(result.Result.FullMarkdown, "# AI VC Council Result\n\n"))
	assert.Equal(t, 3, client.callCount())

	// After the result frame the server initiates a normal closure.
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected read error: %v", err)
}

func TestStreamRejectsInvalidRequest(t *testing.T) {
	client := &fakeCouncilClient{}
	h := newTestAnalyzeHandler(client, testConfig())
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"deck_text": "x",
		"mode":      "turbo",
	}))

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Error, "mode must be one of: deep, fast")
	assert.Zero(t, client.callCount())
}

func TestStreamRejectsNonJSONFirstFrame(t *testing.T) {
	h := newTestAnalyzeHandler(&fakeCouncilClient{}, testConfig())
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Error, "Expected one analyze request as the first frame")
}

func TestStreamReportsRunFailure(t *testing.T) {
	h := newTestAnalyzeHandler(&failingCouncilClient{}, testConfig())
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"deck_text": "A robotics startup.",
	}))

	for {
		frame := readFrame(t, conn)
		if frame.Type == "error" {
			assert.Contains(t, frame.Error, "Council run failed")
			assert.Contains(t, frame.Error, "rate limited")
			return
		}
		require.Equal(t, "progress", frame.Type)
	}
}
