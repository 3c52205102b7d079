package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurpredict/ml"
	"ayurpredict/ml/mltest"
	"ayurpredict/predictor"
)

func dial(t *testing.T, handler http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var welcome ServerMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, MsgWelcome, welcome.Type)
	require.NotEmpty(t, welcome.SessionID)
	return conn
}

func TestSessionPredict(t *testing.T) {
	p, err := predictor.New(mltest.Artifacts(t), predictor.Options{})
	require.NoError(t, err)

	var mu sync.Mutex
	var recorded []string
	hook := func(sessionID string, symptoms []string, result *predictor.PredictionResult) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, string(result.PredictedLabel))
	}
	handler := NewSessionHandler(predictor.NewHolder(p), nil, hook, nil)
	conn := dial(t, handler)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPredict, ID: "1", Symptoms: []string{"acidity", "burning sensation", "anger"}}))
	var reply ServerMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgPrediction, reply.Type)
	assert.Equal(t, "1", reply.ID)
	require.NotNil(t, reply.Result)
	assert.Equal(t, ml.Pitta, reply.Result.PredictedLabel)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPing, ID: "2"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgPong, reply.Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "subscribe", ID: "3"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"predict","id":"4","symptoms":["acidity",null]}`)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	assert.Contains(t, reply.Error, ml.ErrInvalidInput.Error())

	mu.Lock()
	assert.Equal(t, []string{"pitta"}, recorded)
	mu.Unlock()
}

func TestSessionWithoutModel(t *testing.T) {
	handler := NewSessionHandler(predictor.NewHolder(nil), nil, nil, nil)
	conn := dial(t, handler)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgPredict, ID: "x", Symptoms: []string{"dry skin"}}))
	var reply ServerMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	assert.Contains(t, reply.Error, ml.ErrModelNotLoaded.Error())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/ws/predict", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://api.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestErrorReason(t *testing.T) {
	assert.Equal(t, "invalid_input", ErrorReason(ml.ErrInvalidInput))
	assert.Equal(t, "model_not_loaded", ErrorReason(ml.ErrModelNotLoaded))
	assert.Equal(t, "internal", ErrorReason(assert.AnError))
}
