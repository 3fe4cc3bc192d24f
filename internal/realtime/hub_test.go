package realtime

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestBroadcastReachesProjectClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, "p1")
	}))
	defer srv.Close()

	conn := dial(t, srv)

	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome.Type)
	assert.Equal(t, "p1", welcome.ProjectID)

	require.Eventually(t, func() bool { return hub.Clients("p1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast("p1", Message{Type: "refresh", Message: "Project updated", Kind: "task_created"})
	hub.Broadcast("p2", Message{Type: "refresh", Message: "Other project"})

	var got Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "refresh", got.Type)
	assert.Equal(t, "task_created", got.Kind)
	assert.Equal(t, "p1", got.ProjectID)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, "p1")
	}))
	defer srv.Close()

	conn := dial(t, srv)
	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Eventually(t, func() bool { return hub.Clients("p1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients("p1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeReleasesGoroutines(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, "p1")
	}))
	defer srv.Close()

	baseline := runtime.NumGoroutine()

	conns := make([]*websocket.Conn, 0, 5)
	for range 5 {
		conn := dial(t, srv)
		var welcome Message
		require.NoError(t, conn.ReadJSON(&welcome))
		conns = append(conns, conn)
	}
	require.Eventually(t, func() bool { return hub.Clients("p1") == 5 }, time.Second, 10*time.Millisecond)
	assert.Greater(t, runtime.NumGoroutine(), baseline)

	for _, conn := range conns {
		conn.Close()
	}
	require.Eventually(t, func() bool { return hub.Clients("p1") == 0 }, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 2*time.Second, 20*time.Millisecond, "serve goroutines still running after disconnect")
}

func TestRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:5173"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, "p1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
