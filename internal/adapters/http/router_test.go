package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/RoomChat/internal/app"
	"github.com/dkeye/RoomChat/internal/app/orch"
	"github.com/dkeye/RoomChat/internal/config"
	"github.com/dkeye/RoomChat/internal/core"
	"github.com/gin-gonic/gin"
)

func newRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>chat</html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Mode:            "test",
		StaticPath:      static,
		ReadLimit:       4096,
		PingPeriod:      time.Second,
		PongWait:        2 * time.Second,
		WriteWait:       time.Second,
		SendBuffer:      8,
		DefaultCapacity: 2,
		AllowedOrigins:  []string{"http://allowed.test"},
		Secret:          "test-secret",
	}
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(cfg.DefaultCapacity),
		Policy:   app.SimplePolicy{},
		Metrics:  app.NewMetrics(),
	}
	return SetupRouter(context.Background(), cfg, o), o
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoomsEndpoints(t *testing.T) {
	r, o := newRouter(t)

	if _, err := o.Rooms.Join("lobby", core.ConnID("a"), 5); err != nil {
		t.Fatal(err)
	}

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list struct {
		Rooms []struct {
			RoomCode    string `json:"roomCode"`
			MaxMembers  int    `json:"maxMembers"`
			MemberCount int    `json:"memberCount"`
		} `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].RoomCode != "LOBBY" || list.Rooms[0].MaxMembers != 5 || list.Rooms[0].MemberCount != 1 {
		t.Fatalf("rooms = %+v", list.Rooms)
	}

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/rooms/lobby", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"roomCode":"LOBBY"`) {
		t.Fatalf("get room: %d %s", w.Code, w.Body.String())
	}

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/rooms/nope", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "room not found") {
		t.Fatalf("missing room: %d %s", w.Code, w.Body.String())
	}
}

func TestHealthMetricsAndIndex(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", w.Code, w.Body.String())
	}

	w = do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "roomchat_rooms") {
		t.Fatalf("metrics: %d", w.Code)
	}

	w = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "chat") {
		t.Fatalf("index: %d %s", w.Code, w.Body.String())
	}
}

func TestClientTokenCookie(t *testing.T) {
	r, _ := newRouter(t)
	r.GET("/token", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("client_token")) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/token", nil))
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("ct cookie not issued: %v", w.Result().Cookies())
	}
	token := w.Body.String()
	if token == "" || strings.Contains(cookie.Value, token) {
		t.Fatalf("token %q must be set and not stored in clear", token)
	}

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.AddCookie(&http.Cookie{Name: "ct", Value: cookie.Value})
	w = do(r, req)
	if w.Body.String() != token {
		t.Fatalf("token = %q, want %q", w.Body.String(), token)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("existing session must be reused")
	}

	req = httptest.NewRequest(http.MethodGet, "/token", nil)
	req.AddCookie(&http.Cookie{Name: "ct", Value: "forged"})
	w = do(r, req)
	if got := w.Body.String(); got == "" || got == token {
		t.Fatalf("forged cookie must get a fresh token, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	req.Header.Set("Origin", "http://allowed.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := do(r, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.test" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Origin", "http://other.test")
	w = do(r, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("disallowed origin: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}
