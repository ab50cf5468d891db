package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/shell"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/sound"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoStreamer struct{}

func (echoStreamer) Stream(_ context.Context, _ []types.ChatMessage, prompt string, yield func(string) error) error {
	if err := yield("echo: "); err != nil {
		return err
	}
	return yield(prompt)
}

type testEnv struct {
	router  *gin.Engine
	desktop *app.Desktop
	clock   *clock.Manual
}

func newEnv(t *testing.T, running bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewManual(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC))
	desk := app.New(app.Options{
		Clock:    clk,
		Streamer: echoStreamer{},
		Random:   func() float64 { return 0.5 },
	}, nil)
	t.Cleanup(desk.Close)
	desk.Start()
	if running {
		timings := session.DefaultTimings()
		clk.Advance(timings.Boot + timings.Fade)
	}

	bank, err := sound.NewBank(0.5)
	require.NoError(t, err)

	router := gin.New()
	NewHandlers(desk, Options{
		Sounds:   bank,
		Metrics:  monitoring.NewMetrics(),
		Location: time.UTC,
	}, nil).Register(router)

	return &testEnv{router: router, desktop: desk, clock: clk}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (e *testEnv) open(t *testing.T, appID string) int {
	t.Helper()
	w, body := e.do(t, "POST", "/windows", `{"app_id":"`+appID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
	win := body["window"].(map[string]interface{})
	return int(win["id"].(float64))
}

func TestRootAndHealth(t *testing.T) {
	env := newEnv(t, true)

	w, body := env.do(t, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", body["status"])

	w, body = env.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "running", body["phase"])
}

func TestIntentsRefusedWhileBooting(t *testing.T) {
	env := newEnv(t, false)

	w, body := env.do(t, "POST", "/windows", `{"app_id":"notepad"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "booting", body["phase"])

	// Confirmations are always accepted
	w, body = env.do(t, "POST", "/windows/0/closed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestOpenWindowValidation(t *testing.T) {
	env := newEnv(t, true)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing body", "", http.StatusBadRequest},
		{"missing app id", `{}`, http.StatusBadRequest},
		{"bad characters", `{"app_id":"../etc"}`, http.StatusBadRequest},
		{"unknown app", `{"app_id":"solitaire"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := env.do(t, "POST", "/windows", tt.body)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestWindowLifecycle(t *testing.T) {
	env := newEnv(t, true)
	id := env.open(t, "notepad")

	w, body := env.do(t, "POST", "/windows/0/move", `{"x":0,"y":-20}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	pos := body["window"].(map[string]interface{})["position"].(map[string]interface{})
	assert.Equal(t, 0.0, pos["x"])
	assert.Equal(t, -20.0, pos["y"])

	w, _ = env.do(t, "POST", "/windows/0/move", `{"x":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, "POST", "/windows/abc/focus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body = env.do(t, "POST", "/windows/99/focus", "")
	assert.Equal(t, false, body["success"])

	_, body = env.do(t, "POST", "/windows/0/minimize", "")
	assert.Equal(t, true, body["success"])
	_, body = env.do(t, "POST", "/windows/0/minimized", "")
	assert.Equal(t, true, body["success"])
	_, body = env.do(t, "POST", "/windows/0/restore", "")
	assert.Equal(t, true, body["success"])
	_, body = env.do(t, "POST", "/windows/0/close", "")
	assert.Equal(t, true, body["success"])
	_, body = env.do(t, "POST", "/windows/0/closed", "")
	assert.Equal(t, true, body["success"])

	_, ok := env.desktop.Windows.Get(id)
	assert.False(t, ok)
}

func TestDesktopSnapshotAndStartMenu(t *testing.T) {
	env := newEnv(t, true)

	_, body := env.do(t, "POST", "/start-menu/toggle", "")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["shell"].(map[string]interface{})["start_menu_open"])

	env.open(t, "about_pc")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/desktop", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap types.DesktopSnapshot
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &snap))
	assert.False(t, snap.Shell.StartMenuOpen)
	assert.Len(t, snap.Windows, 1)
	assert.Equal(t, types.PhaseRunning, snap.Session.Phase)
}

func TestListAppsAndClock(t *testing.T) {
	env := newEnv(t, true)

	_, body := env.do(t, "GET", "/apps", "")
	assert.Len(t, body["apps"], 4)

	_, body = env.do(t, "GET", "/clock", "")
	assert.Equal(t, "14:05:03", body["time"])
	assert.Equal(t, "3/9/2024", body["date"])
}

func TestWallpaper(t *testing.T) {
	env := newEnv(t, true)

	w, _ := env.do(t, "PUT", "/wallpaper", `{"url":"javascript:alert(1)"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shell.DefaultWallpaper, env.desktop.Shell.Wallpaper())

	w, body := env.do(t, "PUT", "/wallpaper", `{"url":"https://example.com/bg.jpg"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://example.com/bg.jpg", env.desktop.Shell.Wallpaper())
}

func TestNotepadEndpoints(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "notepad")

	w, body := env.do(t, "PUT", "/windows/0/notepad", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	_, body = env.do(t, "GET", "/windows/0/notepad", "")
	assert.Equal(t, "hello", body["text"])

	w, _ = env.do(t, "GET", "/windows/7/notepad", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, body = env.do(t, "PUT", "/windows/7/notepad", `{"text":"x"}`)
	assert.Equal(t, false, body["success"])
}

func TestWallpaperPickerEndpoints(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "wallpaper_changer")

	_, body := env.do(t, "GET", "/windows/0/wallpapers", "")
	assert.Len(t, body["wallpapers"], 6)

	w, _ := env.do(t, "POST", "/windows/0/wallpapers/9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, "POST", "/windows/0/wallpapers/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, "POST", "/windows/0/wallpapers/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://picsum.photos/seed/wall3/1920/1080", env.desktop.Shell.Wallpaper())
}

func TestAboutEndpoint(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "about_pc")

	w, body := env.do(t, "GET", "/windows/0/about", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["product"])
	assert.NotEmpty(t, body["hardware"])
}

func TestChatEndpoints(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "gemini_chat")

	w, body := env.do(t, "POST", "/windows/0/chat", `{"message":"hi <b>there</b>"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, body["success"])

	chat, err := env.desktop.Apps.Chat(0)
	require.NoError(t, err)
	chat.Wait()

	_, body = env.do(t, "GET", "/windows/0/chat", "")
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 3)
	assert.Equal(t, "echo: hi there", msgs[2].(map[string]interface{})["text"])

	w, _ = env.do(t, "POST", "/windows/0/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, "GET", "/windows/0/notepad", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "window hosts chat, not notepad")
}

func TestShutdownEndpoint(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "notepad")

	w, body := env.do(t, "POST", "/session/shutdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1.0, body["closing"])

	w, _ = env.do(t, "POST", "/session/shutdown", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	_, body = env.do(t, "GET", "/health", "")
	assert.Equal(t, "shutting_down", body["status"])

	_, body = env.do(t, "POST", "/windows/0/closed", "")
	assert.Equal(t, true, body["success"])
	env.clock.Advance(session.DefaultTimings().Settle)

	_, body = env.do(t, "GET", "/session", "")
	assert.Equal(t, "shutdown_final", body["session"].(map[string]interface{})["phase"])
	assert.Equal(t, false, body["accepts_input"])
}

func TestSounds(t *testing.T) {
	env := newEnv(t, true)

	w, _ := env.do(t, "GET", "/sounds/startup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "wav")
	assert.Equal(t, "RIFF", w.Body.String()[:4])

	req := httptest.NewRequest("GET", "/sounds/startup", nil)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	w2 := httptest.NewRecorder()
	env.router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotModified, w2.Code)

	w, _ = env.do(t, "GET", "/sounds/kazoo", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	env := newEnv(t, true)
	env.open(t, "notepad")

	w, _ := env.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	_, body := env.do(t, "GET", "/metrics/json", "")
	assert.Equal(t, "running", body["phase"])
	assert.NotNil(t, body["backend"])
}

func TestStreamLogs(t *testing.T) {
	env := newEnv(t, true)

	w, body := env.do(t, "POST", "/logs", `{"entries":[{"level":"warn","message":"drag lag","context":{"ms":40}}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["entries_processed"])

	w, _ = env.do(t, "POST", "/logs", `{"entries":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
