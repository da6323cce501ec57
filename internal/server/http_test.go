package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teatime-live/internal/live/domain"
	livehandler "teatime-live/internal/live/handler"
	"teatime-live/internal/live/service"
	"teatime-live/internal/live/webhook"
	"teatime-live/internal/security"
)

type stubLive struct{}

func (stubLive) Open(context.Context, domain.Actor, int64) (*domain.Credential, error) {
	return &domain.Credential{}, nil
}
func (stubLive) IsOpen(context.Context, domain.Actor, int64) (bool, error) { return true, nil }
func (stubLive) Join(context.Context, domain.Actor, int64) (*domain.Credential, error) {
	return &domain.Credential{}, nil
}
func (stubLive) Kick(context.Context, domain.Actor, int64, string) error { return nil }
func (stubLive) Mute(context.Context, domain.Actor, int64, service.MuteRequest) error { return nil }
func (stubLive) Close(context.Context, domain.Actor, int64) error { return nil }

type stubReceiver struct{}

func (stubReceiver) Handle(context.Context, []byte, string) webhook.Outcome { return webhook.OutcomeIgnored }

func newTestRouter(t *testing.T) (*gin.Engine, *security.TokenProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	r := NewRouter(Deps{
		Live:   livehandler.NewHandler(stubLive{}, stubReceiver{}, "ws://localhost:7880"),
		Tokens: tokens,
		Logger: zerolog.Nop(),
	})
	return r, tokens
}

func TestNewRouter_RequiresBearerOnLiveRoutes(t *testing.T) {
	r, tokens := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/boards/1/lives", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	token, _, err := tokens.IssueAccess("u1", "Jamie")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/boards/1/lives", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestNewRouter_PublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/healthz"},
		{http.MethodPost, "/api/v1/lives/webhook"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s %s: status = %d, want 200", tc.method, tc.path, w.Code)
		}
	}
}
