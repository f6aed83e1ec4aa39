package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/model"
)

// TestMiddlewareChain_PublicAndGuardedRoutes は
// RequestID -> Logging -> Recovery -> CORS の共通チェーンと、
// グループ単位のトークンガードがchi.Routerで正しく動作することを検証する。
func TestMiddlewareChain_PublicAndGuardedRoutes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := chi.NewRouter()
	r.Use(NewRequestIDMiddleware())
	r.Use(NewLoggingMiddleware(logger))
	r.Use(NewRecoveryMiddleware())
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))

	r.Post("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Group(func(r chi.Router) {
		r.Use(NewTokenGuardMiddleware(tokenTable(map[string]*model.User{
			"chain-token": {ID: 77, Username: "abud"},
		})))
		r.Get("/api/users/current", func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			WriteJSON(w, http.StatusOK, map[string]string{"username": user.Username})
		})
	})

	// 認証不要ルート
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users/login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("public route status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on public route")
	}

	// トークンなし
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/current", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("guarded route without token status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// 有効なトークン
	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
	req.Header.Set(AuthorizationHeader, "chain-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("guarded route status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["username"] != "abud" {
		t.Errorf("username = %q, want %q", body["username"], "abud")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry["user_id"] != float64(77) {
		t.Errorf("logged user_id = %v, want 77", entry["user_id"])
	}
	if entry["request_id"] == nil || entry["request_id"] == "" {
		t.Error("expected request_id in log entry")
	}
}

// TestMiddlewareChain_PanicInGuardedRoute はガード配下のpanicが500に変換されることを検証する。
func TestMiddlewareChain_PanicInGuardedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.With(NewTokenGuardMiddleware(tokenTable(map[string]*model.User{
		"t": {ID: 1},
	}))).Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(AuthorizationHeader, "t")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
