package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/metrics"
	"github.com/hitoshi/contactbook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	Authenticator     middleware.TokenAuthenticator
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// メトリクス（nilの場合は/metricsを公開しない）
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// ユーザー
	AuthService AuthServiceInterface

	// 連絡先
	ContactService ContactServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → Metrics → SecurityHeaders → CORS → (TokenGuard)
//
// 登録・ログイン・ヘルスチェック・メトリクスはトークンガードの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	userHandler := NewUserHandler(deps.AuthService)
	contactHandler := NewContactHandler(deps.ContactService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.Register)
		r.Post("/users/login", userHandler.Login)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewTokenGuardMiddleware(deps.Authenticator))

			r.Get("/users/current", userHandler.Current)
			r.Patch("/users/current", userHandler.UpdateCurrent)
			r.Delete("/users/logout", userHandler.Logout)

			r.Post("/contacts", contactHandler.Create)
			r.Get("/contacts/{id}", contactHandler.Get)
			r.Patch("/contacts/{id}", contactHandler.Update)
		})
	})

	return r
}
