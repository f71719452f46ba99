package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mailsign/internal/metrics"
	"github.com/hitoshi/mailsign/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なDB疎通確認のインターフェース。
// *sql.DB がこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService    AuthServiceInterface
	SessionService SessionServiceInterface
	TenantResolver TenantResolverInterface
	AuthConfig     AuthHandlerConfig

	// 運用
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）はセッションミドルウェアの外に配置する。
// サインイン開始（POST /auth/email）のみIP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェアを最上位に適用
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionService, deps.TenantResolver, deps.AuthConfig)

	// --- 運用ルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		// サインイン開始（IP単位のレート制限を追加）
		r.With(deps.RateLimiter.SigninMiddleware()).Post("/email", authHandler.Initiate)
		r.Get("/email.callback", authHandler.Callback)

		// セッション管理
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/session", authHandler.CurrentSession)
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
					"status": "unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
		})
	}
}
