package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/middleware"
)

// maxBodyBytes はリクエストボディの最大サイズ（10KB）。
// タスク説明文の上限（1000文字）に対して十分な余裕を持たせている。
const maxBodyBytes = 10 * 1024

// RouterDeps はルーター構築に必要な依存をまとめて保持する。
type RouterDeps struct {
	AuthHandler    *AuthHandler
	TaskHandler    *TaskHandler
	HealthHandler  *HealthHandler
	MetricsHandler http.Handler

	TokenVerifier       middleware.TokenVerifier
	UserFinder          middleware.UserFinder
	AuthFailureRecorder middleware.AuthFailureRecorder
	RateLimiter         *middleware.RateLimiter
	RequestRecorder     middleware.RequestRecorder
	Logger              *slog.Logger
	AllowedOrigins      []string
}

// NewRouter はアプリケーション全体のルーターを構築する。
// ミドルウェアの適用順: リカバリ → セキュリティヘッダー → CORS →
// メトリクス → ロギング → ボディサイズ制限。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))
	r.Use(middleware.NewMetricsMiddleware(deps.RequestRecorder))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(bodyLimitMiddleware(maxBodyBytes))

	// 公開エンドポイント
	r.Get("/health", deps.HealthHandler.Check)
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// 登録・ログインはIP単位のレート制限のみ（未認証）
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/api/auth/register", deps.AuthHandler.Register)
		r.Post("/api/auth/login", deps.AuthHandler.Login)
	})

	// 認証必須エンドポイント（ユーザー単位のレート制限付き）
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder, deps.AuthFailureRecorder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/users/me", deps.AuthHandler.Me)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Post("/", deps.TaskHandler.Create)
			r.Get("/", deps.TaskHandler.List)
			r.Get("/{id}", deps.TaskHandler.Get)
			r.Patch("/{id}", deps.TaskHandler.Update)
			r.Delete("/{id}", deps.TaskHandler.Delete)
		})
	})

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	return r
}

// bodyLimitMiddleware はリクエストボディのサイズを制限するミドルウェアを返す。
func bodyLimitMiddleware(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// notFoundResponse は未定義ルートの404レスポンスボディ。
// どのルートに外れたかをクライアントが特定できるよう、パスとメソッドを含める。
type notFoundResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Method  string `json:"method"`
}

// notFoundHandler は未定義ルートへのリクエストにJSONの404を返す。
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(notFoundResponse{
		Status:  "error",
		Message: "Not Found",
		Path:    r.URL.Path,
		Method:  r.Method,
	})
}

// methodNotAllowedHandler は定義済みルートへの未対応メソッドにJSONの405を返す。
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
