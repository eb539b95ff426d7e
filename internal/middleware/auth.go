// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのスキーム接頭辞。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みアイデンティティを格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity は認証済みリクエストに付与されるユーザー情報。
// パスワードハッシュ等は含めず、下流が必要とする最小限に絞る。
type Identity struct {
	ID    string
	Email string
}

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder はユーザー検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// AuthFailureRecorder は認証失敗メトリクスの記録に必要なインターフェース。
type AuthFailureRecorder interface {
	RecordAuthFailure()
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 認証済みアイデンティティをリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダー欠落・形式不正・トークン無効・ユーザー不在はすべて401を返し、
// 認証失敗メトリクスに記録する。metricsはnil許容。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder, metrics AuthFailureRecorder) func(next http.Handler) http.Handler {
	deny := func(w http.ResponseWriter, message string) {
		if metrics != nil {
			metrics.RecordAuthFailure()
		}
		writeUnauthorized(w, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取り出す
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				deny(w, "No token provided")
				return
			}
			token := strings.TrimPrefix(authHeader, bearerPrefix)

			// 2. トークンの署名と有効期限を検証
			userID, err := verifier.Verify(token)
			if err != nil {
				deny(w, "Invalid or expired token")
				return
			}

			// 3. トークン発行後にユーザーが消えていないことを確認
			user, err := users.FindByID(r.Context(), userID)
			if err != nil || user == nil {
				deny(w, "User not found")
				return
			}

			// 4. 認証済みアイデンティティをコンテキストに注入
			ctx := ContextWithIdentity(r.Context(), Identity{
				ID:    user.ID,
				Email: user.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから認証済みアイデンティティを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.ID == "" {
		return Identity{}, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストに認証済みアイデンティティを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// writeUnauthorized は401レスポンスをエンベロープ形式で書き込む。
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "fail",
		"message": message,
	})
}
