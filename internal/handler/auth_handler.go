package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービス層のインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthFailureRecorder は認証失敗メトリクスの記録に必要なインターフェース。
type AuthFailureRecorder interface {
	RecordAuthFailure()
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthFailureRecorder
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics AuthFailureRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はAPIレスポンス用のユーザー表現。
// パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// authResponse はトークン発行を伴う認証レスポンス。
type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// toUserResponse はドメインモデルをレスポンス表現に変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register はユーザー登録を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := validateRegisterRequest(req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, authResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Login はログインを処理する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := validateLoginRequest(req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthFailure()
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, authResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Me は認証済みユーザー自身の情報を返す。
// GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.service.GetUser(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]userResponse{
		"user": toUserResponse(user),
	})
}
