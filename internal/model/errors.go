// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はドメイン操作の失敗種別を表す。
// サービス層が返し、ハンドラー層で一度だけHTTPステータスコードと
// レスポンスエンベロープに変換される。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアントに返すメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeTaskForbidden      = "TASK_FORBIDDEN"
)

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailTaken,
		Message: "Email already in use",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不明とパスワード不一致の両方で同一のエラーを返し、
// アカウントの存在有無を漏らさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "Not authenticated",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeTaskNotFound,
		Message: "Task not found",
	}
}

// NewTaskForbiddenError は他ユーザーのタスクへのアクセスエラーを生成する。
// 取得・更新パスでのみ使用する。削除パスは存在を漏らさないため
// NewTaskNotFoundErrorを返す。
func NewTaskForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeTaskForbidden,
		Message: "You are not authorized to access this task",
	}
}
