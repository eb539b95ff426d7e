// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// successEnvelope は成功レスポンスの統一フォーマット。
type successEnvelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data"`
}

// failEnvelope は失敗レスポンスの統一フォーマット。
// Statusはクライアント起因の失敗で"fail"、サーバー起因で"error"。
type failEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// fieldError はバリデーションエラーのフィールド単位の詳細。
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validationEnvelope はバリデーションエラーレスポンスのフォーマット。
type validationEnvelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors"`
}

// writeSuccess は成功レスポンスを書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successEnvelope{
		Status: "success",
		Data:   data,
	})
}

// writeSuccessWithResults は件数付きの成功レスポンスを書き込む。
// 一覧系エンドポイントで使用する。
func writeSuccessWithResults(w http.ResponseWriter, statusCode int, results int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successEnvelope{
		Status:  "success",
		Results: &results,
		Data:    data,
	})
}

// writeFail は失敗レスポンスを書き込む。
// ステータスコードが500以上の場合はstatus="error"、それ以外は"fail"。
func writeFail(w http.ResponseWriter, statusCode int, message string) {
	status := "fail"
	if statusCode >= http.StatusInternalServerError {
		status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(failEnvelope{
		Status:  status,
		Message: message,
	})
}

// writeValidationError はフィールドエラー一覧付きの400レスポンスを書き込む。
func writeValidationError(w http.ResponseWriter, errs []fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(validationEnvelope{
		Status:  "error",
		Message: "Validation Error",
		Errors:  errs,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外の未分類エラーは詳細をログのみに記録し、
// クライアントには一般的なメッセージを返して内部情報の漏洩を防ぐ。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeFail(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeFail(w, http.StatusInternalServerError, "Internal server error")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case model.ErrCodeTaskForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
