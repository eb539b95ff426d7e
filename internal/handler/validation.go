package handler

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	minPasswordLength    = 8
)

// emailPattern はメールアドレスの簡易構文チェック。
// 厳密なRFC準拠ではなく、明らかに不正な入力を弾くことが目的。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateEmail はメールアドレスの構文を検証する。
func validateEmail(email string) []fieldError {
	if !emailPattern.MatchString(email) {
		return []fieldError{{Field: "email", Message: "Invalid email format"}}
	}
	return nil
}

// validatePassword は登録時のパスワード強度ルールを検証する。
// 8文字以上、大文字・小文字・数字を各1文字以上含むこと。
func validatePassword(password string) []fieldError {
	var errs []fieldError

	if utf8.RuneCountInString(password) < minPasswordLength {
		errs = append(errs, fieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		errs = append(errs, fieldError{Field: "password", Message: "Password must contain at least one uppercase letter"})
	}
	if !hasLower {
		errs = append(errs, fieldError{Field: "password", Message: "Password must contain at least one lowercase letter"})
	}
	if !hasDigit {
		errs = append(errs, fieldError{Field: "password", Message: "Password must contain at least one number"})
	}

	return errs
}

// validateRegisterRequest は登録リクエストを検証する。
func validateRegisterRequest(req registerRequest) []fieldError {
	var errs []fieldError
	errs = append(errs, validateEmail(req.Email)...)
	errs = append(errs, validatePassword(req.Password)...)
	return errs
}

// validateLoginRequest はログインリクエストを検証する。
// パスワード強度ルールは登録時のみ適用するため、ここでは非空のみ確認する。
func validateLoginRequest(req loginRequest) []fieldError {
	var errs []fieldError
	errs = append(errs, validateEmail(req.Email)...)
	if req.Password == "" {
		errs = append(errs, fieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// validateTitle はタスクタイトルを検証する（1〜100文字）。
func validateTitle(title string) []fieldError {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return []fieldError{{Field: "title", Message: "Title is required"}}
	}
	if n > maxTitleLength {
		return []fieldError{{Field: "title", Message: "Title is too long"}}
	}
	return nil
}

// validateDescription はタスク説明文を検証する（1000文字以下）。
func validateDescription(description string) []fieldError {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return []fieldError{{Field: "description", Message: "Description is too long"}}
	}
	return nil
}

// validateCreateTaskRequest はタスク作成リクエストを検証する。
func validateCreateTaskRequest(req createTaskRequest) []fieldError {
	var errs []fieldError
	errs = append(errs, validateTitle(req.Title)...)
	errs = append(errs, validateDescription(req.Description)...)
	return errs
}

// validateUpdateTaskRequest はタスク部分更新リクエストを検証する。
// 更新対象フィールドが1つも指定されていない場合はエラー。
func validateUpdateTaskRequest(req updateTaskRequest) []fieldError {
	if req.Title == nil && req.Description == nil && req.Completed == nil {
		return []fieldError{{Field: "body", Message: "At least one field must be provided"}}
	}

	var errs []fieldError
	if req.Title != nil {
		errs = append(errs, validateTitle(*req.Title)...)
	}
	if req.Description != nil {
		errs = append(errs, validateDescription(*req.Description)...)
	}
	return errs
}
