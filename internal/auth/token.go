// Package auth はユーザー登録、ログイン、トークン発行・検証を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不一致・形式不正・期限切れのいずれかを表す。
// 呼び出し側は原因を区別せず、一律に未認証として扱う。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンのペイロード。
// 標準クレームに加えてユーザーIDを1つだけ持つ。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenService は署名付きの期限付きIDトークンを発行・検証する。
type TokenService struct {
	secret   []byte
	validity time.Duration
}

// NewTokenService はTokenServiceを生成する。
// validityはトークンの有効期間（発行時刻からの経過時間）を指定する。
func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{
		secret:   secret,
		validity: validity,
	}
}

// Issue は指定ユーザーIDを含むHS256署名付きトークンを発行する。
// 有効期限は発行時刻 + validity。
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、ペイロードのユーザーIDを返す。
// 署名不一致・形式不正・期限切れはすべてErrInvalidTokenを返す。
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
