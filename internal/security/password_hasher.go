// Package security はパスワードハッシュと入力サニタイズを提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost はbcryptのコストファクタ。
const hashCost = 10

// PasswordHasher はパスワードの一方向ハッシュと照合のインターフェース。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きダイジェストを生成する。
	// ソルトはダイジェストに埋め込まれる。
	Hash(plaintext string) (string, error)

	// Verify は平文パスワードとダイジェストを照合する。
	// 不一致はエラーではなくfalseを返す。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptを使用したPasswordHasherの実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はコストファクタ10のBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: hashCost}
}

// Hash は平文パスワードからbcryptダイジェストを生成する。
// ソルトはbcryptが毎回ランダムに生成するため、同一入力でも出力は毎回異なる。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとダイジェストを照合する。
// 比較はbcrypt内部の定数時間比較に依存する。
// ダイジェストが不正な形式の場合もfalseを返す。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
