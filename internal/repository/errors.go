package repository

import "errors"

// リポジトリ層の判定結果を表すセンチネルエラー。
// サービス層がerrors.Isで判別し、ドメインエラーに変換する。
var (
	// ErrNotFound は対象レコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")

	// ErrNotOwned はレコードは存在するが所有者が一致しないことを表す。
	ErrNotOwned = errors.New("record not owned by user")

	// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
	ErrDuplicateEmail = errors.New("email already exists")
)
