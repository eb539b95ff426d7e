// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// 所有権付きの更新・削除は、存在確認と変更を同一トランザクションで
// アトミックに実行する。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	// 所有権の判定は呼び出し側（サービス層）が行う。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByUserID は指定ユーザーのタスク一覧をcreated_at降順で返す。
	// タスクが存在しない場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// UpdateOwned は存在確認・所有権確認・部分更新を1トランザクションで実行する。
	// タスクが存在しない場合はErrNotFound、所有者が異なる場合はErrNotOwnedを返す。
	// 成功時はマージ済みのレコードを返す。
	UpdateOwned(ctx context.Context, id, userID string, patch model.TaskPatch) (*model.Task, error)

	// DeleteOwned は存在確認・所有権確認・削除を1トランザクションで実行する。
	// タスクが存在しない場合はErrNotFound、所有者が異なる場合はErrNotOwnedを返す。
	DeleteOwned(ctx context.Context, id, userID string) error
}
