// Package model はドメインモデルを定義する。
package model

import "time"

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に確定し、以後変更されない。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch はタスクの部分更新を表す。
// nilフィールドは変更しない。
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty は更新対象フィールドが1つも指定されていない場合にtrueを返す。
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}
