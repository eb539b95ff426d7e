// Package task はタスク管理のドメインロジックを提供する。
// すべての操作は認証済みユーザーIDを前提とし、所有権を強制する。
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo repository.TaskRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository) *Service {
	return &Service{
		taskRepo: taskRepo,
	}
}

// Create は認証済みユーザーのタスクを作成する。
// completedはfalse、作成日時・更新日時は現在時刻で初期化する。
// タイトル・説明文はハンドラー層でサニタイズ・検証済みであることを前提とする。
func (s *Service) Create(ctx context.Context, userID, title, description string) (*model.Task, error) {
	now := time.Now().UTC()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// List は認証済みユーザーのタスク一覧をcreated_at降順で返す。
// タスクが存在しない場合は空スライスを返す（エラーではない）。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Get は指定IDのタスクを取得する。
// タスクが存在しない場合はTaskNotFound、所有者が異なる場合はTaskForbiddenを返す。
func (s *Service) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}
	if task.UserID != userID {
		return nil, model.NewTaskForbiddenError()
	}

	return task, nil
}

// Update は指定IDのタスクを部分更新する。
// 存在確認・所有権確認・更新はリポジトリ層で同一トランザクション内で実行される。
// 取得と同様、未検出はTaskNotFound、所有者不一致はTaskForbiddenを返す。
func (s *Service) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.taskRepo.UpdateOwned(ctx, taskID, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewTaskNotFoundError()
		}
		if errors.Is(err, repository.ErrNotOwned) {
			return nil, model.NewTaskForbiddenError()
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete は指定IDのタスクを削除する。
// 取得・更新と異なり、未検出と所有者不一致のどちらもTaskNotFoundを返す。
// 削除パスでは他ユーザーのタスクの存在を漏らさない。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	err := s.taskRepo.DeleteOwned(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrNotOwned) {
			return model.NewTaskNotFoundError()
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
