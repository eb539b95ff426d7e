package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/security"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービス層のインターフェース。
type TaskServiceInterface interface {
	Create(ctx context.Context, userID, title, description string) (*model.Task, error)
	List(ctx context.Context, userID string) ([]*model.Task, error)
	Get(ctx context.Context, userID, taskID string) (*model.Task, error)
	Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// TaskMetricsRecorder はタスク操作メトリクスの記録に必要なインターフェース。
type TaskMetricsRecorder interface {
	RecordTaskCreated()
	RecordTaskDeleted()
}

// TaskHandler はタスク管理のHTTPハンドラー。
// タイトル・説明文はバリデーションの前にサニタイズする。
// タグ除去後の値を検証しないと、サニタイズで空になったタイトルや
// エスケープで膨張した文字列が文字数制約をすり抜けるため。
type TaskHandler struct {
	service   TaskServiceInterface
	sanitizer security.InputSanitizer
	metrics   TaskMetricsRecorder
}

// NewTaskHandler はTaskHandlerの新しいインスタンスを生成する。
func NewTaskHandler(service TaskServiceInterface, sanitizer security.InputSanitizer, metrics TaskMetricsRecorder) *TaskHandler {
	return &TaskHandler{
		service:   service,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateTaskRequest はタスク部分更新リクエストのボディ。
// nilフィールドは変更対象外。
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// taskResponse はAPIレスポンス用のタスク表現。
type taskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// toTaskResponse はドメインモデルをレスポンス表現に変換する。
func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// Create はタスク作成を処理する。
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// サニタイズ後の値を検証する（保存されるのはこの値）
	req.Title = h.sanitizer.Sanitize(req.Title)
	req.Description = h.sanitizer.Sanitize(req.Description)

	if errs := validateCreateTaskRequest(req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	task, err := h.service.Create(r.Context(), identity.ID, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTaskCreated()
	writeSuccess(w, http.StatusCreated, map[string]taskResponse{
		"task": toTaskResponse(task),
	})
}

// List は認証済みユーザーのタスク一覧を返す。
// GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	tasks, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, toTaskResponse(task))
	}

	writeSuccessWithResults(w, http.StatusOK, len(responses), map[string][]taskResponse{
		"tasks": responses,
	})
}

// Get は指定IDのタスクを返す。
// GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	taskID := chi.URLParam(r, "id")

	task, err := h.service.Get(r.Context(), identity.ID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]taskResponse{
		"task": toTaskResponse(task),
	})
}

// Update は指定IDのタスクを部分更新する。
// PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	taskID := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// サニタイズ後の値を検証する（保存されるのはこの値）
	if req.Title != nil {
		sanitized := h.sanitizer.Sanitize(*req.Title)
		req.Title = &sanitized
	}
	if req.Description != nil {
		sanitized := h.sanitizer.Sanitize(*req.Description)
		req.Description = &sanitized
	}

	if errs := validateUpdateTaskRequest(req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}

	task, err := h.service.Update(r.Context(), identity.ID, taskID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]taskResponse{
		"task": toTaskResponse(task),
	})
}

// Delete は指定IDのタスクを削除する。
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeFail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), identity.ID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTaskDeleted()
	w.WriteHeader(http.StatusNoContent)
}
