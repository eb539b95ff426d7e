package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/security"
)

// --- モック定義 ---

type mockTaskService struct {
	createFn func(ctx context.Context, userID, title, description string) (*model.Task, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Task, error)
	getFn    func(ctx context.Context, userID, taskID string) (*model.Task, error)
	updateFn func(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	deleteFn func(ctx context.Context, userID, taskID string) error
}

func (m *mockTaskService) Create(ctx context.Context, userID, title, description string) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, title, description)
	}
	return nil, nil
}

func (m *mockTaskService) List(ctx context.Context, userID string) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.Task{}, nil
}

func (m *mockTaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, taskID)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, taskID, patch)
	}
	return nil, nil
}

func (m *mockTaskService) Delete(ctx context.Context, userID, taskID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, taskID)
	}
	return nil
}

var _ TaskServiceInterface = (*mockTaskService)(nil)

func testTask(id, userID string) *model.Task {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.Task{
		ID:          id,
		UserID:      userID,
		Title:       "Buy milk",
		Description: "2 liters",
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// authedRequest は認証済みアイデンティティとchiのURLパラメータを設定したリクエストを作る。
func authedRequest(t *testing.T, method, path, taskID, body string) *http.Request {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)

	ctx := middleware.ContextWithIdentity(req.Context(), middleware.Identity{
		ID:    "user-1",
		Email: "alice@example.com",
	})

	if taskID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", taskID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

// --- テスト ---

func TestTaskHandler_Create_Success_Returns201AndRecordsMetric(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(ctx context.Context, userID, title, description string) (*model.Task, error) {
			return testTask("task-1", userID), nil
		},
	}
	metrics := &mockMetrics{}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), metrics)

	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"Buy milk","description":"2 liters"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	task := data["task"].(map[string]any)
	if task["title"] != "Buy milk" {
		t.Errorf("title = %v, want %q", task["title"], "Buy milk")
	}
	if task["completed"] != false {
		t.Errorf("completed = %v, want false", task["completed"])
	}
	if task["userId"] != "user-1" {
		t.Errorf("userId = %v, want %q", task["userId"], "user-1")
	}

	if metrics.tasksCreated != 1 {
		t.Errorf("tasksCreated = %d, want 1", metrics.tasksCreated)
	}
}

func TestTaskHandler_Create_EmptyTitle_Returns400(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"","description":"x"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := decodeBody(t, resp)
	errs := body["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["field"] != "title" {
		t.Errorf("field = %v, want %q", first["field"], "title")
	}
}

func TestTaskHandler_Create_TitleTooLong_Returns400(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), &mockMetrics{})

	longTitle := strings.Repeat("a", 101)
	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"`+longTitle+`"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTaskHandler_Create_StripsTagsBeforePersisting(t *testing.T) {
	var gotTitle, gotDescription string
	svc := &mockTaskService{
		createFn: func(ctx context.Context, userID, title, description string) (*model.Task, error) {
			gotTitle = title
			gotDescription = description
			return testTask("task-1", userID), nil
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"<b>Buy milk</b>","description":"<script>alert(1)</script>today"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotTitle != "Buy milk" {
		t.Errorf("title = %q, want %q", gotTitle, "Buy milk")
	}
	if gotDescription != "today" {
		t.Errorf("description = %q, want %q", gotDescription, "today")
	}
}

func TestTaskHandler_Create_TitleEmptyAfterSanitize_Returns400(t *testing.T) {
	// タグのみのタイトルはサニタイズで空になるため、保存せず400を返す
	h := NewTaskHandler(&mockTaskService{
		createFn: func(ctx context.Context, userID, title, description string) (*model.Task, error) {
			t.Error("service should not be reached")
			return nil, nil
		},
	}, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"<b></b>","description":"x"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := decodeBody(t, resp)
	errs := body["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["field"] != "title" {
		t.Errorf("field = %v, want %q", first["field"], "title")
	}
}

func TestTaskHandler_Create_AngleBracketsKeepLength(t *testing.T) {
	// タグを構成しない「<」はエスケープで膨張せず、100文字の
	// タイトルとしてそのまま受理・保存されること
	input := strings.Repeat("<", 100)

	var gotTitle string
	svc := &mockTaskService{
		createFn: func(ctx context.Context, userID, title, description string) (*model.Task, error) {
			gotTitle = title
			task := testTask("task-1", userID)
			task.Title = title
			return task, nil
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPost, "/api/tasks", "",
		`{"title":"`+input+`"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotTitle != input {
		t.Errorf("title = %q, want %q", gotTitle, input)
	}
}

func TestTaskHandler_List_ReturnsTasksWithCount(t *testing.T) {
	svc := &mockTaskService{
		listFn: func(ctx context.Context, userID string) ([]*model.Task, error) {
			return []*model.Task{testTask("task-1", userID), testTask("task-2", userID)}, nil
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodGet, "/api/tasks", "", "")
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, resp)
	if body["results"] != float64(2) {
		t.Errorf("results = %v, want 2", body["results"])
	}
	data := body["data"].(map[string]any)
	tasks := data["tasks"].([]any)
	if len(tasks) != 2 {
		t.Errorf("len(tasks) = %d, want 2", len(tasks))
	}
}

func TestTaskHandler_List_Empty_ReturnsEmptyArrayNotNull(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodGet, "/api/tasks", "", "")
	w := httptest.NewRecorder()

	h.List(w, req)

	body := decodeBody(t, w.Result())
	if body["results"] != float64(0) {
		t.Errorf("results = %v, want 0", body["results"])
	}
	data := body["data"].(map[string]any)
	tasks, ok := data["tasks"].([]any)
	if !ok {
		t.Fatalf("tasks = %v, want empty array", data["tasks"])
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestTaskHandler_Get_NotFound_Returns404(t *testing.T) {
	svc := &mockTaskService{
		getFn: func(ctx context.Context, userID, taskID string) (*model.Task, error) {
			return nil, model.NewTaskNotFoundError()
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodGet, "/api/tasks/missing", "missing", "")
	w := httptest.NewRecorder()

	h.Get(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Task not found" {
		t.Errorf("message = %v, want %q", body["message"], "Task not found")
	}
}

func TestTaskHandler_Get_OtherUsersTask_Returns403(t *testing.T) {
	svc := &mockTaskService{
		getFn: func(ctx context.Context, userID, taskID string) (*model.Task, error) {
			return nil, model.NewTaskForbiddenError()
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodGet, "/api/tasks/task-9", "task-9", "")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestTaskHandler_Update_Success_ReturnsUpdatedTask(t *testing.T) {
	var gotPatch model.TaskPatch
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
			gotPatch = patch
			task := testTask(taskID, userID)
			task.Completed = true
			return task, nil
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPatch, "/api/tasks/task-1", "task-1",
		`{"completed":true}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if gotPatch.Completed == nil || !*gotPatch.Completed {
		t.Error("expected completed=true in patch")
	}
	if gotPatch.Title != nil {
		t.Error("title should not be in patch")
	}

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	task := data["task"].(map[string]any)
	if task["completed"] != true {
		t.Errorf("completed = %v, want true", task["completed"])
	}
}

func TestTaskHandler_Update_SanitizesPatchFields(t *testing.T) {
	var gotPatch model.TaskPatch
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
			gotPatch = patch
			return testTask(taskID, userID), nil
		},
	}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPatch, "/api/tasks/task-1", "task-1",
		`{"title":"<i>Title</i>","description":"<img src=x onerror=alert(1)>desc"}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPatch.Title == nil || *gotPatch.Title != "Title" {
		t.Errorf("patch title = %v, want %q", gotPatch.Title, "Title")
	}
	if gotPatch.Description == nil || *gotPatch.Description != "desc" {
		t.Errorf("patch description = %v, want %q", gotPatch.Description, "desc")
	}
}

func TestTaskHandler_Update_TitleEmptyAfterSanitize_Returns400(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{
		updateFn: func(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
			t.Error("service should not be reached")
			return nil, nil
		},
	}, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPatch, "/api/tasks/task-1", "task-1",
		`{"title":"<b></b>"}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTaskHandler_Update_EmptyPatch_Returns400(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), &mockMetrics{})

	req := authedRequest(t, http.MethodPatch, "/api/tasks/task-1", "task-1", `{}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTaskHandler_Delete_Success_Returns204AndRecordsMetric(t *testing.T) {
	metrics := &mockMetrics{}
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), metrics)

	req := authedRequest(t, http.MethodDelete, "/api/tasks/task-1", "task-1", "")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if metrics.tasksDeleted != 1 {
		t.Errorf("tasksDeleted = %d, want 1", metrics.tasksDeleted)
	}
}

func TestTaskHandler_Delete_OtherUsersTask_Returns404(t *testing.T) {
	// 削除では403を返さず、存在の有無を漏らさない
	svc := &mockTaskService{
		deleteFn: func(ctx context.Context, userID, taskID string) error {
			return model.NewTaskNotFoundError()
		},
	}
	metrics := &mockMetrics{}
	h := NewTaskHandler(svc, security.NewInputSanitizer(), metrics)

	req := authedRequest(t, http.MethodDelete, "/api/tasks/task-9", "task-9", "")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if metrics.tasksDeleted != 0 {
		t.Errorf("tasksDeleted = %d, want 0", metrics.tasksDeleted)
	}
}

func TestTaskHandler_NoIdentity_Returns401(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{}, security.NewInputSanitizer(), &mockMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
