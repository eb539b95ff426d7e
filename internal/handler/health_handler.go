package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	environment string
	startTime   time.Time
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成する。
func NewHealthHandler(environment string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		environment: environment,
		startTime:   startTime,
	}
}

// healthResponse はヘルスチェックレスポンスのボディ。
type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Env       string  `json:"env"`
	Uptime    float64 `json:"uptime"`
}

// Check はサーバーの稼働状態を返す。
// エンベロープは使わず、監視ツールがそのまま読めるフラットなJSONを返す。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Env:       h.environment,
		Uptime:    time.Since(h.startTime).Seconds(),
	})
}
