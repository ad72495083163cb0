package admin

import "time"

// HealthStatus はヘルスチェックの状態
type HealthStatus string

// RunStatus はサーバーの動作状態
type RunStatus string

const (
	Healthy HealthStatus = "healthy"
	Running RunStatus    = "running"
)

// HealthResponse は /health のレスポンス
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}

// ServerInfo は配信サーバーの設定情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Root string `json:"root"`
}

// ConnectionStats は接続数
type ConnectionStats struct {
	Accepted uint64 `json:"accepted"`
	Active   int64  `json:"active"`
}

// RequestStats はリクエスト数
type RequestStats struct {
	Total    uint64 `json:"total"`
	OK       uint64 `json:"ok"`
	NotFound uint64 `json:"not_found"`
}

// StatusResponse は /api/status のレスポンス
type StatusResponse struct {
	Status        RunStatus       `json:"status"`
	InstanceID    string          `json:"instance_id"`
	Server        ServerInfo      `json:"server"`
	Connections   ConnectionStats `json:"connections"`
	Requests      RequestStats    `json:"requests"`
	StartedAt     time.Time       `json:"started_at"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Timestamp     time.Time       `json:"timestamp"`
}
