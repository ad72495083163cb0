package admin

import (
	"net/http"
	"time"

	"rserve/internal/config"
	"rserve/internal/stats"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

// AdminHandler は運用APIの各エンドポイントを実装する
type AdminHandler struct {
	config     *config.Config
	stats      *stats.Stats
	openAPI    *openapi3.T
	instanceID string
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    Healthy,
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus は稼働状況取得エンドポイントの実装
func (h *AdminHandler) GetStatus(c *gin.Context) {
	snap := h.stats.Snapshot()
	now := time.Now()

	response := StatusResponse{
		Status:     Running,
		InstanceID: h.instanceID,
		Server: ServerInfo{
			Host: h.config.Host,
			Port: h.config.Port,
			Root: h.config.Root,
		},
		Connections: ConnectionStats{
			Accepted: snap.Accepted,
			Active:   snap.Active,
		},
		Requests: RequestStats{
			Total:    snap.Requests,
			OK:       snap.OK,
			NotFound: snap.NotFound,
		},
		StartedAt:     h.stats.StartedAt(),
		UptimeSeconds: now.Sub(h.stats.StartedAt()).Seconds(),
		Timestamp:     now,
	}

	c.JSON(http.StatusOK, response)
}

// GetOpenAPI は埋め込みOpenAPI定義を返す
func (h *AdminHandler) GetOpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, h.openAPI)
}
