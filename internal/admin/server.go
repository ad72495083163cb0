package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"rserve/internal/config"
	"rserve/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server は運用APIのHTTPサーバーを管理する構造体
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New は新しい運用APIサーバーを作成する
func New(ctx context.Context, cfg *config.Config, st *stats.Stats, logger *slog.Logger) (*Server, error) {
	doc, err := loadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	h := &AdminHandler{
		config:     cfg,
		stats:      st,
		openAPI:    doc,
		instanceID: uuid.NewString(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.GET("/health", h.HealthCheck)
	engine.GET("/api/status", h.GetStatus)
	engine.GET("/api/openapi.json", h.GetOpenAPI)

	return &Server{
		logger: logger,
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.AdminAddress(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler はルーティング済みのハンドラーを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve は ln で運用APIを提供する
// Shutdown で停止した場合は nil を返す
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("運用APIサーバーを起動しています", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("運用APIサーバーの起動に失敗: %w", err)
	}
	return nil
}

// Listen は設定のアドレスでリッスンを開始する
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("運用APIのリッスンに失敗: %w", err)
	}
	return ln, nil
}

// Shutdown は運用APIサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("運用APIサーバーのシャットダウンに失敗: %w", err)
	}
	return nil
}

// requestLogger はリクエストをslogに記録するミドルウェア
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("admin request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
