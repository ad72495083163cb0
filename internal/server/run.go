package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rserve/internal/admin"
	"rserve/internal/config"
	"rserve/internal/handler"
	"rserve/internal/stats"
)

// Run は設定から配信サーバーと運用APIサーバーを組み立てて起動する
// ctx のキャンセルかシグナルでシャットダウンするまで戻らない
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st := stats.New()

	if len(cfg.Headers) > 0 {
		logger.Warn("headers の設定はレスポンスに適用されません", "count", len(cfg.Headers))
	}

	files := handler.NewFileServerHandler(cfg.Root, handler.FileReader{
		DetectContentType: cfg.DetectContentType,
	})
	srv := New(cfg, files, logger, st)

	if cfg.Admin.Enabled {
		adm, err := admin.New(ctx, cfg, st, logger)
		if err != nil {
			return err
		}
		ln, err := adm.Listen()
		if err != nil {
			return err
		}
		go func() {
			if err := adm.Serve(ln); err != nil {
				logger.Error("運用APIサーバーが停止しました", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout))
			defer cancel()
			if err := adm.Shutdown(shutdownCtx); err != nil {
				logger.Error("運用APIサーバーの停止に失敗しました", "error", err)
			}
		}()
	}

	logger.Info(fmt.Sprintf("server running at http://%s", cfg.ServerAddress()))
	return srv.Start(ctx)
}
