package main

import (
	"context"
	"log"
	"os"

	"rserve/internal/config"
	"rserve/internal/logging"
	"rserve/internal/server"
)

// 環境変数（と .env）だけで設定するエントリポイント
// コマンドラインオプションを使う場合は cmd/server.go を使用する
func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	logger, err := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Debug:  cfg.Debug,
	})
	if err != nil {
		log.Fatalf("ロガーの作成に失敗しました: %v", err)
	}

	// コンテキストを作成
	ctx := context.Background()

	// サーバーを起動
	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Error("サーバーの起動に失敗しました", "error", err)
		os.Exit(1)
	}
}
