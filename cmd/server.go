// Package main はrserveサーバーコマンドの実装です
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rserve/internal/config"
	"rserve/internal/logging"
	"rserve/internal/server"

	"github.com/spf13/cobra"
)

// options はコマンドラインオプション
type options struct {
	configPath string
	debug      bool
	host       string
	port       int
	logLevel   string
	logFormat  string
	detect     bool
	maxConns   int
	adminPort  int
}

func main() {
	if err := newRootCommand(&options{}).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCommand はルートコマンドを作成する
// 解析したオプションは opts に格納される
func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rserve [path]",
		Short:        "ディレクトリ配下の静的ファイルを配信するHTTPサーバー",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, args, opts)
			if err != nil {
				return err
			}
			cfg := resolved.config

			logger, err := logging.New(os.Stderr, logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Debug:  cfg.Debug,
			})
			if err != nil {
				return err
			}
			if resolved.loadErr != nil {
				logger.Warn("設定ファイルを読み込めないためデフォルト設定を使用します", "error", resolved.loadErr)
			}

			logger.Info("start server")
			if err := server.Run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("サーバーが異常終了しました", "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "設定ファイルのパス (.json / .toml / .yaml)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "デバッグログを表示")
	flags.StringVar(&opts.host, "host", config.DefaultHost, "リッスンするIPアドレス")
	flags.IntVarP(&opts.port, "port", "p", config.DefaultPort, "リッスンするポート (1-65535)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "ログレベル (debug / info / warn / error)")
	flags.StringVar(&opts.logFormat, "log-format", "auto", "ログ形式 (auto / text / json)")
	flags.BoolVar(&opts.detect, "detect-content-type", false, "拡張子が未知のファイルを内容から判定")
	flags.IntVar(&opts.maxConns, "max-connections", 0, "同時接続数の上限 (0 は無制限)")
	flags.IntVar(&opts.adminPort, "admin-port", 0, "運用APIを有効にしてこのポートで待ち受ける")

	return cmd
}

// resolvedConfig はオプションから作成した設定
type resolvedConfig struct {
	config  *config.Config
	loadErr error // 設定ファイルの読み込みに失敗した原因
}

// resolveConfig はオプションから設定を作成する
//
// --config が指定された場合はそのファイルを基にし、明示的に指定された
// オプションで上書きする。ファイルが存在しない場合はデフォルト設定を書き出し、
// 読めない場合はデフォルト設定を使う。
func resolveConfig(cmd *cobra.Command, args []string, opts *options) (*resolvedConfig, error) {
	resolved := &resolvedConfig{}

	cfg := config.Default()
	if opts.configPath != "" {
		fileCfg, err := config.LoadFile(opts.configPath)
		switch {
		case err == nil:
			cfg = fileCfg
		case errors.Is(err, fs.ErrNotExist):
			// 存在しない場合はデフォルト設定を書き出す
			if err := cfg.WriteFile(opts.configPath); err != nil {
				resolved.loadErr = err
			}
		default:
			resolved.loadErr = err
		}
	}

	if len(args) == 1 {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return nil, fmt.Errorf("ルートディレクトリの解決に失敗: %w", err)
		}
		cfg.Root = root
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("detect-content-type") {
		cfg.DetectContentType = opts.detect
	}
	if flags.Changed("max-connections") {
		cfg.MaxConnections = opts.maxConns
	}
	if flags.Changed("admin-port") {
		cfg.Admin.Enabled = true
		cfg.Admin.Port = opts.adminPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	resolved.config = cfg
	return resolved, nil
}
