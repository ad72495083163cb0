package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// デフォルト値
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8008
	DefaultAdminPort       = 8009
	DefaultShutdownTimeout = 5 * time.Second
)

// Config はアプリケーション全体の設定を保持する構造体
// 起動時に一度だけ作成し、以降は読み取り専用で共有する
type Config struct {
	Root  string `json:"public" toml:"public" yaml:"public" validate:"required,dir"` // 配信するルートディレクトリ
	Host  string `json:"host" toml:"host" yaml:"host" validate:"required,ip"`       // リッスンするホスト
	Port  int    `json:"port" toml:"port" yaml:"port" validate:"min=1,max=65535"`   // リッスンするポート番号
	Debug bool   `json:"debug" toml:"debug" yaml:"debug"`                           // デバッグログを有効にする

	// 追加レスポンスヘッダー
	// 設定ファイルとの互換性のために受け付けるが、レスポンスには適用しない
	Headers []Header `json:"headers" toml:"headers" yaml:"headers" validate:"omitempty,dive"`

	Log LogConfig `json:"log" toml:"log" yaml:"log"`

	// 拡張子が未知のファイルを内容から判定する
	DetectContentType bool `json:"detect_content_type" toml:"detect_content_type" yaml:"detect_content_type"`

	// 同時接続数の上限（0 は無制限）
	MaxConnections int `json:"max_connections" toml:"max_connections" yaml:"max_connections" validate:"min=0"`

	// シャットダウン時に処理中のリクエストを待つ時間
	ShutdownTimeout Duration `json:"shutdown_timeout" toml:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`

	Admin AdminConfig `json:"admin" toml:"admin" yaml:"admin"`
}

// Header はレスポンスに付与するヘッダー
type Header struct {
	Key   string `json:"key" toml:"key" yaml:"key" validate:"required"`
	Value string `json:"value" toml:"value" yaml:"value"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" toml:"format" yaml:"format" validate:"omitempty,oneof=auto text json"`
}

// AdminConfig は運用向けAPIサーバーの設定
type AdminConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Host    string `json:"host" toml:"host" yaml:"host" validate:"omitempty,ip"`
	Port    int    `json:"port" toml:"port" yaml:"port" validate:"min=0,max=65535"`
}

// Default はデフォルト設定を返す
// ルートディレクトリはカレントディレクトリ
func Default() *Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}

	return &Config{
		Root:            root,
		Host:            DefaultHost,
		Port:            DefaultPort,
		Headers:         []Header{},
		Log:             LogConfig{Level: "info", Format: "auto"},
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
		Admin: AdminConfig{
			Enabled: false,
			Host:    DefaultHost,
			Port:    DefaultAdminPort,
		},
	}
}

// Load は設定を読み込む
// デフォルト値に .env ファイルと環境変数を適用して検証する
func Load() (*Config, error) {
	// .env は存在しなくてもよい
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("RSERVE_CONFIG"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// LoadFile は設定ファイルを読み込む
// 拡張子で形式を判定する（.json / .toml / .yaml / .yml）
// ファイルに無い項目はデフォルト値のまま
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("未対応の設定ファイル形式: %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの解析に失敗: %s: %w", path, err)
	}

	return cfg, nil
}

// WriteFile は設定を拡張子に応じた形式でファイルに書き込む
// 親ディレクトリが無い場合は作成する
func (c *Config) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".toml":
		data, err = toml.Marshal(c)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("未対応の設定ファイル形式: %q", ext)
	}
	if err != nil {
		return fmt.Errorf("設定のエンコードに失敗: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗: %w", err)
	}
	return nil
}

// ApplyEnv は環境変数の値で設定を上書きする
func (c *Config) ApplyEnv() error {
	c.Root = getEnvOrDefault("RSERVE_ROOT", c.Root)
	c.Host = getEnvOrDefault("RSERVE_HOST", c.Host)
	c.Log.Level = getEnvOrDefault("RSERVE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("RSERVE_LOG_FORMAT", c.Log.Format)

	var err error
	if c.Port, err = getEnvAsIntOrDefault("RSERVE_PORT", c.Port); err != nil {
		return err
	}
	if c.Debug, err = getEnvAsBoolOrDefault("RSERVE_DEBUG", c.Debug); err != nil {
		return err
	}
	if value := os.Getenv("RSERVE_ADMIN_PORT"); value != "" {
		if c.Admin.Port, err = getEnvAsIntOrDefault("RSERVE_ADMIN_PORT", c.Admin.Port); err != nil {
			return err
		}
		c.Admin.Enabled = true
	}

	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("無効な設定: %w", err)
	}
	if c.Admin.Enabled && c.Admin.Host == "" {
		return fmt.Errorf("無効な設定: 運用APIのホストが指定されていません")
	}
	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AdminAddress は運用APIサーバーのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return net.JoinHostPort(c.Admin.Host, strconv.Itoa(c.Admin.Port))
}

// Duration は "5s" のような文字列で指定できる時間
type Duration time.Duration

// UnmarshalText は time.ParseDuration の形式を解釈する
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("無効な時間指定: %q", text)
	}
	*d = Duration(v)
	return nil
}

// MarshalText は time.Duration の文字列表現を返す
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s が整数ではありません: %q", key, value)
	}
	return intVal, nil
}

// getEnvAsBoolOrDefault は環境変数を真偽値として取得する
func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("環境変数 %s が真偽値ではありません: %q", key, value)
	}
	return boolVal, nil
}
