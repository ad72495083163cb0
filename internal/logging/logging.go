// Package logging はアプリケーションで共有するロガーを作成する
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Options はロガーの設定
type Options struct {
	Level  string // debug / info / warn / error
	Format string // auto / text / json
	Debug  bool   // true の場合は Level に関係なく debug
}

// New は w に出力するロガーを作成する
// Format が auto の場合、端末なら text、それ以外は json で出力する
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	switch format := strings.ToLower(opts.Format); format {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "", "auto":
		if IsTerminal(w) {
			return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("未対応のログ形式: %q", opts.Format)
	}
}

// ParseLevel はログレベル名を slog.Level に変換する
// 空文字列は info として扱う
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("未対応のログレベル: %q", name)
	}
}

// IsTerminal は w が端末に接続されたファイルかどうかを返す
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Discard は何も出力しないロガーを返す
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
