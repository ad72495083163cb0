package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"rserve/internal/config"
	"rserve/internal/handler"
	"rserve/internal/stats"

	"golang.org/x/net/netutil"
)

// ErrServerClosed はシャットダウンにより Serve が終了したことを表す
var ErrServerClosed = errors.New("server closed")

const (
	// Accept 失敗時の再試行間隔
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = 1 * time.Second

	// シャットダウン時に処理中のリクエストを確認する間隔
	shutdownPollInterval = 50 * time.Millisecond
)

// Server は静的ファイルを配信するHTTPサーバーを管理する構造体
type Server struct {
	config  *config.Config
	handler handler.Handler
	logger  *slog.Logger
	stats   *stats.Stats

	mu         sync.Mutex
	listener   net.Listener
	conns      map[*conn]struct{}
	inShutdown atomic.Bool
}

// New は新しいServerインスタンスを作成する
// 設定とハンドラーはすべての接続で共有され、変更されない
func New(cfg *config.Config, h handler.Handler, logger *slog.Logger, st *stats.Stats) *Server {
	if st == nil {
		st = stats.New()
	}
	return &Server{
		config:  cfg,
		handler: h,
		logger:  logger,
		stats:   st,
		conns:   make(map[*conn]struct{}),
	}
}

// Stats はサーバーのカウンターを返す
func (s *Server) Stats() *stats.Stats {
	return s.stats
}

// Listen は設定のアドレスでリッスンを開始する
// MaxConnections が正の場合は同時接続数を制限する
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return nil, err
	}
	if s.config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.config.MaxConnections)
	}
	return ln, nil
}

// Serve は ln で接続を受け付け、接続ごとにゴルーチンを起動する
//
// Accept の失敗は記録して再試行し、サーバーを停止しない。
// シャットダウンでリスナーが閉じられると ErrServerClosed を返す。
// ctx はリクエスト処理に引き継がれるが、キャンセルは伝播しない。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.trackListener(ln) {
		_ = ln.Close()
		return ErrServerClosed
	}

	connCtx := context.WithoutCancel(ctx)

	var tempDelay time.Duration
	for {
		rwc, err := ln.Accept()
		if err != nil {
			if s.shuttingDown() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("リスナーが閉じられました: %w", err)
			}

			if tempDelay == 0 {
				tempDelay = minAcceptDelay
			} else {
				tempDelay *= 2
			}
			if tempDelay > maxAcceptDelay {
				tempDelay = maxAcceptDelay
			}
			s.logger.Error("接続の受け付けに失敗しました", "error", err, "retry_in", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		c := newConn(s, rwc)
		if !s.trackConn(c) {
			_ = rwc.Close()
			return ErrServerClosed
		}
		go c.serve(connCtx)
	}
}

// Start はサーバーを起動する
// コンテキストのキャンセルかシグナルを受け取るとシャットダウンする
func (s *Server) Start(ctx context.Context) error {
	// リッスンは起動時に一度だけ行う
	ln, err := s.Listen()
	if err != nil {
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	}

	// サーバーを別ゴルーチンで起動
	serveCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動しています", "addr", ln.Addr().String(), "root", s.config.Root)
		serveCh <- s.Serve(ctx, ln)
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", "signal", sig.String())
	case err := <-serveCh:
		return err
	}

	// グレースフルシャットダウン
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.ShutdownTimeout))
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

// Shutdown はサーバーをグレースフルにシャットダウンする
//
// リスナーを閉じたあと、処理中のリクエストが終わるまで待ってから接続を閉じる。
// ctx が先に終了した場合は残りの接続をすべて閉じて ctx のエラーを返す。
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("サーバーをシャットダウンしています...")
	s.inShutdown.Store(true)

	s.mu.Lock()
	var lnErr error
	if s.listener != nil {
		lnErr = s.listener.Close()
	}
	s.mu.Unlock()

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()

	for {
		if s.closeIdleConns() {
			s.logger.Info("サーバーが正常にシャットダウンされました")
			if lnErr != nil && !errors.Is(lnErr, net.ErrClosed) {
				return fmt.Errorf("リスナーのクローズに失敗: %w", lnErr)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			s.closeAllConns()
			return fmt.Errorf("サーバーのシャットダウンに失敗: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Server) shuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) trackListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown() {
		return false
	}
	s.listener = ln
	return true
}

func (s *Server) trackConn(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown() {
		return false
	}
	s.conns[c] = struct{}{}
	s.stats.ConnectionOpened()
	return true
}

func (s *Server) untrackConn(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		s.stats.ConnectionClosed()
	}
}

// closeIdleConns はリクエスト待ちの接続を閉じる
// すべての接続が閉じられた場合は true を返す
func (s *Server) closeIdleConns() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiescent := true
	for c := range s.conns {
		if c.getState() != stateIdle {
			quiescent = false
			continue
		}
		_ = c.rwc.Close()
		delete(s.conns, c)
		s.stats.ConnectionClosed()
	}
	return quiescent
}

// closeAllConns は状態に関係なくすべての接続を閉じる
func (s *Server) closeAllConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.conns {
		_ = c.rwc.Close()
		delete(s.conns, c)
		s.stats.ConnectionClosed()
	}
}
