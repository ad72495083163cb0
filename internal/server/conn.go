package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"rserve/internal/handler"

	"github.com/google/uuid"
)

// connState は接続の状態
type connState int32

const (
	stateIdle   connState = iota // リクエスト待ち
	stateActive                  // リクエスト処理中
)

// conn は受け付けた1つのTCP接続
// HTTP/1.1 のキープアライブに従い、1つの接続で複数のリクエストを順に処理する
type conn struct {
	srv    *Server
	rwc    net.Conn
	id     string
	bufr   *bufio.Reader
	bufw   *bufio.Writer
	logger *slog.Logger
	state  atomic.Int32
}

// newConn は新しいconnを作成する
func newConn(srv *Server, rwc net.Conn) *conn {
	id := uuid.NewString()
	return &conn{
		srv:    srv,
		rwc:    rwc,
		id:     id,
		bufr:   bufio.NewReaderSize(rwc, 4<<10),
		bufw:   bufio.NewWriterSize(rwc, 4<<10),
		logger: srv.logger.With("conn", id),
	}
}

// serve は接続が閉じられるまでリクエストを読み込んで処理する
func (c *conn) serve(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			c.logger.Error("パニックから復帰しました", "error", err)
		}
		c.close()
	}()

	c.logger.Debug("接続を受け付けました", "remote", c.rwc.RemoteAddr().String())

	for {
		// 最初のバイトが届いた時点で処理中とする
		if _, err := c.bufr.Peek(1); err != nil {
			c.handleErr(err)
			return
		}
		c.setState(stateActive)

		req, err := c.readRequest()
		if err != nil {
			c.handleErr(err)
			return
		}

		keepAlive, err := c.dispatch(ctx, req)
		c.setState(stateIdle)
		if err != nil {
			c.handleErr(err)
			return
		}

		if !keepAlive || c.srv.shuttingDown() {
			return
		}
	}
}

// readRequest は次のリクエストを読み込む
// リクエストターゲットを URL として解釈できない場合も、ヘッダーまで読んでリクエストとして扱う
func (c *conn) readRequest() (*http.Request, error) {
	line := c.peekRequestLine()

	req, err := http.ReadRequest(c.bufr)
	if err == nil {
		return req, nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) || line == "" {
		return nil, err
	}
	return c.readUnparsedRequest(line)
}

// peekRequestLine はバッファからリクエスト行を読み進めずに取り出す
// 行がバッファに収まらない場合は空文字列を返す
func (c *conn) peekRequestLine() string {
	for {
		buf, _ := c.bufr.Peek(c.bufr.Buffered())
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			return strings.TrimRight(string(buf[:i]), "\r")
		}
		if c.bufr.Buffered() >= c.bufr.Size() {
			return ""
		}
		if _, err := c.bufr.Peek(c.bufr.Buffered() + 1); err != nil {
			return ""
		}
	}
}

// readUnparsedRequest はリクエスト行が読み込まれた後のヘッダーを読み、
// line からリクエストを組み立てる
// 本文は読まないため、レスポンス後に接続を閉じる
func (c *conn) readUnparsedRequest(line string) (*http.Request, error) {
	method, rest, ok1 := strings.Cut(line, " ")
	target, proto, ok2 := strings.Cut(rest, " ")
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("不正なリクエスト行: %q", line)
	}
	major, minor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		return nil, fmt.Errorf("不正なHTTPバージョン: %q", proto)
	}

	header, err := textproto.NewReader(c.bufr).ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("ヘッダーの読み込みに失敗: %w", err)
	}

	return &http.Request{
		Method:     method,
		RequestURI: target,
		Proto:      proto,
		ProtoMajor: major,
		ProtoMinor: minor,
		Header:     http.Header(header),
		Body:       http.NoBody,
		Close:      true,
	}, nil
}

// requestPath はリクエストターゲットからクエリを除いたパスを返す
// パーセントエンコーディングはデコードしない
func requestPath(req *http.Request) string {
	if req.URL != nil && req.URL.IsAbs() {
		return req.URL.EscapedPath()
	}
	path, _, _ := strings.Cut(req.RequestURI, "?")
	return path
}

// dispatch はリクエストをハンドラーに渡し、レスポンスを書き込む
// 接続を維持する場合は true を返す
func (c *conn) dispatch(ctx context.Context, req *http.Request) (bool, error) {
	path := requestPath(req)

	c.logger.Info(fmt.Sprintf("%s %s", req.Method, path))
	start := time.Now()

	resp := c.srv.handler.Handle(ctx, &handler.Request{
		Method: req.Method,
		Path:   path,
	})

	c.logger.Info(fmt.Sprintf("%d in %d ms", resp.Status, time.Since(start).Milliseconds()))
	c.srv.stats.RecordResponse(resp.Status)

	// リクエスト本文は使用しないが、次のリクエストを読むために読み捨てる
	_, _ = io.Copy(io.Discard, req.Body)
	_ = req.Body.Close()

	keepAlive := !req.Close
	if err := c.writeResponse(req, resp, keepAlive); err != nil {
		return false, fmt.Errorf("レスポンスの書き込みに失敗: %w", err)
	}

	return keepAlive, nil
}

// writeResponse はレスポンスを書き込んでフラッシュする
// Content-Type は 200 の場合のみ設定する
func (c *conn) writeResponse(req *http.Request, resp *handler.Response, keepAlive bool) error {
	header := make(http.Header)
	if resp.Status == http.StatusOK && resp.ContentType != "" {
		header.Set("Content-Type", resp.ContentType)
	}

	minor := 1
	if req.ProtoMajor == 1 && req.ProtoMinor == 0 {
		minor = 0
		if keepAlive {
			header.Set("Connection", "keep-alive")
		}
	}

	var body io.ReadCloser = http.NoBody
	switch {
	case req.Method == http.MethodHead:
		// HEAD には本文を返さない
		body = nil
	case len(resp.Body) > 0:
		body = io.NopCloser(bytes.NewReader(resp.Body))
	}

	r := &http.Response{
		StatusCode:    resp.Status,
		ProtoMajor:    1,
		ProtoMinor:    minor,
		Header:        header,
		Body:          body,
		ContentLength: int64(len(resp.Body)),
		Close:         !keepAlive,
		Request:       req,
	}

	if err := r.Write(c.bufw); err != nil {
		return err
	}
	return c.bufw.Flush()
}

// handleErr は接続単位のエラーを記録する
// 相手からの切断やシャットダウンによる終了はエラーとして扱わない
func (c *conn) handleErr(err error) {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), c.srv.shuttingDown():
		c.logger.Debug("接続が閉じられました", "reason", err)
	default:
		c.logger.Error("接続エラー", "error", err)
	}
}

func (c *conn) setState(state connState) {
	c.state.Store(int32(state))
}

func (c *conn) getState() connState {
	return connState(c.state.Load())
}

// close は接続を閉じて登録を解除する
func (c *conn) close() {
	_ = c.rwc.Close()
	c.srv.untrackConn(c)
}
