package handler

import (
	"context"
	"net/http"
)

// Request はハンドラーに渡されるリクエスト
type Request struct {
	Method string // HTTPメソッド（処理には使用しない）
	Path   string // リクエストパス
}

// Response はハンドラーが返すレスポンス
type Response struct {
	Status      int    // ステータスコード
	ContentType string // 200 の場合のみ設定される
	Body        []byte // レスポンス本文
}

// Handler はリクエストからレスポンスを生成するインターフェース
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// HandlerFunc は関数を Handler として扱うためのアダプター
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Handle は f(ctx, req) を呼び出す
func (f HandlerFunc) Handle(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}

// NotFound は本文なしの 404 レスポンスを返す
func NotFound() *Response {
	return &Response{Status: http.StatusNotFound, Body: []byte{}}
}

// FileServerHandler はルートディレクトリ配下の静的ファイルを返す Handler
type FileServerHandler struct {
	root   string
	reader FileReader
}

// NewFileServerHandler は新しいFileServerHandlerを作成する
func NewFileServerHandler(root string, reader FileReader) *FileServerHandler {
	return &FileServerHandler{
		root:   root,
		reader: reader,
	}
}

// Root は配信するルートディレクトリを返す
func (h *FileServerHandler) Root() string {
	return h.root
}

// Handle はリクエストパスを解決してファイルを返す
// 解決・読み込みのいずれに失敗しても 404 を返す
func (h *FileServerHandler) Handle(_ context.Context, req *Request) *Response {
	target, err := Resolve(h.root, req.Path)
	if err != nil {
		return NotFound()
	}

	mime, body, err := h.reader.Read(target)
	if err != nil {
		return NotFound()
	}

	return &Response{
		Status:      http.StatusOK,
		ContentType: mime,
		Body:        body,
	}
}
