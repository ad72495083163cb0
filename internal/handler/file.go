package handler

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// ErrFileRead は解決済みパスのオープンまたは読み込みに失敗したことを表す
// 失敗の原因（権限、存在しない index.html など）は区別しない
var ErrFileRead = errors.New("file read error")

// FileReader は解決済みパスのファイルを読み込む
type FileReader struct {
	// DetectContentType が true の場合、未知の拡張子は内容から判定する
	DetectContentType bool
}

// Read はファイル全体をメモリに読み込み、MIMEタイプと内容を返す
func (r FileReader) Read(target string) (string, []byte, error) {
	body, err := os.ReadFile(target)
	if err != nil {
		// 原因はラップせず、ErrFileRead のみ判別可能にする
		return "", nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	mime, ok := lookupExtension(target)
	if !ok {
		mime = DefaultContentType
		if r.DetectContentType {
			mime = mimetype.Detect(body).String()
		}
	}

	return mime, body, nil
}
