package handler

import (
	"errors"
	"os"
	"strings"
)

// ErrFileResolve はリクエストパスに対応するファイルが見つからないことを表す
var ErrFileResolve = errors.New("file resolve error")

// indexFile はディレクトリへのリクエストで返すファイル名
const indexFile = "index.html"

// Resolve はリクエストパスを root 配下のファイルパスに解決する
//
// 通常ファイルならそのパスを、ディレクトリなら <dir>/index.html を返す。
// index.html の存在は確認しない。どちらでもなければ ErrFileResolve を返す。
//
// 連結は文字列の結合のみで、".." を含むパスは root の外を指すことがある。
func Resolve(root, requestPath string) (string, error) {
	p := strings.ReplaceAll(requestPath, "//", "/")
	p = strings.TrimPrefix(p, "/")

	fullPath := joinPath(root, p)

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", ErrFileResolve
	}

	if info.Mode().IsRegular() {
		return fullPath, nil
	}

	if info.IsDir() {
		return joinPath(fullPath, indexFile), nil
	}

	return "", ErrFileResolve
}

// joinPath は base と name を区切り文字1つで連結する（正規化しない）
func joinPath(base, name string) string {
	if name == "" {
		return base
	}
	if base == "" || strings.HasSuffix(base, string(os.PathSeparator)) || strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + string(os.PathSeparator) + name
}
