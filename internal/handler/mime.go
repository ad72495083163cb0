package handler

import (
	"path/filepath"
	"strings"
)

// DefaultContentType は拡張子が未知または無い場合のMIMEタイプ
const DefaultContentType = "application/octet-stream"

// mimeTypes は拡張子（小文字、ドットなし）からMIMEタイプへの固定テーブル
var mimeTypes = map[string]string{
	// テキスト
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"csv":  "text/csv",
	"txt":  "text/plain",
	"text": "text/plain",
	"md":   "text/markdown",
	"xml":  "text/xml",
	"ics":  "text/calendar",
	"vtt":  "text/vtt",

	// スクリプト・データ
	"js":          "application/javascript",
	"mjs":         "application/javascript",
	"json":        "application/json",
	"map":         "application/json",
	"webmanifest": "application/manifest+json",
	"jsonld":      "application/ld+json",
	"wasm":        "application/wasm",
	"pdf":         "application/pdf",
	"rss":         "application/rss+xml",
	"atom":        "application/atom+xml",
	"xhtml":       "application/xhtml+xml",
	"yaml":        "text/x-yaml",
	"yml":         "text/x-yaml",
	"toml":        "text/x-toml",

	// アーカイブ
	"zip": "application/zip",
	"gz":  "application/gzip",
	"tar": "application/x-tar",
	"7z":  "application/x-7z-compressed",
	"bz2": "application/x-bzip2",

	// 画像
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"webp": "image/webp",
	"avif": "image/avif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",

	// フォント
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",

	// 音声・動画
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"webm": "video/webm",
	"ogv":  "video/ogg",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
}

// ContentTypeByExtension はファイル名の拡張子からMIMEタイプを返す
// 拡張子の大文字小文字は区別しない
func ContentTypeByExtension(name string) string {
	if mime, ok := lookupExtension(name); ok {
		return mime
	}
	return DefaultContentType
}

// lookupExtension はテーブルに登録された拡張子かどうかも返す
func lookupExtension(name string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	mime, ok := mimeTypes[strings.ToLower(ext)]
	return mime, ok
}
