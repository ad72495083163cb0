package handler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestContentTypeByExtension(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		expected string
	}{
		{"HTML", "index.html", "text/html"},
		{"CSS", "css/site.css", "text/css"},
		{"JavaScript", "app.js", "application/javascript"},
		{"大文字の拡張子", "LOGO.PNG", "image/png"},
		{"複数のドット", "archive.tar.gz", "application/gzip"},
		{"未知の拡張子", "data.unknownext", DefaultContentType},
		{"拡張子なし", "Makefile", DefaultContentType},
		{"ドットのみ", "name.", DefaultContentType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentTypeByExtension(tc.file); got != tc.expected {
				t.Errorf("MIMEタイプが一致しません: got %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestFileReaderRead(t *testing.T) {
	root := newTestRoot(t)

	mime, body, err := FileReader{}.Read(filepath.Join(root, "css", "site.css"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if mime != "text/css" {
		t.Errorf("Expected text/css, got %s", mime)
	}
	if string(body) != "body{}" {
		t.Errorf("Expected body{}, got %q", body)
	}
}

// TestFileReaderReadMissing は存在しないファイルが ErrFileRead になることを確認する
func TestFileReaderReadMissing(t *testing.T) {
	root := newTestRoot(t)

	_, _, err := FileReader{}.Read(filepath.Join(root, "empty", "index.html"))
	if !errors.Is(err, ErrFileRead) {
		t.Fatalf("Expected ErrFileRead, got %v", err)
	}
	// 原因は判別できない
	if errors.Is(err, os.ErrNotExist) {
		t.Error("原因のエラーが判別可能になっています")
	}
}

// TestFileReaderReadDirectory はディレクトリの読み込みが失敗することを確認する
func TestFileReaderReadDirectory(t *testing.T) {
	root := newTestRoot(t)

	if _, _, err := (FileReader{}).Read(filepath.Join(root, "css")); !errors.Is(err, ErrFileRead) {
		t.Fatalf("Expected ErrFileRead, got %v", err)
	}
}

func TestFileReaderDetectContentType(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	if err := os.WriteFile(filepath.Join(dir, "image"), png, 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("plain"), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}

	testCases := []struct {
		name     string
		reader   FileReader
		file     string
		expected string
	}{
		{"判定なし", FileReader{}, "image", DefaultContentType},
		{"内容から判定", FileReader{DetectContentType: true}, "image", "image/png"},
		{"登録済みの拡張子を優先", FileReader{DetectContentType: true}, "page.html", "text/html"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mime, body, err := tc.reader.Read(filepath.Join(dir, tc.file))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if mime != tc.expected {
				t.Errorf("MIMEタイプが一致しません: got %s, want %s", mime, tc.expected)
			}
			if len(body) == 0 {
				t.Error("本文が空です")
			}
		})
	}

	_, body, _ := FileReader{}.Read(filepath.Join(dir, "image"))
	if !bytes.Equal(body, png) {
		t.Error("本文がファイル内容と一致しません")
	}
}
