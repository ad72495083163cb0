// Package handler は、リクエストパスからレスポンスを組み立てる処理を担う
//
// # 責務
// - リクエストパスからファイルシステム上のパスへの解決
// - ファイル内容の読み込みとMIMEタイプの決定
// - Handler インターフェースによるリクエスト処理の抽象化
//
// # 仕様
//   - パス解決は "//" を "/" に置換し、先頭の "/" を1つだけ取り除いてルートに連結する
//   - ".." の解決やルート外へのはみ出し検査は行わない
//   - ディレクトリの場合は <dir>/index.html を返す（存在確認は読み込み時）
//   - MIMEタイプは拡張子のみで決定し、未知の拡張子は application/octet-stream
//   - 解決失敗・読み込み失敗はどちらも 404（本文なし）に集約する
//   - HTTPメソッド、クエリ、ヘッダーは参照しない
package handler
