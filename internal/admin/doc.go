// Package admin は、運用向けのHTTP APIを提供します。
//
// 静的ファイルを配信するサーバーとは別のアドレスで待ち受け、
// ヘルスチェックと稼働状況を JSON で返します。
//
// 責務:
//   - ヘルスチェック (/health)
//   - 接続数・リクエスト数などの稼働状況 (/api/status)
//   - 埋め込みOpenAPI定義の配信 (/api/openapi.json)
//
// 仕様:
//   - ルーティングには gin を使用
//   - OpenAPI定義は起動時に kin-openapi で読み込み、検証する
//   - リクエストはサーバー本体と同じロガーに記録する
package admin
