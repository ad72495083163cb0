// Package server は、静的ファイルを配信するHTTP/1.1サーバーを管理します。
//
// このパッケージは、リスナーの作成、接続の受け付け、
// 接続ごとのリクエスト処理、シャットダウンを担当します。
//
// 責務:
//   - 起動時に一度だけリッスンを開始する
//   - 受け付けた接続ごとにゴルーチンを起動する
//   - キープアライブに従って1つの接続で複数のリクエストを処理する
//   - リクエストごとに "{METHOD} {PATH}" と "{STATUS} in {MS} ms" を記録する
//   - グレースフルシャットダウンに対応
//
// 仕様:
//   - HTTPの解析と書き込みは標準ライブラリの net/http を使用
//   - リクエストの処理は handler.Handler に委譲する
//   - 設定とハンドラーは全接続で共有し、変更しない
//   - Accept の失敗はサーバーを停止せず、待機してから再試行する
//   - 接続単位のエラーはその接続だけを閉じる
package server
