// Package stats はサーバーの稼働状況を数えるカウンターを提供する
//
// すべての操作はアトミックで、ロックを取らずに複数の接続から更新できる。
package stats

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Stats は接続数とレスポンス数のカウンター
type Stats struct {
	startedAt time.Time

	accepted atomic.Uint64
	active   atomic.Int64
	requests atomic.Uint64
	ok       atomic.Uint64
	notFound atomic.Uint64
}

// Snapshot はある時点のカウンターの値
type Snapshot struct {
	Accepted uint64 // 受け付けた接続の総数
	Active   int64  // 現在の接続数
	Requests uint64 // 処理したリクエストの総数
	OK       uint64 // 200 の数
	NotFound uint64 // 404 の数
}

// New は新しいStatsを作成する
func New() *Stats {
	return &Stats{startedAt: time.Now()}
}

// StartedAt は計測開始時刻を返す
func (s *Stats) StartedAt() time.Time {
	return s.startedAt
}

// ConnectionOpened は接続の受け付けを記録する
func (s *Stats) ConnectionOpened() {
	s.accepted.Add(1)
	s.active.Add(1)
}

// ConnectionClosed は接続の終了を記録する
func (s *Stats) ConnectionClosed() {
	s.active.Add(-1)
}

// RecordResponse はレスポンスのステータスコードを記録する
func (s *Stats) RecordResponse(status int) {
	s.requests.Add(1)
	switch status {
	case http.StatusOK:
		s.ok.Add(1)
	case http.StatusNotFound:
		s.notFound.Add(1)
	}
}

// Snapshot は現在の値を返す
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Accepted: s.accepted.Load(),
		Active:   s.active.Load(),
		Requests: s.requests.Load(),
		OK:       s.ok.Load(),
		NotFound: s.notFound.Load(),
	}
}
