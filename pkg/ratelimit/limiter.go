package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision はAdmitの判定結果。
type Decision struct {
	// Allowed はリクエストを通してよいかどうか。
	Allowed bool
	// Count は現在のウィンドウでのリクエスト数（今回分を含む）。
	Count int
	// Limit はウィンドウあたりの許可回数。
	Limit int
	// Remaining は現在のウィンドウで残っている許可回数。
	Remaining int
	// ResetAt はカウンタがリセットされる時刻。
	ResetAt time.Time
}

// RetryAfter はリセットまでの待ち時間を返す。
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Limiter はクライアントアドレスとルートの組ごとにリクエストを許可または拒否する。
type Limiter interface {
	Admit(ctx context.Context, clientAddress, routeKey string) Decision
}

// Rule はウィンドウあたりの許可回数とウィンドウ長。
type Rule struct {
	Limit  int
	Window time.Duration
}

// normalize は不正な値を既定値に置き換える。
func (r Rule) normalize() Rule {
	if r.Limit <= 0 {
		r.Limit = 1
	}
	if r.Window <= 0 {
		r.Window = time.Minute
	}
	return r
}

// key はカウンタのキーを組み立てる。
func key(clientAddress, routeKey string) string {
	return routeKey + "|" + clientAddress
}

// InMemory はプロセス内のマップでカウンタを保持するLimiter。
type InMemory struct {
	rule Rule
	now  func() time.Time

	mu        sync.Mutex
	items     map[string]window
	nextSweep time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewInMemory は新しいInMemoryを生成する。
func NewInMemory(rule Rule) *InMemory {
	return &InMemory{
		rule:  rule.normalize(),
		now:   time.Now,
		items: make(map[string]window),
	}
}

// Admit はカウンタを1つ進め、許可回数を超えていれば拒否する。
// ウィンドウの終端を過ぎていればカウンタを0から数え直す。
func (l *InMemory) Admit(_ context.Context, clientAddress, routeKey string) Decision {
	now := l.now().UTC()
	k := key(clientAddress, routeKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	curr, ok := l.items[k]
	if !ok || !now.Before(curr.resetAt) {
		curr = window{resetAt: now.Add(l.rule.Window)}
	}
	curr.count++
	l.items[k] = curr

	return decide(curr.count, l.rule.Limit, curr.resetAt)
}

// prune は期限切れのカウンタを削除する。l.mu を保持した状態で呼ぶこと。
// 走査はウィンドウ1つ分の間隔で1回に限る。期限切れでも未削除のカウンタはAdmitで数え直される。
func (l *InMemory) prune(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	l.nextSweep = now.Add(l.rule.Window)
	for k, v := range l.items {
		if !now.Before(v.resetAt) {
			delete(l.items, k)
		}
	}
}

// Len は保持しているカウンタ数を返す。
func (l *InMemory) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
